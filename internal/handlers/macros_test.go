package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ServanaApplication/servana-backend/internal/middleware"
	"github.com/ServanaApplication/servana-backend/internal/mocks"
	"github.com/ServanaApplication/servana-backend/internal/models"
	"github.com/ServanaApplication/servana-backend/internal/repositories"
)

func setupMacrosRouter(handler *MacrosHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, 1)
		c.Next()
	})
	r.GET("/agents", handler.List)
	r.POST("/agents", handler.Create)
	r.PUT("/agents/:id", handler.Update)
	r.PUT("/agents/:id/toggle", handler.Toggle)
	return r
}

func TestCreateMacroResolvesDepartmentByName(t *testing.T) {
	macroRepo := new(mocks.MacroRepositoryMock)
	deptRepo := new(mocks.DepartmentRepositoryMock)
	handler := NewAgentMacrosHandler(macroRepo, deptRepo)
	router := setupMacrosRouter(handler)

	deptRepo.On("GetByName", mock.Anything, "Billing").
		Return(models.Department{ID: 3, Name: "Billing"}, nil).Once()
	macroRepo.On("Create", mock.Anything, "Thanks for waiting!", intPtr(3), models.RoleAgent).
		Return(models.CannedMessage{ID: 1, Message: "Thanks for waiting!", DeptID: intPtr(3), RoleID: models.RoleAgent}, nil).Once()

	body := bytes.NewBufferString(`{"canned_message":"Thanks for waiting!","dept_name":"Billing"}`)
	req := httptest.NewRequest(http.MethodPost, "/agents", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	deptRepo.AssertExpectations(t)
	macroRepo.AssertExpectations(t)
}

func TestCreateMacroGlobalScope(t *testing.T) {
	macroRepo := new(mocks.MacroRepositoryMock)
	deptRepo := new(mocks.DepartmentRepositoryMock)
	handler := NewAgentMacrosHandler(macroRepo, deptRepo)
	router := setupMacrosRouter(handler)

	macroRepo.On("Create", mock.Anything, "Hello!", (*int)(nil), models.RoleAgent).
		Return(models.CannedMessage{ID: 2, Message: "Hello!", RoleID: models.RoleAgent}, nil).Once()

	body := bytes.NewBufferString(`{"canned_message":"Hello!"}`)
	req := httptest.NewRequest(http.MethodPost, "/agents", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	deptRepo.AssertNotCalled(t, "GetByName", mock.Anything, mock.Anything)
	macroRepo.AssertExpectations(t)
}

func TestCreateMacroUnknownDepartment(t *testing.T) {
	macroRepo := new(mocks.MacroRepositoryMock)
	deptRepo := new(mocks.DepartmentRepositoryMock)
	handler := NewAgentMacrosHandler(macroRepo, deptRepo)
	router := setupMacrosRouter(handler)

	deptRepo.On("GetByName", mock.Anything, "Nope").
		Return(models.Department{}, repositories.ErrDepartmentNotFound).Once()

	body := bytes.NewBufferString(`{"canned_message":"Hi","dept_name":"Nope"}`)
	req := httptest.NewRequest(http.MethodPost, "/agents", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	macroRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListMacrosScopedToRole(t *testing.T) {
	macroRepo := new(mocks.MacroRepositoryMock)
	handler := NewClientMacrosHandler(macroRepo, new(mocks.DepartmentRepositoryMock))
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/clients/macros", handler.List)

	macroRepo.On("ListByRole", mock.Anything, models.RoleClient).
		Return([]models.MacroWithDepartment{
			{CannedMessage: models.CannedMessage{ID: 4, Message: "Where is my order?", RoleID: models.RoleClient}},
		}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/clients/macros", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Macros []models.MacroWithDepartment `json:"macros"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Macros, 1)
	require.Equal(t, models.RoleClient, resp.Macros[0].RoleID)
	macroRepo.AssertExpectations(t)
}
