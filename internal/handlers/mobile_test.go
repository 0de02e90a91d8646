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
	"github.com/ServanaApplication/servana-backend/internal/ws"
)

func setupMobileRouter(handler *MobileHandler, clientID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyClientID, clientID)
		c.Next()
	})
	r.POST("/mobile/messages", handler.PostMessage)
	r.GET("/mobile/messages/group/:id", handler.GroupMessages)
	r.GET("/mobile/agent/:chatGroupId", handler.LatestAgent)
	r.PATCH("/mobile/chat_group/:id/set-department", handler.SetDepartment)
	return r
}

func TestPostMessagePersistsClientRow(t *testing.T) {
	groupRepo := new(mocks.ChatGroupRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMobileHandler(groupRepo, messageRepo, new(mocks.ProfileRepositoryMock), ws.NewHub())
	router := setupMobileRouter(handler, 5)

	groupRepo.On("GetByID", mock.Anything, 42).
		Return(models.ChatGroup{ID: 42, ClientID: intPtr(5)}, nil).Once()
	messageRepo.On("Create", mock.Anything, 42, repositories.ClientSender(5), "hello").
		Return(models.ChatMessage{ID: 1, ChatGroupID: 42, ClientID: intPtr(5), Body: "hello"}, nil).Once()

	body := bytes.NewBufferString(`{"chat_group_id":42,"chat_body":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/mobile/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	groupRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestPostMessageForeignGroupForbidden(t *testing.T) {
	groupRepo := new(mocks.ChatGroupRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMobileHandler(groupRepo, messageRepo, new(mocks.ProfileRepositoryMock), ws.NewHub())
	router := setupMobileRouter(handler, 5)

	groupRepo.On("GetByID", mock.Anything, 42).
		Return(models.ChatGroup{ID: 42, ClientID: intPtr(99)}, nil).Once()

	body := bytes.NewBufferString(`{"chat_group_id":42,"chat_body":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/mobile/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	groupRepo.AssertExpectations(t)
	messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSetDepartmentReturnsSystemNotice(t *testing.T) {
	groupRepo := new(mocks.ChatGroupRepositoryMock)
	handler := NewMobileHandler(groupRepo, new(mocks.MessageRepositoryMock), new(mocks.ProfileRepositoryMock), ws.NewHub())
	router := setupMobileRouter(handler, 5)

	groupRepo.On("GetByID", mock.Anything, 42).
		Return(models.ChatGroup{ID: 42, ClientID: intPtr(5)}, nil).Once()
	// Transactional assignment hands back the system-authored notice row.
	groupRepo.On("AssignDepartment", mock.Anything, 42, 3).
		Return(models.ChatMessage{ID: 9, ChatGroupID: 42, Body: "Billing"}, nil).Once()

	body := bytes.NewBufferString(`{"dept_id":3}`)
	req := httptest.NewRequest(http.MethodPatch, "/mobile/chat_group/42/set-department", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Message models.ChatMessage `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "Billing", resp.Message.Body)
	require.Nil(t, resp.Message.SysUserID)
	require.Nil(t, resp.Message.ClientID)
	require.Equal(t, "system", resp.Message.Sender())

	groupRepo.AssertExpectations(t)
}

func TestSetDepartmentUnknownDepartment(t *testing.T) {
	groupRepo := new(mocks.ChatGroupRepositoryMock)
	handler := NewMobileHandler(groupRepo, new(mocks.MessageRepositoryMock), new(mocks.ProfileRepositoryMock), ws.NewHub())
	router := setupMobileRouter(handler, 5)

	groupRepo.On("GetByID", mock.Anything, 42).
		Return(models.ChatGroup{ID: 42, ClientID: intPtr(5)}, nil).Once()
	groupRepo.On("AssignDepartment", mock.Anything, 42, 99).
		Return(models.ChatMessage{}, repositories.ErrDepartmentNotFound).Once()

	body := bytes.NewBufferString(`{"dept_id":99}`)
	req := httptest.NewRequest(http.MethodPatch, "/mobile/chat_group/42/set-department", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestLatestAgentNoResponderYet(t *testing.T) {
	groupRepo := new(mocks.ChatGroupRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMobileHandler(groupRepo, messageRepo, new(mocks.ProfileRepositoryMock), ws.NewHub())
	router := setupMobileRouter(handler, 5)

	groupRepo.On("GetByID", mock.Anything, 42).
		Return(models.ChatGroup{ID: 42, ClientID: intPtr(5)}, nil).Once()
	messageRepo.On("LatestAgentProfile", mock.Anything, 42).Return((*models.Profile)(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/mobile/agent/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Nil(t, resp["agent"])
	messageRepo.AssertExpectations(t)
}
