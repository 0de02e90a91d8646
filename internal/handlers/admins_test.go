package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ServanaApplication/servana-backend/internal/middleware"
	"github.com/ServanaApplication/servana-backend/internal/mocks"
	"github.com/ServanaApplication/servana-backend/internal/models"
	"github.com/ServanaApplication/servana-backend/internal/repositories"
	"github.com/ServanaApplication/servana-backend/internal/telemetry"
)

func newEmitter(pub *mocks.PublisherMock) *telemetry.AuditEmitter {
	return telemetry.NewAuditEmitter(pub, "audit.logs", "servana-backend", "test")
}

func setupAdminsRouter(handler *AdminsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, 1)
		c.Set(middleware.ContextKeyRoleID, models.RoleAdmin)
		c.Next()
	})
	r.GET("/admins", handler.List)
	r.POST("/admins", handler.Create)
	r.PUT("/admins/:id", handler.Update)
	r.PUT("/admins/:id/toggle", handler.Toggle)
	return r
}

func newAuditEmitterForTest(t *testing.T) (*mocks.PublisherMock, func()) {
	t.Helper()
	pub := new(mocks.PublisherMock)
	pub.On("Publish", mock.Anything, "audit.logs", mock.Anything).Return(nil).Maybe()
	return pub, func() { pub.AssertExpectations(t) }
}

func TestCreateAdminStoresHash(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	pub, verify := newAuditEmitterForTest(t)
	defer verify()
	handler := NewAdminsHandler(userRepo, newEmitter(pub))
	router := setupAdminsRouter(handler)

	userRepo.On("CreateAdmin", mock.Anything, "boss@acme.test", mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret1")) == nil
	})).Return(models.SystemUser{ID: 2, Email: "boss@acme.test", RoleID: models.RoleAdmin}, nil).Once()

	body := bytes.NewBufferString(`{"email":"boss@acme.test","password":"secret1"}`)
	req := httptest.NewRequest(http.MethodPost, "/admins", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestCreateAdminDuplicateEmail(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	pub, verify := newAuditEmitterForTest(t)
	defer verify()
	handler := NewAdminsHandler(userRepo, newEmitter(pub))
	router := setupAdminsRouter(handler)

	userRepo.On("CreateAdmin", mock.Anything, "boss@acme.test", mock.Anything).
		Return(models.SystemUser{}, repositories.ErrEmailTaken).Once()

	body := bytes.NewBufferString(`{"email":"boss@acme.test","password":"secret1"}`)
	req := httptest.NewRequest(http.MethodPost, "/admins", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestUpdateAdminWithoutPasswordKeepsHash(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	pub, verify := newAuditEmitterForTest(t)
	defer verify()
	handler := NewAdminsHandler(userRepo, newEmitter(pub))
	router := setupAdminsRouter(handler)

	userRepo.On("UpdateAdmin", mock.Anything, 2, "boss@acme.test", (*string)(nil)).Return(nil).Once()

	body := bytes.NewBufferString(`{"email":"boss@acme.test"}`)
	req := httptest.NewRequest(http.MethodPut, "/admins/2", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestToggleAdminNotFound(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	pub, verify := newAuditEmitterForTest(t)
	defer verify()
	handler := NewAdminsHandler(userRepo, newEmitter(pub))
	router := setupAdminsRouter(handler)

	userRepo.On("SetActive", mock.Anything, 7, false).Return(repositories.ErrUserNotFound).Once()

	body := bytes.NewBufferString(`{"sys_user_is_active":false}`)
	req := httptest.NewRequest(http.MethodPut, "/admins/7/toggle", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	userRepo.AssertExpectations(t)
}
