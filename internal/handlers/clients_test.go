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
	"golang.org/x/crypto/bcrypt"

	"github.com/ServanaApplication/servana-backend/internal/mocks"
	"github.com/ServanaApplication/servana-backend/internal/models"
	"github.com/ServanaApplication/servana-backend/internal/repositories"
)

const testSecret = "test-secret"

func setupClientsRouter(handler *ClientsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/clients/register", handler.Register)
	r.POST("/clients/login", handler.Login)
	return r
}

func TestRegisterStoresBcryptHash(t *testing.T) {
	clientRepo := new(mocks.ClientRepositoryMock)
	handler := NewClientsHandler(clientRepo, new(mocks.ChatGroupRepositoryMock), testSecret)
	router := setupClientsRouter(handler)

	clientRepo.On("Create", mock.Anything, "+63", "5550001", mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter22")) == nil
	})).Return(models.Client{ID: 5, CountryCode: "+63", Number: "5550001"}, nil).Once()

	body := bytes.NewBufferString(`{"client_country_code":"+63","client_number":"5550001","client_password":"hunter22"}`)
	req := httptest.NewRequest(http.MethodPost, "/clients/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp["token"])
	clientRepo.AssertExpectations(t)
}

func TestRegisterDuplicateNumber(t *testing.T) {
	clientRepo := new(mocks.ClientRepositoryMock)
	handler := NewClientsHandler(clientRepo, new(mocks.ChatGroupRepositoryMock), testSecret)
	router := setupClientsRouter(handler)

	clientRepo.On("Create", mock.Anything, "+63", "5550001", mock.Anything).
		Return(models.Client{}, repositories.ErrNumberTaken).Once()

	body := bytes.NewBufferString(`{"client_country_code":"+63","client_number":"5550001","client_password":"hunter22"}`)
	req := httptest.NewRequest(http.MethodPost, "/clients/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	clientRepo.AssertExpectations(t)
}

func TestLoginCreatesChatGroup(t *testing.T) {
	clientRepo := new(mocks.ClientRepositoryMock)
	groupRepo := new(mocks.ChatGroupRepositoryMock)
	handler := NewClientsHandler(clientRepo, groupRepo, testSecret)
	router := setupClientsRouter(handler)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.DefaultCost)
	require.NoError(t, err)

	clientRepo.On("GetByNumber", mock.Anything, "+63", "5550001").
		Return(models.Client{ID: 5, PasswordHash: string(hash)}, nil).Once()
	// First login: thread created, no department yet.
	groupRepo.On("CreateOrGetForClient", mock.Anything, 5).
		Return(models.ChatGroup{ID: 42, ClientID: intPtr(5)}, nil).Once()

	body := bytes.NewBufferString(`{"client_country_code":"+63","client_number":"5550001","client_password":"hunter22"}`)
	req := httptest.NewRequest(http.MethodPost, "/clients/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token       string `json:"token"`
		ChatGroupID int    `json:"chat_group_id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	require.Equal(t, 42, resp.ChatGroupID)

	clientRepo.AssertExpectations(t)
	groupRepo.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	clientRepo := new(mocks.ClientRepositoryMock)
	handler := NewClientsHandler(clientRepo, new(mocks.ChatGroupRepositoryMock), testSecret)
	router := setupClientsRouter(handler)

	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.DefaultCost)
	require.NoError(t, err)
	clientRepo.On("GetByNumber", mock.Anything, "+63", "5550001").
		Return(models.Client{ID: 5, PasswordHash: string(hash)}, nil).Once()

	body := bytes.NewBufferString(`{"client_country_code":"+63","client_number":"5550001","client_password":"wrong1"}`)
	req := httptest.NewRequest(http.MethodPost, "/clients/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	clientRepo.AssertExpectations(t)
}
