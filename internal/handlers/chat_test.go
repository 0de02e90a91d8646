package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ServanaApplication/servana-backend/internal/middleware"
	"github.com/ServanaApplication/servana-backend/internal/mocks"
	"github.com/ServanaApplication/servana-backend/internal/models"
)

func setupChatRouter(handler *ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, 1)
		c.Next()
	})
	r.GET("/chat/chatgroups", handler.ListChatGroups)
	r.GET("/chat/queues", handler.ListQueues)
	r.GET("/chat/:clientId", handler.History)
	return r
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestListChatGroupsImageFallback(t *testing.T) {
	groupRepo := new(mocks.ChatGroupRepositoryMock)
	profileRepo := new(mocks.ProfileRepositoryMock)
	handler := NewChatHandler(groupRepo, nil, profileRepo)
	router := setupChatRouter(handler)

	rows := []models.GroupClientRow{
		{ChatGroupID: 1, ClientID: 10, Number: "5550001", ProfID: intPtr(100), FirstName: strPtr("Ana")},
		{ChatGroupID: 2, ClientID: 11, Number: "5550002", ProfID: intPtr(101)},
		{ChatGroupID: 3, ClientID: 12, Number: "5550003", ProfID: intPtr(102)},
		{ChatGroupID: 4, ClientID: 13, Number: "5550004"},
	}
	groupRepo.On("ListWithClients", mock.Anything).Return(rows, nil).Once()
	// 100 has a current image; 101 only older uploads; 102 none at all.
	profileRepo.On("ListCurrentImages", mock.Anything, []int{100, 101, 102}).
		Return(map[int]string{100: "https://cdn/img-current.png"}, nil).Once()
	profileRepo.On("ListLatestImages", mock.Anything, []int{101, 102}).
		Return(map[int]string{101: "https://cdn/img-latest.png"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chat/chatgroups", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		ChatGroups []models.GroupSummary `json:"chat_groups"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.ChatGroups, 4)

	require.NotNil(t, resp.ChatGroups[0].Customer.Profile)
	require.Equal(t, "https://cdn/img-current.png", *resp.ChatGroups[0].Customer.Profile)
	require.Equal(t, "Ana", resp.ChatGroups[0].Customer.Name)

	require.NotNil(t, resp.ChatGroups[1].Customer.Profile)
	require.Equal(t, "https://cdn/img-latest.png", *resp.ChatGroups[1].Customer.Profile)

	require.Nil(t, resp.ChatGroups[2].Customer.Profile)
	require.Nil(t, resp.ChatGroups[3].Customer.Profile)
	require.Equal(t, "5550004", resp.ChatGroups[3].Customer.Name)

	groupRepo.AssertExpectations(t)
	profileRepo.AssertExpectations(t)
}

func TestListQueuesRepoError(t *testing.T) {
	groupRepo := new(mocks.ChatGroupRepositoryMock)
	handler := NewChatHandler(groupRepo, nil, new(mocks.ProfileRepositoryMock))
	router := setupChatRouter(handler)

	groupRepo.On("ListUnassigned", mock.Anything).Return(([]models.GroupClientRow)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/chat/queues", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestHistoryPagination(t *testing.T) {
	groupRepo := new(mocks.ChatGroupRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewChatHandler(groupRepo, messageRepo, new(mocks.ProfileRepositoryMock))
	router := setupChatRouter(handler)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Repo hands back newest first.
	stored := []models.ChatMessage{
		{ID: 3, ChatGroupID: 7, Body: "third", CreatedAt: base.Add(2 * time.Second)},
		{ID: 2, ChatGroupID: 7, Body: "second", CreatedAt: base.Add(time.Second)},
	}
	groupRepo.On("IDsForClient", mock.Anything, 10).Return([]int{7}, nil).Once()
	messageRepo.On("ListByGroup", mock.Anything, 7, (*time.Time)(nil), 2).Return(stored, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chat/10?limit=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		ChatGroupID int                  `json:"chat_group_id"`
		Messages    []models.ChatMessage `json:"messages"`
		NextBefore  *time.Time           `json:"next_before"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 7, resp.ChatGroupID)
	require.Len(t, resp.Messages, 2)
	// Ascending for display.
	require.Equal(t, "second", resp.Messages[0].Body)
	require.Equal(t, "third", resp.Messages[1].Body)
	// Full page, so the cursor points at the oldest returned row.
	require.NotNil(t, resp.NextBefore)
	require.True(t, resp.NextBefore.Equal(base.Add(time.Second)))

	// Next page from the cursor: the remaining older row, no further cursor.
	older := []models.ChatMessage{
		{ID: 1, ChatGroupID: 7, Body: "first", CreatedAt: base},
	}
	groupRepo.On("IDsForClient", mock.Anything, 10).Return([]int{7}, nil).Once()
	messageRepo.On("ListByGroup", mock.Anything, 7, mock.MatchedBy(func(before *time.Time) bool {
		return before != nil && before.Equal(base.Add(time.Second))
	}), 2).Return(older, nil).Once()

	req = httptest.NewRequest(http.MethodGet, "/chat/10?limit=2&before="+resp.NextBefore.Format(time.RFC3339Nano), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var page2 struct {
		Messages   []models.ChatMessage `json:"messages"`
		NextBefore *time.Time           `json:"next_before"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page2))
	require.Len(t, page2.Messages, 1)
	require.Equal(t, "first", page2.Messages[0].Body)
	require.Nil(t, page2.NextBefore)

	groupRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestHistoryLimitCapped(t *testing.T) {
	groupRepo := new(mocks.ChatGroupRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewChatHandler(groupRepo, messageRepo, new(mocks.ProfileRepositoryMock))
	router := setupChatRouter(handler)

	groupRepo.On("IDsForClient", mock.Anything, 10).Return([]int{7}, nil).Once()
	messageRepo.On("ListByGroup", mock.Anything, 7, (*time.Time)(nil), maxHistoryLimit).
		Return([]models.ChatMessage{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chat/10?limit=1000000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestHistoryUnknownClient(t *testing.T) {
	groupRepo := new(mocks.ChatGroupRepositoryMock)
	handler := NewChatHandler(groupRepo, new(mocks.MessageRepositoryMock), new(mocks.ProfileRepositoryMock))
	router := setupChatRouter(handler)

	groupRepo.On("IDsForClient", mock.Anything, 99).Return([]int{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chat/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	groupRepo.AssertExpectations(t)
}
