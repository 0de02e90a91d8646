package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ServanaApplication/servana-backend/internal/models"
	"github.com/ServanaApplication/servana-backend/internal/repositories"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// ChatHandler serves the agent console's conversation views.
type ChatHandler struct {
	groupRepo   repositories.ChatGroupRepository
	messageRepo repositories.MessageRepository
	profileRepo repositories.ProfileRepository
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(groupRepo repositories.ChatGroupRepository, messageRepo repositories.MessageRepository, profileRepo repositories.ProfileRepository) *ChatHandler {
	return &ChatHandler{groupRepo: groupRepo, messageRepo: messageRepo, profileRepo: profileRepo}
}

// ListChatGroups returns every client conversation for the console sidebar.
func (h *ChatHandler) ListChatGroups(c *gin.Context) {
	rows, err := h.groupRepo.ListWithClients(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat groups"})
		return
	}
	summaries, err := h.summarize(c, rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile images"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat_groups": summaries})
}

// ListQueues returns conversations not yet picked up by an agent.
func (h *ChatHandler) ListQueues(c *gin.Context) {
	rows, err := h.groupRepo.ListUnassigned(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load queues"})
		return
	}
	summaries, err := h.summarize(c, rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile images"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat_groups": summaries})
}

// History returns one client's messages, paginated backwards from the
// `before` cursor and returned oldest first.
func (h *ChatHandler) History(c *gin.Context) {
	clientID, err := strconv.Atoi(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if limit > maxHistoryLimit {
			limit = maxHistoryLimit
		}
	}
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid before cursor"})
			return
		}
		before = &parsed
	}

	ids, err := h.groupRepo.IDsForClient(c.Request.Context(), clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat group"})
		return
	}
	if len(ids) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat group not found"})
		return
	}

	msgs, err := h.messageRepo.ListByGroup(c.Request.Context(), ids[0], before, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	// Rows come newest first for the LIMIT; the console renders ascending.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	var nextBefore *time.Time
	if len(msgs) == limit {
		nextBefore = &msgs[0].CreatedAt
	}
	c.JSON(http.StatusOK, gin.H{
		"chat_group_id": ids[0],
		"messages":      msgs,
		"next_before":   nextBefore,
	})
}

// summarize joins group rows with profile images, preferring the image marked
// current and falling back to the most recent upload.
func (h *ChatHandler) summarize(c *gin.Context, rows []models.GroupClientRow) ([]models.GroupSummary, error) {
	profIDs := make([]int, 0, len(rows))
	for _, row := range rows {
		if row.ProfID != nil {
			profIDs = append(profIDs, *row.ProfID)
		}
	}

	current, err := h.profileRepo.ListCurrentImages(c.Request.Context(), profIDs)
	if err != nil {
		return nil, err
	}
	missing := make([]int, 0)
	for _, id := range profIDs {
		if _, ok := current[id]; !ok {
			missing = append(missing, id)
		}
	}
	latest := map[int]string{}
	if len(missing) > 0 {
		latest, err = h.profileRepo.ListLatestImages(c.Request.Context(), missing)
		if err != nil {
			return nil, err
		}
	}

	summaries := make([]models.GroupSummary, 0, len(rows))
	for _, row := range rows {
		var image *string
		if row.ProfID != nil {
			if loc, ok := current[*row.ProfID]; ok {
				image = &loc
			} else if loc, ok := latest[*row.ProfID]; ok {
				image = &loc
			}
		}
		summaries = append(summaries, models.GroupSummary{
			ChatGroupID:   row.ChatGroupID,
			ChatGroupName: clientDisplayName(row),
			Department:    deptNameOrEmpty(row.DeptName),
			Customer: models.GroupCustomer{
				ID:          row.ClientID,
				ChatGroupID: row.ChatGroupID,
				Name:        clientDisplayName(row),
				Number:      row.Number,
				Profile:     image,
			},
		})
	}
	return summaries, nil
}

func clientDisplayName(row models.GroupClientRow) string {
	parts := make([]string, 0, 2)
	if row.FirstName != nil && *row.FirstName != "" {
		parts = append(parts, *row.FirstName)
	}
	if row.LastName != nil && *row.LastName != "" {
		parts = append(parts, *row.LastName)
	}
	if len(parts) == 0 {
		return row.Number
	}
	return strings.Join(parts, " ")
}

func deptNameOrEmpty(name *string) string {
	if name == nil {
		return ""
	}
	return *name
}

func notFoundStatus(err error) int {
	if errors.Is(err, repositories.ErrChatGroupNotFound) || errors.Is(err, repositories.ErrDepartmentNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
