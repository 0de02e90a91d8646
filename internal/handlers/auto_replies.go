package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ServanaApplication/servana-backend/internal/repositories"
)

// AutoRepliesHandler manages per-department automatic responses.
type AutoRepliesHandler struct {
	autoReplyRepo repositories.AutoReplyRepository
}

// NewAutoRepliesHandler builds an AutoRepliesHandler.
func NewAutoRepliesHandler(autoReplyRepo repositories.AutoReplyRepository) *AutoRepliesHandler {
	return &AutoRepliesHandler{autoReplyRepo: autoReplyRepo}
}

type autoReplyRequest struct {
	Message string `json:"auto_reply_message" binding:"required"`
	DeptID  *int   `json:"dept_id"`
}

// List returns all auto replies.
func (h *AutoRepliesHandler) List(c *gin.Context) {
	replies, err := h.autoReplyRepo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load auto replies"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"auto_replies": replies})
}

// Create adds an auto reply.
func (h *AutoRepliesHandler) Create(c *gin.Context) {
	var req autoReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.autoReplyRepo.Create(c.Request.Context(), req.Message, req.DeptID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create auto reply"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"auto_reply": reply})
}

// Update rewrites an auto reply.
func (h *AutoRepliesHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auto reply id"})
		return
	}
	var req autoReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.autoReplyRepo.Update(c.Request.Context(), id, req.Message, req.DeptID); err != nil {
		if errors.Is(err, repositories.ErrAutoReplyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "auto reply not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update auto reply"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Toggle flips an auto reply's active flag.
func (h *AutoRepliesHandler) Toggle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auto reply id"})
		return
	}
	var req struct {
		Active *bool `json:"auto_reply_is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.autoReplyRepo.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		if errors.Is(err, repositories.ErrAutoReplyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "auto reply not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update auto reply"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
