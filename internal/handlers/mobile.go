package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ServanaApplication/servana-backend/internal/middleware"
	"github.com/ServanaApplication/servana-backend/internal/models"
	"github.com/ServanaApplication/servana-backend/internal/repositories"
	"github.com/ServanaApplication/servana-backend/internal/ws"
)

// MobileHandler serves the client app's HTTP surface.
type MobileHandler struct {
	groupRepo   repositories.ChatGroupRepository
	messageRepo repositories.MessageRepository
	profileRepo repositories.ProfileRepository
	hub         *ws.Hub
}

// NewMobileHandler builds a MobileHandler.
func NewMobileHandler(groupRepo repositories.ChatGroupRepository, messageRepo repositories.MessageRepository, profileRepo repositories.ProfileRepository, hub *ws.Hub) *MobileHandler {
	return &MobileHandler{
		groupRepo:   groupRepo,
		messageRepo: messageRepo,
		profileRepo: profileRepo,
		hub:         hub,
	}
}

// groupForClient loads the group and checks ownership.
func (h *MobileHandler) groupForClient(c *gin.Context, chatGroupID int) (models.ChatGroup, bool) {
	clientID := c.GetInt(middleware.ContextKeyClientID)
	group, err := h.groupRepo.GetByID(c.Request.Context(), chatGroupID)
	if errors.Is(err, repositories.ErrChatGroupNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat group not found"})
		return models.ChatGroup{}, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat group"})
		return models.ChatGroup{}, false
	}
	if group.ClientID == nil || *group.ClientID != clientID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for chat group"})
		return models.ChatGroup{}, false
	}
	return group, true
}

// PostMessage inserts a client-authored chat row and relays it like a socket
// send, so agents see HTTP-submitted messages too.
func (h *MobileHandler) PostMessage(c *gin.Context) {
	var req struct {
		ChatGroupID int    `json:"chat_group_id" binding:"required"`
		ChatBody    string `json:"chat_body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := h.groupForClient(c, req.ChatGroupID); !ok {
		return
	}

	clientID := c.GetInt(middleware.ContextKeyClientID)
	msg, err := h.messageRepo.Create(c.Request.Context(), req.ChatGroupID,
		repositories.ClientSender(clientID), req.ChatBody)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save message"})
		return
	}

	h.hub.BroadcastAll(models.OutboundEvent{Event: models.EventUpdateChatGroups})
	h.hub.BroadcastRoom(req.ChatGroupID, models.OutboundEvent{Event: models.EventReceiveMessage, Message: &msg})
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// GroupMessages returns a group's full history, oldest first.
func (h *MobileHandler) GroupMessages(c *gin.Context) {
	chatGroupID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat group id"})
		return
	}
	if _, ok := h.groupForClient(c, chatGroupID); !ok {
		return
	}

	msgs, err := h.messageRepo.ListAscending(c.Request.Context(), chatGroupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// LatestAgent returns the display name of the agent who most recently
// responded in the group, for the chat header.
func (h *MobileHandler) LatestAgent(c *gin.Context) {
	chatGroupID, err := strconv.Atoi(c.Param("chatGroupId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat group id"})
		return
	}
	if _, ok := h.groupForClient(c, chatGroupID); !ok {
		return
	}

	prof, err := h.messageRepo.LatestAgentProfile(c.Request.Context(), chatGroupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load agent"})
		return
	}
	if prof == nil {
		c.JSON(http.StatusOK, gin.H{"agent": nil})
		return
	}

	name := profileDisplayName(prof)
	var image *string
	if resolved, err := h.profileRepo.CurrentOrLatestImage(c.Request.Context(), prof.ID); err == nil && resolved != nil {
		image = &resolved.Location
	}
	c.JSON(http.StatusOK, gin.H{"agent": gin.H{"name": name, "image": image}})
}

// SetDepartment routes the conversation to a department. The department name
// lands in the thread as a system message, and both sides are notified.
func (h *MobileHandler) SetDepartment(c *gin.Context) {
	chatGroupID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat group id"})
		return
	}
	var req struct {
		DeptID int `json:"dept_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := h.groupForClient(c, chatGroupID); !ok {
		return
	}

	notice, err := h.groupRepo.AssignDepartment(c.Request.Context(), chatGroupID, req.DeptID)
	if err != nil {
		c.JSON(notFoundStatus(err), gin.H{"error": assignErrorMessage(err)})
		return
	}

	h.hub.BroadcastAll(models.OutboundEvent{Event: models.EventUpdateChatGroups})
	h.hub.BroadcastRoom(chatGroupID, models.OutboundEvent{Event: models.EventReceiveMessage, Message: &notice})
	c.JSON(http.StatusOK, gin.H{"message": notice})
}

func assignErrorMessage(err error) string {
	switch {
	case errors.Is(err, repositories.ErrDepartmentNotFound):
		return "department not found"
	case errors.Is(err, repositories.ErrChatGroupNotFound):
		return "chat group not found"
	default:
		return "failed to set department"
	}
}

func profileDisplayName(p *models.Profile) string {
	parts := make([]string, 0, 2)
	if p.FirstName != nil && *p.FirstName != "" {
		parts = append(parts, *p.FirstName)
	}
	if p.LastName != nil && *p.LastName != "" {
		parts = append(parts, *p.LastName)
	}
	return strings.Join(parts, " ")
}
