package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ServanaApplication/servana-backend/internal/models"
	"github.com/ServanaApplication/servana-backend/internal/repositories"
	"github.com/ServanaApplication/servana-backend/internal/telemetry"
)

// RolesHandler moves system users between the admin and agent roles.
type RolesHandler struct {
	userRepo repositories.UserRepository
	emitter  *telemetry.AuditEmitter
}

// NewRolesHandler builds a RolesHandler.
func NewRolesHandler(userRepo repositories.UserRepository, emitter *telemetry.AuditEmitter) *RolesHandler {
	return &RolesHandler{userRepo: userRepo, emitter: emitter}
}

// Change sets a system user's role. Only the admin and agent roles are
// assignable; the client role belongs to the client table.
func (h *RolesHandler) Change(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var req struct {
		RoleID int `json:"role_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RoleID != models.RoleAdmin && req.RoleID != models.RoleAgent {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role not assignable"})
		return
	}

	if err := h.userRepo.ChangeRole(c.Request.Context(), id, req.RoleID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change role"})
		return
	}

	h.emitter.Emit(c.Request.Context(), "WARN",
		fmt.Sprintf("role changed: user %d is now %s", id, roleName(req.RoleID)),
		requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
