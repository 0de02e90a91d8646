package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/ServanaApplication/servana-backend/internal/repositories"
	"github.com/ServanaApplication/servana-backend/internal/telemetry"
)

// AdminsHandler manages admin accounts.
type AdminsHandler struct {
	userRepo repositories.UserRepository
	emitter  *telemetry.AuditEmitter
}

// NewAdminsHandler builds an AdminsHandler.
func NewAdminsHandler(userRepo repositories.UserRepository, emitter *telemetry.AuditEmitter) *AdminsHandler {
	return &AdminsHandler{userRepo: userRepo, emitter: emitter}
}

// List returns all admin accounts.
func (h *AdminsHandler) List(c *gin.Context) {
	admins, err := h.userRepo.ListAdmins(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load admins"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"admins": admins})
}

// Create adds an admin account. The password is stored as a bcrypt hash.
func (h *AdminsHandler) Create(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	admin, err := h.userRepo.CreateAdmin(c.Request.Context(), req.Email, string(hash))
	if errors.Is(err, repositories.ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create admin"})
		return
	}

	h.emitter.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("admin account created: %s", admin.Email),
		requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusCreated, gin.H{"admin": admin})
}

// Update changes an admin's email and, when provided, password.
func (h *AdminsHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin id"})
		return
	}
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"omitempty,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var hash *string
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}
		value := string(hashed)
		hash = &value
	}

	if err := h.userRepo.UpdateAdmin(c.Request.Context(), id, req.Email, hash); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update admin"})
		return
	}

	h.emitter.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("admin account updated: %d", id),
		requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Toggle activates or deactivates an admin account.
func (h *AdminsHandler) Toggle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin id"})
		return
	}
	var req struct {
		Active *bool `json:"sys_user_is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userRepo.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "admin not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update admin"})
		return
	}

	h.emitter.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("admin account toggled: %d active=%t", id, *req.Active),
		requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
