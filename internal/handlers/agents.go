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

// AgentsHandler manages agent accounts and their department assignments.
type AgentsHandler struct {
	userRepo repositories.UserRepository
	deptRepo repositories.DepartmentRepository
	emitter  *telemetry.AuditEmitter
}

// NewAgentsHandler builds an AgentsHandler.
func NewAgentsHandler(userRepo repositories.UserRepository, deptRepo repositories.DepartmentRepository, emitter *telemetry.AuditEmitter) *AgentsHandler {
	return &AgentsHandler{userRepo: userRepo, deptRepo: deptRepo, emitter: emitter}
}

// List returns all agents with their department names.
func (h *AgentsHandler) List(c *gin.Context) {
	agents, err := h.userRepo.ListAgentsWithDepartments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load agents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": agents})
}

// ListDepartments returns departments for the assignment picker.
func (h *AgentsHandler) ListDepartments(c *gin.Context) {
	depts, err := h.deptRepo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load departments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": depts})
}

// Create adds an agent account with its department assignments.
func (h *AgentsHandler) Create(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required,min=6"`
		Departments []int  `json:"departments"`
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

	id, err := h.userRepo.CreateAgent(c.Request.Context(), req.Email, string(hash), req.Departments)
	if errors.Is(err, repositories.ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create agent"})
		return
	}

	h.emitter.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("agent account created: %s", req.Email),
		requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Update rewrites an agent's email, active flag, optional password, and
// department assignments.
func (h *AgentsHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid agent id"})
		return
	}
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"omitempty,min=6"`
		Active      *bool  `json:"active" binding:"required"`
		Departments []int  `json:"departments"`
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

	if err := h.userRepo.UpdateAgent(c.Request.Context(), id, req.Email, hash, *req.Active, req.Departments); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update agent"})
		return
	}

	h.emitter.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("agent account updated: %d", id),
		requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
