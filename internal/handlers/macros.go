package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ServanaApplication/servana-backend/internal/models"
	"github.com/ServanaApplication/servana-backend/internal/repositories"
)

// MacrosHandler manages canned messages for one role scope. The agent console
// mounts two instances: one for agent macros, one for client-app macros.
type MacrosHandler struct {
	macroRepo repositories.MacroRepository
	deptRepo  repositories.DepartmentRepository
	roleID    int
}

// NewAgentMacrosHandler builds the handler for agent-console macros.
func NewAgentMacrosHandler(macroRepo repositories.MacroRepository, deptRepo repositories.DepartmentRepository) *MacrosHandler {
	return &MacrosHandler{macroRepo: macroRepo, deptRepo: deptRepo, roleID: models.RoleAgent}
}

// NewClientMacrosHandler builds the handler for client-app macros.
func NewClientMacrosHandler(macroRepo repositories.MacroRepository, deptRepo repositories.DepartmentRepository) *MacrosHandler {
	return &MacrosHandler{macroRepo: macroRepo, deptRepo: deptRepo, roleID: models.RoleClient}
}

type macroRequest struct {
	Message  string `json:"canned_message" binding:"required"`
	DeptName string `json:"dept_name"`
}

// resolveDept turns an optional department name into an ID. Empty means the
// macro applies to all departments.
func (h *MacrosHandler) resolveDept(c *gin.Context, name string) (*int, bool) {
	if name == "" {
		return nil, true
	}
	dept, err := h.deptRepo.GetByName(c.Request.Context(), name)
	if errors.Is(err, repositories.ErrDepartmentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "department not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load department"})
		return nil, false
	}
	return &dept.ID, true
}

// List returns the macros in this handler's role scope.
func (h *MacrosHandler) List(c *gin.Context) {
	macros, err := h.macroRepo.ListByRole(c.Request.Context(), h.roleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load macros"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"macros": macros})
}

// Create adds a macro, resolving the department by name.
func (h *MacrosHandler) Create(c *gin.Context) {
	var req macroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	deptID, ok := h.resolveDept(c, req.DeptName)
	if !ok {
		return
	}

	macro, err := h.macroRepo.Create(c.Request.Context(), req.Message, deptID, h.roleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create macro"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"macro": macro})
}

// Update rewrites a macro's text and department scope.
func (h *MacrosHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid macro id"})
		return
	}
	var req macroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	deptID, ok := h.resolveDept(c, req.DeptName)
	if !ok {
		return
	}

	if err := h.macroRepo.Update(c.Request.Context(), id, req.Message, deptID); err != nil {
		if errors.Is(err, repositories.ErrMacroNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "macro not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update macro"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Toggle flips a macro's active flag.
func (h *MacrosHandler) Toggle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid macro id"})
		return
	}
	var req struct {
		Active *bool `json:"canned_is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.macroRepo.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		if errors.Is(err, repositories.ErrMacroNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "macro not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update macro"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
