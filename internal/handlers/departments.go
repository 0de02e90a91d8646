package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ServanaApplication/servana-backend/internal/repositories"
)

// DepartmentsHandler manages departments.
type DepartmentsHandler struct {
	deptRepo repositories.DepartmentRepository
}

// NewDepartmentsHandler builds a DepartmentsHandler.
func NewDepartmentsHandler(deptRepo repositories.DepartmentRepository) *DepartmentsHandler {
	return &DepartmentsHandler{deptRepo: deptRepo}
}

// List returns all departments.
func (h *DepartmentsHandler) List(c *gin.Context) {
	depts, err := h.deptRepo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load departments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": depts})
}

// Create adds a department.
func (h *DepartmentsHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"dept_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dept, err := h.deptRepo.Create(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create department"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"department": dept})
}

// Update renames a department.
func (h *DepartmentsHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department id"})
		return
	}
	var req struct {
		Name string `json:"dept_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.deptRepo.Update(c.Request.Context(), id, req.Name); err != nil {
		if errors.Is(err, repositories.ErrDepartmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "department not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update department"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Toggle flips a department's active flag.
func (h *DepartmentsHandler) Toggle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department id"})
		return
	}
	var req struct {
		Active *bool `json:"dept_is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.deptRepo.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		if errors.Is(err, repositories.ErrDepartmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "department not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update department"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
