package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ServanaApplication/servana-backend/internal/blob"
	"github.com/ServanaApplication/servana-backend/internal/middleware"
	"github.com/ServanaApplication/servana-backend/internal/models"
	"github.com/ServanaApplication/servana-backend/internal/repositories"
)

const maxImageSize = 5 << 20

// ProfileHandler serves the authenticated agent's own profile.
type ProfileHandler struct {
	profileRepo repositories.ProfileRepository
	userRepo    repositories.UserRepository
	store       blob.Store
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(profileRepo repositories.ProfileRepository, userRepo repositories.UserRepository, store blob.Store) *ProfileHandler {
	return &ProfileHandler{profileRepo: profileRepo, userRepo: userRepo, store: store}
}

// Get returns the profile, login email, and resolved profile image.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID := c.GetInt(middleware.ContextKeyUserID)

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	var profile *models.Profile
	var image *models.Image
	p, err := h.profileRepo.GetByUserID(c.Request.Context(), userID)
	if err == nil {
		profile = &p
		image, err = h.profileRepo.CurrentOrLatestImage(c.Request.Context(), p.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load image"})
			return
		}
	} else if !errors.Is(err, repositories.ErrProfileNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":   user.Email,
		"profile": profile,
		"image":   image,
	})
}

// Update writes the profile fields and, when changed, the login email.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req struct {
		Email       string     `json:"email" binding:"omitempty,email"`
		FirstName   *string    `json:"prof_firstname"`
		MiddleName  *string    `json:"prof_middlename"`
		LastName    *string    `json:"prof_lastname"`
		Address     *string    `json:"prof_address"`
		DateOfBirth *time.Time `json:"prof_date_of_birth"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt(middleware.ContextKeyUserID)
	if req.Email != "" {
		if err := h.userRepo.UpdateEmail(c.Request.Context(), userID, req.Email); err != nil {
			if errors.Is(err, repositories.ErrEmailTaken) {
				c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update email"})
			return
		}
	}

	profile, err := h.profileRepo.UpsertForUser(c.Request.Context(), userID, models.Profile{
		FirstName:   req.FirstName,
		MiddleName:  req.MiddleName,
		LastName:    req.LastName,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UploadImage stores a new profile picture and marks it current. Earlier
// uploads keep their rows but lose the current flag.
func (h *ProfileHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	if file.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image too large"})
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported content type"})
		return
	}

	userID := c.GetInt(middleware.ContextKeyUserID)
	profID, err := h.profileRepo.EnsureForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer src.Close()

	key := fmt.Sprintf("profiles/%d/%s%s", profID, uuid.NewString(), filepath.Ext(file.Filename))
	location, err := h.store.Put(c.Request.Context(), key, contentType, file.Size, src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
		return
	}

	img, err := h.profileRepo.SetCurrentImage(c.Request.Context(), profID, location)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save image"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"image": img})
}
