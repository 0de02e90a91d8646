package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/ServanaApplication/servana-backend/internal/auth"
	"github.com/ServanaApplication/servana-backend/internal/middleware"
	"github.com/ServanaApplication/servana-backend/internal/models"
	"github.com/ServanaApplication/servana-backend/internal/repositories"
	"github.com/ServanaApplication/servana-backend/internal/telemetry"
)

// RefreshCookie is the long-lived session cookie name.
const RefreshCookie = "refresh_token"

// AuthHandler manages agent-console sessions.
type AuthHandler struct {
	userRepo     repositories.UserRepository
	emitter      *telemetry.AuditEmitter
	secret       string
	secureCookie bool
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(userRepo repositories.UserRepository, emitter *telemetry.AuditEmitter, secret string, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		userRepo:     userRepo,
		emitter:      emitter,
		secret:       secret,
		secureCookie: secureCookie,
	}
}

// Login authenticates an admin or agent and issues session cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.GetByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "account deactivated"})
		return
	}

	access, err := auth.GenerateToken(user.ID, auth.KindAgent, user.RoleID, h.secret, auth.AccessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	refresh, err := auth.GenerateToken(user.ID, auth.KindAgent, user.RoleID, h.secret, auth.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	h.setSessionCookies(c, access, refresh)

	userID := strconv.Itoa(user.ID)
	h.emitter.Emit(c.Request.Context(), "INFO", "agent login", requestIDFromContext(c), &userID)

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Me returns the authenticated user, proving the session cookie is valid.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetInt(middleware.ContextKeyUserID)
	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Refresh rotates the access cookie from a valid refresh cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(RefreshCookie)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	claims, err := auth.ParseToken(token, h.secret)
	if err != nil || claims.Kind != auth.KindAgent {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), claims.UserID)
	if err != nil || !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	access, err := auth.GenerateToken(user.ID, auth.KindAgent, user.RoleID, h.secret, auth.AccessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.SetCookie(middleware.AccessCookie, access, int(auth.AccessTTL.Seconds()), "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Logout clears the session cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.AccessCookie, "", -1, "/", "", h.secureCookie, true)
	c.SetCookie(RefreshCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AuthHandler) setSessionCookies(c *gin.Context, access, refresh string) {
	c.SetCookie(middleware.AccessCookie, access, int(auth.AccessTTL.Seconds()), "/", "", h.secureCookie, true)
	c.SetCookie(RefreshCookie, refresh, int(auth.RefreshTTL.Seconds()), "/", "", h.secureCookie, true)
}

// roleName maps a role ID to its display name.
func roleName(roleID int) string {
	switch roleID {
	case models.RoleAdmin:
		return "admin"
	case models.RoleAgent:
		return "agent"
	case models.RoleClient:
		return "client"
	default:
		return "unknown"
	}
}
