package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/ServanaApplication/servana-backend/internal/auth"
	"github.com/ServanaApplication/servana-backend/internal/repositories"
)

// ClientsHandler manages client accounts for the mobile app.
type ClientsHandler struct {
	clientRepo repositories.ClientRepository
	groupRepo  repositories.ChatGroupRepository
	secret     string
}

// NewClientsHandler builds a ClientsHandler.
func NewClientsHandler(clientRepo repositories.ClientRepository, groupRepo repositories.ChatGroupRepository, secret string) *ClientsHandler {
	return &ClientsHandler{clientRepo: clientRepo, groupRepo: groupRepo, secret: secret}
}

type clientCredentials struct {
	CountryCode string `json:"client_country_code" binding:"required"`
	Number      string `json:"client_number" binding:"required"`
	Password    string `json:"client_password" binding:"required,min=6"`
}

// Register creates a client account and returns a bearer token.
func (h *ClientsHandler) Register(c *gin.Context) {
	var req clientCredentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	client, err := h.clientRepo.Create(c.Request.Context(), req.CountryCode, req.Number, string(hash))
	if errors.Is(err, repositories.ErrNumberTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "number already registered"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create client"})
		return
	}

	token, err := auth.GenerateToken(client.ID, auth.KindClient, 0, h.secret, auth.ClientTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "client": client})
}

// Login authenticates a client. The client's conversation thread is created
// on first login, with no department assigned yet.
func (h *ClientsHandler) Login(c *gin.Context) {
	var req clientCredentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.clientRepo.GetByNumber(c.Request.Context(), req.CountryCode, req.Number)
	if errors.Is(err, repositories.ErrClientNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load client"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	group, err := h.groupRepo.CreateOrGetForClient(c.Request.Context(), client.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open chat group"})
		return
	}

	token, err := auth.GenerateToken(client.ID, auth.KindClient, 0, h.secret, auth.ClientTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":         token,
		"client":        client,
		"chat_group_id": group.ID,
	})
}
