package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ServanaApplication/servana-backend/internal/middleware"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func userIDFromContext(c *gin.Context) *string {
	if userID := c.GetInt(middleware.ContextKeyUserID); userID != 0 {
		value := strconv.Itoa(userID)
		return &value
	}
	if clientID := c.GetInt(middleware.ContextKeyClientID); clientID != 0 {
		value := "client:" + strconv.Itoa(clientID)
		return &value
	}
	return nil
}
