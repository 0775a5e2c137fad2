package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ctxOperatorID = "userId"

	errMissingAuth = "missing Authorization header"
	errAuthFormat  = "invalid Authorization header format"
	errAuthToken   = "invalid or expired token"
)

// userIdMiddleware admits requests carrying a valid bearer token and stores the operator id for
// the handlers that change the setpoint.
func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMissingAuth})
		return
	}

	// the auth scheme is case-insensitive
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errAuthFormat})
		return
	}

	operatorID, err := h.services.ParseToken(token)
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_token_rejected", "err", err, "path", c.FullPath())
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errAuthToken})
		return
	}

	c.Set(ctxOperatorID, operatorID)
	c.Next()
}

// operatorID returns the id stored by userIdMiddleware, or 0 outside the protected group.
func operatorID(c *gin.Context) int {
	return c.GetInt(ctxOperatorID)
}
