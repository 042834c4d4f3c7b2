package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/GraphQLTester/internal/domain"
	"github.com/router-for-me/GraphQLTester/internal/session"
	log "github.com/sirupsen/logrus"
)

// Context keys set by SessionMiddleware.
const (
	ContextUserIDKey   = "userID"
	ContextIdentityKey = "identity"
)

// SessionMiddleware verifies the caller and stores the identity in context.
func SessionMiddleware(verifier session.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, errVerify := verifier.Verify(c.Request.Context(), c.Request.Header)
		if errVerify != nil {
			status, message := SessionErrorStatus(errVerify)
			c.AbortWithStatusJSON(status, gin.H{"error": message})
			return
		}
		c.Set(ContextUserIDKey, identity.UserID)
		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// UserIDFromContext returns the user id stored by SessionMiddleware, or "".
func UserIDFromContext(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

// IdentityFromContext returns the identity stored by SessionMiddleware.
func IdentityFromContext(c *gin.Context) (domain.Identity, bool) {
	val, exists := c.Get(ContextIdentityKey)
	if !exists {
		return domain.Identity{}, false
	}
	identity, ok := val.(domain.Identity)
	return identity, ok && identity.UserID != ""
}

// SessionErrorStatus maps a verification error to a status and message.
func SessionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrMissingToken):
		return http.StatusUnauthorized, "missing session token"
	case errors.Is(err, session.ErrExpiredToken):
		return http.StatusUnauthorized, "session expired"
	case errors.Is(err, session.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid session token"
	default:
		log.WithError(err).Warn("session verification failed")
		return http.StatusUnauthorized, "unauthorized"
	}
}
