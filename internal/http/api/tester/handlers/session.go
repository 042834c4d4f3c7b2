package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	internalhttp "github.com/router-for-me/GraphQLTester/internal/http"
)

// GetSession returns the identity verified at page load.
func GetSession(c *gin.Context) {
	identity, ok := internalhttp.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, identity)
}
