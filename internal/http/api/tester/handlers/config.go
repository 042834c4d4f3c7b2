package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/GraphQLTester/internal/settings"
)

// GetPublicConfig returns the page settings for the embedded UI.
func GetPublicConfig(c *gin.Context) {
	c.JSON(http.StatusOK, settings.Current())
}
