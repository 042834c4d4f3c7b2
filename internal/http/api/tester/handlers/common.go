package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	internalhttp "github.com/router-for-me/GraphQLTester/internal/http"
	"github.com/router-for-me/GraphQLTester/internal/workbench"
	log "github.com/sirupsen/logrus"
)

// getUserID extracts the user ID from gin context.
func getUserID(c *gin.Context) string {
	return internalhttp.UserIDFromContext(c)
}

// loadWorkbench resolves the caller's workbench, writing the error response
// itself when it returns false.
func loadWorkbench(c *gin.Context, registry *workbench.Registry) (*workbench.Workbench, bool) {
	userID := getUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	wb, errGet := registry.Get(c.Request.Context(), userID)
	if errGet != nil {
		log.WithError(errGet).WithField("user_id", userID).Error("load workbench failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load workbench failed"})
		return nil, false
	}
	return wb, true
}

// writeState responds with state, or a 500 when persisting it failed.
func writeState(c *gin.Context, state workbench.State, errPersist error) {
	if errPersist != nil {
		log.WithError(errPersist).WithField("user_id", getUserID(c)).Error("save draft failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save draft failed", "state": state})
		return
	}
	c.JSON(http.StatusOK, state)
}
