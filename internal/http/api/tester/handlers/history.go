package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/GraphQLTester/internal/domain"
	"github.com/router-for-me/GraphQLTester/internal/store"
	"github.com/router-for-me/GraphQLTester/internal/workbench"
	log "github.com/sirupsen/logrus"
)

// HistoryHandler serves the request history list.
type HistoryHandler struct {
	registry *workbench.Registry
}

// NewHistoryHandler constructs a HistoryHandler.
func NewHistoryHandler(registry *workbench.Registry) *HistoryHandler {
	return &HistoryHandler{registry: registry}
}

// historyResponse lists entries most recent first.
type historyResponse struct {
	Entries []domain.HistoryEntry `json:"entries"`
	Max     int                   `json:"max"`
}

// List returns the caller's history.
func (h *HistoryHandler) List(c *gin.Context) {
	wb, ok := loadWorkbench(c, h.registry)
	if !ok {
		return
	}
	entries := wb.History()
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	c.JSON(http.StatusOK, historyResponse{Entries: entries, Max: store.MaxHistory})
}

// Clear removes every history entry.
func (h *HistoryHandler) Clear(c *gin.Context) {
	wb, ok := loadWorkbench(c, h.registry)
	if !ok {
		return
	}
	if errClear := wb.ClearHistory(c.Request.Context()); errClear != nil {
		log.WithError(errClear).WithField("user_id", getUserID(c)).Error("clear history failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "clear history failed"})
		return
	}
	c.JSON(http.StatusOK, historyResponse{Entries: []domain.HistoryEntry{}, Max: store.MaxHistory})
}

// Select copies the entry at :index into the draft.
func (h *HistoryHandler) Select(c *gin.Context) {
	index, errParse := strconv.Atoi(c.Param("index"))
	if errParse != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}
	wb, ok := loadWorkbench(c, h.registry)
	if !ok {
		return
	}
	state, found, errPersist := wb.SelectHistory(c.Request.Context(), index)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "history entry not found"})
		return
	}
	writeState(c, state, errPersist)
}
