package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/GraphQLTester/internal/editor"
	"github.com/router-for-me/GraphQLTester/internal/workbench"
)

// EditorHandler serves the draft fields and their formatters.
type EditorHandler struct {
	registry *workbench.Registry
}

// NewEditorHandler constructs an EditorHandler.
func NewEditorHandler(registry *workbench.Registry) *EditorHandler {
	return &EditorHandler{registry: registry}
}

// GetDraft returns the hydrated draft and its validation state.
func (h *EditorHandler) GetDraft(c *gin.Context) {
	wb, ok := loadWorkbench(c, h.registry)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, wb.State())
}

// updateDraftRequest carries the fields that changed; omitted fields are kept.
type updateDraftRequest struct {
	Endpoint  *string `json:"endpoint"`
	Query     *string `json:"query"`
	Variables *string `json:"variables"`
}

// UpdateDraft applies changed fields, validating each one.
func (h *EditorHandler) UpdateDraft(c *gin.Context) {
	var body updateDraftRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Endpoint == nil && body.Query == nil && body.Variables == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}
	wb, ok := loadWorkbench(c, h.registry)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var (
		state      workbench.State
		errPersist error
	)
	if body.Endpoint != nil {
		state, errPersist = wb.SetEndpoint(ctx, *body.Endpoint)
	}
	if errPersist == nil && body.Query != nil {
		state, errPersist = wb.SetQuery(ctx, *body.Query)
	}
	if errPersist == nil && body.Variables != nil {
		state, errPersist = wb.SetVariables(ctx, *body.Variables)
	}
	writeState(c, state, errPersist)
}

// ClearDraft empties the fields and removes the stored draft.
func (h *EditorHandler) ClearDraft(c *gin.Context) {
	wb, ok := loadWorkbench(c, h.registry)
	if !ok {
		return
	}
	state, errClear := wb.ClearDraft(c.Request.Context())
	writeState(c, state, errClear)
}

// FormatQuery rewrites the query in canonical form when it parses.
func (h *EditorHandler) FormatQuery(c *gin.Context) {
	wb, ok := loadWorkbench(c, h.registry)
	if !ok {
		return
	}
	state, errPersist := wb.FormatQuery(c.Request.Context())
	writeState(c, state, errPersist)
}

// FormatVariables re-indents the variables when they parse.
func (h *EditorHandler) FormatVariables(c *gin.Context) {
	wb, ok := loadWorkbench(c, h.registry)
	if !ok {
		return
	}
	state, errPersist := wb.FormatVariables(c.Request.Context())
	writeState(c, state, errPersist)
}

// validateRequest carries free text to validate without touching the draft.
type validateRequest struct {
	Query     string `json:"query"`
	Variables string `json:"variables"`
}

// validateResponse reports both field results and the derived gate.
type validateResponse struct {
	Query     editor.Result `json:"query"`
	Variables editor.Result `json:"variables"`
	CanSubmit bool          `json:"can_submit"`
}

// Validate checks arbitrary query and variables text.
func Validate(c *gin.Context) {
	var body validateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	queryResult := editor.ValidateQuery(body.Query)
	variablesResult := editor.ValidateVariables(body.Variables)
	c.JSON(http.StatusOK, validateResponse{
		Query:     queryResult,
		Variables: variablesResult,
		CanSubmit: editor.CanSubmit(queryResult, variablesResult),
	})
}
