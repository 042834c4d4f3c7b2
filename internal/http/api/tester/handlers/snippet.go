package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/GraphQLTester/internal/snippet"
	"github.com/router-for-me/GraphQLTester/internal/workbench"
)

// SnippetHandler renders copy-as-snippet text for the current draft.
type SnippetHandler struct {
	registry *workbench.Registry
	options  snippet.Options
}

// NewSnippetHandler constructs a SnippetHandler.
func NewSnippetHandler(registry *workbench.Registry, options snippet.Options) *SnippetHandler {
	return &SnippetHandler{registry: registry, options: options}
}

// snippetResponse is the payload written to the clipboard by the UI.
type snippetResponse struct {
	Format        string          `json:"format"`
	Snippet       string          `json:"snippet"`
	CopiedFlashMS int64           `json:"copied_flash_ms"`
	State         workbench.State `json:"state"`
}

// Copy renders the snippet and starts the copied indicator.
func (h *SnippetHandler) Copy(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", snippet.FormatJavaScript)))
	if format != snippet.FormatJavaScript && format != snippet.FormatCurl {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown snippet format"})
		return
	}
	wb, ok := loadWorkbench(c, h.registry)
	if !ok {
		return
	}
	text, errRender := snippet.Render(format, wb.Draft(), h.options)
	if errRender != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errRender.Error()})
		return
	}
	c.JSON(http.StatusOK, snippetResponse{
		Format:        format,
		Snippet:       text,
		CopiedFlashMS: snippet.CopiedFlash.Milliseconds(),
		State:         wb.MarkCopied(),
	})
}

// MarkCopied starts the copied indicator after a client-side copy.
func (h *SnippetHandler) MarkCopied(c *gin.Context) {
	wb, ok := loadWorkbench(c, h.registry)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, wb.MarkCopied())
}
