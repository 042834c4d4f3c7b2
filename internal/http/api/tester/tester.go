package tester

import (
	"github.com/gin-gonic/gin"
	internalhttp "github.com/router-for-me/GraphQLTester/internal/http"
	"github.com/router-for-me/GraphQLTester/internal/http/api/tester/handlers"
	"github.com/router-for-me/GraphQLTester/internal/relay"
	"github.com/router-for-me/GraphQLTester/internal/session"
	"github.com/router-for-me/GraphQLTester/internal/snippet"
	"github.com/router-for-me/GraphQLTester/internal/workbench"
)

// Deps bundles the collaborators of the tester routes.
type Deps struct {
	Verifier          session.Verifier
	Registry          *workbench.Registry
	Sender            relay.Sender
	Snippets          snippet.Options
	RequestsPerMinute int
}

// RegisterTesterRoutes registers the public config route and the authenticated
// form surface under /v0/tester.
func RegisterTesterRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.Verifier == nil || deps.Registry == nil || deps.Sender == nil {
		return
	}

	tester := r.Group("/v0/tester")
	tester.GET("/config", handlers.GetPublicConfig)

	authed := tester.Group("")
	authed.Use(internalhttp.SessionMiddleware(deps.Verifier))

	authed.GET("/session", handlers.GetSession)

	editorHandler := handlers.NewEditorHandler(deps.Registry)
	authed.GET("/draft", editorHandler.GetDraft)
	authed.PUT("/draft", editorHandler.UpdateDraft)
	authed.DELETE("/draft", editorHandler.ClearDraft)
	authed.POST("/validate", handlers.Validate)
	authed.POST("/format/query", editorHandler.FormatQuery)
	authed.POST("/format/variables", editorHandler.FormatVariables)

	snippetHandler := handlers.NewSnippetHandler(deps.Registry, deps.Snippets)
	authed.POST("/snippet", snippetHandler.Copy)
	authed.POST("/copied", snippetHandler.MarkCopied)

	sendHandler := handlers.NewSendHandler(deps.Registry, deps.Sender)
	authed.POST("/send", internalhttp.RateLimitMiddleware(deps.RequestsPerMinute), sendHandler.Send)

	historyHandler := handlers.NewHistoryHandler(deps.Registry)
	authed.GET("/history", historyHandler.List)
	authed.DELETE("/history", historyHandler.Clear)
	authed.POST("/history/:index/select", historyHandler.Select)
}
