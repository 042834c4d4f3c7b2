package webui

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Register serves the page at "/" and its assets under /assets. siteName is
// read on every request so later snapshots take effect.
func Register(r *gin.Engine, b Bundle, siteName func() string) {
	r.StaticFS("/assets", b.AssetsFS)
	serveIndex := func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", b.RenderIndex(siteName()))
	}
	r.GET("/", serveIndex)
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}
		if isAPIRoute(c.Request.URL.Path) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		serveIndex(c)
	})
}

// isAPIRoute reports whether a path targets API endpoints.
func isAPIRoute(requestPath string) bool {
	for _, prefix := range []string{"/v0", "/healthz", "/metrics", "/assets"} {
		if requestPath == prefix || strings.HasPrefix(requestPath, prefix+"/") {
			return true
		}
	}
	return false
}
