// Package webui embeds the single-page tester UI.
package webui

import (
	"bytes"
	"embed"
	"html"
	"io/fs"
	"net/http"
)

// dist embeds the page and its assets.
//
//go:embed dist/*
var dist embed.FS

// siteNamePlaceholder is replaced in index.html by RenderIndex.
const siteNamePlaceholder = "{{SITE_NAME}}"

// Bundle exposes embedded web UI assets for serving.
type Bundle struct {
	AssetsFS  http.FileSystem // Assets subdirectory filesystem.
	IndexHTML []byte          // Raw index HTML content with placeholders.
}

// Load loads the embedded web UI bundle.
func Load() (Bundle, error) {
	assetsFS, errSubAssets := fs.Sub(dist, "dist/assets")
	if errSubAssets != nil {
		return Bundle{}, errSubAssets
	}
	indexHTML, errReadFile := dist.ReadFile("dist/index.html")
	if errReadFile != nil {
		return Bundle{}, errReadFile
	}
	return Bundle{
		AssetsFS:  http.FS(assetsFS),
		IndexHTML: indexHTML,
	}, nil
}

// RenderIndex returns the index page titled with siteName.
func (b Bundle) RenderIndex(siteName string) []byte {
	return bytes.ReplaceAll(b.IndexHTML, []byte(siteNamePlaceholder), []byte(html.EscapeString(siteName)))
}
