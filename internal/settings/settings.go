// Package settings holds the page settings published to the embedded UI.
package settings

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/router-for-me/GraphQLTester/internal/config"
	"github.com/router-for-me/GraphQLTester/internal/snippet"
	"github.com/router-for-me/GraphQLTester/internal/store"
)

// DefaultSiteName is the fallback page title.
const DefaultSiteName = "GraphQL Tester"

// Public is the non-secret configuration the UI needs.
type Public struct {
	SiteName        string    `json:"site_name"`
	UpstreamBaseURL string    `json:"upstream_base_url"`
	SecretEnv       string    `json:"secret_env"`
	CopiedFlashMS   int64     `json:"copied_flash_ms"`
	MaxHistory      int       `json:"max_history"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// current stores the latest Public snapshot.
var current atomic.Value // stores Public

func init() {
	current.Store(defaults())
}

func defaults() Public {
	return Public{
		SiteName:      DefaultSiteName,
		SecretEnv:     snippet.DefaultSecretEnv,
		CopiedFlashMS: snippet.CopiedFlash.Milliseconds(),
		MaxHistory:    store.MaxHistory,
	}
}

// FromConfig derives the public snapshot from the loaded configuration.
func FromConfig(cfg config.Config) Public {
	p := defaults()
	if name := strings.TrimSpace(cfg.UI.SiteName); name != "" {
		p.SiteName = name
	}
	if env := strings.TrimSpace(cfg.Upstream.APIKeyEnv); env != "" {
		p.SecretEnv = env
	}
	p.UpstreamBaseURL = cfg.Upstream.BaseURL
	return p
}

// Publish replaces the snapshot.
func Publish(p Public, updatedAt time.Time) {
	p.UpdatedAt = updatedAt.UTC()
	current.Store(p)
}

// Current returns the latest snapshot.
func Current() Public {
	p, ok := current.Load().(Public)
	if !ok {
		return defaults()
	}
	return p
}
