package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if errWrite := os.WriteFile(path, []byte(body), 0o600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}
	return path
}

func TestResolveConfigPathPrecedence(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/gqltester.yaml")
	if got := ResolveConfigPath(" custom.yaml "); got != "custom.yaml" {
		t.Fatalf("expected flag to win, got %q", got)
	}
	if got := ResolveConfigPath(""); got != "/etc/gqltester.yaml" {
		t.Fatalf("expected env path, got %q", got)
	}
	t.Setenv(EnvConfigPath, "")
	if got := ResolveConfigPath(""); got != DefaultConfigFile {
		t.Fatalf("expected default path, got %q", got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GQLTESTER_WRITABLE_PATH", "")
	t.Setenv("WRITABLE_PATH", "")
	t.Setenv("writable_path", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, 30*time.Minute, cfg.Server.IdleTTL)
	require.Equal(t, StorageGorm, cfg.Storage.Backend)
	require.Equal(t, "X-User-Token", cfg.JWT.Header)
	require.Equal(t, "GRAPHQL_API_KEY", cfg.Upstream.APIKeyEnv)
	require.Equal(t, "gqltester.db", cfg.Database.DSN)
}

func TestLoadReadsFileAndSecretFromNamedEnv(t *testing.T) {
	t.Setenv("UPSTREAM_KEY", "sk-from-env")
	path := writeConfig(t, `
server:
  addr: ":9090"
  idle_ttl: 5m
storage:
  backend: Redis
redis:
  addr: "redis:6379"
  db: 2
upstream:
  base_url: "https://api.example.com/"
  api_key_env: UPSTREAM_KEY
rate_limit:
  requests_per_minute: 30
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, 5*time.Minute, cfg.Server.IdleTTL)
	require.Equal(t, StorageRedis, cfg.Storage.Backend)
	require.Equal(t, "redis:6379", cfg.Redis.Addr)
	require.Equal(t, 2, cfg.Redis.DB)
	require.Equal(t, "https://api.example.com", cfg.Upstream.BaseURL)
	require.Equal(t, "sk-from-env", cfg.Upstream.APIKey)
	require.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	// Fields absent from the file keep their defaults.
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvJWTSecret, "env-secret")
	t.Setenv(EnvDatabaseDSN, "postgres://u:p@db/app")
	path := writeConfig(t, "jwt:\n  secret: file-secret\ndatabase:\n  dsn: file.db\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "env-secret", cfg.JWT.Secret)
	require.Equal(t, "postgres://u:p@db/app", cfg.Database.DSN)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: etcd\n")
	_, err := Load(path)
	require.ErrorIs(t, err, errUnknownStorage)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEnsureJWTSecret(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.EnsureJWTSecret())
	require.Len(t, cfg.JWT.Secret, 64)

	cfg.JWT.Secret = "fixed"
	require.NoError(t, cfg.EnsureJWTSecret())
	require.Equal(t, "fixed", cfg.JWT.Secret)
}
