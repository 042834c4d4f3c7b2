// Package config loads the YAML configuration file and applies defaults and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/router-for-me/GraphQLTester/internal/security"
	"github.com/router-for-me/GraphQLTester/internal/session"
	"github.com/router-for-me/GraphQLTester/internal/snippet"
	"github.com/router-for-me/GraphQLTester/internal/util"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath names the environment variable holding the config path.
	EnvConfigPath = "GQLTESTER_CONFIG"
	// EnvJWTSecret overrides jwt.secret.
	EnvJWTSecret = "GQLTESTER_JWT_SECRET"
	// EnvDatabaseDSN overrides database.dsn.
	EnvDatabaseDSN = "GQLTESTER_DATABASE_DSN"
	// DefaultConfigFile is used when neither flag nor environment names a file.
	DefaultConfigFile = "config.yaml"
)

// Storage backends.
const (
	StorageGorm   = "gorm"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

var errUnknownStorage = errors.New("config: unknown storage backend")

// AppConfig carries process-level options from the command line.
type AppConfig struct {
	ConfigPath string
}

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	JWT       JWTConfig       `yaml:"jwt"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	UI        UIConfig        `yaml:"ui"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	GinMode string `yaml:"gin_mode"`
	// IdleTTL drops a user's in-memory workbench after this long without
	// requests. Zero keeps workbenches for the life of the process.
	IdleTTL time.Duration `yaml:"idle_ttl"`
}

// DatabaseConfig configures the SQL slot backend.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig configures the Redis slot backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// StorageConfig selects the slot backend.
type StorageConfig struct {
	Backend string `yaml:"backend"`
}

// JWTConfig configures session token verification.
type JWTConfig struct {
	Secret string `yaml:"secret"`
	Header string `yaml:"header"`
}

// UpstreamConfig points the relay at the GraphQL API.
type UpstreamConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	// APIKey is read from the variable named by APIKeyEnv and never from the file.
	APIKey string `yaml:"-"`
}

// LoggingConfig configures logrus output and rotation.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// RateLimitConfig throttles sends per identity. Zero disables it.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// UIConfig holds values shown by the embedded page.
type UIConfig struct {
	SiteName string `yaml:"site_name"`
}

// Default returns a configuration with every field defaulted.
func Default() Config {
	dsn := "gqltester.db"
	if writable := util.WritablePath(); writable != "" {
		dsn = filepath.Join(writable, dsn)
	}
	return Config{
		Server:   ServerConfig{Addr: ":8080", GinMode: "release", IdleTTL: 30 * time.Minute},
		Database: DatabaseConfig{DSN: dsn},
		Redis:    RedisConfig{Addr: "127.0.0.1:6379"},
		Storage:  StorageConfig{Backend: StorageGorm},
		JWT:      JWTConfig{Header: session.DefaultHeader},
		Upstream: UpstreamConfig{APIKeyEnv: snippet.DefaultSecretEnv},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		UI: UIConfig{SiteName: "GraphQL Tester"},
	}
}

// ResolveConfigPath picks the flag value, then GQLTESTER_CONFIG, then config.yaml.
func ResolveConfigPath(flagValue string) string {
	if path := strings.TrimSpace(flagValue); path != "" {
		return path
	}
	if path := strings.TrimSpace(os.Getenv(EnvConfigPath)); path != "" {
		return path
	}
	return DefaultConfigFile
}

// Load reads path, applies defaults for missing fields and environment overrides.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, errRead := os.ReadFile(path)
	switch {
	case errRead == nil:
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
		}
	case errors.Is(errRead, os.ErrNotExist):
		log.Warnf("config file %s not found, using defaults", path)
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
	}
	cfg.applyEnv()
	if errNormalize := cfg.normalize(); errNormalize != nil {
		return Config{}, errNormalize
	}
	return cfg, nil
}

// applyEnv overlays environment variables.
func (c *Config) applyEnv() {
	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		c.JWT.Secret = secret
	}
	if dsn := strings.TrimSpace(os.Getenv(EnvDatabaseDSN)); dsn != "" {
		c.Database.DSN = dsn
	}
	c.Upstream.APIKey = strings.TrimSpace(os.Getenv(c.Upstream.APIKeyEnv))
}

// normalize fills blanks left by the file and checks enumerations.
func (c *Config) normalize() error {
	defaults := Default()
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case "":
		c.Storage.Backend = defaults.Storage.Backend
	case StorageGorm, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("%w: %q", errUnknownStorage, c.Storage.Backend)
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if strings.TrimSpace(c.JWT.Header) == "" {
		c.JWT.Header = defaults.JWT.Header
	}
	if strings.TrimSpace(c.Upstream.APIKeyEnv) == "" {
		c.Upstream.APIKeyEnv = defaults.Upstream.APIKeyEnv
		c.Upstream.APIKey = strings.TrimSpace(os.Getenv(c.Upstream.APIKeyEnv))
	}
	c.Upstream.BaseURL = strings.TrimRight(strings.TrimSpace(c.Upstream.BaseURL), "/")
	if c.RateLimit.RequestsPerMinute < 0 {
		c.RateLimit.RequestsPerMinute = 0
	}
	return nil
}

// EnsureJWTSecret generates an ephemeral signing secret when none is configured.
// Tokens signed with it stop verifying after a restart.
func (c *Config) EnsureJWTSecret() error {
	if strings.TrimSpace(c.JWT.Secret) != "" {
		return nil
	}
	secret, errGenerate := security.GenerateSecret(32)
	if errGenerate != nil {
		return fmt.Errorf("config: generate jwt secret: %w", errGenerate)
	}
	c.JWT.Secret = secret
	log.Warn("jwt.secret is empty, using an ephemeral secret")
	return nil
}
