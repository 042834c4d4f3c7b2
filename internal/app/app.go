// Package app wires configuration, storage and HTTP routes into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/router-for-me/GraphQLTester/internal/config"
	"github.com/router-for-me/GraphQLTester/internal/db"
	internalhttp "github.com/router-for-me/GraphQLTester/internal/http"
	"github.com/router-for-me/GraphQLTester/internal/http/api/tester"
	"github.com/router-for-me/GraphQLTester/internal/logging"
	"github.com/router-for-me/GraphQLTester/internal/relay"
	"github.com/router-for-me/GraphQLTester/internal/security"
	"github.com/router-for-me/GraphQLTester/internal/session"
	"github.com/router-for-me/GraphQLTester/internal/settings"
	"github.com/router-for-me/GraphQLTester/internal/snippet"
	"github.com/router-for-me/GraphQLTester/internal/store"
	"github.com/router-for-me/GraphQLTester/internal/util"
	"github.com/router-for-me/GraphQLTester/internal/webui"
	"github.com/router-for-me/GraphQLTester/internal/workbench"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

var errMissingJWTSecret = errors.New("app: jwt.secret is not configured")

// slotBackend is an opened slot store with its health check and cleanup.
type slotBackend struct {
	slots store.Slots
	ping  internalhttp.Pinger
	close func() error
}

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	conf, errLoad := config.Load(config.ResolveConfigPath(cfg.ConfigPath))
	if errLoad != nil {
		return errLoad
	}
	if conf.Storage.Backend != config.StorageGorm {
		log.Infof("storage backend %s needs no migration", conf.Storage.Backend)
		return nil
	}
	conn, errOpen := db.Open(conf.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if sqlDB, errDB := conn.DB(); errDB == nil {
		defer func() { _ = sqlDB.Close() }()
	}
	return db.Migrate(conn.WithContext(ctx))
}

// IssueToken mints a session token signed with the configured secret.
func IssueToken(cfg config.AppConfig, userID, companyID string, ttl time.Duration) (string, error) {
	conf, errLoad := config.Load(config.ResolveConfigPath(cfg.ConfigPath))
	if errLoad != nil {
		return "", errLoad
	}
	if strings.TrimSpace(conf.JWT.Secret) == "" {
		return "", errMissingJWTSecret
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("app: user id is required")
	}
	return security.GenerateToken(conf.JWT.Secret, userID, companyID, ttl)
}

// RunServer boots the tester server and blocks until ctx is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	conf, errLoad := config.Load(configPath)
	if errLoad != nil {
		return errLoad
	}
	logCloser, errLogging := logging.Setup(conf.Logging)
	if errLogging != nil {
		return errLogging
	}
	defer closeQuietly(logCloser, "log file")
	if errSecret := conf.EnsureJWTSecret(); errSecret != nil {
		return errSecret
	}
	if conf.Upstream.APIKey == "" {
		log.Warnf("upstream secret %s is empty, requests will be sent without credentials", conf.Upstream.APIKeyEnv)
	} else {
		log.Infof("upstream secret loaded from %s (%s)", conf.Upstream.APIKeyEnv, util.HideAPIKey(conf.Upstream.APIKey))
	}

	backend, errSlots := openSlots(ctx, conf)
	if errSlots != nil {
		return errSlots
	}
	defer func() {
		if errClose := backend.close(); errClose != nil {
			log.WithError(errClose).Warn("close slot store failed")
		}
	}()

	engine, errEngine := buildEngine(conf, backend)
	if errEngine != nil {
		return errEngine
	}

	server := &http.Server{
		Addr:              conf.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Infof("starting graphql tester on %s with config=%s", conf.Server.Addr, configPath)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			return errServe
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down graphql tester")
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// buildEngine assembles the gin engine with every route mounted.
func buildEngine(conf config.Config, backend slotBackend) (*gin.Engine, error) {
	webBundle, errBundle := webui.Load()
	if errBundle != nil {
		return nil, errBundle
	}
	client, errClient := relay.NewClient(relay.Config{
		BaseURL: conf.Upstream.BaseURL,
		APIKey:  conf.Upstream.APIKey,
	})
	if errClient != nil {
		return nil, errClient
	}
	settings.Publish(settings.FromConfig(conf), time.Now())

	if mode := strings.TrimSpace(conf.Server.GinMode); mode != "" {
		gin.SetMode(mode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), logging.RequestLogger(internalhttp.ContextUserIDKey))

	verifier := session.NewJWTVerifier(conf.JWT.Secret, conf.JWT.Header)
	internalhttp.RegisterOpsRoutes(engine, backend.ping)
	tester.RegisterTesterRoutes(engine, tester.Deps{
		Verifier: verifier,
		Registry: workbench.NewRegistry(backend.slots, conf.Server.IdleTTL),
		Sender:   relay.NewAction(verifier, client),
		Snippets: snippet.Options{
			BaseURL:   client.BaseURL(),
			SecretEnv: conf.Upstream.APIKeyEnv,
		},
		RequestsPerMinute: conf.RateLimit.RequestsPerMinute,
	})
	webui.Register(engine, webBundle, func() string { return settings.Current().SiteName })
	return engine, nil
}

// openSlots opens the configured slot backend.
func openSlots(ctx context.Context, conf config.Config) (slotBackend, error) {
	switch conf.Storage.Backend {
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if errPing := client.Ping(ctx).Err(); errPing != nil {
			_ = client.Close()
			return slotBackend{}, fmt.Errorf("app: redis ping: %w", errPing)
		}
		return slotBackend{
			slots: store.NewRedisSlots(client, conf.Redis.Prefix),
			ping:  func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close: client.Close,
		}, nil
	case config.StorageMemory:
		log.Warn("memory slot store selected, drafts and history are lost on restart")
		return slotBackend{slots: store.NewMemorySlots(), close: func() error { return nil }}, nil
	default:
		conn, errOpen := db.Open(conf.Database.DSN)
		if errOpen != nil {
			return slotBackend{}, errOpen
		}
		if errMigrate := db.Migrate(conn); errMigrate != nil {
			return slotBackend{}, errMigrate
		}
		sqlDB, errDB := conn.DB()
		if errDB != nil {
			return slotBackend{}, errDB
		}
		return slotBackend{
			slots: store.NewGormSlots(conn),
			ping:  sqlDB.PingContext,
			close: sqlDB.Close,
		}, nil
	}
}

// closeQuietly closes c and logs failures.
func closeQuietly(c io.Closer, what string) {
	if c == nil {
		return
	}
	if errClose := c.Close(); errClose != nil {
		log.WithError(errClose).Warnf("close %s failed", what)
	}
}
