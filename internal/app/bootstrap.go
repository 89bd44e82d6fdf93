package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/checkin/internal/config"
	"github.com/MrSnakeDoc/checkin/internal/engine"
	"github.com/MrSnakeDoc/checkin/internal/httpx"
	"github.com/MrSnakeDoc/checkin/internal/logger"
	"github.com/MrSnakeDoc/checkin/internal/record"
	"github.com/MrSnakeDoc/checkin/internal/redisconn"
	"github.com/MrSnakeDoc/checkin/internal/sites"
	"github.com/MrSnakeDoc/checkin/internal/sites/aliyun"
	"github.com/MrSnakeDoc/checkin/internal/sites/bilibili"
	"github.com/MrSnakeDoc/checkin/internal/sites/github"
	"github.com/MrSnakeDoc/checkin/internal/sites/wps"
	"github.com/MrSnakeDoc/checkin/internal/store"
	filestore "github.com/MrSnakeDoc/checkin/internal/store/file"
	"github.com/MrSnakeDoc/checkin/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/checkin/internal/store/redis"
	sqlitestore "github.com/MrSnakeDoc/checkin/internal/store/sqlite"
)

// Runtime bundles the wired core shared by the server and the CLI
// commands: backend, engine, and credentials.
type Runtime struct {
	Cfg         *config.Config
	Logger      logger.Logger
	Backend     store.Backend
	Engine      *engine.Engine
	Credentials map[string]string

	redisClient *goredis.Client
	sqlite      *sqlitestore.Backend
}

// NewRuntime builds the record backend, the connector registry, and the
// engine from config, then applies the persisted and configured site
// flags.
func NewRuntime(cfg *config.Config, log logger.Logger) (*Runtime, error) {
	rt := &Runtime{Cfg: cfg, Logger: log}

	if err := rt.buildBackend(); err != nil {
		return nil, err
	}

	creds, err := config.LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Credentials = creds.CredentialMap()

	client := httpx.New(httpx.Config{
		Timeout:    cfg.HTTPTimeout,
		Retries:    cfg.HTTPRetries,
		RetryDelay: cfg.HTTPRetryDelay,
	})

	connectors := []sites.Connector{
		bilibili.New(client, log),
		aliyun.New(client, log),
		wps.New(client, log),
		github.New(client, log),
	}

	records := record.New(rt.Backend)
	rt.Engine = engine.New(records, log, connectors,
		engine.WithDelay(cfg.DelayBase, cfg.DelayJitter))

	rt.applySiteFlags(creds)
	return rt, nil
}

func (rt *Runtime) buildBackend() error {
	cfg := rt.Cfg
	switch cfg.StoreBackend {
	case "memory":
		rt.Backend = memory.New()
	case "file":
		rt.Backend = filestore.New(cfg.DataFile)
	case "sqlite":
		b, err := sqlitestore.New(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite backend: %w", err)
		}
		rt.sqlite = b
		rt.Backend = b
	case "redis":
		client, err := redisconn.Connect(redisconn.Options{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, rt.Logger)
		if err != nil {
			return err
		}
		rt.redisClient = client
		rt.Backend = redisstore.New(client)
	default:
		return fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	return nil
}

// applySiteFlags disables sites switched off in the credentials file or
// through a previous enable/disable command.
func (rt *Runtime) applySiteFlags(creds *config.Credentials) {
	for _, id := range creds.DisabledSites() {
		if !rt.Engine.SetEnabled(id, false) {
			rt.Logger.Warn("credentials file disables unknown site", logger.String("site", id))
		}
	}

	persisted, err := store.LoadDisabled(context.Background(), rt.Backend)
	if err != nil {
		rt.Logger.Warn("could not load persisted site flags", logger.Error(err))
		return
	}
	for _, id := range persisted {
		if !rt.Engine.SetEnabled(id, false) {
			rt.Logger.Warn("persisted flag references unknown site", logger.String("site", id))
		}
	}
}

// Close releases backend resources. Safe on a partially built runtime.
func (rt *Runtime) Close() {
	if rt.sqlite != nil {
		if err := rt.sqlite.Close(); err != nil {
			rt.Logger.Warnf("failed to close sqlite: %v", err)
		}
	}
	if rt.redisClient != nil {
		if err := rt.redisClient.Close(); err != nil {
			rt.Logger.Warnf("failed to close redis: %v", err)
		}
	}
}
