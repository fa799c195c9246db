package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MrSnakeDoc/favorg/internal/config"
	"github.com/MrSnakeDoc/favorg/internal/index"
	"github.com/MrSnakeDoc/favorg/internal/logger"
	"github.com/MrSnakeDoc/favorg/internal/redis"
	"github.com/MrSnakeDoc/favorg/internal/service"
	redisstore "github.com/MrSnakeDoc/favorg/internal/store/redis"
	sqlstore "github.com/MrSnakeDoc/favorg/internal/store/sql"
	"github.com/MrSnakeDoc/favorg/internal/validator"
)

// OpenStore connects the backend selected by cfg.Store. The caller owns the
// returned store and must Close it.
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (service.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("using in-memory store, bookmarks are lost on restart")
		return index.NewMemoryIndex(), nil

	case config.StoreSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		log.Info("opening sqlite store", logger.String("path", cfg.SQLitePath))
		return sqlstore.Open(ctx, sqlstore.DriverSQLite, cfg.SQLitePath)

	case config.StorePostgres:
		log.Info("opening postgres store")
		return sqlstore.Open(ctx, sqlstore.DriverPostgres, cfg.DatabaseURL)

	case config.StoreRedis:
		// fail fast if unavailable
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("Redis initialized successfully")
		return redisstore.NewStore(client), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// NewValidator builds the link validator from cfg.
func NewValidator(cfg *config.Config, log logger.Logger, opts ...validator.Option) *validator.Validator {
	return validator.New(validator.Options{
		Timeout:       cfg.ValidateTimeout,
		Concurrency:   cfg.ValidateConcurrency,
		Deadline:      cfg.ValidateDeadline,
		UserAgent:     cfg.UserAgent,
		SkipTLSVerify: cfg.SkipTLSValidation,
	}, log, opts...)
}
