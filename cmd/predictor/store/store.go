// Package store selects the snapshot storage backend from configuration.
package store

import (
	"log/slog"
	"os"
	"time"

	"github.com/defectcast/defectcast/cmd/predictor/config"
	"github.com/defectcast/defectcast/pkg/storage"
)

// New creates the configured snapshot store (memory or redis).
func New(cfg *config.Config, logger *slog.Logger) storage.Store {
	switch cfg.Storage {
	case "redis":
		logger.Info("using redis snapshot store", "addr", cfg.RedisAddr, "db", cfg.RedisDB, "ttl", cfg.SnapshotTTL)
		s, err := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SnapshotTTL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		return s

	case "memory":
		logger.Info("using in-memory snapshot store", "ttl", cfg.SnapshotTTL)
		return storage.NewMemoryStoreWithTTL(cfg.SnapshotTTL, time.Minute)

	default:
		logger.Error("invalid storage backend", "storage", cfg.Storage)
		os.Exit(1)
	}

	return nil
}
