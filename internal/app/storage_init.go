package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordertracker/internal/domain"
	"github.com/vladislavdragonenkov/ordertracker/internal/storage/memory"
	"github.com/vladislavdragonenkov/ordertracker/internal/storage/postgres"
	redisstorage "github.com/vladislavdragonenkov/ordertracker/internal/storage/redis"
	"github.com/vladislavdragonenkov/ordertracker/internal/storage/sqlite"
)

// storageBackend: хранилище, выбранное конфигурацией, и функция его закрытия.
type storageBackend struct {
	storage domain.Storage
	pinger  domain.Pinger
	closeFn func() error
}

func (b storageBackend) close(logger *log.Entry) {
	if b.closeFn == nil {
		return
	}
	if err := b.closeFn(); err != nil {
		logger.WithError(err).Warn("failed to close storage")
	}
}

// initStorage открывает хранилище для cfg.StorageDriver.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (storageBackend, error) {
	logger = logger.WithField("storage_driver", cfg.StorageDriver)

	switch cfg.StorageDriver {
	case StorageDriverMemory:
		storage := memory.NewOrderStorage()
		logger.Warn("using in-memory storage, orders are lost on restart")
		return storageBackend{storage: storage, pinger: storage}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return storageBackend{}, &domain.ConfigurationError{Reason: "postgres dsn is required for postgres storage driver"}
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return storageBackend{}, fmt.Errorf("init postgres storage: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return storageBackend{}, fmt.Errorf("apply postgres migrations: %w", err)
			}
			logger.Info("postgres migrations applied")
		}
		storage := postgres.NewOrderStorage(store)
		return storageBackend{storage: storage, pinger: storage, closeFn: store.Close}, nil

	case StorageDriverSQLite:
		storage, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return storageBackend{}, fmt.Errorf("init sqlite storage: %w", err)
		}
		logger.WithField("path", cfg.SQLitePath).Info("sqlite storage opened")
		return storageBackend{storage: storage, pinger: storage, closeFn: storage.Close}, nil

	case StorageDriverRedis:
		storage, err := redisstorage.Open(ctx, cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return storageBackend{}, fmt.Errorf("init redis storage: %w", err)
		}
		logger.WithField("key", storage.Key()).Info("redis storage connected")
		return storageBackend{storage: storage, pinger: storage, closeFn: storage.Close}, nil

	default:
		return storageBackend{}, &domain.ConfigurationError{Reason: fmt.Sprintf("unsupported storage driver %q", cfg.StorageDriver)}
	}
}
