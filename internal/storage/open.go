package storage

import (
	"fmt"

	"github.com/ecosystem-hub/internal/config"
	"github.com/ecosystem-hub/internal/logging"
)

// Open builds the store selected by cfg.Backend. When the durable backend
// cannot be reached the store runs in process only and the failure is logged.
func Open(cfg *config.Config, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	backend, err := openBackend(cfg, logger)
	if err != nil {
		logger.WithComponent("storage").
			WithField("backend", cfg.Store.Backend).
			WithError(err).
			Warn("Durable store unavailable, values will not survive a restart")
		return NewStore(nil, logger)
	}

	return NewStore(backend, logger)
}

func openBackend(cfg *config.Config, logger *logging.Logger) (Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return NewMemoryBackend(), nil
	case config.BackendSQLite:
		return NewSQLiteBackend(cfg.Store.SQLitePath, logger)
	case config.BackendRedis:
		return NewRedisBackend(&cfg.Database.Redis, cfg.Store.Namespace)
	case config.BackendPostgres:
		return NewPostgresBackend(&cfg.Database.Postgres)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
