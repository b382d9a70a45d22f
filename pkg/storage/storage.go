// Package storage provides the durable client-local key/value store backing
// cart persistence and the remembered customer name. Writes replace the whole
// value; concurrent writers are last-writer-wins with no locking.
package storage

import (
	"context"
	"fmt"

	"github.com/smartcafe/smartcafe-client/pkg/config"
	"github.com/smartcafe/smartcafe-client/pkg/logger"
)

// Store is the durable storage surface. Get reports presence explicitly so an
// absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds the configured backend.
func Open(ctx context.Context, cfg config.StorageConfig, redisCfg config.RedisConfig, logg *logger.Logger) (Store, error) {
	switch cfg.Backend {
	case config.StorageBackendSQLite:
		return OpenSQLite(ctx, cfg.Path, logg)
	case config.StorageBackendRedis:
		return OpenRedis(ctx, redisCfg, logg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
