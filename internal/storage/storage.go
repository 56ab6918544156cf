// Package storage selects and builds the Backend named by a Config.
package storage

import (
	"fmt"

	"github.com/mesh-intelligence/backstage/internal/storage/memstore"
	"github.com/mesh-intelligence/backstage/internal/storage/redisstore"
	"github.com/mesh-intelligence/backstage/internal/storage/sqlstore"
	"github.com/mesh-intelligence/backstage/pkg/types"
)

// New returns an unattached backend for cfg.Backend. The config is
// validated first.
func New(cfg types.Config) (types.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case types.BackendMemory:
		return memstore.New(), nil
	case types.BackendSQLite:
		return sqlstore.NewSQLite(cfg.DataDir), nil
	case types.BackendPostgres:
		return sqlstore.NewPostgres(cfg.Postgres.DSN), nil
	case types.BackendRedis:
		return redisstore.New(cfg.Redis), nil
	}
	return nil, fmt.Errorf("%w: %s", types.ErrBackendUnknown, cfg.Backend)
}
