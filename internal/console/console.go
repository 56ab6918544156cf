// Package console implements the admin tables over a storage backend.
// A Console attaches a backend, optionally seeds it, and hands out one
// generic Collection per standard table.
package console

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/backstage/internal/metrics"
	"github.com/mesh-intelligence/backstage/internal/snapshot"
	"github.com/mesh-intelligence/backstage/internal/storage"
	"github.com/mesh-intelligence/backstage/pkg/types"
)

// Console implements types.Console.
type Console struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	backend  types.Backend
	tables   map[string]types.Table

	logger  zerolog.Logger
	metrics *metrics.Collector
	open    func(types.Config) (types.Backend, error)
}

// Compile-time interface check.
var _ types.Console = (*Console)(nil)

// Option configures a Console.
type Option func(*Console)

// WithLogger sets the logger handed to every table.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Console) { c.logger = l }
}

// WithMetrics records table operations on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Console) { c.metrics = m }
}

// WithBackend makes Attach use b instead of building a backend from the
// config.
func WithBackend(b types.Backend) Option {
	return func(c *Console) {
		c.open = func(types.Config) (types.Backend, error) { return b, nil }
	}
}

// New creates an unattached console.
func New(opts ...Option) *Console {
	c := &Console{
		logger: zerolog.Nop(),
		open:   storage.New,
		tables: make(map[string]types.Table),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attach opens the configured backend, seeds empty tables when config.Seed
// is set, and registers the standard tables.
// Returns ErrAlreadyAttached if already attached.
func (c *Console) Attach(config types.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	backend, err := c.open(config)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := backend.Attach(ctx); err != nil {
		return fmt.Errorf("attaching %s backend: %w", config.Backend, err)
	}

	if config.Seed {
		counts, err := snapshot.Seed(ctx, backend, types.StandardTableNames)
		if err != nil {
			backend.Detach()
			return fmt.Errorf("seeding: %w", err)
		}
		for table, n := range counts {
			c.logger.Debug().Str("table", table).Int("rows", n).Msg("seeded")
		}
	}

	c.backend = backend
	c.config = config
	c.tables = c.newTables(backend)
	c.attached = true
	c.logger.Info().Str("backend", config.Backend).Msg("console attached")
	return nil
}

func (c *Console) newTables(b types.Backend) map[string]types.Table {
	l, m := c.logger, c.metrics
	return map[string]types.Table{
		types.TableUsers:    NewCollection[types.User](userTable, b, l, m),
		types.TableRooms:    NewCollection[types.Room](roomTable, b, l, m),
		types.TableGifts:    NewCollection[types.Gift](giftTable, b, l, m),
		types.TablePayments: NewCollection[types.Payment](paymentTable, b, l, m),
		types.TableAgents:   NewCollection[types.Agent](agentTable, b, l, m),
		types.TableReports:  NewCollection[types.Report](reportTable, b, l, m),
		types.TableSettings: NewCollection[types.Setting](settingTable, b, l, m),
		types.TableBanks:    NewCollection[types.Bank](bankTable, b, l, m),
	}
}

// Detach releases the backend. Idempotent.
func (c *Console) Detach() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.attached {
		return nil
	}
	c.attached = false
	c.tables = make(map[string]types.Table)
	err := c.backend.Detach()
	c.backend = nil
	c.logger.Info().Msg("console detached")
	return err
}

// GetTable returns the named table.
func (c *Console) GetTable(name string) (types.Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.attached {
		return nil, types.ErrConsoleDetached
	}
	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrTableNotFound, name)
	}
	return t, nil
}

// TableNames lists the registered tables alphabetically.
func (c *Console) TableNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Backend returns the attached backend, for snapshot export and import.
func (c *Console) Backend() (types.Backend, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.attached {
		return nil, types.ErrConsoleDetached
	}
	return c.backend, nil
}
