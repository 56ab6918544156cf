package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/backstage/internal/metrics"
	"github.com/mesh-intelligence/backstage/pkg/query"
	"github.com/mesh-intelligence/backstage/pkg/types"
)

// Definition describes one admin table: its filter keys, the status values
// a row may take, and whether rows are ordered by their sort key.
type Definition[PT types.Record] struct {
	Name          string
	Schema        query.Schema[PT]
	Statuses      []string
	DefaultStatus string
	Sorted        bool
}

// Collection implements types.Table for entity T over a Backend. Rows are
// stored as JSON documents and decoded into *T on every read.
type Collection[T any, PT interface {
	*T
	types.Record
}] struct {
	def     Definition[PT]
	backend types.Backend
	logger  zerolog.Logger
	metrics *metrics.Collector
	now     func() time.Time

	// mu serialises read-modify-write operations.
	mu sync.Mutex
}

// Compile-time interface check.
var _ types.Table = (*Collection[types.User, *types.User])(nil)

// NewCollection creates a collection for def over backend. metrics may be nil.
func NewCollection[T any, PT interface {
	*T
	types.Record
}](def Definition[PT], backend types.Backend, logger zerolog.Logger, m *metrics.Collector) *Collection[T, PT] {
	return &Collection[T, PT]{
		def:     def,
		backend: backend,
		logger:  logger.With().Str("table", def.Name).Logger(),
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Name returns the table name.
func (c *Collection[T, PT]) Name() string { return c.def.Name }

// Filters returns the table's filter keys.
func (c *Collection[T, PT]) Filters() []string { return c.def.Schema.Keys() }

func (c *Collection[T, PT]) observe(op string, err error) {
	c.metrics.ObserveOperation(c.def.Name, op, err)
}

// decode turns a stored document back into an entity.
func (c *Collection[T, PT]) decode(doc types.Document) (PT, error) {
	row := PT(new(T))
	if err := json.Unmarshal(doc.Data, row); err != nil {
		return nil, fmt.Errorf("decoding %s/%s: %w", c.def.Name, doc.ID, err)
	}
	return row, nil
}

// load returns every row of the table in number order. Rows that no longer
// decode are logged and skipped.
func (c *Collection[T, PT]) load(ctx context.Context) ([]PT, error) {
	docs, err := c.backend.Load(ctx, c.def.Name)
	if err != nil {
		return nil, err
	}
	rows := make([]PT, 0, len(docs))
	for _, doc := range docs {
		row, err := c.decode(doc)
		if err != nil {
			c.logger.Warn().Err(err).Str("id", doc.ID).Msg("skipping unreadable row")
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Collection[T, PT]) store(ctx context.Context, row PT) error {
	doc, err := types.DocumentFromRecord(c.def.Name, row)
	if err != nil {
		return err
	}
	return c.backend.Put(ctx, doc)
}

func (c *Collection[T, PT]) get(ctx context.Context, id string) (PT, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	doc, err := c.backend.Get(ctx, c.def.Name, id)
	if err != nil {
		return nil, err
	}
	return c.decode(doc)
}

// Fetch returns a page of active rows.
func (c *Collection[T, PT]) Fetch(ctx context.Context, q types.Query) (types.Page, error) {
	page, err := c.fetch(ctx, q, false)
	c.observe("fetch", err)
	return page, err
}

// FetchRecycled returns a page of recycled rows.
func (c *Collection[T, PT]) FetchRecycled(ctx context.Context, q types.Query) (types.Page, error) {
	page, err := c.fetch(ctx, q, true)
	c.observe("fetch_recycled", err)
	return page, err
}

func (c *Collection[T, PT]) fetch(ctx context.Context, q types.Query, recycled bool) (types.Page, error) {
	where, err := query.CompileExpression(q.Where)
	if err != nil {
		return types.Page{}, fmt.Errorf("%w: %v", types.ErrInvalidFilter, err)
	}

	rows, err := c.load(ctx)
	if err != nil {
		return types.Page{}, err
	}

	preds := []query.Predicate[PT]{
		func(r PT) bool { return r.Meta().Recycled() == recycled },
	}
	preds = append(preds, c.def.Schema.Compile(query.State(q.Filters))...)
	preds = append(preds, query.Where(where, rowEnv[PT]))
	rows = query.Apply(rows, preds...)

	if c.def.Sorted {
		query.SortBySort(rows, func(r PT) int { return r.Meta().Sort })
	}

	p := query.Paginate(rows, query.Window{Page: q.Page, PerPage: q.PerPage})
	data := make([]any, len(p.Data))
	for i, r := range p.Data {
		data[i] = r
	}
	return types.Page{Data: data, Total: p.Total, Page: p.Page, PerPage: p.PerPage}, nil
}

// rowEnv exposes a row to an advanced filter by its JSON field names.
func rowEnv[PT types.Record](r PT) map[string]any {
	env := map[string]any{}
	b, err := json.Marshal(r)
	if err != nil {
		return env
	}
	_ = json.Unmarshal(b, &env)
	return env
}

// Get returns the row with id, recycled or not.
func (c *Collection[T, PT]) Get(ctx context.Context, id string) (any, error) {
	row, err := c.get(ctx, id)
	c.observe("get", err)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Create adds a row built from payload. The id, number and timestamps are
// assigned here; client-supplied values for them are dropped.
func (c *Collection[T, PT]) Create(ctx context.Context, payload map[string]any) (any, error) {
	row, err := c.create(ctx, payload)
	c.observe("create", err)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (c *Collection[T, PT]) create(ctx context.Context, payload map[string]any) (PT, error) {
	row := PT(new(T))
	if err := decodeInto(stripImmutable(payload), row); err != nil {
		return nil, err
	}
	meta := row.Meta()
	if meta.Status == "" {
		meta.Status = c.def.DefaultStatus
	}
	if err := checkRecord(row, c.def.Statuses); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	next := 1
	for _, r := range existing {
		if n := r.Meta().Number; n >= next {
			next = n + 1
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating id: %w", err)
	}
	now := c.now()
	meta.ID = id.String()
	meta.Number = next
	meta.CreatedAt = now
	meta.UpdatedAt = now
	meta.RecycledAt = nil

	if err := c.store(ctx, row); err != nil {
		return nil, err
	}
	c.logger.Debug().Str("id", meta.ID).Int("number", next).Msg("row created")
	return row, nil
}

// Update merges patch onto the row with id. Keys absent from patch keep
// their values; immutable keys are ignored.
func (c *Collection[T, PT]) Update(ctx context.Context, id string, patch map[string]any) error {
	err := c.update(ctx, id, patch)
	c.observe("update", err)
	return err
}

func (c *Collection[T, PT]) update(ctx context.Context, id string, patch map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	row, err := c.get(ctx, id)
	if err != nil {
		return err
	}
	if err := decodeInto(stripImmutable(patch), row); err != nil {
		return err
	}
	if err := checkRecord(row, c.def.Statuses); err != nil {
		return err
	}
	row.Meta().UpdatedAt = c.now()
	if err := c.store(ctx, row); err != nil {
		return err
	}
	c.logger.Debug().Str("id", id).Int("keys", len(patch)).Msg("row updated")
	return nil
}

// Delete permanently removes the row with id.
func (c *Collection[T, PT]) Delete(ctx context.Context, id string) error {
	err := c.delete(ctx, id)
	c.observe("delete", err)
	return err
}

func (c *Collection[T, PT]) delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.get(ctx, id); err != nil {
		return err
	}
	if err := c.backend.Remove(ctx, c.def.Name, id); err != nil {
		return err
	}
	c.logger.Debug().Str("id", id).Msg("row deleted")
	return nil
}

// BatchDelete permanently removes every listed row. Unknown IDs are skipped.
func (c *Collection[T, PT]) BatchDelete(ctx context.Context, ids []string) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	c.mu.Lock()
	err := c.backend.Remove(ctx, c.def.Name, ids...)
	c.mu.Unlock()
	c.observe("batch_delete", err)
	if err == nil {
		c.logger.Debug().Int("count", len(ids)).Msg("rows deleted")
	}
	return err
}

// Recycle moves active rows to the recycle bin. Unknown and already
// recycled IDs are skipped.
func (c *Collection[T, PT]) Recycle(ctx context.Context, ids []string) error {
	err := c.eachRow(ctx, ids, func(row PT) bool {
		meta := row.Meta()
		if meta.Recycled() {
			return false
		}
		now := c.now()
		meta.RecycledAt = &now
		meta.UpdatedAt = now
		return true
	})
	c.observe("recycle", err)
	return err
}

// Restore moves recycled rows back to the active set. Unknown and active
// IDs are skipped.
func (c *Collection[T, PT]) Restore(ctx context.Context, ids []string) error {
	err := c.eachRow(ctx, ids, func(row PT) bool {
		meta := row.Meta()
		if !meta.Recycled() {
			return false
		}
		meta.RecycledAt = nil
		meta.UpdatedAt = c.now()
		return true
	})
	c.observe("restore", err)
	return err
}

// Purge permanently removes recycled rows. Active rows are left alone.
func (c *Collection[T, PT]) Purge(ctx context.Context, ids []string) error {
	err := c.purge(ctx, ids)
	c.observe("purge", err)
	return err
}

func (c *Collection[T, PT]) purge(ctx context.Context, ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var doomed []string
	for _, id := range uniqueIDs(ids) {
		row, err := c.get(ctx, id)
		if errors.Is(err, types.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if row.Meta().Recycled() {
			doomed = append(doomed, id)
		}
	}
	if len(doomed) == 0 {
		return nil
	}
	if err := c.backend.Remove(ctx, c.def.Name, doomed...); err != nil {
		return err
	}
	c.logger.Debug().Int("count", len(doomed)).Msg("rows purged")
	return nil
}

// eachRow applies change to each listed row under the lock and stores the
// rows change reports as modified.
func (c *Collection[T, PT]) eachRow(ctx context.Context, ids []string, change func(PT) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range uniqueIDs(ids) {
		row, err := c.get(ctx, id)
		if errors.Is(err, types.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if !change(row) {
			continue
		}
		if err := c.store(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of active rows.
func (c *Collection[T, PT]) Count(ctx context.Context) (int, error) {
	rows, err := c.load(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range rows {
		if !r.Meta().Recycled() {
			n++
		}
	}
	return n, nil
}

// uniqueIDs drops blanks and duplicates, keeping first occurrences.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
