// Package memstore implements the in-memory storage backend. Rows live only
// as long as the process.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/mesh-intelligence/backstage/pkg/types"
)

// Compile-time interface check.
var _ types.Backend = (*Store)(nil)

// Store keeps documents per table in insertion order.
type Store struct {
	mu       sync.RWMutex
	attached bool
	tables   map[string][]types.Document
}

// New returns an empty, unattached store.
func New() *Store {
	return &Store{tables: make(map[string][]types.Document)}
}

// Attach marks the store ready. Data survives Detach/Attach cycles on the
// same Store value.
func (s *Store) Attach(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = true
	return nil
}

// Detach marks the store closed. Idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = false
	return nil
}

// Load returns a copy of the table's documents ordered by number.
func (s *Store) Load(_ context.Context, table string) ([]types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return nil, types.ErrConsoleDetached
	}
	docs := slices.Clone(s.tables[table])
	slices.SortStableFunc(docs, func(a, b types.Document) int {
		return a.Number - b.Number
	})
	return docs, nil
}

// Get returns one document by ID.
func (s *Store) Get(_ context.Context, table, id string) (types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return types.Document{}, types.ErrConsoleDetached
	}
	for _, d := range s.tables[table] {
		if d.ID == id {
			return d, nil
		}
	}
	return types.Document{}, types.ErrNotFound
}

// Put replaces the document with the same ID or appends a new one.
func (s *Store) Put(_ context.Context, doc types.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return types.ErrConsoleDetached
	}
	docs := s.tables[doc.Table]
	for i := range docs {
		if docs[i].ID == doc.ID {
			docs[i] = doc
			return nil
		}
	}
	s.tables[doc.Table] = append(docs, doc)
	return nil
}

// Remove deletes documents by ID.
func (s *Store) Remove(_ context.Context, table string, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return types.ErrConsoleDetached
	}
	if len(ids) == 0 {
		return nil
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	s.tables[table] = slices.DeleteFunc(s.tables[table], func(d types.Document) bool {
		_, ok := drop[d.ID]
		return ok
	})
	return nil
}
