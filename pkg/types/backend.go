package types

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Document is a stored row in its backend-neutral form. Data holds the full
// JSON encoding of the entity; Number and Recycled are copied out of it so
// backends can order and index without decoding.
type Document struct {
	Table     string          `json:"table" msgpack:"table"`
	ID        string          `json:"id" msgpack:"id"`
	Number    int             `json:"number" msgpack:"number"`
	Recycled  bool            `json:"recycled" msgpack:"recycled"`
	Data      json.RawMessage `json:"data" msgpack:"data"`
	UpdatedAt time.Time       `json:"updated_at" msgpack:"updated_at"`
}

// Backend stores documents grouped by table. Load returns a table's
// documents ordered by Number ascending, which is insertion order.
type Backend interface {
	// Attach opens connections and prepares the schema.
	Attach(ctx context.Context) error

	// Detach releases resources. Idempotent.
	Detach() error

	// Load returns every document of a table, recycled ones included.
	Load(ctx context.Context, table string) ([]Document, error)

	// Get returns one document. Returns ErrNotFound if absent.
	Get(ctx context.Context, table, id string) (Document, error)

	// Put inserts or replaces a document by (Table, ID).
	Put(ctx context.Context, doc Document) error

	// Remove deletes documents by ID. Missing IDs are ignored.
	Remove(ctx context.Context, table string, ids ...string) error
}

// DocumentFromRecord encodes a record into a Document for table.
func DocumentFromRecord(table string, r Record) (Document, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return Document{}, fmt.Errorf("encoding %s row: %w", table, err)
	}
	m := r.Meta()
	return Document{
		Table:     table,
		ID:        m.ID,
		Number:    m.Number,
		Recycled:  m.RecycledAt != nil,
		Data:      data,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// DocumentFromJSON builds a Document from a raw JSON row, as found in a
// snapshot line. Returns ErrInvalidID if the row has no id.
func DocumentFromJSON(table string, raw json.RawMessage) (Document, error) {
	var head struct {
		ID         string     `json:"id"`
		Number     int        `json:"number"`
		UpdatedAt  time.Time  `json:"updated_at"`
		RecycledAt *time.Time `json:"recycled_at"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if head.ID == "" {
		return Document{}, ErrInvalidID
	}
	return Document{
		Table:     table,
		ID:        head.ID,
		Number:    head.Number,
		Recycled:  head.RecycledAt != nil,
		Data:      raw,
		UpdatedAt: head.UpdatedAt,
	}, nil
}
