// Package storagetest holds the conformance suite every storage backend
// runs from its own tests.
package storagetest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/backstage/pkg/types"
)

// Factory returns a fresh, unattached backend. Cleanup is the factory's job.
type Factory func(t *testing.T) types.Backend

// Doc builds a small document for table with the given id and number.
func Doc(table, id string, number int) types.Document {
	data, _ := json.Marshal(map[string]any{"id": id, "number": number, "name": fmt.Sprintf("row %d", number)})
	return types.Document{
		Table:     table,
		ID:        id,
		Number:    number,
		Data:      data,
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, number, 0, time.UTC),
	}
}

func ids(docs []types.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

// Run exercises the Backend contract against backends made by newBackend.
func Run(t *testing.T, newBackend Factory) {
	ctx := context.Background()

	attached := func(t *testing.T) types.Backend {
		t.Helper()
		b := newBackend(t)
		require.NoError(t, b.Attach(ctx))
		t.Cleanup(func() { _ = b.Detach() })
		return b
	}

	t.Run("empty table loads nothing", func(t *testing.T) {
		b := attached(t)
		docs, err := b.Load(ctx, "users")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("load orders by number", func(t *testing.T) {
		b := attached(t)
		require.NoError(t, b.Put(ctx, Doc("users", "c", 3)))
		require.NoError(t, b.Put(ctx, Doc("users", "a", 1)))
		require.NoError(t, b.Put(ctx, Doc("users", "b", 2)))

		docs, err := b.Load(ctx, "users")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, ids(docs))
	})

	t.Run("tables are isolated", func(t *testing.T) {
		b := attached(t)
		require.NoError(t, b.Put(ctx, Doc("users", "u1", 1)))
		require.NoError(t, b.Put(ctx, Doc("gifts", "g1", 1)))

		docs, err := b.Load(ctx, "gifts")
		require.NoError(t, err)
		assert.Equal(t, []string{"g1"}, ids(docs))

		_, err = b.Get(ctx, "gifts", "u1")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("put replaces by id", func(t *testing.T) {
		b := attached(t)
		require.NoError(t, b.Put(ctx, Doc("banks", "x", 1)))

		updated := Doc("banks", "x", 1)
		updated.Recycled = true
		updated.Data = json.RawMessage(`{"id":"x","number":1,"name":"renamed"}`)
		require.NoError(t, b.Put(ctx, updated))

		docs, err := b.Load(ctx, "banks")
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.True(t, docs[0].Recycled)
		assert.JSONEq(t, `{"id":"x","number":1,"name":"renamed"}`, string(docs[0].Data))
	})

	t.Run("get round-trips fields", func(t *testing.T) {
		b := attached(t)
		want := Doc("agents", "ag", 9)
		require.NoError(t, b.Put(ctx, want))

		got, err := b.Get(ctx, "agents", "ag")
		require.NoError(t, err)
		assert.Equal(t, want.Table, got.Table)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Number, got.Number)
		assert.Equal(t, want.Recycled, got.Recycled)
		assert.JSONEq(t, string(want.Data), string(got.Data))
		assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
	})

	t.Run("get missing", func(t *testing.T) {
		b := attached(t)
		_, err := b.Get(ctx, "agents", "nope")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("remove ignores unknown ids", func(t *testing.T) {
		b := attached(t)
		for i, id := range []string{"r1", "r2", "r3"} {
			require.NoError(t, b.Put(ctx, Doc("reports", id, i+1)))
		}
		require.NoError(t, b.Remove(ctx, "reports", "r1", "r3", "missing"))

		docs, err := b.Load(ctx, "reports")
		require.NoError(t, err)
		assert.Equal(t, []string{"r2"}, ids(docs))

		require.NoError(t, b.Remove(ctx, "reports"))
	})
}
