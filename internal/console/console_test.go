package console

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/backstage/internal/storage/memstore"
	"github.com/mesh-intelligence/backstage/internal/storage/sqlstore"
	"github.com/mesh-intelligence/backstage/pkg/types"
)

func TestConsoleLifecycle(t *testing.T) {
	c := New()

	_, err := c.GetTable(types.TableUsers)
	assert.ErrorIs(t, err, types.ErrConsoleDetached)

	assert.ErrorIs(t, c.Attach(types.Config{}), types.ErrBackendEmpty)

	require.NoError(t, c.Attach(types.Config{Backend: types.BackendMemory}))
	assert.ErrorIs(t, c.Attach(types.Config{Backend: types.BackendMemory}), types.ErrAlreadyAttached)
	assert.Equal(t, types.StandardTableNames, c.TableNames())

	_, err = c.GetTable("widgets")
	assert.ErrorIs(t, err, types.ErrTableNotFound)

	for _, name := range types.StandardTableNames {
		table, err := c.GetTable(name)
		require.NoError(t, err)
		assert.Equal(t, name, table.Name())
	}

	require.NoError(t, c.Detach())
	require.NoError(t, c.Detach())
	_, err = c.GetTable(types.TableUsers)
	assert.ErrorIs(t, err, types.ErrConsoleDetached)
	_, err = c.Backend()
	assert.ErrorIs(t, err, types.ErrConsoleDetached)
}

func TestConsoleWithoutSeedStartsEmpty(t *testing.T) {
	c := New()
	require.NoError(t, c.Attach(types.Config{Backend: types.BackendMemory}))
	defer c.Detach()

	users, err := c.GetTable(types.TableUsers)
	require.NoError(t, err)
	n, err := users.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConsoleUsesInjectedBackend(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	c := New(WithBackend(store))
	require.NoError(t, c.Attach(types.Config{Backend: types.BackendMemory, Seed: true}))
	defer c.Detach()

	b, err := c.Backend()
	require.NoError(t, err)
	assert.Same(t, store, b)

	docs, err := store.Load(ctx, types.TableSettings)
	require.NoError(t, err)
	assert.Len(t, docs, 5)
}

func TestConsoleOverSQLite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	c := New()
	require.NoError(t, c.Attach(cfg))
	gifts, err := c.GetTable(types.TableGifts)
	require.NoError(t, err)
	row, err := gifts.Create(ctx, map[string]any{"name": "Comet", "price": "88", "sort": 1})
	require.NoError(t, err)
	id := row.(*types.Gift).ID
	require.NoError(t, c.Detach())

	c = New(WithBackend(sqlstore.NewSQLite(dir)))
	require.NoError(t, c.Attach(cfg))
	defer c.Detach()
	gifts, err = c.GetTable(types.TableGifts)
	require.NoError(t, err)
	got, err := gifts.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 88.0, got.(*types.Gift).Price)
	assert.Equal(t, 1, got.(*types.Gift).Sort)
	assert.Equal(t, 1, got.(*types.Gift).Number)
}
