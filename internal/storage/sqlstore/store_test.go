package sqlstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/backstage/internal/storage/storagetest"
	"github.com/mesh-intelligence/backstage/pkg/types"
)

func TestSQLiteConformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) types.Backend {
		return NewSQLite(t.TempDir())
	})
}

func TestPostgresConformance(t *testing.T) {
	dsn := os.Getenv("BACKSTAGE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("BACKSTAGE_TEST_POSTGRES_DSN not set")
	}
	storagetest.Run(t, func(t *testing.T) types.Backend {
		s := NewPostgres(dsn)
		t.Cleanup(func() {
			if err := s.Attach(context.Background()); err == nil {
				_, _ = s.db.Exec(`DELETE FROM records`)
				_ = s.Detach()
			}
		})
		return s
	})
}

func TestSQLitePersistsAcrossAttach(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "data")

	s := NewSQLite(dir)
	require.NoError(t, s.Attach(ctx))
	require.NoError(t, s.Put(ctx, storagetest.Doc("gifts", "g1", 1)))
	require.NoError(t, s.Detach())

	assert.FileExists(t, filepath.Join(dir, DBFile))

	s = NewSQLite(dir)
	require.NoError(t, s.Attach(ctx))
	defer s.Detach()
	doc, err := s.Get(ctx, "gifts", "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Number)
}

func TestAttachTwice(t *testing.T) {
	ctx := context.Background()
	s := NewSQLite(t.TempDir())
	require.NoError(t, s.Attach(ctx))
	defer s.Detach()
	assert.ErrorIs(t, s.Attach(ctx), types.ErrAlreadyAttached)
}

func TestDetachedStore(t *testing.T) {
	s := NewSQLite(t.TempDir())
	_, err := s.Load(context.Background(), "users")
	assert.ErrorIs(t, err, types.ErrConsoleDetached)
	assert.NoError(t, s.Detach())
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		in      string
		want    string
	}{
		{"sqlite untouched", SQLite, "a = ? AND b = ?", "a = ? AND b = ?"},
		{"postgres numbered", Postgres, "a = ? AND b IN (?, ?)", "a = $1 AND b IN ($2, $3)"},
		{"no placeholders", Postgres, "SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Store{dialect: tt.dialect}
			assert.Equal(t, tt.want, s.rebind(tt.in))
		})
	}
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(schemaSQL)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS records")
	assert.Contains(t, stmts[1], "CREATE INDEX")
}
