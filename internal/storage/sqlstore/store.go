// Package sqlstore implements the SQL storage backends. SQLite and
// PostgreSQL share one schema: a single records table keyed by
// (table_name, record_id) holding each row's JSON.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/backstage/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// DBFile is the SQLite database file name inside the data directory.
const DBFile = "backstage.db"

// Dialect names the SQL flavour a Store speaks.
type Dialect string

// Supported dialects.
const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// driver returns the database/sql driver name for the dialect.
func (d Dialect) driver() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

// Store implements types.Backend on database/sql.
type Store struct {
	mu       sync.RWMutex
	dialect  Dialect
	dsn      string
	dataDir  string
	db       *sql.DB
	attached bool
}

var _ types.Backend = (*Store)(nil)

// NewSQLite creates an unattached store that keeps its database file in
// dataDir. The directory is created on Attach.
func NewSQLite(dataDir string) *Store {
	if dataDir == "" {
		dataDir = "."
	}
	return &Store{
		dialect: SQLite,
		dataDir: dataDir,
		dsn:     filepath.Join(dataDir, DBFile),
	}
}

// NewPostgres creates an unattached store for the given connection string.
func NewPostgres(dsn string) *Store {
	return &Store{dialect: Postgres, dsn: dsn}
}

// Dialect returns the store's SQL flavour.
func (s *Store) Dialect() Dialect { return s.dialect }

// Attach opens the database and creates the schema if it is missing.
// Returns ErrAlreadyAttached if already attached.
func (s *Store) Attach(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}

	if s.dialect == SQLite {
		if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
	}

	db, err := sql.Open(s.dialect.driver(), s.dsn)
	if err != nil {
		return fmt.Errorf("opening %s: %w", s.dialect, err)
	}
	if s.dialect == SQLite {
		// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("connecting to %s: %w", s.dialect, err)
	}

	for _, stmt := range splitStatements(schemaSQL) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	s.db = db
	s.attached = true
	return nil
}

// Detach closes the database. Idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	s.attached = false
	db := s.db
	s.db = nil
	return db.Close()
}

// conn returns the open database or ErrConsoleDetached.
func (s *Store) conn() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return nil, types.ErrConsoleDetached
	}
	return s.db, nil
}

// Load returns the table's documents ordered by number.
func (s *Store) Load(ctx context.Context, table string) ([]types.Document, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, s.rebind(
		`SELECT record_id, number, recycled, data, updated_at FROM records
		 WHERE table_name = ? ORDER BY number, record_id`), table)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", table, err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		doc, err := scanDocument(table, rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", table, err)
	}
	return docs, nil
}

// Get returns one document or ErrNotFound.
func (s *Store) Get(ctx context.Context, table, id string) (types.Document, error) {
	db, err := s.conn()
	if err != nil {
		return types.Document{}, err
	}

	row := db.QueryRowContext(ctx, s.rebind(
		`SELECT record_id, number, recycled, data, updated_at FROM records
		 WHERE table_name = ? AND record_id = ?`), table, id)
	doc, err := scanDocument(table, row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Document{}, types.ErrNotFound
	}
	return doc, err
}

// Put upserts a document.
func (s *Store) Put(ctx context.Context, doc types.Document) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	recycled := 0
	if doc.Recycled {
		recycled = 1
	}
	_, err = db.ExecContext(ctx, s.rebind(
		`INSERT INTO records (table_name, record_id, number, recycled, data, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (table_name, record_id) DO UPDATE SET
		   number = excluded.number,
		   recycled = excluded.recycled,
		   data = excluded.data,
		   updated_at = excluded.updated_at`),
		doc.Table, doc.ID, doc.Number, recycled, string(doc.Data),
		doc.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("storing %s/%s: %w", doc.Table, doc.ID, err)
	}
	return nil
}

// Remove deletes the listed documents. Missing IDs are ignored.
func (s *Store) Remove(ctx context.Context, table string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	db, err := s.conn()
	if err != nil {
		return err
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, table)
	marks := make([]string, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args = append(args, id)
	}
	q := `DELETE FROM records WHERE table_name = ? AND record_id IN (` + strings.Join(marks, ", ") + `)`
	if _, err := db.ExecContext(ctx, s.rebind(q), args...); err != nil {
		return fmt.Errorf("removing from %s: %w", table, err)
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(table string, sc scanner) (types.Document, error) {
	var (
		doc       types.Document
		recycled  int
		data      string
		updatedAt string
	)
	if err := sc.Scan(&doc.ID, &doc.Number, &recycled, &data, &updatedAt); err != nil {
		return types.Document{}, err
	}
	doc.Table = table
	doc.Recycled = recycled != 0
	doc.Data = []byte(data)
	if updatedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, updatedAt)
		if err != nil {
			return types.Document{}, fmt.Errorf("parsing updated_at of %s/%s: %w", table, doc.ID, err)
		}
		doc.UpdatedAt = t
	}
	return doc, nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(q string) string {
	if s.dialect != Postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// splitStatements breaks a DDL script on semicolons, dropping blanks.
func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
