package snapshot

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/backstage/pkg/types"
)

//go:embed fixtures/*.jsonl
var fixtures embed.FS

// Fixtures returns the embedded seed rows as a file system rooted at the
// fixture directory.
func Fixtures() fs.FS {
	sub, err := fs.Sub(fixtures, "fixtures")
	if err != nil {
		panic(err)
	}
	return sub
}

// Export writes every document of each table, recycled rows included, to
// dir/<table>.jsonl. It returns the number of rows written per table.
func Export(ctx context.Context, b types.Backend, dir string, tables []string) (map[string]int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		docs, err := b.Load(ctx, table)
		if err != nil {
			return counts, err
		}
		records := make([]json.RawMessage, len(docs))
		for i, d := range docs {
			records[i] = d.Data
		}
		if err := writeJSONL(filepath.Join(dir, FileName(table)), records); err != nil {
			return counts, fmt.Errorf("exporting %s: %w", table, err)
		}
		counts[table] = len(docs)
	}
	return counts, nil
}

// Import upserts the rows of fsys/<table>.jsonl into b for each table.
// Missing files are skipped, as are lines without an id. It returns the
// number of rows stored per table.
func Import(ctx context.Context, b types.Backend, fsys fs.FS, tables []string) (map[string]int, error) {
	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		n, err := importTable(ctx, b, fsys, table)
		if err != nil {
			return counts, fmt.Errorf("importing %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// ImportDir is Import over a directory on disk.
func ImportDir(ctx context.Context, b types.Backend, dir string, tables []string) (map[string]int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return Import(ctx, b, os.DirFS(dir), tables)
}

// Seed imports the embedded fixtures into every table that is still empty.
func Seed(ctx context.Context, b types.Backend, tables []string) (map[string]int, error) {
	var empty []string
	for _, table := range tables {
		docs, err := b.Load(ctx, table)
		if err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			empty = append(empty, table)
		}
	}
	return Import(ctx, b, Fixtures(), empty)
}

func importTable(ctx context.Context, b types.Backend, fsys fs.FS, table string) (int, error) {
	f, err := fsys.Open(FileName(table))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	records, err := readJSONL(f)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, raw := range records {
		doc, err := types.DocumentFromJSON(table, raw)
		if err != nil {
			continue
		}
		if err := b.Put(ctx, doc); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
