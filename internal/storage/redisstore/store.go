// Package redisstore implements the Redis storage backend. Each table is
// one hash keyed by prefix+table whose fields are row IDs and whose values
// are msgpack-encoded documents.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mesh-intelligence/backstage/pkg/types"
)

// RedisClient is the subset of go-redis client methods the store uses.
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
	Close() error
}

// Store implements types.Backend on Redis hashes.
type Store struct {
	mu       sync.RWMutex
	cfg      types.RedisConfig
	client   RedisClient
	owned    bool
	attached bool
}

var _ types.Backend = (*Store)(nil)

// New creates an unattached store that dials cfg.Addr on Attach.
func New(cfg types.RedisConfig) *Store {
	return &Store{cfg: cfg}
}

// NewWithClient creates a store over an existing client. Detach leaves the
// client open; the caller owns it.
func NewWithClient(cfg types.RedisConfig, client RedisClient) *Store {
	return &Store{cfg: cfg, client: client}
}

// Attach connects and verifies the connection with PING.
func (s *Store) Attach(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if s.client == nil {
		s.client = redis.NewClient(&redis.Options{
			Addr:     s.cfg.Addr,
			Password: s.cfg.Password,
			DB:       s.cfg.DB,
		})
		s.owned = true
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		if s.owned {
			_ = s.client.Close()
			s.client = nil
			s.owned = false
		}
		return fmt.Errorf("redis %s: ping failed: %w", s.cfg.Addr, err)
	}
	s.attached = true
	return nil
}

// Detach closes a client the store dialled itself. Idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	s.attached = false
	if !s.owned {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	s.owned = false
	return err
}

func (s *Store) conn() (RedisClient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return nil, types.ErrConsoleDetached
	}
	return s.client, nil
}

func (s *Store) key(table string) string {
	return s.cfg.Prefix + table
}

// Load reads the whole table hash and orders it by number.
func (s *Store) Load(ctx context.Context, table string) ([]types.Document, error) {
	c, err := s.conn()
	if err != nil {
		return nil, err
	}
	fields, err := c.HGetAll(ctx, s.key(table)).Result()
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", table, err)
	}

	docs := make([]types.Document, 0, len(fields))
	for id, raw := range fields {
		doc, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding %s/%s: %w", table, id, err)
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Number != docs[j].Number {
			return docs[i].Number < docs[j].Number
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// Get reads one field of the table hash.
func (s *Store) Get(ctx context.Context, table, id string) (types.Document, error) {
	c, err := s.conn()
	if err != nil {
		return types.Document{}, err
	}
	raw, err := c.HGet(ctx, s.key(table), id).Result()
	if errors.Is(err, redis.Nil) {
		return types.Document{}, types.ErrNotFound
	}
	if err != nil {
		return types.Document{}, fmt.Errorf("reading %s/%s: %w", table, id, err)
	}
	return decode(raw)
}

// Put writes the document into its table hash.
func (s *Store) Put(ctx context.Context, doc types.Document) error {
	c, err := s.conn()
	if err != nil {
		return err
	}
	raw, err := msgpack.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", doc.Table, doc.ID, err)
	}
	if err := c.HSet(ctx, s.key(doc.Table), doc.ID, raw).Err(); err != nil {
		return fmt.Errorf("storing %s/%s: %w", doc.Table, doc.ID, err)
	}
	return nil
}

// Remove deletes fields from the table hash.
func (s *Store) Remove(ctx context.Context, table string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	c, err := s.conn()
	if err != nil {
		return err
	}
	if err := c.HDel(ctx, s.key(table), ids...).Err(); err != nil {
		return fmt.Errorf("removing from %s: %w", table, err)
	}
	return nil
}

func decode(raw string) (types.Document, error) {
	var doc types.Document
	if err := msgpack.Unmarshal([]byte(raw), &doc); err != nil {
		return types.Document{}, err
	}
	return doc, nil
}
