package redis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/rueidis"

	"github.com/kailas-cloud/propdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// DefaultPageSize is the FT.AGGREGATE cursor COUNT used when draining query results.
const DefaultPageSize = 500

// Config holds connection parameters for a Valkey/Redis store.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string // prepended to every key and index name
	PageSize  int
}

// Store implements db.Store via rueidis for Valkey and Redis 8+.
// Documents are JSON values at "<prefix><collection>:<id>", queried via FT.AGGREGATE cursors.
type Store struct {
	client    rueidis.Client
	keyPrefix string
	pageSize  int

	mu      sync.RWMutex
	indexes map[string]*db.IndexDefinition // by collection
}

// NewStore creates a Valkey/Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // cursor reply parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return newStore(client, cfg.KeyPrefix, cfg.PageSize), nil
}

func newStore(c rueidis.Client, keyPrefix string, pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Store{
		client:    c,
		keyPrefix: keyPrefix,
		pageSize:  pageSize,
		indexes:   make(map[string]*db.IndexDefinition),
	}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// NewID returns a fresh ULID. Collection is unused: ULIDs are globally unique.
func (s *Store) NewID(_ string) string {
	return ulid.Make().String()
}

func (s *Store) collectionPrefix(collection string) string {
	return s.keyPrefix + collection + ":"
}

func (s *Store) key(collection, id string) string {
	return s.collectionPrefix(collection) + id
}

func (s *Store) indexName(collection string) string {
	return s.keyPrefix + collection + ":idx"
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr checks if err is a server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return containsIgnoreCase(re.Error(), substr)
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
