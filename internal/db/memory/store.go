// Package memory implements db.Store in process memory for tests and demos.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kailas-cloud/propdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store keeps collections of documents in maps guarded by one RWMutex.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]db.Document
	indexes     map[string]*db.IndexDefinition
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]map[string]db.Document),
		indexes:     make(map[string]*db.IndexDefinition),
	}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

// NewID returns a fresh ULID.
func (s *Store) NewID(_ string) string {
	return ulid.Make().String()
}

// Get returns a copy of the stored document.
func (s *Store) Get(_ context.Context, collection, id string) (db.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return doc.Clone(), nil
}

// Set replaces the document.
func (s *Store) Set(_ context.Context, collection, id string, doc db.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(collection, id, doc)
	return nil
}

// Update merges fields into an existing document.
func (s *Store) Update(_ context.Context, collection, id string, fields db.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return db.ErrKeyNotFound
	}
	for k, v := range fields {
		doc[k] = normalize(v)
	}
	return nil
}

// Delete removes the document and reports whether it existed.
func (s *Store) Delete(_ context.Context, collection, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collections[collection]
	if _, ok := coll[id]; !ok {
		return false, nil
	}
	delete(coll, id)
	return true, nil
}

// Query scans the collection. Results are ordered by OrderBy, then by ID.
func (s *Store) Query(_ context.Context, q *db.Query) ([]db.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	coll := s.collections[q.Collection]
	out := make([]db.Document, 0, len(coll))
	for _, doc := range coll {
		if q.Matches(doc) {
			out = append(out, doc.Clone())
		}
	}
	s.mu.RUnlock()

	db.SortDocuments(out, q.OrderBy)
	return out, nil
}

// Commit applies the whole batch under a single lock: readers never see a partial batch.
func (s *Store) Commit(_ context.Context, b *db.Batch) error {
	if b == nil || b.Len() == 0 {
		return nil
	}
	for _, op := range b.Ops() {
		if op.Collection == "" || op.ID == "" {
			return fmt.Errorf("batch write requires collection and id")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range b.Ops() {
		s.put(op.Collection, op.ID, op.Doc)
	}
	return nil
}

// CreateIndex records the definition. Scans need no index.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	s.indexes[def.Name] = def
	return nil
}

// DropIndex forgets the definition.
func (s *Store) DropIndex(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexes[name]; !ok {
		return db.ErrIndexNotFound
	}
	delete(s.indexes, name)
	return nil
}

// IndexExists reports whether a definition was recorded.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.indexes[name]
	return ok, nil
}

// Len returns the number of documents in a collection.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func (s *Store) put(collection, id string, doc db.Document) {
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]db.Document)
		s.collections[collection] = coll
	}
	stored := make(db.Document, len(doc))
	for k, v := range doc {
		stored[k] = normalize(v)
	}
	coll[id] = stored
}

// normalize mirrors JSON storage: integers come back as float64.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case float32:
		return float64(n)
	}
	return v
}
