package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	DocumentStore
	IndexManager
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Document is a flat record: field name to scalar value.
// Values are string, float64, int64 or nil.
type Document map[string]any

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// DocumentStore provides collection-scoped document operations.
type DocumentStore interface {
	// NewID allocates a fresh unique document identifier for the collection.
	NewID(collection string) string
	// Get returns ErrKeyNotFound when the document is absent.
	Get(ctx context.Context, collection, id string) (Document, error)
	Set(ctx context.Context, collection, id string, doc Document) error
	// Update merges fields into an existing document; ErrKeyNotFound when absent.
	Update(ctx context.Context, collection, id string, fields Document) error
	// Delete reports whether a document was removed.
	Delete(ctx context.Context, collection, id string) (bool, error)
	Query(ctx context.Context, q *Query) ([]Document, error)
	// Commit applies all batch writes atomically: all or none.
	Commit(ctx context.Context, b *Batch) error
}

// IndexManager provides secondary index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}
