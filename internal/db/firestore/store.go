// Package firestore implements db.Store on Google Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kailas-cloud/propdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Firestore store.
type Config struct {
	ProjectID       string
	CredentialsFile string // empty means application default credentials
	// CollectionPrefix is prepended to every collection name.
	CollectionPrefix string
}

// Store implements db.Store via the Firestore client.
// Firestore builds single-field indexes itself, so index management is bookkeeping only.
type Store struct {
	client *firestore.Client
	prefix string
}

// NewStore creates a Firestore client for the configured project.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, prefix: cfg.CollectionPrefix}, nil
}

// Ping lists collections; an empty database is still reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.Collections(ctx).Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	_ = s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
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

func (s *Store) col(collection string) *firestore.CollectionRef {
	return s.client.Collection(s.prefix + collection)
}

// NewID returns a Firestore auto-generated document ID. No RPC is made.
func (s *Store) NewID(collection string) string {
	return s.col(collection).NewDoc().ID
}

// Get loads a document snapshot.
func (s *Store) Get(ctx context.Context, collection, id string) (db.Document, error) {
	snap, err := s.col(collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapErr(db.OpGet, err)
	}
	return fromData(snap.Data()), nil
}

// Set writes a full document.
func (s *Store) Set(ctx context.Context, collection, id string, doc db.Document) error {
	if _, err := s.col(collection).Doc(id).Set(ctx, toData(doc)); err != nil {
		return mapErr(db.OpSet, err)
	}
	return nil
}

// Update writes the given top-level fields; Firestore rejects updates of missing documents.
func (s *Store) Update(ctx context.Context, collection, id string, fields db.Document) error {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	if len(updates) == 0 {
		if _, err := s.Get(ctx, collection, id); err != nil {
			return err
		}
		return nil
	}
	if _, err := s.col(collection).Doc(id).Update(ctx, updates); err != nil {
		return mapErr(db.OpUpdate, err)
	}
	return nil
}

// Delete removes a document and reports whether it existed.
func (s *Store) Delete(ctx context.Context, collection, id string) (bool, error) {
	_, err := s.col(collection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, mapErr(db.OpDel, err)
	}
	return true, nil
}

// Query translates conditions into Where clauses. Operators map one to one.
func (s *Store) Query(ctx context.Context, q *db.Query) ([]db.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	fq := s.col(q.Collection).Query
	for _, c := range q.Conditions {
		fq = fq.Where(c.Field(), string(c.Op()), c.Value())
	}
	if q.OrderBy != "" {
		fq = fq.OrderBy(q.OrderBy, firestore.Asc)
	}

	it := fq.Documents(ctx)
	defer it.Stop()

	var out []db.Document
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, mapErr(db.OpQuery, err)
		}
		out = append(out, fromData(snap.Data()))
	}
	return out, nil
}

// Commit writes the batch inside one transaction.
func (s *Store) Commit(ctx context.Context, b *db.Batch) error {
	if b == nil || b.Len() == 0 {
		return nil
	}
	err := s.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		for _, op := range b.Ops() {
			if err := tx.Set(s.col(op.Collection).Doc(op.ID), toData(op.Doc)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return mapErr(db.OpCommit, err)
	}
	return nil
}

// CreateIndex is a no-op: single-field indexes are automatic.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	return def.Validate()
}

// DropIndex is a no-op.
func (s *Store) DropIndex(_ context.Context, _ string) error { return nil }

// IndexExists always reports true.
func (s *Store) IndexExists(_ context.Context, _ string) (bool, error) { return true, nil }

func mapErr(op string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return db.ErrKeyNotFound
	case codes.AlreadyExists:
		return db.ErrKeyExists
	case codes.Aborted:
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrTxAborted, err)}
	}
	return &db.Error{Op: op, Err: err}
}

func toData(doc db.Document) map[string]any {
	return map[string]any(doc)
}

// fromData normalizes Firestore integers to float64 so every driver returns the same kinds.
func fromData(m map[string]any) db.Document {
	doc := make(db.Document, len(m))
	for k, v := range m {
		if n, ok := v.(int64); ok {
			doc[k] = float64(n)
			continue
		}
		doc[k] = v
	}
	return doc
}
