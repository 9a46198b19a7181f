package property

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/propdex/internal/db"
	"github.com/kailas-cloud/propdex/internal/domain/listing"
	"github.com/kailas-cloud/propdex/internal/domain/search/filter"
)

// DefaultCollection is the collection every listing lives in.
const DefaultCollection = "properties"

// store is the consumer interface for listings (ISP).
type store interface {
	NewID(collection string) string
	Get(ctx context.Context, collection, id string) (db.Document, error)
	Set(ctx context.Context, collection, id string, doc db.Document) error
	Update(ctx context.Context, collection, id string, fields db.Document) error
	Delete(ctx context.Context, collection, id string) (bool, error)
	Query(ctx context.Context, q *db.Query) ([]db.Document, error)
	Commit(ctx context.Context, b *db.Batch) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo is the sole owner of persisted listing state.
type Repo struct {
	store      store
	collection string
	now        func() time.Time
	logger     *zap.Logger
	ops        *prometheus.CounterVec
}

// Option configures a Repo.
type Option func(*Repo)

// WithCollection overrides the collection name.
func WithCollection(name string) Option {
	return func(r *Repo) {
		if name != "" {
			r.collection = name
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Repo) { r.now = now }
}

// WithLogger sets the logger used to report undecodable records.
func WithLogger(l *zap.Logger) Option {
	return func(r *Repo) { r.logger = l }
}

// WithOpCounter records every operation outcome on the given counter (labels: op, outcome).
func WithOpCounter(c *prometheus.CounterVec) Option {
	return func(r *Repo) { r.ops = c }
}

// New creates a listing repository.
func New(s store, opts ...Option) *Repo {
	r := &Repo{
		store:      s,
		collection: DefaultCollection,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Collection returns the collection name.
func (r *Repo) Collection() string { return r.collection }

// EnsureSchema creates the secondary index the store needs. An existing index is fine.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	err := r.store.CreateIndex(ctx, indexDefinition(r.collection))
	if err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", r.collection, err)
	}
	return nil
}

// Create stamps the draft with a fresh ID, the owner and timestamps, and persists it.
func (r *Repo) Create(ctx context.Context, d listing.Draft, ownerID, ownerEmail string) (listing.Listing, error) {
	l, err := listing.New(r.store.NewID(r.collection), ownerID, ownerEmail, d, r.now())
	if err != nil {
		return listing.Listing{}, err
	}
	if err := r.store.Set(ctx, r.collection, l.ID(), toDocument(l)); err != nil {
		r.record("create", err)
		return listing.Listing{}, fmt.Errorf("set %s: %w", l.ID(), err)
	}
	r.record("create", nil)
	return l, nil
}

// CreateBatch stamps every draft as Create does and persists them in one atomic batch.
// Output order follows input order. No drafts means no store call.
func (r *Repo) CreateBatch(
	ctx context.Context, drafts []listing.Draft, ownerID, ownerEmail string,
) ([]listing.Listing, error) {
	if len(drafts) == 0 {
		return []listing.Listing{}, nil
	}

	now := r.now()
	out := make([]listing.Listing, 0, len(drafts))
	batch := db.NewBatch()
	for i, d := range drafts {
		l, err := listing.New(r.store.NewID(r.collection), ownerID, ownerEmail, d, now)
		if err != nil {
			return nil, fmt.Errorf("draft %d: %w", i, err)
		}
		batch.Set(r.collection, l.ID(), toDocument(l))
		out = append(out, l)
	}

	if err := r.store.Commit(ctx, batch); err != nil {
		r.record("create_batch", err)
		return nil, fmt.Errorf("commit batch of %d: %w", batch.Len(), err)
	}
	r.record("create_batch", nil)
	return out, nil
}

// Get returns the listing by ID. Absence is (zero, false, nil).
func (r *Repo) Get(ctx context.Context, id string) (listing.Listing, bool, error) {
	doc, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			r.recordAbsent("get")
			return listing.Listing{}, false, nil
		}
		r.record("get", err)
		return listing.Listing{}, false, fmt.Errorf("get %s: %w", id, err)
	}
	l, err := fromDocument(id, doc)
	if err != nil {
		r.record("get", err)
		return listing.Listing{}, false, err
	}
	r.record("get", nil)
	return l, true, nil
}

// Update overwrites the business fields and refreshes updated_at.
// Identity, owner and created_at are preserved. Absence is (zero, false, nil).
func (r *Repo) Update(ctx context.Context, id string, d listing.Draft) (listing.Listing, bool, error) {
	current, ok, err := r.Get(ctx, id)
	if err != nil || !ok {
		return listing.Listing{}, ok, err
	}

	updated := current.WithDraft(d, r.now())
	if err := r.store.Update(ctx, r.collection, id, businessFields(updated)); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			r.recordAbsent("update")
			return listing.Listing{}, false, nil
		}
		r.record("update", err)
		return listing.Listing{}, false, fmt.Errorf("update %s: %w", id, err)
	}
	r.record("update", nil)
	return updated, true, nil
}

// Delete removes the listing. Returns false when it did not exist.
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.Delete(ctx, r.collection, id)
	if err != nil {
		r.record("delete", err)
		return false, fmt.Errorf("delete %s: %w", id, err)
	}
	if !ok {
		r.recordAbsent("delete")
		return false, nil
	}
	r.record("delete", nil)
	return true, nil
}

// ListByOwner returns every listing owned by ownerID.
func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]listing.Listing, error) {
	return r.QueryByField(ctx, listing.FieldOwnerID, filter.Equal, ownerID)
}

// QueryByField returns listings where field <op> value.
func (r *Repo) QueryByField(ctx context.Context, field string, op filter.Op, value any) ([]listing.Listing, error) {
	c, err := filter.New(field, op, value)
	if err != nil {
		return nil, err
	}
	return r.Find(ctx, "", c)
}

// QueryRange returns listings where lower <= field <= upper.
func (r *Repo) QueryRange(ctx context.Context, field string, lower, upper any) ([]listing.Listing, error) {
	lo, err := filter.New(field, filter.GreaterOrEqual, lower)
	if err != nil {
		return nil, err
	}
	hi, err := filter.New(field, filter.LessOrEqual, upper)
	if err != nil {
		return nil, err
	}
	return r.Find(ctx, "", lo, hi)
}

// All returns every listing.
func (r *Repo) All(ctx context.Context) ([]listing.Listing, error) {
	return r.Find(ctx, "")
}

// Find returns listings matching every condition, optionally ordered by a field.
func (r *Repo) Find(ctx context.Context, orderBy string, conds ...filter.Condition) ([]listing.Listing, error) {
	docs, err := r.store.Query(ctx, &db.Query{
		Collection: r.collection,
		Conditions: conds,
		OrderBy:    orderBy,
	})
	if err != nil {
		r.record("query", err)
		return nil, fmt.Errorf("query %s: %w", r.collection, err)
	}

	out := make([]listing.Listing, 0, len(docs))
	for _, doc := range docs {
		l, err := fromDocument("", doc)
		if err != nil {
			r.logger.Warn("Skipping undecodable listing record",
				zap.String("collection", r.collection),
				zap.Error(err),
			)
			continue
		}
		out = append(out, l)
	}
	r.record("query", nil)
	return out, nil
}

func (r *Repo) record(op string, err error) {
	if r.ops == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.ops.WithLabelValues(op, outcome).Inc()
}

func (r *Repo) recordAbsent(op string) {
	if r.ops != nil {
		r.ops.WithLabelValues(op, "absent").Inc()
	}
}
