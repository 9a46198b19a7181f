package property

import (
	"context"
	"time"

	"github.com/kailas-cloud/propdex/internal/db"
	"github.com/kailas-cloud/propdex/internal/db/memory"
	"github.com/kailas-cloud/propdex/internal/domain/listing"
)

// faultyStore wraps the memory store and injects failures per operation.
type faultyStore struct {
	*memory.Store
	getErr      error
	setErr      error
	updateErr   error
	deleteErr   error
	queryErr    error
	commitErr   error
	indexErr    error
	commitCalls int
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Store: memory.NewStore()}
}

func (s *faultyStore) Get(ctx context.Context, collection, id string) (db.Document, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.Store.Get(ctx, collection, id)
}

func (s *faultyStore) Set(ctx context.Context, collection, id string, doc db.Document) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.Store.Set(ctx, collection, id, doc)
}

func (s *faultyStore) Update(ctx context.Context, collection, id string, fields db.Document) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	return s.Store.Update(ctx, collection, id, fields)
}

func (s *faultyStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	if s.deleteErr != nil {
		return false, s.deleteErr
	}
	return s.Store.Delete(ctx, collection, id)
}

func (s *faultyStore) Query(ctx context.Context, q *db.Query) ([]db.Document, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.Store.Query(ctx, q)
}

func (s *faultyStore) Commit(ctx context.Context, b *db.Batch) error {
	s.commitCalls++
	if s.commitErr != nil {
		return s.commitErr
	}
	return s.Store.Commit(ctx, b)
}

func (s *faultyStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if s.indexErr != nil {
		return s.indexErr
	}
	return s.Store.CreateIndex(ctx, def)
}

// fixedClock returns t, advancing by step on every call.
func fixedClock(t time.Time, step time.Duration) func() time.Time {
	return func() time.Time {
		now := t
		t = t.Add(step)
		return now
	}
}

func ptr(f float64) *float64 { return &f }

func draft(city string, price float64) listing.Draft {
	d, err := listing.NewDraft(listing.DraftInput{
		Title:         "Nice " + city + " home",
		Description:   "A listing in " + city,
		Price:         ptr(price),
		StreetAddress: "1 Main St",
		City:          city,
		PropertyType:  "house",
		ListingType:   "sale",
	})
	if err != nil {
		panic(err)
	}
	return d
}
