package property

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/propdex/internal/db/memory"
	"github.com/kailas-cloud/propdex/internal/domain/listing"
	"github.com/kailas-cloud/propdex/internal/domain/search/criteria"
	repo "github.com/kailas-cloud/propdex/internal/repository/property"
	"github.com/kailas-cloud/propdex/internal/usecase/search"
)

// --- Mocks ---

type mockRepo struct {
	getResult  listing.Listing
	getFound   bool
	getErr     error
	createErr  error
	updateErr  error
	deleteErr  error
	listErr    error
	allErr     error
	createCall int
}

func (m *mockRepo) Create(_ context.Context, _ listing.Draft, _, _ string) (listing.Listing, error) {
	m.createCall++
	return listing.Listing{}, m.createErr
}
func (m *mockRepo) CreateBatch(_ context.Context, _ []listing.Draft, _, _ string) ([]listing.Listing, error) {
	m.createCall++
	return nil, m.createErr
}
func (m *mockRepo) Get(_ context.Context, _ string) (listing.Listing, bool, error) {
	return m.getResult, m.getFound, m.getErr
}
func (m *mockRepo) Update(_ context.Context, _ string, _ listing.Draft) (listing.Listing, bool, error) {
	return listing.Listing{}, false, m.updateErr
}
func (m *mockRepo) Delete(_ context.Context, _ string) (bool, error) { return false, m.deleteErr }
func (m *mockRepo) ListByOwner(_ context.Context, _ string) ([]listing.Listing, error) {
	return nil, m.listErr
}
func (m *mockRepo) All(_ context.Context) ([]listing.Listing, error) { return nil, m.allErr }

type mockSearcher struct {
	result search.Result
	err    error
	calls  int
}

func (m *mockSearcher) Search(_ context.Context, _ criteria.Criteria) (search.Result, error) {
	m.calls++
	return m.result, m.err
}

// --- Helpers ---

var (
	u1 = Caller{UserID: "U1", Email: "u1@example.com"}
	u2 = Caller{UserID: "U2", Email: "u2@example.com"}
)

func newService(t *testing.T) (*Service, *repo.Repo) {
	t.Helper()
	tick := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := repo.New(memory.NewStore(), repo.WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))
	engine := search.NewEngine(search.DefaultStrategies(r, nil, nil), nil)
	return New(r, engine), r
}

func mustDraft(t *testing.T, city string, price float64) listing.Draft {
	t.Helper()
	d, err := listing.NewDraft(listing.DraftInput{
		Title:         "Family house",
		Description:   "Three bedrooms",
		Price:         &price,
		StreetAddress: "742 Evergreen Terrace",
		City:          city,
		PropertyType:  "house",
		ListingType:   "sale",
	})
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	return d
}

func created(t *testing.T, resp Response) listing.Listing {
	t.Helper()
	l, ok := resp.Body.Data.(listing.Listing)
	if !ok {
		t.Fatalf("expected listing data, got %T (status %d, error %q)", resp.Body.Data, resp.Status, resp.Body.Error)
	}
	return l
}
