package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/propdex/internal/db/memory"
	"github.com/kailas-cloud/propdex/internal/domain/geo"
	"github.com/kailas-cloud/propdex/internal/domain/listing"
	"github.com/kailas-cloud/propdex/internal/domain/search/filter"
	"github.com/kailas-cloud/propdex/internal/repository/property"
)

// errRepo fails every query.
type errRepo struct{ err error }

func (r *errRepo) QueryByField(context.Context, string, filter.Op, any) ([]listing.Listing, error) {
	return nil, r.err
}

func (r *errRepo) QueryRange(context.Context, string, any, any) ([]listing.Listing, error) {
	return nil, r.err
}

func (r *errRepo) Find(context.Context, string, ...filter.Condition) ([]listing.Listing, error) {
	return nil, r.err
}

func (r *errRepo) All(context.Context) ([]listing.Listing, error) { return nil, r.err }

var errBoom = errors.New("boom")

// recordingObserver captures engine measurements.
type recordingObserver struct {
	facets  []Facet
	results []int
}

func (o *recordingObserver) ObserveFacet(f Facet, _ time.Duration, _ int) { o.facets = append(o.facets, f) }
func (o *recordingObserver) ObserveResult(n int)                          { o.results = append(o.results, n) }

type seedListing struct {
	title, address, city, propertyType, listingType string
	price                                           float64
	location                                        *geo.Point
}

func newRepo(t *testing.T, seeds ...seedListing) (*property.Repo, []listing.Listing) {
	t.Helper()
	repo := property.New(memory.NewStore())
	out := make([]listing.Listing, 0, len(seeds))
	for _, s := range seeds {
		price := s.price
		address := s.address
		if address == "" {
			address = "1 Main St"
		}
		d, err := listing.NewDraft(listing.DraftInput{
			Title:         s.title,
			Description:   "desc",
			Price:         &price,
			StreetAddress: address,
			City:          s.city,
			PropertyType:  s.propertyType,
			ListingType:   s.listingType,
			Location:      s.location,
		})
		if err != nil {
			t.Fatalf("draft: %v", err)
		}
		l, err := repo.Create(context.Background(), d, "U1", "u1@example.com")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		out = append(out, l)
	}
	return repo, out
}

func ids(ls []listing.Listing) map[string]bool {
	m := make(map[string]bool, len(ls))
	for _, l := range ls {
		m[l.ID()] = true
	}
	return m
}

func sameIDs(a, b []listing.Listing) bool {
	if len(a) != len(b) {
		return false
	}
	ma := ids(a)
	for _, l := range b {
		if !ma[l.ID()] {
			return false
		}
	}
	return true
}

type stratFixture struct {
	repo *property.Repo
	ls   []listing.Listing
}

func (f *stratFixture) pick(idx ...int) []listing.Listing {
	out := make([]listing.Listing, 0, len(idx))
	for _, i := range idx {
		out = append(out, f.ls[i])
	}
	return out
}
