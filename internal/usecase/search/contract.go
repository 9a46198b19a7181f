package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/propdex/internal/domain/listing"
	"github.com/kailas-cloud/propdex/internal/domain/search/filter"
)

// Repository defines the read-only storage contract strategies query through.
type Repository interface {
	QueryByField(ctx context.Context, field string, op filter.Op, value any) ([]listing.Listing, error)
	QueryRange(ctx context.Context, field string, lower, upper any) ([]listing.Listing, error)
	Find(ctx context.Context, orderBy string, conds ...filter.Condition) ([]listing.Listing, error)
	All(ctx context.Context) ([]listing.Listing, error)
}

// Observer receives per-facet and per-search measurements.
type Observer interface {
	ObserveFacet(facet Facet, took time.Duration, results int)
	ObserveResult(results int)
}
