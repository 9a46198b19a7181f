package property

import (
	"context"

	"github.com/kailas-cloud/propdex/internal/domain/listing"
	"github.com/kailas-cloud/propdex/internal/domain/search/criteria"
	"github.com/kailas-cloud/propdex/internal/usecase/search"
)

// Repository defines the listing storage contract.
type Repository interface {
	Create(ctx context.Context, d listing.Draft, ownerID, ownerEmail string) (listing.Listing, error)
	CreateBatch(ctx context.Context, drafts []listing.Draft, ownerID, ownerEmail string) ([]listing.Listing, error)
	Get(ctx context.Context, id string) (listing.Listing, bool, error)
	Update(ctx context.Context, id string, d listing.Draft) (listing.Listing, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]listing.Listing, error)
	All(ctx context.Context) ([]listing.Listing, error)
}

// Searcher composes faceted searches.
type Searcher interface {
	Search(ctx context.Context, c criteria.Criteria) (search.Result, error)
}
