package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/propdex/internal/domain/geo"
	"github.com/kailas-cloud/propdex/internal/domain/listing"
	"github.com/kailas-cloud/propdex/internal/domain/search/criteria"
)

// GeoSource selects where a listing's coordinates are read from.
type GeoSource string

const (
	// GeoSourceLocation reads the structured latitude/longitude fields.
	GeoSourceLocation GeoSource = "location"
	// GeoSourceAddress parses the street address as "lat,lng".
	GeoSourceAddress GeoSource = "address"
)

// ErrNoLocation is returned by a resolver when a listing carries no usable location.
var ErrNoLocation = errors.New("listing has no location")

// LocationResolver extracts the coordinates of a listing.
type LocationResolver func(l listing.Listing) (geo.Point, error)

// ResolverFor returns the resolver for a geo source. Empty means GeoSourceLocation.
func ResolverFor(src GeoSource) (LocationResolver, error) {
	switch src {
	case GeoSourceLocation, "":
		return resolveLocation, nil
	case GeoSourceAddress:
		return resolveAddress, nil
	default:
		return nil, fmt.Errorf("unknown geo source %q", src)
	}
}

func resolveLocation(l listing.Listing) (geo.Point, error) {
	p, ok := l.Location()
	if !ok {
		return geo.Point{}, ErrNoLocation
	}
	return p, nil
}

func resolveAddress(l listing.Listing) (geo.Point, error) {
	if l.StreetAddress() == "" {
		return geo.Point{}, ErrNoLocation
	}
	return geo.ParsePoint(l.StreetAddress())
}

// GeoStrategy keeps listings within the criterion radius of the criterion point.
// Distances are computed client-side over the full listing set.
type GeoStrategy struct {
	repo    Repository
	resolve LocationResolver
	logger  *zap.Logger
	skipped prometheus.Counter
}

// NewGeoStrategy creates the proximity strategy. A nil resolver reads structured locations.
func NewGeoStrategy(repo Repository, resolve LocationResolver, logger *zap.Logger) *GeoStrategy {
	if resolve == nil {
		resolve = resolveLocation
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeoStrategy{repo: repo, resolve: resolve, logger: logger}
}

// WithSkipCounter counts listings skipped for an unresolvable location.
func (s *GeoStrategy) WithSkipCounter(c prometheus.Counter) *GeoStrategy {
	s.skipped = c
	return s
}

// Facet implements Strategy.
func (s *GeoStrategy) Facet() Facet { return FacetGeo }

// Applies implements Strategy.
func (s *GeoStrategy) Applies(c criteria.Criteria) bool {
	_, ok := c.Location()
	return ok
}

// Search implements Strategy. Listings whose location cannot be resolved are skipped.
func (s *GeoStrategy) Search(ctx context.Context, c criteria.Criteria) ([]listing.Listing, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("geo search: %w", err)
	}
	loc, ok := c.Location()
	if !ok {
		return all, nil
	}

	out := make([]listing.Listing, 0, len(all))
	for _, l := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := s.resolve(l)
		if err != nil {
			s.logger.Warn("Skipping listing with unresolvable location",
				zap.String("listing_id", l.ID()),
				zap.Error(err),
			)
			if s.skipped != nil {
				s.skipped.Inc()
			}
			continue
		}
		if loc.Point.DistanceKm(p) <= loc.RadiusKm {
			out = append(out, l)
		}
	}
	return out, nil
}
