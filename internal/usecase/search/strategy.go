package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/propdex/internal/domain/listing"
	"github.com/kailas-cloud/propdex/internal/domain/search/criteria"
	"github.com/kailas-cloud/propdex/internal/domain/search/filter"
)

// Facet names one independent search dimension.
type Facet string

// Facets in evaluation order.
const (
	FacetCity         Facet = "city"
	FacetPrice        Facet = "price"
	FacetPropertyType Facet = "property_type"
	FacetListingType  Facet = "listing_type"
	FacetKeyword      Facet = "keyword"
	FacetGeo          Facet = "geo"
)

// Strategy evaluates a single facet against the repository.
// When its facet is absent from the criteria, Search returns every listing.
type Strategy interface {
	Facet() Facet
	Applies(c criteria.Criteria) bool
	Search(ctx context.Context, c criteria.Criteria) ([]listing.Listing, error)
}

// EqualityStrategy matches a string facet exactly against one field.
type EqualityStrategy struct {
	facet   Facet
	field   string
	repo    Repository
	extract func(criteria.Criteria) (string, bool)
}

// NewCityStrategy matches criteria city against the city field.
func NewCityStrategy(repo Repository) *EqualityStrategy {
	return &EqualityStrategy{facet: FacetCity, field: listing.FieldCity, repo: repo, extract: criteria.Criteria.City}
}

// NewPropertyTypeStrategy matches criteria property type against the property_type field.
func NewPropertyTypeStrategy(repo Repository) *EqualityStrategy {
	return &EqualityStrategy{
		facet: FacetPropertyType, field: listing.FieldPropertyType, repo: repo,
		extract: criteria.Criteria.PropertyType,
	}
}

// NewListingTypeStrategy matches criteria listing type against the listing_type field.
func NewListingTypeStrategy(repo Repository) *EqualityStrategy {
	return &EqualityStrategy{
		facet: FacetListingType, field: listing.FieldListingType, repo: repo,
		extract: criteria.Criteria.ListingType,
	}
}

// Facet implements Strategy.
func (s *EqualityStrategy) Facet() Facet { return s.facet }

// Applies implements Strategy.
func (s *EqualityStrategy) Applies(c criteria.Criteria) bool {
	_, ok := s.extract(c)
	return ok
}

// Search implements Strategy.
func (s *EqualityStrategy) Search(ctx context.Context, c criteria.Criteria) ([]listing.Listing, error) {
	v, ok := s.extract(c)
	if !ok {
		return s.repo.All(ctx)
	}
	out, err := s.repo.QueryByField(ctx, s.field, filter.Equal, v)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", s.facet, err)
	}
	return out, nil
}

// PriceStrategy matches min <= price <= max.
type PriceStrategy struct {
	repo Repository
}

// NewPriceStrategy creates the price band strategy.
func NewPriceStrategy(repo Repository) *PriceStrategy {
	return &PriceStrategy{repo: repo}
}

// Facet implements Strategy.
func (s *PriceStrategy) Facet() Facet { return FacetPrice }

// Applies implements Strategy.
func (s *PriceStrategy) Applies(c criteria.Criteria) bool {
	_, ok := c.PriceRange()
	return ok
}

// Search implements Strategy.
func (s *PriceStrategy) Search(ctx context.Context, c criteria.Criteria) ([]listing.Listing, error) {
	pr, ok := c.PriceRange()
	if !ok {
		return s.repo.All(ctx)
	}
	out, err := s.repo.QueryRange(ctx, listing.FieldPrice, pr.Min, pr.Max)
	if err != nil {
		return nil, fmt.Errorf("price search: %w", err)
	}
	return out, nil
}

// KeywordStrategy matches titles starting with the keyword, case-sensitively.
type KeywordStrategy struct {
	repo Repository
}

// NewKeywordStrategy creates the title prefix strategy.
func NewKeywordStrategy(repo Repository) *KeywordStrategy {
	return &KeywordStrategy{repo: repo}
}

// Facet implements Strategy.
func (s *KeywordStrategy) Facet() Facet { return FacetKeyword }

// Applies implements Strategy.
func (s *KeywordStrategy) Applies(c criteria.Criteria) bool {
	_, ok := c.Keyword()
	return ok
}

// Search implements Strategy. Results are ordered by title.
func (s *KeywordStrategy) Search(ctx context.Context, c criteria.Criteria) ([]listing.Listing, error) {
	kw, ok := c.Keyword()
	if !ok {
		return s.repo.All(ctx)
	}
	conds, err := filter.Prefix(listing.FieldTitle, kw)
	if err != nil {
		return nil, err
	}
	out, err := s.repo.Find(ctx, listing.FieldTitle, conds...)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	return out, nil
}
