// Package criteria holds the search request value object.
package criteria

import (
	"errors"
	"fmt"
	"math"

	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/geo"
)

// DefaultRadiusKm is used when a location criterion omits the radius.
const DefaultRadiusKm = 5.0

// PriceRange is an inclusive price band.
type PriceRange struct {
	Min float64
	Max float64
}

// Location is a proximity criterion.
type Location struct {
	Point    geo.Point
	RadiusKm float64
}

// Criteria is an immutable set of optional search facets.
type Criteria struct {
	city         string
	price        PriceRange
	hasPrice     bool
	propertyType string
	listingType  string
	keyword      string
	location     Location
	hasLocation  bool
}

// Option sets one facet on a Criteria under construction.
type Option func(*Criteria) error

// New builds and validates Criteria from options.
func New(opts ...Option) (Criteria, error) {
	var c Criteria
	var errs []error
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return Criteria{}, fmt.Errorf("%w: %w", domain.ErrValidation, errors.Join(errs...))
	}
	return c, nil
}

// WithCity restricts to an exact city. Empty means absent.
func WithCity(city string) Option {
	return func(c *Criteria) error {
		c.city = city
		return nil
	}
}

// WithPriceRange restricts to min <= price <= max.
func WithPriceRange(lo, hi float64) Option {
	return func(c *Criteria) error {
		if !finite(lo) || !finite(hi) {
			return fmt.Errorf("price range bounds must be finite numbers")
		}
		if lo > hi {
			return fmt.Errorf("min_price %g exceeds max_price %g", lo, hi)
		}
		c.price = PriceRange{Min: lo, Max: hi}
		c.hasPrice = true
		return nil
	}
}

// WithPropertyType restricts to an exact property category. Empty means absent.
func WithPropertyType(t string) Option {
	return func(c *Criteria) error {
		c.propertyType = t
		return nil
	}
}

// WithListingType restricts to an exact listing category. Empty means absent.
func WithListingType(t string) Option {
	return func(c *Criteria) error {
		c.listingType = t
		return nil
	}
}

// WithKeyword restricts to titles starting with keyword (case-sensitive). Empty means absent.
func WithKeyword(keyword string) Option {
	return func(c *Criteria) error {
		c.keyword = keyword
		return nil
	}
}

// WithLocation restricts to listings within radiusKm of (lat, lon).
// A zero radius falls back to DefaultRadiusKm.
func WithLocation(lat, lon, radiusKm float64) Option {
	return func(c *Criteria) error {
		p, err := geo.NewPoint(lat, lon)
		if err != nil {
			return err
		}
		if radiusKm == 0 {
			radiusKm = DefaultRadiusKm
		}
		if !finite(radiusKm) || radiusKm < 0 {
			return fmt.Errorf("radius must be a positive number, got %g", radiusKm)
		}
		c.location = Location{Point: p, RadiusKm: radiusKm}
		c.hasLocation = true
		return nil
	}
}

// City returns the city facet.
func (c Criteria) City() (string, bool) { return c.city, c.city != "" }

// PriceRange returns the price facet.
func (c Criteria) PriceRange() (PriceRange, bool) { return c.price, c.hasPrice }

// PropertyType returns the property type facet.
func (c Criteria) PropertyType() (string, bool) { return c.propertyType, c.propertyType != "" }

// ListingType returns the listing type facet.
func (c Criteria) ListingType() (string, bool) { return c.listingType, c.listingType != "" }

// Keyword returns the keyword facet.
func (c Criteria) Keyword() (string, bool) { return c.keyword, c.keyword != "" }

// Location returns the geo facet.
func (c Criteria) Location() (Location, bool) { return c.location, c.hasLocation }

// IsEmpty reports whether no facet is set.
func (c Criteria) IsEmpty() bool {
	return c.city == "" && !c.hasPrice && c.propertyType == "" &&
		c.listingType == "" && c.keyword == "" && !c.hasLocation
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
