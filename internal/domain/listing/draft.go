package listing

import (
	"errors"
	"fmt"
	"math"

	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/geo"
)

// MaxTextSize bounds every free-text field in bytes.
const MaxTextSize = 16384

// Draft holds the business fields of a listing (create/update input).
type Draft struct {
	title         string
	description   string
	price         float64
	streetAddress string
	city          string
	propertyType  string
	listingType   string
	location      geo.Point
	hasLocation   bool
}

// DraftInput carries raw draft fields into NewDraft.
// Price is a pointer so that a missing price is distinguishable from zero.
type DraftInput struct {
	Title         string
	Description   string
	Price         *float64
	StreetAddress string
	City          string
	PropertyType  string
	ListingType   string
	Location      *geo.Point
}

// NewDraft validates the input and creates a Draft.
func NewDraft(in DraftInput) (Draft, error) {
	var errs []error

	required := []struct {
		name, value string
	}{
		{FieldDescription, in.Description},
		{FieldStreetAddress, in.StreetAddress},
		{FieldCity, in.City},
		{FieldPropertyType, in.PropertyType},
		{FieldListingType, in.ListingType},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.name))
		}
	}

	texts := []struct {
		name, value string
	}{
		{FieldTitle, in.Title},
		{FieldDescription, in.Description},
		{FieldStreetAddress, in.StreetAddress},
	}
	for _, t := range texts {
		if len(t.value) > MaxTextSize {
			errs = append(errs, fmt.Errorf("%s too large (max %d bytes)", t.name, MaxTextSize))
		}
	}

	switch {
	case in.Price == nil:
		errs = append(errs, fmt.Errorf("%s is required", FieldPrice))
	case math.IsNaN(*in.Price) || math.IsInf(*in.Price, 0):
		errs = append(errs, fmt.Errorf("%s must be a finite number", FieldPrice))
	case *in.Price < 0:
		errs = append(errs, fmt.Errorf("%s must not be negative", FieldPrice))
	}

	if in.Location != nil && !geo.ValidateCoordinates(in.Location.Lat, in.Location.Lon) {
		errs = append(errs, fmt.Errorf("location has invalid coordinates: lat=%g lon=%g",
			in.Location.Lat, in.Location.Lon))
	}

	if len(errs) > 0 {
		return Draft{}, fmt.Errorf("%w: %w", domain.ErrValidation, errors.Join(errs...))
	}

	d := Draft{
		title:         in.Title,
		description:   in.Description,
		price:         *in.Price,
		streetAddress: in.StreetAddress,
		city:          in.City,
		propertyType:  in.PropertyType,
		listingType:   in.ListingType,
	}
	if in.Location != nil {
		d.location = *in.Location
		d.hasLocation = true
	}
	return d, nil
}

// Title returns the title.
func (d Draft) Title() string { return d.title }

// Description returns the description.
func (d Draft) Description() string { return d.description }

// Price returns the price.
func (d Draft) Price() float64 { return d.price }

// StreetAddress returns the street address.
func (d Draft) StreetAddress() string { return d.streetAddress }

// City returns the city.
func (d Draft) City() string { return d.city }

// PropertyType returns the property category.
func (d Draft) PropertyType() string { return d.propertyType }

// ListingType returns the listing category.
func (d Draft) ListingType() string { return d.listingType }

// Location returns the structured location, if any.
func (d Draft) Location() (geo.Point, bool) { return d.location, d.hasLocation }
