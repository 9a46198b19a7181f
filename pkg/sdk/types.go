package propdex

import "time"

// GeoSource selects where listing coordinates are read from.
type GeoSource string

// Geo source constants.
const (
	GeoSourceLocation GeoSource = "location" // structured Location field
	GeoSourceAddress  GeoSource = "address"  // StreetAddress holding "lat,lng"
)

// EmptyCriteria decides what a query without any facet returns.
type EmptyCriteria string

// Empty criteria policies.
const (
	EmptyCriteriaAll  EmptyCriteria = "all"
	EmptyCriteriaNone EmptyCriteria = "none"
)

// Owner identifies the user a listing is created or mutated on behalf of.
type Owner struct {
	ID    string
	Email string
}

// Location is a WGS84 coordinate.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Draft holds the business fields of a listing.
type Draft struct {
	Title         string
	Description   string
	Price         float64
	StreetAddress string
	City          string
	PropertyType  string
	ListingType   string
	Location      *Location
}

// Listing is a persisted listing.
type Listing struct {
	ID            string
	OwnerID       string
	OwnerEmail    string
	Title         string
	Description   string
	Price         float64
	StreetAddress string
	City          string
	PropertyType  string
	ListingType   string
	Location      *Location
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PriceRange bounds the price inclusively.
type PriceRange struct {
	Min float64
	Max float64
}

// Near restricts results to a radius around a point. Zero RadiusKm means 5 km.
type Near struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// Query is a faceted search. Zero-valued facets are ignored.
type Query struct {
	City         string
	Price        *PriceRange
	PropertyType string
	ListingType  string
	Keyword      string // case-sensitive title prefix
	Near         *Near
}
