package listing

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/geo"
)

// Persisted field names. Every listing field is a top-level document field.
const (
	FieldID            = "id"
	FieldOwnerID       = "owner_user_id"
	FieldOwnerEmail    = "owner_email"
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldPrice         = "price"
	FieldStreetAddress = "street_address"
	FieldCity          = "city"
	FieldPropertyType  = "property_type"
	FieldListingType   = "listing_type"
	FieldLatitude      = "latitude"
	FieldLongitude     = "longitude"
	FieldCreatedAt     = "created_at"
	FieldUpdatedAt     = "updated_at"
)

// Listing is a persisted property record (immutable value object).
// All fields are scalars so two listings compare with ==.
type Listing struct {
	id         string
	ownerID    string
	ownerEmail string
	draft      Draft
	createdAt  int64 // unix millis
	updatedAt  int64 // unix millis
}

// Snapshot is the flat form of a Listing used for storage hydration and transport.
type Snapshot struct {
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
	Location      *geo.Point
	CreatedAt     int64
	UpdatedAt     int64
}

// New stamps a validated draft with identity, ownership and timestamps.
func New(id, ownerID, ownerEmail string, d Draft, now time.Time) (Listing, error) {
	if id == "" {
		return Listing{}, fmt.Errorf("listing ID is required: %w", domain.ErrValidation)
	}
	if ownerID == "" {
		return Listing{}, fmt.Errorf("owner ID is required: %w", domain.ErrValidation)
	}
	ts := now.UnixMilli()
	return Listing{
		id:         id,
		ownerID:    ownerID,
		ownerEmail: ownerEmail,
		draft:      d,
		createdAt:  ts,
		updatedAt:  ts,
	}, nil
}

// Reconstruct creates a Listing without validation (storage hydration).
func Reconstruct(s Snapshot) Listing {
	d := Draft{
		title:         s.Title,
		description:   s.Description,
		price:         s.Price,
		streetAddress: s.StreetAddress,
		city:          s.City,
		propertyType:  s.PropertyType,
		listingType:   s.ListingType,
	}
	if s.Location != nil {
		d.location = *s.Location
		d.hasLocation = true
	}
	return Listing{
		id:         s.ID,
		ownerID:    s.OwnerID,
		ownerEmail: s.OwnerEmail,
		draft:      d,
		createdAt:  s.CreatedAt,
		updatedAt:  s.UpdatedAt,
	}
}

// WithDraft returns a copy whose business fields come from d and whose
// updated_at is refreshed. Identity, owner and created_at are preserved.
// updated_at always moves forward, even when the clock has not.
func (l Listing) WithDraft(d Draft, now time.Time) Listing {
	ts := now.UnixMilli()
	if ts <= l.updatedAt {
		ts = l.updatedAt + 1
	}
	out := l
	out.draft = d
	out.updatedAt = ts
	return out
}

// ID returns the listing identifier.
func (l Listing) ID() string { return l.id }

// OwnerID returns the owner's user identifier.
func (l Listing) OwnerID() string { return l.ownerID }

// OwnerEmail returns the owner's contact address.
func (l Listing) OwnerEmail() string { return l.ownerEmail }

// Title returns the listing title.
func (l Listing) Title() string { return l.draft.title }

// Description returns the free-text description.
func (l Listing) Description() string { return l.draft.description }

// Price returns the asking price.
func (l Listing) Price() float64 { return l.draft.price }

// StreetAddress returns the street address.
func (l Listing) StreetAddress() string { return l.draft.streetAddress }

// City returns the locality.
func (l Listing) City() string { return l.draft.city }

// PropertyType returns the property category (house, flat, ...).
func (l Listing) PropertyType() string { return l.draft.propertyType }

// ListingType returns the listing category (sale, rent, ...).
func (l Listing) ListingType() string { return l.draft.listingType }

// Location returns the structured location if one was stored.
func (l Listing) Location() (geo.Point, bool) { return l.draft.location, l.draft.hasLocation }

// Draft returns the business fields of the listing.
func (l Listing) Draft() Draft { return l.draft }

// CreatedAt returns the creation time.
func (l Listing) CreatedAt() time.Time { return time.UnixMilli(l.createdAt).UTC() }

// UpdatedAt returns the last update time.
func (l Listing) UpdatedAt() time.Time { return time.UnixMilli(l.updatedAt).UTC() }

// IsOwnedBy reports whether userID owns the listing.
func (l Listing) IsOwnedBy(userID string) bool { return userID != "" && l.ownerID == userID }

// Snapshot returns the flat form of the listing.
func (l Listing) Snapshot() Snapshot {
	s := Snapshot{
		ID:            l.id,
		OwnerID:       l.ownerID,
		OwnerEmail:    l.ownerEmail,
		Title:         l.draft.title,
		Description:   l.draft.description,
		Price:         l.draft.price,
		StreetAddress: l.draft.streetAddress,
		City:          l.draft.city,
		PropertyType:  l.draft.propertyType,
		ListingType:   l.draft.listingType,
		CreatedAt:     l.createdAt,
		UpdatedAt:     l.updatedAt,
	}
	if l.draft.hasLocation {
		p := l.draft.location
		s.Location = &p
	}
	return s
}
