package property

import (
	"fmt"

	"github.com/kailas-cloud/propdex/internal/db"
	"github.com/kailas-cloud/propdex/internal/domain/geo"
	"github.com/kailas-cloud/propdex/internal/domain/listing"
)

// toDocument flattens a listing into its persisted record.
func toDocument(l listing.Listing) db.Document {
	s := l.Snapshot()
	doc := db.Document{
		listing.FieldID:         s.ID,
		listing.FieldOwnerID:    s.OwnerID,
		listing.FieldOwnerEmail: s.OwnerEmail,
		listing.FieldCreatedAt:  s.CreatedAt,
	}
	for k, v := range businessFields(l) {
		doc[k] = v
	}
	return doc
}

// businessFields returns the draft-owned fields plus updated_at.
// A missing location is written as null so an update clears it.
func businessFields(l listing.Listing) db.Document {
	s := l.Snapshot()
	doc := db.Document{
		listing.FieldTitle:         s.Title,
		listing.FieldDescription:   s.Description,
		listing.FieldPrice:         s.Price,
		listing.FieldStreetAddress: s.StreetAddress,
		listing.FieldCity:          s.City,
		listing.FieldPropertyType:  s.PropertyType,
		listing.FieldListingType:   s.ListingType,
		listing.FieldLatitude:      nil,
		listing.FieldLongitude:     nil,
		listing.FieldUpdatedAt:     s.UpdatedAt,
	}
	if s.Location != nil {
		doc[listing.FieldLatitude] = s.Location.Lat
		doc[listing.FieldLongitude] = s.Location.Lon
	}
	return doc
}

// fromDocument hydrates a listing. The storage key wins over a stored id field.
func fromDocument(key string, doc db.Document) (listing.Listing, error) {
	id := key
	if id == "" {
		id = str(doc[listing.FieldID])
	}
	if id == "" {
		return listing.Listing{}, fmt.Errorf("record has no %s", listing.FieldID)
	}

	s := listing.Snapshot{
		ID:            id,
		OwnerID:       str(doc[listing.FieldOwnerID]),
		OwnerEmail:    str(doc[listing.FieldOwnerEmail]),
		Title:         str(doc[listing.FieldTitle]),
		Description:   str(doc[listing.FieldDescription]),
		StreetAddress: str(doc[listing.FieldStreetAddress]),
		City:          str(doc[listing.FieldCity]),
		PropertyType:  str(doc[listing.FieldPropertyType]),
		ListingType:   str(doc[listing.FieldListingType]),
	}
	s.Price, _ = num(doc[listing.FieldPrice])

	created, _ := num(doc[listing.FieldCreatedAt])
	updated, _ := num(doc[listing.FieldUpdatedAt])
	s.CreatedAt, s.UpdatedAt = int64(created), int64(updated)

	lat, okLat := num(doc[listing.FieldLatitude])
	lon, okLon := num(doc[listing.FieldLongitude])
	if okLat && okLon {
		p := geo.Point{Lat: lat, Lon: lon}
		s.Location = &p
	}

	return listing.Reconstruct(s), nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
