package property

import (
	"github.com/kailas-cloud/propdex/internal/db"
	"github.com/kailas-cloud/propdex/internal/domain/listing"
)

// indexDefinition covers every field a strategy or ListByOwner filters or sorts on.
func indexDefinition(collection string) *db.IndexDefinition {
	return db.NewIndex(collection + "-idx").
		OnJSON().
		Collection(collection).
		Tag(listing.FieldOwnerID).
		Tag(listing.FieldCity).
		Tag(listing.FieldPropertyType).
		Tag(listing.FieldListingType).
		SortableTag(listing.FieldTitle).
		Numeric(listing.FieldPrice).
		Numeric(listing.FieldLatitude).
		Numeric(listing.FieldLongitude).
		Numeric(listing.FieldCreatedAt).
		Numeric(listing.FieldUpdatedAt).
		MustBuild()
}
