package chi

import (
	"time"

	"github.com/kailas-cloud/propdex/internal/domain/listing"
	propertyuc "github.com/kailas-cloud/propdex/internal/usecase/property"
)

type listingJSON struct {
	ID            string        `json:"id"`
	OwnerUserID   string        `json:"owner_user_id"`
	OwnerEmail    string        `json:"owner_email"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Price         float64       `json:"price"`
	StreetAddress string        `json:"street_address"`
	City          string        `json:"city"`
	PropertyType  string        `json:"property_type"`
	ListingType   string        `json:"listing_type"`
	Location      *locationJSON `json:"location,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type payloadJSON struct {
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

func listingToJSON(l listing.Listing) listingJSON {
	out := listingJSON{
		ID:            l.ID(),
		OwnerUserID:   l.OwnerID(),
		OwnerEmail:    l.OwnerEmail(),
		Title:         l.Title(),
		Description:   l.Description(),
		Price:         l.Price(),
		StreetAddress: l.StreetAddress(),
		City:          l.City(),
		PropertyType:  l.PropertyType(),
		ListingType:   l.ListingType(),
		CreatedAt:     l.CreatedAt(),
		UpdatedAt:     l.UpdatedAt(),
	}
	if p, ok := l.Location(); ok {
		lat, lon := p.Lat, p.Lon
		out.Location = &locationJSON{Latitude: &lat, Longitude: &lon}
	}
	return out
}

func payloadToJSON(p propertyuc.Payload) payloadJSON {
	out := payloadJSON{Count: p.Count, Success: p.Success, Error: p.Error}
	switch d := p.Data.(type) {
	case listing.Listing:
		out.Data = listingToJSON(d)
	case []listing.Listing:
		items := make([]listingJSON, len(d))
		for i, l := range d {
			items[i] = listingToJSON(l)
		}
		out.Data = items
	default:
		out.Data = d
	}
	return out
}
