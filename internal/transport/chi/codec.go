package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/geo"
	"github.com/kailas-cloud/propdex/internal/domain/listing"
	"github.com/kailas-cloud/propdex/internal/domain/search/criteria"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type locationJSON struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type draftJSON struct {
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Price         *float64      `json:"price"`
	StreetAddress string        `json:"street_address"`
	City          string        `json:"city"`
	PropertyType  string        `json:"property_type"`
	ListingType   string        `json:"listing_type"`
	Location      *locationJSON `json:"location,omitempty"`
}

type priceRangeJSON struct {
	MinPrice *float64 `json:"min_price"`
	MaxPrice *float64 `json:"max_price"`
}

type searchLocationJSON struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Radius    float64  `json:"radius"`
}

type searchJSON struct {
	City         string              `json:"city"`
	PriceRange   *priceRangeJSON     `json:"price_range"`
	PropertyType string              `json:"property_type"`
	ListingType  string              `json:"listing_type"`
	Keyword      string              `json:"keyword"`
	Location     *searchLocationJSON `json:"location"`
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrValidation, err)
}

// decodeDrafts reads one draft object or an array of drafts.
// batch reports whether the body was an array.
func decodeDrafts(r io.Reader) (drafts []listing.Draft, batch bool, err error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return nil, false, invalid(err)
	}
	if len(body) > maxBodyBytes {
		return nil, false, invalid(fmt.Errorf("body exceeds %d bytes", maxBodyBytes))
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, false, invalid(errors.New("empty body"))
	}

	var items []draftJSON
	if body[0] == '[' {
		batch = true
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, true, invalid(err)
		}
	} else {
		var one draftJSON
		if err := json.Unmarshal(body, &one); err != nil {
			return nil, false, invalid(err)
		}
		items = []draftJSON{one}
	}

	drafts = make([]listing.Draft, 0, len(items))
	for i, item := range items {
		d, err := item.toDraft()
		if err != nil {
			if batch {
				return nil, true, fmt.Errorf("item %d: %w", i, err)
			}
			return nil, false, err
		}
		drafts = append(drafts, d)
	}
	return drafts, batch, nil
}

// decodeDraft reads exactly one draft object.
func decodeDraft(r io.Reader) (listing.Draft, error) {
	var in draftJSON
	if err := json.NewDecoder(io.LimitReader(r, maxBodyBytes)).Decode(&in); err != nil {
		return listing.Draft{}, invalid(err)
	}
	return in.toDraft()
}

func (d draftJSON) toDraft() (listing.Draft, error) {
	in := listing.DraftInput{
		Title:         d.Title,
		Description:   d.Description,
		Price:         d.Price,
		StreetAddress: d.StreetAddress,
		City:          d.City,
		PropertyType:  d.PropertyType,
		ListingType:   d.ListingType,
	}
	if d.Location != nil {
		if d.Location.Latitude == nil || d.Location.Longitude == nil {
			return listing.Draft{}, invalid(errors.New("location requires latitude and longitude"))
		}
		in.Location = &geo.Point{Lat: *d.Location.Latitude, Lon: *d.Location.Longitude}
	}
	return listing.NewDraft(in) //nolint:wrapcheck // already carries ErrValidation
}

// decodeCriteria reads search criteria. An empty body yields empty criteria.
func decodeCriteria(r io.Reader) (criteria.Criteria, error) {
	var in searchJSON
	err := json.NewDecoder(io.LimitReader(r, maxBodyBytes)).Decode(&in)
	if err != nil && !errors.Is(err, io.EOF) {
		return criteria.Criteria{}, invalid(err)
	}

	opts := []criteria.Option{
		criteria.WithCity(in.City),
		criteria.WithPropertyType(in.PropertyType),
		criteria.WithListingType(in.ListingType),
		criteria.WithKeyword(in.Keyword),
	}
	if pr := in.PriceRange; pr != nil {
		if pr.MinPrice == nil || pr.MaxPrice == nil {
			return criteria.Criteria{}, invalid(errors.New("price_range requires min_price and max_price"))
		}
		opts = append(opts, criteria.WithPriceRange(*pr.MinPrice, *pr.MaxPrice))
	}
	if loc := in.Location; loc != nil {
		if loc.Latitude == nil || loc.Longitude == nil {
			return criteria.Criteria{}, invalid(errors.New("location requires latitude and longitude"))
		}
		opts = append(opts, criteria.WithLocation(*loc.Latitude, *loc.Longitude, loc.Radius))
	}

	return criteria.New(opts...) //nolint:wrapcheck // already carries ErrValidation
}
