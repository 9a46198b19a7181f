package propdex

import (
	"fmt"

	"github.com/kailas-cloud/propdex/internal/domain/geo"
	"github.com/kailas-cloud/propdex/internal/domain/listing"
	"github.com/kailas-cloud/propdex/internal/domain/search/criteria"
	propertyuc "github.com/kailas-cloud/propdex/internal/usecase/property"
)

func toCaller(o Owner) propertyuc.Caller {
	return propertyuc.Caller{UserID: o.ID, Email: o.Email}
}

func toDomainDraft(d Draft) (listing.Draft, error) {
	price := d.Price
	in := listing.DraftInput{
		Title:         d.Title,
		Description:   d.Description,
		Price:         &price,
		StreetAddress: d.StreetAddress,
		City:          d.City,
		PropertyType:  d.PropertyType,
		ListingType:   d.ListingType,
	}
	if d.Location != nil {
		in.Location = &geo.Point{Lat: d.Location.Latitude, Lon: d.Location.Longitude}
	}
	return listing.NewDraft(in)
}

func toCriteria(q Query) (criteria.Criteria, error) {
	var opts []criteria.Option
	if q.City != "" {
		opts = append(opts, criteria.WithCity(q.City))
	}
	if q.Price != nil {
		opts = append(opts, criteria.WithPriceRange(q.Price.Min, q.Price.Max))
	}
	if q.PropertyType != "" {
		opts = append(opts, criteria.WithPropertyType(q.PropertyType))
	}
	if q.ListingType != "" {
		opts = append(opts, criteria.WithListingType(q.ListingType))
	}
	if q.Keyword != "" {
		opts = append(opts, criteria.WithKeyword(q.Keyword))
	}
	if q.Near != nil {
		opts = append(opts, criteria.WithLocation(q.Near.Latitude, q.Near.Longitude, q.Near.RadiusKm))
	}
	return criteria.New(opts...)
}

func fromDomainListing(l listing.Listing) Listing {
	out := Listing{
		ID:            l.ID(),
		OwnerID:       l.OwnerID(),
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
		out.Location = &Location{Latitude: p.Lat, Longitude: p.Lon}
	}
	return out
}

func listingFromData(data any) (Listing, error) {
	l, ok := data.(listing.Listing)
	if !ok {
		return Listing{}, fmt.Errorf("propdex: unexpected response payload %T", data)
	}
	return fromDomainListing(l), nil
}

func listingsFromData(data any) ([]Listing, error) {
	ls, ok := data.([]listing.Listing)
	if !ok {
		return nil, fmt.Errorf("propdex: unexpected response payload %T", data)
	}
	out := make([]Listing, 0, len(ls))
	for _, l := range ls {
		out = append(out, fromDomainListing(l))
	}
	return out, nil
}
