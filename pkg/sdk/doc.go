// Package propdex provides an embeddable Go client for the propdex
// real-estate listing service, backed by Valkey, Redis, Firestore or an
// in-memory store.
//
// Listings are created on behalf of an owner and discovered through faceted
// search. Every facet present in a query narrows the result (logical AND).
//
//	client, _ := propdex.New(ctx, propdex.WithValkey("localhost:6379", ""))
//	defer client.Close()
//
//	owner := propdex.Owner{ID: "U1", Email: "u1@example.com"}
//	house, _ := client.Create(ctx, owner, propdex.Draft{
//	    Description:   "Three bedrooms near the park",
//	    Price:         250000,
//	    StreetAddress: "742 Evergreen Terrace",
//	    City:          "Springfield",
//	    PropertyType:  "house",
//	    ListingType:   "sale",
//	})
//
//	hits, _ := client.Search(ctx, propdex.Query{
//	    City:  "Springfield",
//	    Price: &propdex.PriceRange{Min: 200000, Max: 300000},
//	})
package propdex
