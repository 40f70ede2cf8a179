package models

import "time"

// Product is the canonical cross-retailer aggregate for one physical product.
// Created by the identity resolver, extended on later runs, never deleted in
// normal operation.
type Product struct {
	ID            int64
	CanonicalName string
	Brand         string
	Model         string
	CategoryID    int64
	Attributes    map[string]interface{}
	ListingIDs    []int64
}

// ProductPriceSummary carries the derived read-side fields for a product:
// current best offer and the all-time low across member listings.
type ProductPriceSummary struct {
	ProductID          int64
	BestPrice          *float64
	BestRetailerID     *int64
	AllTimeLowPrice    *float64
	AllTimeLowDate     *time.Time
	AllTimeLowRetailer *int64
}
