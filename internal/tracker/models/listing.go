package models

import "time"

type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "Available"
	StatusUnavailable AvailabilityStatus = "Unavailable"
	StatusEndOfLife   AvailabilityStatus = "EndOfLife"
)

// Listing is one retailer's observation of a product. The URL is the identity
// key within a retailer; a listing is never deleted in normal operation.
type Listing struct {
	ID                   int64
	RetailerID           int64
	CategoryID           int64
	Name                 string
	URL                  string
	ImageURL             string
	Brand                string
	Model                string
	NormalizedModel      string
	LooseNormalizedModel string
	CurrentPrice         *float64
	PreviousPrice        *float64
	Status               AvailabilityStatus
	OnSale               bool
	ProductID            *int64
}

// PricePoint is one append-only price-history entry. Entries are appended
// only when the listing's price actually changed.
type PricePoint struct {
	ID         int64
	ListingID  int64
	Price      float64
	RecordedAt time.Time
}
