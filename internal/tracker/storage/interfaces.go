package storage

import (
	"time"

	"github.com/Dacilla/PCDealTracker/internal/tracker/models"
)

// The core never manages connections or transaction lifecycles itself; these
// interfaces describe the operations it needs from its storage collaborator.
// Lookups return (nil, nil) when the row does not exist.

type ReferenceStore interface {
	CategoryByName(name string) (*models.Category, error)
	RetailerByName(name string) (*models.Retailer, error)
	Categories() ([]models.Category, error)
}

type ListingStore interface {
	ListingByURL(url string) (*models.Listing, error)

	// CreateListing inserts the listing and, when a price is present, its
	// first history point in one transaction. The new ID is written back.
	CreateListing(l *models.Listing) error

	// UpdateListing persists the listing's scalar columns. Price transitions
	// that must stay in sync with history go through ApplyPriceUpdate.
	UpdateListing(l *models.Listing) error

	// ApplyPriceUpdate commits one price change atomically: append a history
	// point, shift current price into previous price, set the new price and
	// the on-sale flag. The listing struct is updated in place.
	ApplyPriceUpdate(l *models.Listing, newPrice float64, onSale bool, at time.Time) error

	AvailableURLs(retailerID int64) ([]string, error)

	// MarkUnavailable flags every given URL of the retailer as Unavailable
	// and clears its on-sale flag in one statement.
	MarkUnavailable(retailerID int64, urls []string) error

	UnassignedListings() ([]models.Listing, error)
	AllListings() ([]models.Listing, error)
	UpdateNormalizedKeys(listingID int64, strict, loose string) error
}

type HistoryStore interface {
	PriceHistory(listingID int64) ([]models.PricePoint, error)

	// PurgeHistory is the rare administrative cascade; listings themselves
	// are never deleted in normal operation.
	PurgeHistory(listingID int64) error
}

type ProductStore interface {
	ProductByID(id int64) (*models.Product, error)
	AllProducts() ([]models.Product, error)

	// CreateProduct inserts the canonical product and attaches the member
	// listings in one transaction. The new ID is written back.
	CreateProduct(p *models.Product, listingIDs []int64) error

	AttachListings(productID int64, listingIDs []int64) error
	UpdateAttributes(productID int64, attrs map[string]interface{}) error

	// PriceSummary derives the best current offer and the all-time low
	// across the product's member listings.
	PriceSummary(productID int64) (*models.ProductPriceSummary, error)
}
