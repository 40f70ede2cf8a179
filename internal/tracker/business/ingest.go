package business

import (
	"fmt"
	"time"

	"github.com/Dacilla/PCDealTracker/internal/tracker/models"
	"github.com/Dacilla/PCDealTracker/internal/tracker/parse"
	"github.com/Dacilla/PCDealTracker/internal/tracker/storage"
	"github.com/Dacilla/PCDealTracker/metrics"
	"github.com/Dacilla/PCDealTracker/pkg/logger"
)

// RawListing is the per-listing record a scraping collaborator emits. Price
// is nil when the retailer showed no parsable price.
type RawListing struct {
	Name     string
	URL      string
	ImageURL string
	Price    *float64
	Status   models.AvailabilityStatus
	Category string
	Retailer string
}

type IngestService struct {
	refs     storage.ReferenceStore
	listings storage.ListingStore
	deals    *DealService
	log      logger.Logger
}

func NewIngestService(refs storage.ReferenceStore, listings storage.ListingStore, deals *DealService, log logger.Logger) *IngestService {
	return &IngestService{refs: refs, listings: listings, deals: deals, log: log}
}

// Ingest persists one observed listing: resolve references, split brand and
// model, compute normalization keys, create or update the row, and run deal
// detection when the price moved.
func (s *IngestService) Ingest(raw RawListing) error {
	if raw.URL == "" {
		s.log.Log("skipping listing with empty URL: %q", raw.Name)
		return nil
	}

	category, err := s.refs.CategoryByName(raw.Category)
	if err != nil {
		return fmt.Errorf("failed to look up category %q: %w", raw.Category, err)
	}
	if category == nil {
		return fmt.Errorf("%w: category %q", ErrReferenceDataMissing, raw.Category)
	}
	retailer, err := s.refs.RetailerByName(raw.Retailer)
	if err != nil {
		return fmt.Errorf("failed to look up retailer %q: %w", raw.Retailer, err)
	}
	if retailer == nil {
		return fmt.Errorf("%w: retailer %q", ErrReferenceDataMissing, raw.Retailer)
	}

	existing, err := s.listings.ListingByURL(raw.URL)
	if err != nil {
		return fmt.Errorf("failed to look up listing %s: %w", raw.URL, err)
	}

	brand, model := parse.ProductName(raw.Name)
	now := time.Now()

	if existing == nil {
		l := &models.Listing{
			RetailerID:           retailer.ID,
			CategoryID:           category.ID,
			Name:                 raw.Name,
			URL:                  raw.URL,
			ImageURL:             raw.ImageURL,
			Brand:                brand,
			Model:                model,
			NormalizedModel:      parse.NormalizeStrict(model),
			LooseNormalizedModel: parse.NormalizeLoose(model),
			CurrentPrice:         raw.Price,
			Status:               raw.Status,
			// A first price is its own historical low.
			OnSale: true,
		}
		if err := s.listings.CreateListing(l); err != nil {
			return fmt.Errorf("failed to create listing %s: %w", raw.URL, err)
		}
		metrics.RecordIngest(raw.Retailer, "created")
		return nil
	}

	priceChanged := !samePrice(existing.CurrentPrice, raw.Price)

	existing.Name = raw.Name
	existing.ImageURL = raw.ImageURL
	existing.Brand = brand
	existing.Model = model
	existing.NormalizedModel = parse.NormalizeStrict(model)
	existing.LooseNormalizedModel = parse.NormalizeLoose(model)
	existing.Status = raw.Status
	if raw.Price == nil {
		existing.CurrentPrice = nil
	}
	if err := s.listings.UpdateListing(existing); err != nil {
		return fmt.Errorf("failed to update listing %s: %w", raw.URL, err)
	}

	if priceChanged && raw.Price != nil {
		if _, err := s.deals.ProcessPriceChange(existing, *raw.Price, now); err != nil {
			return err
		}
	}
	metrics.RecordIngest(raw.Retailer, "updated")
	return nil
}

func samePrice(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
