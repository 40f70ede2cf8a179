package business

import (
	"fmt"

	"github.com/Dacilla/PCDealTracker/internal/tracker/parse"
	"github.com/Dacilla/PCDealTracker/internal/tracker/storage"
	"github.com/Dacilla/PCDealTracker/pkg/logger"
)

// MaintenanceService hosts the idempotent recompute passes: product
// attributes re-derived from canonical names, and listing normalization keys
// re-derived from model strings. Safe to re-run at any time.
type MaintenanceService struct {
	listings storage.ListingStore
	products storage.ProductStore
	refs     storage.ReferenceStore
	log      logger.Logger
}

func NewMaintenanceService(listings storage.ListingStore, products storage.ProductStore, refs storage.ReferenceStore, log logger.Logger) *MaintenanceService {
	return &MaintenanceService{listings: listings, products: products, refs: refs, log: log}
}

// RecomputeAttributes re-extracts the attribute record of every canonical
// product (or of a single one when productID > 0).
func (s *MaintenanceService) RecomputeAttributes(productID int64) (int, error) {
	categories, err := s.refs.Categories()
	if err != nil {
		return 0, fmt.Errorf("failed to load categories: %w", err)
	}
	categoryNames := make(map[int64]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	products, err := s.products.AllProducts()
	if err != nil {
		return 0, fmt.Errorf("failed to load products: %w", err)
	}

	updated := 0
	for i := range products {
		p := &products[i]
		if productID > 0 && p.ID != productID {
			continue
		}
		attrs := attributeMap(p.CanonicalName, categoryNames[p.CategoryID])
		if err := s.products.UpdateAttributes(p.ID, attrs); err != nil {
			s.log.Log("maintenance: failed to update attributes for product %d: %v", p.ID, err)
			continue
		}
		updated++
	}
	s.log.Log("maintenance: recomputed attributes for %d products", updated)
	return updated, nil
}

// RefreshListingKeys recomputes both normalization keys for every listing.
func (s *MaintenanceService) RefreshListingKeys() (int, error) {
	listings, err := s.listings.AllListings()
	if err != nil {
		return 0, fmt.Errorf("failed to load listings: %w", err)
	}

	updated := 0
	for i := range listings {
		l := &listings[i]
		strict := parse.NormalizeStrict(l.Model)
		loose := parse.NormalizeLoose(l.Model)
		if strict == l.NormalizedModel && loose == l.LooseNormalizedModel {
			continue
		}
		if err := s.listings.UpdateNormalizedKeys(l.ID, strict, loose); err != nil {
			s.log.Log("maintenance: failed to refresh keys for listing %d: %v", l.ID, err)
			continue
		}
		updated++
	}
	s.log.Log("maintenance: refreshed keys for %d listings", updated)
	return updated, nil
}
