package business

import (
	"fmt"

	"github.com/Dacilla/PCDealTracker/internal/tracker/storage"
	"github.com/Dacilla/PCDealTracker/metrics"
	"github.com/Dacilla/PCDealTracker/pkg/logger"
)

// DelistingService marks listings that disappeared from a retailer's catalog
// as unavailable. It must only run after a scrape session completed without
// cancellation: an aborted session's observed set is incomplete and would
// mass-delist healthy listings.
type DelistingService struct {
	refs     storage.ReferenceStore
	listings storage.ListingStore
	log      logger.Logger
}

func NewDelistingService(refs storage.ReferenceStore, listings storage.ListingStore, log logger.Logger) *DelistingService {
	return &DelistingService{refs: refs, listings: listings, log: log}
}

// Reconcile computes stored-available minus observed for the retailer and
// bulk-updates the difference to Unavailable with the on-sale flag cleared.
// Returns the number of delisted listings.
func (s *DelistingService) Reconcile(retailerName string, observed map[string]struct{}, aborted bool) (int, error) {
	if aborted {
		s.log.Log("delisting: session for %s aborted, skipping reconciliation", retailerName)
		return 0, nil
	}

	retailer, err := s.refs.RetailerByName(retailerName)
	if err != nil {
		return 0, fmt.Errorf("failed to look up retailer %q: %w", retailerName, err)
	}
	if retailer == nil {
		return 0, fmt.Errorf("%w: retailer %q", ErrReferenceDataMissing, retailerName)
	}

	stored, err := s.listings.AvailableURLs(retailer.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load available listings for %s: %w", retailerName, err)
	}

	var missing []string
	for _, url := range stored {
		if _, ok := observed[url]; !ok {
			missing = append(missing, url)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	if err := s.listings.MarkUnavailable(retailer.ID, missing); err != nil {
		return 0, fmt.Errorf("failed to delist %d listings for %s: %w", len(missing), retailerName, err)
	}

	s.log.Log("delisting: %d listings no longer on %s", len(missing), retailerName)
	metrics.RecordDelisted(len(missing))
	return len(missing), nil
}
