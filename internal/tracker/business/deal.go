package business

import (
	"fmt"
	"math"
	"time"

	"github.com/Dacilla/PCDealTracker/internal/tracker/models"
	"github.com/Dacilla/PCDealTracker/internal/tracker/storage"
	"github.com/Dacilla/PCDealTracker/metrics"
	"github.com/Dacilla/PCDealTracker/pkg/logger"
)

type DealReason string

const (
	ReasonAllTimeLow   DealReason = "all_time_low"
	ReasonPriceDrop    DealReason = "price_drop"
	ReasonBelowAverage DealReason = "below_average"
)

// DealConfig tunes the detector. Zero values fall back to the defaults:
// a 10% drop versus the immediately preceding price and a 30-day window
// for the rolling average.
type DealConfig struct {
	DropPercent float64
	WindowDays  int
}

func (c DealConfig) withDefaults() DealConfig {
	if c.DropPercent <= 0 {
		c.DropPercent = 10
	}
	if c.WindowDays <= 0 {
		c.WindowDays = 30
	}
	return c
}

// EvaluateDeal decides whether a new price constitutes a deal, given the
// immediately preceding price and the listing's recorded history. The checks
// are ORed; each true check contributes its reason.
func EvaluateDeal(newPrice float64, preceding *float64, history []models.PricePoint, now time.Time, cfg DealConfig) []DealReason {
	cfg = cfg.withDefaults()
	var reasons []DealReason

	lowest := math.Inf(1)
	for _, p := range history {
		if p.Price < lowest {
			lowest = p.Price
		}
	}
	// A first price is trivially its own historical low.
	if len(history) == 0 || newPrice <= lowest {
		reasons = append(reasons, ReasonAllTimeLow)
	}

	if preceding != nil && newPrice < *preceding*(1-cfg.DropPercent/100) {
		reasons = append(reasons, ReasonPriceDrop)
	}

	cutoff := now.Add(-time.Duration(cfg.WindowDays) * 24 * time.Hour)
	var sum float64
	var n int
	for _, p := range history {
		if p.RecordedAt.After(cutoff) {
			sum += p.Price
			n++
		}
	}
	if n > 0 && newPrice < sum/float64(n) {
		reasons = append(reasons, ReasonBelowAverage)
	}

	return reasons
}

// DealService commits price changes. Each change is one atomic unit: history
// append, previous/current price shift, on-sale flag.
type DealService struct {
	listings storage.ListingStore
	history  storage.HistoryStore
	cfg      DealConfig
	log      logger.Logger
}

func NewDealService(listings storage.ListingStore, history storage.HistoryStore, cfg DealConfig, log logger.Logger) *DealService {
	return &DealService{listings: listings, history: history, cfg: cfg.withDefaults(), log: log}
}

// ProcessPriceChange evaluates and commits one observed price change. The
// caller guarantees newPrice actually differs from the stored current price.
func (s *DealService) ProcessPriceChange(l *models.Listing, newPrice float64, now time.Time) ([]DealReason, error) {
	history, err := s.history.PriceHistory(l.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history for listing %d: %w", l.ID, err)
	}

	reasons := EvaluateDeal(newPrice, l.CurrentPrice, history, now, s.cfg)
	onSale := len(reasons) > 0

	if err := s.listings.ApplyPriceUpdate(l, newPrice, onSale, now); err != nil {
		return nil, fmt.Errorf("failed to apply price update for listing %d: %w", l.ID, err)
	}

	if onSale {
		s.log.Log("deal: %s now %.2f (%v)", l.Name, newPrice, reasons)
	}
	metrics.RecordPriceChange(reasonStrings(reasons))
	return reasons, nil
}

func reasonStrings(reasons []DealReason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}
