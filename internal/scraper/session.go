package scraper

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Dacilla/PCDealTracker/config"
	"github.com/Dacilla/PCDealTracker/internal/tracker/business"
	"github.com/Dacilla/PCDealTracker/pkg/logger"
)

const (
	defaultMaxConcurrency    = 4
	defaultRequestsPerMinute = 60
)

// Coordinator runs one scrape session: fetch every feed, ingest each observed
// listing through a bounded worker pool, then reconcile delistings per
// retailer. Reconciliation is skipped for a retailer whose observation was
// incomplete, whether through a feed failure or session cancellation.
type Coordinator struct {
	ingest  *business.IngestService
	delist  *business.DelistingService
	log     logger.Logger
	limiter *rate.Limiter
	workers int
}

func NewCoordinator(cfg config.ScraperConfig, ingest *business.IngestService, delist *business.DelistingService, log logger.Logger) *Coordinator {
	workers := cfg.MaxConcurrency
	if workers <= 0 {
		workers = defaultMaxConcurrency
	}
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = defaultRequestsPerMinute
	}
	return &Coordinator{
		ingest:  ingest,
		delist:  delist,
		log:     log,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		workers: workers,
	}
}

type retailerSession struct {
	observed map[string]struct{}
	aborted  bool
}

// Run processes all feeds. Ingest failures for individual listings are logged
// and do not fail the session; those listings simply count as unobserved for
// this run and their stored state is left untouched by reconciliation because
// the URL was still observed.
func (c *Coordinator) Run(ctx context.Context, feeds []Feed) error {
	sessions := map[string]*retailerSession{}
	order := []string{}
	session := func(retailer string) *retailerSession {
		s, ok := sessions[retailer]
		if !ok {
			s = &retailerSession{observed: map[string]struct{}{}}
			sessions[retailer] = s
			order = append(order, retailer)
		}
		return s
	}

	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup

	for _, feed := range feeds {
		s := session(feed.Retailer())
		if ctx.Err() != nil {
			s.aborted = true
			continue
		}

		listings, err := feed.Fetch(ctx)
		if err != nil {
			c.log.Log("scrape: fetch %s/%s failed: %v", feed.Retailer(), feed.Category(), err)
			s.aborted = true
			continue
		}
		c.log.Log("scrape: %s/%s yielded %d listings", feed.Retailer(), feed.Category(), len(listings))

		for _, raw := range listings {
			if raw.URL != "" {
				s.observed[raw.URL] = struct{}{}
			}
			if err := c.limiter.Wait(ctx); err != nil {
				s.aborted = true
				break
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(raw business.RawListing) {
				defer wg.Done()
				defer func() { <-sem }()
				if err := c.ingest.Ingest(raw); err != nil {
					c.log.Log("scrape: ingest %s failed: %v", raw.URL, err)
				}
			}(raw)
		}
	}
	wg.Wait()

	if ctx.Err() != nil {
		for _, s := range sessions {
			s.aborted = true
		}
	}

	for _, retailer := range order {
		s := sessions[retailer]
		if _, err := c.delist.Reconcile(retailer, s.observed, s.aborted); err != nil {
			c.log.Log("scrape: reconciliation for %s failed: %v", retailer, err)
		}
	}
	return ctx.Err()
}
