package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/Dacilla/PCDealTracker/config"
	"github.com/Dacilla/PCDealTracker/internal/scraper"
	"github.com/Dacilla/PCDealTracker/internal/tracker/business"
	"github.com/Dacilla/PCDealTracker/internal/tracker/storage"
	"github.com/Dacilla/PCDealTracker/internal/tracker/storage/repositories"
	"github.com/Dacilla/PCDealTracker/metrics"
	"github.com/Dacilla/PCDealTracker/pkg/dbconnect"
	"github.com/Dacilla/PCDealTracker/pkg/dbconnect/migration"
	"github.com/Dacilla/PCDealTracker/pkg/logger"
)

// TrackerServer owns the database connection and wires the storage and
// business layers for each run mode.
type TrackerServer struct {
	dbconnect.DbConnector
	cfg *config.AppConfig
	log *logger.BaseLogger
}

func NewTrackerServer(dbCon dbconnect.DbConnector, cfg *config.AppConfig) *TrackerServer {
	return &TrackerServer{
		DbConnector: dbCon,
		cfg:         cfg,
		log:         logger.NewLogger(os.Stdout, "[tracker]"),
	}
}

func (s *TrackerServer) Migrate() error {
	db, err := s.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect for migration: %w", err)
	}

	migrationApply := []migration.MigrationInterface{
		&storage.MigrationsSchema{},
		&storage.TrackerSchema{},
		&storage.TrackerReferenceData{},
		&storage.TrackerProducts{},
		&storage.TrackerListings{},
		&storage.TrackerPriceHistory{},
		&storage.TrackerSeedData{},
	}
	for _, m := range migrationApply {
		if err := m.UpMigration(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	log.Println("Tracker migrations applied successfully!")
	return nil
}

func (s *TrackerServer) Scrape(ctx context.Context) error {
	db, err := s.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect for scrape: %w", err)
	}

	refs := repositories.NewReferenceRepository(db)
	listings := repositories.NewListingRepository(db)
	history := repositories.NewHistoryRepository(db)

	dealCfg := business.DealConfig{
		DropPercent: s.cfg.Deals.DropPercent,
		WindowDays:  s.cfg.Deals.WindowDays,
	}
	deals := business.NewDealService(listings, history, dealCfg, s.log.WithPrefix("[deals]"))
	ingest := business.NewIngestService(refs, listings, deals, s.log.WithPrefix("[ingest]"))
	delist := business.NewDelistingService(refs, listings, s.log.WithPrefix("[delist]"))

	feeds := make([]scraper.Feed, 0, len(s.cfg.Scraper.Feeds))
	for _, feedCfg := range s.cfg.Scraper.Feeds {
		feeds = append(feeds, scraper.NewCSVFeed(feedCfg))
	}

	coordinator := scraper.NewCoordinator(s.cfg.Scraper, ingest, delist, s.log.WithPrefix("[scrape]"))
	return coordinator.Run(ctx, feeds)
}

func (s *TrackerServer) Merge() error {
	db, err := s.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect for merge: %w", err)
	}

	refs := repositories.NewReferenceRepository(db)
	listings := repositories.NewListingRepository(db)
	products := repositories.NewProductRepository(db)

	resolver := business.NewResolver(listings, products, refs, s.cfg.Matching.SimilarityThreshold, s.log.WithPrefix("[merge]"))
	report, err := resolver.Run()
	if err != nil {
		return err
	}
	log.Printf("Merge finished: %d listings scanned, %d products created, %d extended",
		report.Scanned, report.Created, report.Extended)
	return nil
}

// Recompute refreshes the normalization keys of every listing, then rebuilds
// product attributes. productID zero means every product.
func (s *TrackerServer) Recompute(productID int64) error {
	db, err := s.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect for recompute: %w", err)
	}

	refs := repositories.NewReferenceRepository(db)
	listings := repositories.NewListingRepository(db)
	products := repositories.NewProductRepository(db)

	maintenance := business.NewMaintenanceService(listings, products, refs, s.log.WithPrefix("[maintenance]"))
	refreshed, err := maintenance.RefreshListingKeys()
	if err != nil {
		return err
	}
	recomputed, err := maintenance.RecomputeAttributes(productID)
	if err != nil {
		return err
	}
	log.Printf("Recompute finished: %d listing keys refreshed, %d products updated", refreshed, recomputed)
	return nil
}

// ServeMetrics exposes the Prometheus registry; it blocks until the listener
// fails, so callers run it in a goroutine.
func (s *TrackerServer) ServeMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.MetricsHandler())
	return http.ListenAndServe(addr, mux)
}
