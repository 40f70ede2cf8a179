package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dacilla/PCDealTracker/config"
	"github.com/Dacilla/PCDealTracker/internal/tracker/app"
	"github.com/Dacilla/PCDealTracker/internal/tracker/business"
	"github.com/Dacilla/PCDealTracker/pkg/dbconnect/postgres"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to the yaml config; environment variables are used when empty")
		mode       = flag.String("mode", "scrape", "one of: migrate, scrape, merge, recompute")
		productID  = flag.Int64("product", 0, "product id for -mode recompute; 0 recomputes every product")
	)
	flag.Parse()

	cfg := loadConfig(*configPath)
	connector := postgres.NewPgConnector(&cfg.Postgres)
	server := app.NewTrackerServer(connector, cfg)

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := server.ServeMetrics(cfg.Metrics.Addr); err != nil {
				log.Printf("metrics listener stopped: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch *mode {
	case "migrate":
		err = server.Migrate()
	case "scrape":
		err = server.Scrape(ctx)
	case "merge":
		err = server.Merge()
	case "recompute":
		err = server.Recompute(*productID)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", *mode, err)
	}
}

func loadConfig(path string) *config.AppConfig {
	if path == "" {
		return &config.AppConfig{
			Postgres: *config.GetPostgresConfig(),
			Matching: config.MatchingConfig{SimilarityThreshold: business.DefaultSimilarityThreshold},
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Fatalf("failed to load config %s: %v", path, err)
	}
	return cfg
}
