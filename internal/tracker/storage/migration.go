package storage

import (
	"database/sql"
	"fmt"
	"log"
)

type MigrationsSchema struct{}

func (m *MigrationsSchema) UpMigration(db *sql.DB) error {
	if _, err := db.Exec(`CREATE SCHEMA IF NOT EXISTS migrations`); err != nil {
		return fmt.Errorf("failed to create migrations schema: %w", err)
	}
	query := `
		CREATE TABLE IF NOT EXISTS migrations.migrations (
		name VARCHAR(255) PRIMARY KEY,
		time TIMESTAMP NOT NULL
		);
		`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

type TrackerSchema struct{}

func (m *TrackerSchema) UpMigration(db *sql.DB) error {
	if _, err := db.Exec(`CREATE SCHEMA IF NOT EXISTS tracker`); err != nil {
		return fmt.Errorf("failed to create tracker schema: %w", err)
	}
	return nil
}

func migrationDone(db *sql.DB, name string) (bool, error) {
	var exists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM migrations.migrations WHERE name = $1)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return exists, nil
}

func markMigration(db *sql.DB, name string) error {
	if _, err := db.Exec("INSERT INTO migrations.migrations (name, time) VALUES ($1, current_timestamp)", name); err != nil {
		return fmt.Errorf("failed to mark %s migration as complete: %w", name, err)
	}
	log.Printf("Migration '%s' completed successfully.", name)
	return nil
}

func runMigration(db *sql.DB, name, query string) error {
	done, err := migrationDone(db, name)
	if err != nil {
		return err
	}
	if done {
		log.Printf("Migration '%s' already completed. Skipping.", name)
		return nil
	}
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to apply %s migration: %w", name, err)
	}
	return markMigration(db, name)
}

type TrackerReferenceData struct{}

func (m *TrackerReferenceData) UpMigration(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS tracker.categories (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) UNIQUE NOT NULL
		);
		CREATE TABLE IF NOT EXISTS tracker.retailers (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) UNIQUE NOT NULL,
		url VARCHAR(255)
		);
		`
	return runMigration(db, "tracker.reference", query)
}

type TrackerProducts struct{}

func (m *TrackerProducts) UpMigration(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS tracker.products (
		id BIGSERIAL PRIMARY KEY,
		canonical_name TEXT NOT NULL,
		brand VARCHAR(255),
		model TEXT,
		category_id BIGINT NOT NULL REFERENCES tracker.categories(id),
		attributes JSONB NOT NULL DEFAULT '{}',
		UNIQUE (category_id, canonical_name)
		);
		`
	return runMigration(db, "tracker.products", query)
}

type TrackerListings struct{}

func (m *TrackerListings) UpMigration(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS tracker.listings (
		id BIGSERIAL PRIMARY KEY,
		retailer_id BIGINT NOT NULL REFERENCES tracker.retailers(id),
		category_id BIGINT NOT NULL REFERENCES tracker.categories(id),
		name TEXT NOT NULL,
		url TEXT UNIQUE NOT NULL,
		image_url TEXT,
		brand VARCHAR(255),
		model TEXT,
		normalized_model TEXT,
		loose_normalized_model TEXT,
		current_price DOUBLE PRECISION,
		previous_price DOUBLE PRECISION,
		status VARCHAR(32) NOT NULL DEFAULT 'Available',
		on_sale BOOLEAN NOT NULL DEFAULT FALSE,
		product_id BIGINT REFERENCES tracker.products(id)
		);
		CREATE INDEX IF NOT EXISTS idx_listings_retailer_status ON tracker.listings (retailer_id, status);
		CREATE INDEX IF NOT EXISTS idx_listings_product ON tracker.listings (product_id);
		`
	return runMigration(db, "tracker.listings", query)
}

type TrackerPriceHistory struct{}

func (m *TrackerPriceHistory) UpMigration(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS tracker.price_history (
		id BIGSERIAL PRIMARY KEY,
		listing_id BIGINT NOT NULL REFERENCES tracker.listings(id) ON DELETE CASCADE,
		price DOUBLE PRECISION NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_price_history_listing ON tracker.price_history (listing_id, recorded_at);
		`
	return runMigration(db, "tracker.price_history", query)
}

// TrackerSeedData loads the fixed category set and the known retailers.
// Reference rows must exist before any listing referencing them is ingested.
type TrackerSeedData struct{}

func (m *TrackerSeedData) UpMigration(db *sql.DB) error {
	query := `
		INSERT INTO tracker.categories (name) VALUES
		('CPUs'),
		('Graphics Cards'),
		('Monitors'),
		('Motherboards'),
		('Memory (RAM)'),
		('Storage (SSD/HDD)'),
		('Power Supplies'),
		('PC Cases'),
		('Cooling')
		ON CONFLICT (name) DO NOTHING;
		INSERT INTO tracker.retailers (name, url) VALUES
		('Scorptec', 'https://www.scorptec.com.au'),
		('Centre Com', 'https://www.centrecom.com.au'),
		('MSY', 'https://www.msy.com.au'),
		('PC Case Gear', 'https://www.pccasegear.com'),
		('Computer Alliance', 'https://www.computeralliance.com.au'),
		('Shopping Express', 'https://www.shoppingexpress.com.au'),
		('JW Computers', 'https://www.jw.com.au'),
		('Austin Computers', 'https://www.austin.net.au')
		ON CONFLICT (name) DO NOTHING;
		`
	return runMigration(db, "tracker.seed", query)
}
