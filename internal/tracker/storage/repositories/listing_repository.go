package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Dacilla/PCDealTracker/internal/tracker/models"
)

type ListingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingColumns = `id, retailer_id, category_id, name, url, image_url, brand, model,
	normalized_model, loose_normalized_model, current_price, previous_price, status, on_sale, product_id`

func scanListing(row interface{ Scan(...interface{}) error }) (*models.Listing, error) {
	var l models.Listing
	var imageURL, brand, model, normalized, loose sql.NullString
	var current, previous sql.NullFloat64
	var productID sql.NullInt64

	err := row.Scan(&l.ID, &l.RetailerID, &l.CategoryID, &l.Name, &l.URL, &imageURL, &brand, &model,
		&normalized, &loose, &current, &previous, &l.Status, &l.OnSale, &productID)
	if err != nil {
		return nil, err
	}

	l.ImageURL = imageURL.String
	l.Brand = brand.String
	l.Model = model.String
	l.NormalizedModel = normalized.String
	l.LooseNormalizedModel = loose.String
	if current.Valid {
		l.CurrentPrice = &current.Float64
	}
	if previous.Valid {
		l.PreviousPrice = &previous.Float64
	}
	if productID.Valid {
		l.ProductID = &productID.Int64
	}
	return &l, nil
}

func (r *ListingRepository) ListingByURL(url string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM tracker.listings WHERE url = $1`
	l, err := scanListing(r.db.QueryRow(query, url))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing by url: %w", err)
	}
	return l, nil
}

func (r *ListingRepository) CreateListing(l *models.Listing) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tracker.listings
		(retailer_id, category_id, name, url, image_url, brand, model,
		 normalized_model, loose_normalized_model, current_price, status, on_sale)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err = tx.QueryRow(query,
		l.RetailerID, l.CategoryID, l.Name, l.URL, l.ImageURL, l.Brand, l.Model,
		l.NormalizedModel, l.LooseNormalizedModel, l.CurrentPrice, l.Status, l.OnSale,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}

	if l.CurrentPrice != nil {
		_, err = tx.Exec(`INSERT INTO tracker.price_history (listing_id, price) VALUES ($1, $2)`,
			l.ID, *l.CurrentPrice)
		if err != nil {
			return fmt.Errorf("failed to insert first price point: %w", err)
		}
	}
	return tx.Commit()
}

func (r *ListingRepository) UpdateListing(l *models.Listing) error {
	query := `
		UPDATE tracker.listings
		SET name = $2, image_url = $3, brand = $4, model = $5,
		    normalized_model = $6, loose_normalized_model = $7,
		    current_price = $8, previous_price = $9, status = $10, on_sale = $11
		WHERE id = $1`
	_, err := r.db.Exec(query,
		l.ID, l.Name, l.ImageURL, l.Brand, l.Model,
		l.NormalizedModel, l.LooseNormalizedModel,
		l.CurrentPrice, l.PreviousPrice, l.Status, l.OnSale)
	if err != nil {
		return fmt.Errorf("failed to update listing %d: %w", l.ID, err)
	}
	return nil
}

func (r *ListingRepository) ApplyPriceUpdate(l *models.Listing, newPrice float64, onSale bool, at time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO tracker.price_history (listing_id, price, recorded_at) VALUES ($1, $2, $3)`,
		l.ID, newPrice, at)
	if err != nil {
		return fmt.Errorf("failed to append price point: %w", err)
	}

	// SET expressions read the pre-update row, so previous_price receives
	// the old current_price here.
	_, err = tx.Exec(`
		UPDATE tracker.listings
		SET previous_price = current_price, current_price = $2, on_sale = $3
		WHERE id = $1`,
		l.ID, newPrice, onSale)
	if err != nil {
		return fmt.Errorf("failed to shift listing price: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price update: %w", err)
	}

	l.PreviousPrice = l.CurrentPrice
	l.CurrentPrice = &newPrice
	l.OnSale = onSale
	return nil
}

func (r *ListingRepository) AvailableURLs(retailerID int64) ([]string, error) {
	rows, err := r.db.Query(
		`SELECT url FROM tracker.listings WHERE retailer_id = $1 AND status = $2`,
		retailerID, models.StatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch available urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

func (r *ListingRepository) MarkUnavailable(retailerID int64, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	query := `
		UPDATE tracker.listings
		SET status = $3, on_sale = FALSE
		WHERE retailer_id = $1 AND url = ANY($2)`
	_, err := r.db.Exec(query, retailerID, pq.Array(urls), models.StatusUnavailable)
	if err != nil {
		return fmt.Errorf("failed to mark listings unavailable: %w", err)
	}
	return nil
}

func (r *ListingRepository) UnassignedListings() ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM tracker.listings WHERE product_id IS NULL ORDER BY id`
	return r.queryListings(query)
}

func (r *ListingRepository) AllListings() ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM tracker.listings ORDER BY id`
	return r.queryListings(query)
}

func (r *ListingRepository) queryListings(query string, args ...interface{}) ([]models.Listing, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

func (r *ListingRepository) UpdateNormalizedKeys(listingID int64, strict, loose string) error {
	_, err := r.db.Exec(
		`UPDATE tracker.listings SET normalized_model = $2, loose_normalized_model = $3 WHERE id = $1`,
		listingID, strict, loose)
	if err != nil {
		return fmt.Errorf("failed to update normalized keys for listing %d: %w", listingID, err)
	}
	return nil
}
