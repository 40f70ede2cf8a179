package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dacilla/PCDealTracker/internal/tracker/models"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func scanProduct(row interface{ Scan(...interface{}) error }) (*models.Product, error) {
	var p models.Product
	var brand, model sql.NullString
	var attrs []byte

	if err := row.Scan(&p.ID, &p.CanonicalName, &brand, &model, &p.CategoryID, &attrs); err != nil {
		return nil, err
	}
	p.Brand = brand.String
	p.Model = model.String
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &p.Attributes); err != nil {
			return nil, fmt.Errorf("failed to decode attributes for product %d: %w", p.ID, err)
		}
	}
	if p.Attributes == nil {
		p.Attributes = map[string]interface{}{}
	}
	return &p, nil
}

func (r *ProductRepository) ProductByID(id int64) (*models.Product, error) {
	query := `SELECT id, canonical_name, brand, model, category_id, attributes FROM tracker.products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}

	rows, err := r.db.Query(`SELECT id FROM tracker.listings WHERE product_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member listings for product %d: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var listingID int64
		if err := rows.Scan(&listingID); err != nil {
			return nil, fmt.Errorf("failed to scan member listing id: %w", err)
		}
		p.ListingIDs = append(p.ListingIDs, listingID)
	}
	return p, rows.Err()
}

func (r *ProductRepository) AllProducts() ([]models.Product, error) {
	query := `SELECT id, canonical_name, brand, model, category_id, attributes FROM tracker.products ORDER BY id`
	return r.queryProducts(query)
}

func (r *ProductRepository) queryProducts(query string, args ...interface{}) ([]models.Product, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) CreateProduct(p *models.Product, listingIDs []int64) error {
	attrs, err := json.Marshal(p.Attributes)
	if err != nil {
		return fmt.Errorf("failed to encode attributes: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tracker.products (canonical_name, brand, model, category_id, attributes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err = tx.QueryRow(query, p.CanonicalName, p.Brand, p.Model, p.CategoryID, attrs).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	if len(listingIDs) > 0 {
		_, err = tx.Exec(`UPDATE tracker.listings SET product_id = $1 WHERE id = ANY($2)`,
			p.ID, pq.Array(listingIDs))
		if err != nil {
			return fmt.Errorf("failed to attach listings to product %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product: %w", err)
	}
	p.ListingIDs = append([]int64(nil), listingIDs...)
	return nil
}

func (r *ProductRepository) AttachListings(productID int64, listingIDs []int64) error {
	if len(listingIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(
		`UPDATE tracker.listings SET product_id = $1 WHERE id = ANY($2) AND product_id IS NULL`,
		productID, pq.Array(listingIDs))
	if err != nil {
		return fmt.Errorf("failed to attach listings to product %d: %w", productID, err)
	}
	return nil
}

func (r *ProductRepository) UpdateAttributes(productID int64, attrs map[string]interface{}) error {
	encoded, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("failed to encode attributes: %w", err)
	}
	_, err = r.db.Exec(`UPDATE tracker.products SET attributes = $2 WHERE id = $1`, productID, encoded)
	if err != nil {
		return fmt.Errorf("failed to update attributes for product %d: %w", productID, err)
	}
	return nil
}

func (r *ProductRepository) PriceSummary(productID int64) (*models.ProductPriceSummary, error) {
	summary := &models.ProductPriceSummary{ProductID: productID}

	bestQuery := `
		SELECT current_price, retailer_id
		FROM tracker.listings
		WHERE product_id = $1 AND status = $2 AND current_price IS NOT NULL
		ORDER BY current_price, id
		LIMIT 1`
	var bestPrice float64
	var bestRetailer int64
	err := r.db.QueryRow(bestQuery, productID, models.StatusAvailable).Scan(&bestPrice, &bestRetailer)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to derive best price for product %d: %w", productID, err)
	}
	if err == nil {
		summary.BestPrice = &bestPrice
		summary.BestRetailerID = &bestRetailer
	}

	lowQuery := `
		SELECT ph.price, ph.recorded_at, l.retailer_id
		FROM tracker.price_history ph
		JOIN tracker.listings l ON l.id = ph.listing_id
		WHERE l.product_id = $1
		ORDER BY ph.price, ph.recorded_at
		LIMIT 1`
	var low models.PricePoint
	var lowRetailer int64
	err = r.db.QueryRow(lowQuery, productID).Scan(&low.Price, &low.RecordedAt, &lowRetailer)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to derive all-time low for product %d: %w", productID, err)
	}
	if err == nil {
		summary.AllTimeLowPrice = &low.Price
		summary.AllTimeLowDate = &low.RecordedAt
		summary.AllTimeLowRetailer = &lowRetailer
	}

	return summary, nil
}
