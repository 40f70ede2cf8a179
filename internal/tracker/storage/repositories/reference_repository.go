package repositories

import (
	"database/sql"
	"fmt"

	"github.com/Dacilla/PCDealTracker/internal/tracker/models"
)

type ReferenceRepository struct {
	db *sql.DB
}

func NewReferenceRepository(db *sql.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) CategoryByName(name string) (*models.Category, error) {
	query := `SELECT id, name FROM tracker.categories WHERE LOWER(name) = LOWER($1)`
	var c models.Category
	err := r.db.QueryRow(query, name).Scan(&c.ID, &c.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category %q: %w", name, err)
	}
	return &c, nil
}

func (r *ReferenceRepository) RetailerByName(name string) (*models.Retailer, error) {
	query := `SELECT id, name, COALESCE(url, '') FROM tracker.retailers WHERE LOWER(name) = LOWER($1)`
	var rt models.Retailer
	err := r.db.QueryRow(query, name).Scan(&rt.ID, &rt.Name, &rt.URL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch retailer %q: %w", name, err)
	}
	return &rt, nil
}

func (r *ReferenceRepository) Categories() ([]models.Category, error) {
	rows, err := r.db.Query(`SELECT id, name FROM tracker.categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
