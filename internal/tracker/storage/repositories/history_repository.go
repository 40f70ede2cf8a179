package repositories

import (
	"database/sql"
	"fmt"

	"github.com/Dacilla/PCDealTracker/internal/tracker/models"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) PriceHistory(listingID int64) ([]models.PricePoint, error) {
	query := `
		SELECT id, listing_id, price, recorded_at
		FROM tracker.price_history
		WHERE listing_id = $1
		ORDER BY recorded_at, id`
	rows, err := r.db.Query(query, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history for listing %d: %w", listingID, err)
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.ID, &p.ListingID, &p.Price, &p.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *HistoryRepository) PurgeHistory(listingID int64) error {
	_, err := r.db.Exec(`DELETE FROM tracker.price_history WHERE listing_id = $1`, listingID)
	if err != nil {
		return fmt.Errorf("failed to purge history for listing %d: %w", listingID, err)
	}
	return nil
}
