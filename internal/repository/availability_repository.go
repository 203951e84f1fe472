package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/filmflow/shootplan-api/internal/models"
)

// AvailabilityRepository provides persistence for cast unavailability.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository creates a new availability repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListWindow returns all unavailability rows of a production inside the
// scheduling window.
func (r *AvailabilityRepository) ListWindow(ctx context.Context, productionID string, from, to time.Time) ([]models.CastUnavailability, error) {
	const query = `SELECT id, production_id, cast_member_id, unavailable_on, reason, created_at
FROM cast_unavailability
WHERE production_id = $1 AND unavailable_on >= $2 AND unavailable_on < $3
ORDER BY unavailable_on ASC`
	var rows []models.CastUnavailability
	if err := r.db.SelectContext(ctx, &rows, query, productionID, from, to); err != nil {
		return nil, fmt.Errorf("list cast unavailability: %w", err)
	}
	return rows, nil
}

// BlockedOffsets reshapes the window rows into the cast→day-offset index
// the optimizer snapshot consumes.
func BlockedOffsets(rows []models.CastUnavailability, startDate time.Time) map[string]map[int]bool {
	blocked := make(map[string]map[int]bool)
	for _, row := range rows {
		offset := int(row.Date.Sub(startDate).Hours() / 24)
		if offset < 0 {
			continue
		}
		if blocked[row.CastMemberID] == nil {
			blocked[row.CastMemberID] = make(map[int]bool)
		}
		blocked[row.CastMemberID][offset] = true
	}
	return blocked
}
