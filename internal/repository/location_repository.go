package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/filmflow/shootplan-api/internal/models"
)

// LocationRepository provides persistence for shooting locations.
type LocationRepository struct {
	db *sqlx.DB
}

// NewLocationRepository creates a new location repository.
func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// MapByProduction returns the production's locations keyed by id, the
// shape the optimizer snapshot consumes.
func (r *LocationRepository) MapByProduction(ctx context.Context, productionID string) (map[string]models.Location, error) {
	const query = `SELECT id, production_id, name, address, created_at, updated_at
FROM locations WHERE production_id = $1`
	var locations []models.Location
	if err := r.db.SelectContext(ctx, &locations, query, productionID); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	byID := make(map[string]models.Location, len(locations))
	for _, location := range locations {
		byID[location.ID] = location
	}
	return byID, nil
}
