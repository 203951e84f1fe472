package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/filmflow/shootplan-api/internal/models"
)

// DurationHistoryRepository stores actual scene durations for predictor
// calibration.
type DurationHistoryRepository struct {
	db *sqlx.DB
}

// NewDurationHistoryRepository creates a new duration history repository.
func NewDurationHistoryRepository(db *sqlx.DB) *DurationHistoryRepository {
	return &DurationHistoryRepository{db: db}
}

// Record stores one actual duration sample.
func (r *DurationHistoryRepository) Record(ctx context.Context, sample *models.DurationSample) error {
	if sample.ID == "" {
		sample.ID = uuid.NewString()
	}
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now().UTC()
	}
	const query = `
INSERT INTO scene_duration_history (id, production_id, scene_id, pages, int_ext, time_of_day, cast_count, shot_count, actual_minutes, recorded_at)
VALUES (:id, :production_id, :scene_id, :pages, :int_ext, :time_of_day, :cast_count, :shot_count, :actual_minutes, :recorded_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, sample); err != nil {
		return fmt.Errorf("record duration sample: %w", err)
	}
	return nil
}

// ListByProduction returns all samples of a production, newest first.
func (r *DurationHistoryRepository) ListByProduction(ctx context.Context, productionID string, limit int) ([]models.DurationSample, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	query := fmt.Sprintf(`SELECT id, production_id, scene_id, pages, int_ext, time_of_day, cast_count, shot_count, actual_minutes, recorded_at
FROM scene_duration_history WHERE production_id = $1 ORDER BY recorded_at DESC LIMIT %d`, limit)
	var samples []models.DurationSample
	if err := r.db.SelectContext(ctx, &samples, query, productionID); err != nil {
		return nil, fmt.Errorf("list duration samples: %w", err)
	}
	return samples, nil
}
