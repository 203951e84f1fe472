package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/filmflow/shootplan-api/internal/models"
)

// ShootingDayRepository provides persistence for accepted schedules.
type ShootingDayRepository struct {
	db *sqlx.DB
}

// NewShootingDayRepository creates a new shooting day repository.
func NewShootingDayRepository(db *sqlx.DB) *ShootingDayRepository {
	return &ShootingDayRepository{db: db}
}

func (r *ShootingDayRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertDay persists one shooting day, generating its id when absent.
func (r *ShootingDayRepository) InsertDay(ctx context.Context, exec sqlx.ExtContext, day *models.ShootingDay) error {
	target := r.exec(exec)
	if day.ID == "" {
		day.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	day.CreatedAt = now
	day.UpdatedAt = now
	if day.Status == "" {
		day.Status = models.DayStatusScheduled
	}

	const query = `
INSERT INTO shooting_days (id, production_id, run_id, day_number, shoot_date, status, primary_location_id, total_pages, created_at, updated_at)
VALUES (:id, :production_id, :run_id, :day_number, :shoot_date, :status, :primary_location_id, :total_pages, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, query, day); err != nil {
		return fmt.Errorf("insert shooting day: %w", err)
	}
	return nil
}

// InsertSceneSchedules persists the scene rows of one shooting day.
func (r *ShootingDayRepository) InsertSceneSchedules(ctx context.Context, exec sqlx.ExtContext, rows []models.SceneSchedule) error {
	if len(rows) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO scene_schedules (id, shooting_day_id, scene_id, day_order, estimated_minutes, status, created_at, updated_at)
VALUES (:id, :shooting_day_id, :scene_id, :day_order, :estimated_minutes, :status, :created_at, :updated_at)`

	for i := range rows {
		row := &rows[i]
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if row.Status == "" {
			row.Status = models.DayStatusScheduled
		}
		row.CreatedAt = now
		row.UpdatedAt = now
		if _, err := sqlx.NamedExecContext(ctx, target, query, row); err != nil {
			return fmt.Errorf("insert scene schedule: %w", err)
		}
	}
	return nil
}

// GetByID fetches a single shooting day.
func (r *ShootingDayRepository) GetByID(ctx context.Context, id string) (*models.ShootingDay, error) {
	const query = `SELECT id, production_id, run_id, day_number, shoot_date, status, primary_location_id, total_pages, created_at, updated_at
FROM shooting_days WHERE id = $1`
	var day models.ShootingDay
	if err := r.db.GetContext(ctx, &day, query, id); err != nil {
		return nil, fmt.Errorf("get shooting day: %w", err)
	}
	return &day, nil
}

// List returns shooting days filtered by production and date window.
func (r *ShootingDayRepository) List(ctx context.Context, productionID string, from, to *time.Time, page, size int) ([]models.ShootingDay, int, error) {
	base := "FROM shooting_days WHERE production_id = $1"
	args := []interface{}{productionID}

	var conditions []string
	if from != nil {
		conditions = append(conditions, fmt.Sprintf("shoot_date >= $%d", len(args)+1))
		args = append(args, *from)
	}
	if to != nil {
		conditions = append(conditions, fmt.Sprintf("shoot_date < $%d", len(args)+1))
		args = append(args, *to)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, production_id, run_id, day_number, shoot_date, status, primary_location_id, total_pages, created_at, updated_at %s ORDER BY shoot_date ASC LIMIT %d OFFSET %d", base, size, offset)
	var days []models.ShootingDay
	if err := r.db.SelectContext(ctx, &days, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list shooting days: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count shooting days: %w", err)
	}
	return days, total, nil
}

// ListScenes returns the ordered scene rows of one shooting day.
func (r *ShootingDayRepository) ListScenes(ctx context.Context, shootingDayID string) ([]models.SceneSchedule, error) {
	const query = `SELECT id, shooting_day_id, scene_id, day_order, estimated_minutes, status, created_at, updated_at
FROM scene_schedules WHERE shooting_day_id = $1 ORDER BY day_order ASC`
	var rows []models.SceneSchedule
	if err := r.db.SelectContext(ctx, &rows, query, shootingDayID); err != nil {
		return nil, fmt.Errorf("list scene schedules: %w", err)
	}
	return rows, nil
}

// DeleteByRun removes a previously saved schedule so a re-accepted run
// replaces it instead of duplicating days.
func (r *ShootingDayRepository) DeleteByRun(ctx context.Context, exec sqlx.ExtContext, runID string) error {
	target := r.exec(exec)
	if _, err := target.ExecContext(ctx, `DELETE FROM scene_schedules WHERE shooting_day_id IN (SELECT id FROM shooting_days WHERE run_id = $1)`, runID); err != nil {
		return fmt.Errorf("delete scene schedules: %w", err)
	}
	if _, err := target.ExecContext(ctx, `DELETE FROM shooting_days WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("delete shooting days: %w", err)
	}
	return nil
}
