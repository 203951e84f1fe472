package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/filmflow/shootplan-api/internal/models"
)

// SceneRepository provides persistence for script scenes.
type SceneRepository struct {
	db *sqlx.DB
}

// NewSceneRepository creates a new scene repository.
func NewSceneRepository(db *sqlx.DB) *SceneRepository {
	return &SceneRepository{db: db}
}

// ListByProduction returns all scenes of a production with their cast
// requirements attached, ordered by scene number.
func (r *SceneRepository) ListByProduction(ctx context.Context, productionID string) ([]models.Scene, error) {
	const query = `SELECT id, production_id, scene_number, int_ext, time_of_day, location_id, estimated_pages, shot_count, complexity, created_at, updated_at
FROM scenes WHERE production_id = $1 ORDER BY scene_number ASC`
	var scenes []models.Scene
	if err := r.db.SelectContext(ctx, &scenes, query, productionID); err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	if err := r.attachCast(ctx, scenes); err != nil {
		return nil, err
	}
	return scenes, nil
}

// FindByIDs loads the named scenes, cast attached. Missing ids are simply
// absent from the result; the caller decides whether that is an error.
func (r *SceneRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Scene, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, production_id, scene_number, int_ext, time_of_day, location_id, estimated_pages, shot_count, complexity, created_at, updated_at
FROM scenes WHERE id IN (?) ORDER BY scene_number ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("build scene query: %w", err)
	}
	var scenes []models.Scene
	if err := r.db.SelectContext(ctx, &scenes, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("find scenes: %w", err)
	}
	if err := r.attachCast(ctx, scenes); err != nil {
		return nil, err
	}
	return scenes, nil
}

type sceneCastRow struct {
	SceneID      string `db:"scene_id"`
	CastMemberID string `db:"cast_member_id"`
}

func (r *SceneRepository) attachCast(ctx context.Context, scenes []models.Scene) error {
	if len(scenes) == 0 {
		return nil
	}
	ids := make([]string, len(scenes))
	for i, scene := range scenes {
		ids[i] = scene.ID
	}
	query, args, err := sqlx.In(`SELECT scene_id, cast_member_id FROM scene_cast WHERE scene_id IN (?) ORDER BY cast_member_id ASC`, ids)
	if err != nil {
		return fmt.Errorf("build scene cast query: %w", err)
	}
	var rows []sceneCastRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("list scene cast: %w", err)
	}
	byScene := make(map[string][]string, len(scenes))
	for _, row := range rows {
		byScene[row.SceneID] = append(byScene[row.SceneID], row.CastMemberID)
	}
	for i := range scenes {
		scenes[i].CastIDs = byScene[scenes[i].ID]
	}
	return nil
}
