package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmflow/shootplan-api/internal/models"
)

func TestDurationHistoryRepositoryRecordGeneratesID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDurationHistoryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scene_duration_history")).
		WithArgs(sqlmock.AnyArg(), "prod-1", "s1", 2.5, "EXT", "NIGHT", 2, 6, 210, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	sample := &models.DurationSample{
		ProductionID:  "prod-1",
		SceneID:       "s1",
		Pages:         2.5,
		IntExt:        "EXT",
		TimeOfDay:     "NIGHT",
		CastCount:     2,
		ShotCount:     6,
		ActualMinutes: 210,
	}
	require.NoError(t, repo.Record(context.Background(), sample))
	assert.NotEmpty(t, sample.ID)
	assert.False(t, sample.RecordedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDurationHistoryRepositoryListByProduction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDurationHistoryRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM scene_duration_history WHERE production_id = $1 ORDER BY recorded_at DESC LIMIT 50")).
		WithArgs("prod-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "production_id", "scene_id", "pages", "int_ext", "time_of_day", "cast_count", "shot_count", "actual_minutes", "recorded_at"}).
			AddRow("h2", "prod-1", "s2", 1.0, "INT", "DAY", 1, 3, 95, now).
			AddRow("h1", "prod-1", "s1", 2.5, "EXT", "NIGHT", 2, 6, 210, now.Add(-time.Hour)))

	samples, err := repo.ListByProduction(context.Background(), "prod-1", 50)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "s2", samples[0].SceneID)
	assert.Equal(t, 210, samples[1].ActualMinutes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDurationHistoryRepositoryClampsLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDurationHistoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 200")).
		WithArgs("prod-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "production_id", "scene_id", "pages", "int_ext", "time_of_day", "cast_count", "shot_count", "actual_minutes", "recorded_at"}))

	_, err := repo.ListByProduction(context.Background(), "prod-1", 0)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}