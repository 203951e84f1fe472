package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sceneColumns() []string {
	return []string{"id", "production_id", "scene_number", "int_ext", "time_of_day", "location_id", "estimated_pages", "shot_count", "complexity", "created_at", "updated_at"}
}

func TestSceneRepositoryListByProductionAttachesCast(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSceneRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM scenes WHERE production_id = $1")).
		WithArgs("prod-1").
		WillReturnRows(sqlmock.NewRows(sceneColumns()).
			AddRow("s1", "prod-1", "1", "INT", "DAY", "loc-a", 3.5, nil, "standard", now, now).
			AddRow("s2", "prod-1", "2", "EXT", "NIGHT", "loc-b", 2.0, 5, "complex", now, now))

	mock.ExpectQuery(regexp.QuoteMeta("FROM scene_cast WHERE scene_id IN")).
		WithArgs("s1", "s2").
		WillReturnRows(sqlmock.NewRows([]string{"scene_id", "cast_member_id"}).
			AddRow("s1", "cast-1").
			AddRow("s1", "cast-2").
			AddRow("s2", "cast-1"))

	scenes, err := repo.ListByProduction(context.Background(), "prod-1")
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Equal(t, []string{"cast-1", "cast-2"}, scenes[0].CastIDs)
	assert.Equal(t, []string{"cast-1"}, scenes[1].CastIDs)
	assert.True(t, scenes[1].IsExterior())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSceneRepositoryFindByIDsEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSceneRepository(db)

	scenes, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, scenes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
