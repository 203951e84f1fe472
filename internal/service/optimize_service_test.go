package service

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/filmflow/shootplan-api/internal/dto"
	"github.com/filmflow/shootplan-api/internal/models"
	"github.com/filmflow/shootplan-api/internal/optimizer"
	"github.com/filmflow/shootplan-api/pkg/config"
	appErrors "github.com/filmflow/shootplan-api/pkg/errors"
)

type sceneReaderStub struct {
	scenes []models.Scene
}

func (s sceneReaderStub) ListByProduction(_ context.Context, _ string) ([]models.Scene, error) {
	return s.scenes, nil
}

func (s sceneReaderStub) FindByIDs(_ context.Context, ids []string) ([]models.Scene, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var found []models.Scene
	for _, scene := range s.scenes {
		if wanted[scene.ID] {
			found = append(found, scene)
		}
	}
	return found, nil
}

type locationReaderStub struct {
	locations map[string]models.Location
}

func (s locationReaderStub) MapByProduction(_ context.Context, _ string) (map[string]models.Location, error) {
	return s.locations, nil
}

type availabilityStub struct {
	rows []models.CastUnavailability
}

func (s availabilityStub) ListWindow(_ context.Context, _ string, _, _ time.Time) ([]models.CastUnavailability, error) {
	return s.rows, nil
}

type forecastStub struct {
	days []models.WeatherDay
}

func (s forecastStub) Forecast(_ context.Context, _, _ float64, _ time.Time, _ int) ([]models.WeatherDay, error) {
	return s.days, nil
}

type dayWriterStub struct {
	inserted int
	rows     int
	deleted  int
}

func (s *dayWriterStub) InsertDay(_ context.Context, _ sqlx.ExtContext, day *models.ShootingDay) error {
	day.ID = "day-" + day.RunID
	s.inserted++
	return nil
}

func (s *dayWriterStub) InsertSceneSchedules(_ context.Context, _ sqlx.ExtContext, rows []models.SceneSchedule) error {
	s.rows += len(rows)
	return nil
}

func (s *dayWriterStub) DeleteByRun(_ context.Context, _ sqlx.ExtContext, _ string) error {
	s.deleted++
	return nil
}

type mapRunCache struct {
	items map[string]*optimizer.ScheduleResult
}

func (c *mapRunCache) GetResult(_ context.Context, runID string) (*optimizer.ScheduleResult, bool) {
	result, ok := c.items[runID]
	return result, ok
}

func (c *mapRunCache) SetResult(_ context.Context, runID string, result *optimizer.ScheduleResult) {
	c.items[runID] = result
}

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (*txProviderMock, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func (p *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return p.db.BeginTxx(ctx, opts)
}

type fixtureConfig struct {
	scenes   []models.Scene
	rows     []models.CastUnavailability
	weather  []models.WeatherDay
	writer   *dayWriterStub
	tx       txProvider
	cache    RunCache
	override func(cfg *config.OptimizerConfig)
}

func defaultFixtureScenes() []models.Scene {
	return []models.Scene{
		{ID: "s1", ProductionID: "prod-1", SceneNumber: "1", IntExt: models.Interior, TimeOfDay: models.TimeDay, LocationID: "loc-a", EstimatedPages: 3, Complexity: "standard", CastIDs: []string{"c1"}},
		{ID: "s2", ProductionID: "prod-1", SceneNumber: "2", IntExt: models.Exterior, TimeOfDay: models.TimeDay, LocationID: "loc-b", EstimatedPages: 4, Complexity: "standard", CastIDs: []string{"c2"}},
		{ID: "s3", ProductionID: "prod-1", SceneNumber: "3", IntExt: models.Interior, TimeOfDay: models.TimeNight, LocationID: "loc-a", EstimatedPages: 2, Complexity: "complex"},
	}
}

func newOptimizeServiceFixture(t *testing.T, cfg fixtureConfig) *OptimizeService {
	t.Helper()
	if cfg.scenes == nil {
		cfg.scenes = defaultFixtureScenes()
	}
	if cfg.writer == nil {
		cfg.writer = &dayWriterStub{}
	}
	if cfg.cache == nil {
		cfg.cache = &mapRunCache{items: map[string]*optimizer.ScheduleResult{}}
	}

	locations := make(map[string]models.Location)
	for _, scene := range cfg.scenes {
		locations[scene.LocationID] = models.Location{ID: scene.LocationID, Name: scene.LocationID}
	}

	optimizerCfg := config.OptimizerConfig{
		MaxPagesPerDay:        8,
		HorizonDays:           5,
		LocationChangePenalty: 1000,
		ProximityBonus:        50,
		ProximityWindowDays:   2,
		SetupCostBase:         100,
		SetupCostExterior:     50,
		SetupCostNight:        75,
		RainThresholdPct:      70,
		WeatherRiskPenalty:    700,
		SolverTimeBudget:      5 * time.Second,
		MaxModelVariables:     10000,
	}
	if cfg.override != nil {
		cfg.override(&optimizerCfg)
	}

	engine := optimizer.New(
		optimizer.PredictorWeights{MinutesPerPage: 45, ExteriorMinutes: 15, NightMinutes: 30, MinutesPerCast: 10, MinutesPerShot: 20, DefaultShotCount: 3, ConfidencePct: 20},
		optimizer.OrderWeights{GoodWeatherBonus: 10, SharedCastBonus: 5, SameLocationBonus: 15},
		zap.NewNop(),
	)

	blocked := func(rows []models.CastUnavailability, start time.Time) map[string]map[int]bool {
		index := make(map[string]map[int]bool)
		for _, row := range rows {
			offset := int(row.Date.Sub(start).Hours() / 24)
			if index[row.CastMemberID] == nil {
				index[row.CastMemberID] = make(map[int]bool)
			}
			index[row.CastMemberID][offset] = true
		}
		return index
	}

	svc := NewOptimizeService(
		sceneReaderStub{scenes: cfg.scenes},
		locationReaderStub{locations: locations},
		availabilityStub{rows: cfg.rows},
		cfg.writer,
		cfg.tx,
		forecastStub{days: cfg.weather},
		blocked,
		engine,
		cfg.cache,
		nil,
		optimizerCfg,
		config.RunsConfig{TTL: time.Hour, Workers: 1, QueueSize: 4},
		nil,
		zap.NewNop(),
	)
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc
}

func submitRequest() dto.OptimizeScheduleRequest {
	return dto.OptimizeScheduleRequest{
		ProductionID: "prod-1",
		StartDate:    "2026-09-07",
	}
}

func waitForRun(t *testing.T, svc *OptimizeService, runID string) *dto.RunStatusResponse {
	t.Helper()
	var status *dto.RunStatusResponse
	require.Eventually(t, func() bool {
		resp, err := svc.Get(context.Background(), runID)
		if err != nil {
			return false
		}
		status = resp
		return RunState(resp.State).Finished()
	}, 5*time.Second, 10*time.Millisecond)
	return status
}

func TestOptimizeServiceSubmitAndComplete(t *testing.T) {
	svc := newOptimizeServiceFixture(t, fixtureConfig{})

	resp, err := svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)
	assert.Equal(t, string(RunStateQueued), resp.State)
	assert.NotEmpty(t, resp.RunID)

	status := waitForRun(t, svc, resp.RunID)
	assert.Equal(t, string(RunStateCompleted), status.State)
	require.NotNil(t, status.Result)
	assert.Equal(t, optimizer.StatusOptimal, status.Result.Status)

	var scheduled int
	for _, day := range status.Result.Days {
		scheduled += len(day.Scenes)
	}
	assert.Equal(t, 3, scheduled)
}

func TestOptimizeServiceSubmitNoScenes(t *testing.T) {
	svc := newOptimizeServiceFixture(t, fixtureConfig{scenes: []models.Scene{}})

	_, err := svc.Submit(context.Background(), submitRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestOptimizeServiceSubmitValidation(t *testing.T) {
	svc := newOptimizeServiceFixture(t, fixtureConfig{})

	_, err := svc.Submit(context.Background(), dto.OptimizeScheduleRequest{ProductionID: "prod-1", StartDate: "07-09-2026"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestOptimizeServiceGetUnknownRun(t *testing.T) {
	svc := newOptimizeServiceFixture(t, fixtureConfig{})

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRunNotFound.Code, appErrors.FromError(err).Code)
}

func TestOptimizeServiceGetFallsBackToCache(t *testing.T) {
	cache := &mapRunCache{items: map[string]*optimizer.ScheduleResult{
		"evicted": {ProductionID: "prod-1", Status: optimizer.StatusOptimal},
	}}
	svc := newOptimizeServiceFixture(t, fixtureConfig{cache: cache})

	status, err := svc.Get(context.Background(), "evicted")
	require.NoError(t, err)
	assert.Equal(t, string(RunStateCompleted), status.State)
	require.NotNil(t, status.Result)
	assert.Equal(t, "prod-1", status.Result.ProductionID)
}

func TestOptimizeServiceCancelUnknownRun(t *testing.T) {
	svc := newOptimizeServiceFixture(t, fixtureConfig{})

	err := svc.Cancel(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRunNotFound.Code, appErrors.FromError(err).Code)
}

func TestOptimizeServiceCancelFinishedRunConflicts(t *testing.T) {
	svc := newOptimizeServiceFixture(t, fixtureConfig{})

	resp, err := svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)
	waitForRun(t, svc, resp.RunID)

	err = svc.Cancel(context.Background(), resp.RunID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestOptimizeServiceSaveRequiresFinishedRun(t *testing.T) {
	svc := newOptimizeServiceFixture(t, fixtureConfig{})

	_, err := svc.Save(context.Background(), dto.SaveScheduleRequest{RunID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRunNotFound.Code, appErrors.FromError(err).Code)
}

func TestOptimizeServiceSavePersistsSchedule(t *testing.T) {
	txProvider, mock := newTxProviderMock(t)
	writer := &dayWriterStub{}
	svc := newOptimizeServiceFixture(t, fixtureConfig{tx: txProvider, writer: writer})

	resp, err := svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)
	status := waitForRun(t, svc, resp.RunID)
	require.Equal(t, string(RunStateCompleted), status.State)

	mock.ExpectBegin()
	mock.ExpectCommit()

	saved, err := svc.Save(context.Background(), dto.SaveScheduleRequest{RunID: resp.RunID})
	require.NoError(t, err)
	assert.Equal(t, resp.RunID, saved.RunID)
	assert.Equal(t, len(status.Result.Days), writer.inserted)
	assert.Equal(t, 3, writer.rows)
	assert.Equal(t, 1, writer.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOptimizeServiceExportCSV(t *testing.T) {
	svc := newOptimizeServiceFixture(t, fixtureConfig{})

	resp, err := svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)
	waitForRun(t, svc, resp.RunID)

	file, err := svc.Export(context.Background(), resp.RunID, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Regexp(t, regexp.MustCompile(`^Day,Date,Scene`), string(file.Content))
}

func TestOptimizeServiceExportUnknownFormat(t *testing.T) {
	svc := newOptimizeServiceFixture(t, fixtureConfig{})

	resp, err := svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)
	waitForRun(t, svc, resp.RunID)

	_, err = svc.Export(context.Background(), resp.RunID, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestOptimizeServicePredictDurationInline(t *testing.T) {
	svc := newOptimizeServiceFixture(t, fixtureConfig{})

	estimate, err := svc.PredictDuration(context.Background(), dto.PredictDurationRequest{
		EstimatedPages: 2,
		IntExt:         models.Exterior,
		TimeOfDay:      models.TimeDay,
		CastIDs:        []string{"c1"},
	})
	require.NoError(t, err)
	// 2*45 + 15 + 10 + 3*20 = 175
	assert.Equal(t, 175, estimate.Minutes)
}

func TestOptimizeServicePredictDurationByID(t *testing.T) {
	svc := newOptimizeServiceFixture(t, fixtureConfig{})

	estimate, err := svc.PredictDuration(context.Background(), dto.PredictDurationRequest{SceneID: "s1"})
	require.NoError(t, err)
	assert.Greater(t, estimate.Minutes, 0)

	_, err = svc.PredictDuration(context.Background(), dto.PredictDurationRequest{SceneID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestOptimizeServiceRecommendOrder(t *testing.T) {
	svc := newOptimizeServiceFixture(t, fixtureConfig{})

	resp, err := svc.RecommendOrder(context.Background(), dto.SceneOrderRequest{
		SceneIDs:          []string{"s1", "s2", "s3"},
		CurrentLocationID: "loc-a",
		WeatherGood:       false,
	})
	require.NoError(t, err)
	require.Len(t, resp.Order, 3)
	// Scenes at loc-a outrank the loc-b exterior; scene number orders the tie.
	assert.Equal(t, "s1", resp.Order[0].SceneID)
	assert.Equal(t, "s3", resp.Order[1].SceneID)
	assert.Equal(t, "s2", resp.Order[2].SceneID)
}
