package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/filmflow/shootplan-api/internal/dto"
	"github.com/filmflow/shootplan-api/internal/models"
	"github.com/filmflow/shootplan-api/internal/optimizer"
	"github.com/filmflow/shootplan-api/pkg/config"
	appErrors "github.com/filmflow/shootplan-api/pkg/errors"
	"github.com/filmflow/shootplan-api/pkg/export"
	"github.com/filmflow/shootplan-api/pkg/jobs"
)

type sceneReader interface {
	ListByProduction(ctx context.Context, productionID string) ([]models.Scene, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Scene, error)
}

type locationReader interface {
	MapByProduction(ctx context.Context, productionID string) (map[string]models.Location, error)
}

type availabilityReader interface {
	ListWindow(ctx context.Context, productionID string, from, to time.Time) ([]models.CastUnavailability, error)
}

type shootingDayWriter interface {
	InsertDay(ctx context.Context, exec sqlx.ExtContext, day *models.ShootingDay) error
	InsertSceneSchedules(ctx context.Context, exec sqlx.ExtContext, rows []models.SceneSchedule) error
	DeleteByRun(ctx context.Context, exec sqlx.ExtContext, runID string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type forecastProvider interface {
	Forecast(ctx context.Context, latitude, longitude float64, startDate time.Time, days int) ([]models.WeatherDay, error)
}

// BlockedOffsetsFn reshapes unavailability rows into the snapshot index.
// Injected so the service does not import the repository package.
type BlockedOffsetsFn func(rows []models.CastUnavailability, startDate time.Time) map[string]map[int]bool

// OptimizeService orchestrates shoot-day optimization runs: it assembles
// snapshots from persistence and the weather feed, executes solves on a
// background worker pool, and exposes run lifecycle, persistence and
// export operations.
type OptimizeService struct {
	scenes       sceneReader
	locations    locationReader
	availability availabilityReader
	days         shootingDayWriter
	tx           txProvider
	forecast     forecastProvider
	blocked      BlockedOffsetsFn

	engine  *optimizer.Optimizer
	cache   RunCache
	metrics *MetricsService

	optimizerCfg config.OptimizerConfig
	validator    *validator.Validate
	logger       *zap.Logger

	store *runStore
	queue *jobs.Queue

	csv *export.CSVExporter
	pdf *export.PDFExporter
}

// NewOptimizeService wires the optimization pipeline.
func NewOptimizeService(
	scenes sceneReader,
	locations locationReader,
	availability availabilityReader,
	days shootingDayWriter,
	tx txProvider,
	forecast forecastProvider,
	blocked BlockedOffsetsFn,
	engine *optimizer.Optimizer,
	cache RunCache,
	metrics *MetricsService,
	optimizerCfg config.OptimizerConfig,
	runsCfg config.RunsConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *OptimizeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &OptimizeService{
		scenes:       scenes,
		locations:    locations,
		availability: availability,
		days:         days,
		tx:           tx,
		forecast:     forecast,
		blocked:      blocked,
		engine:       engine,
		cache:        cache,
		metrics:      metrics,
		optimizerCfg: optimizerCfg,
		validator:    validate,
		logger:       logger,
		store:        newRunStore(runsCfg.TTL),
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
	}
	s.queue = jobs.NewQueue("optimize-runs", s.executeRun, jobs.QueueConfig{
		Workers:    runsCfg.Workers,
		BufferSize: runsCfg.QueueSize,
		Logger:     logger,
	})
	return s
}

// Start launches the background workers.
func (s *OptimizeService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the background workers.
func (s *OptimizeService) Stop() {
	s.queue.Stop()
}

// Submit registers a new optimization run and enqueues the solve. The
// response carries the run id for polling; the solve itself never runs on
// the request goroutine.
func (s *OptimizeService) Submit(ctx context.Context, req dto.OptimizeScheduleRequest) (*dto.OptimizeRunResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid optimize payload")
	}

	snap, err := s.buildSnapshot(ctx, req)
	if err != nil {
		return nil, err
	}
	// Fail fast on broken input while the caller is still on the line.
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	run := &optimizeRun{
		ID:           uuid.NewString(),
		ProductionID: req.ProductionID,
		State:        RunStateQueued,
		SubmittedAt:  time.Now().UTC(),
		Snapshot:     snap,
		ctx:          runCtx,
		cancel:       cancel,
	}
	s.store.Save(run)

	if err := s.queue.Enqueue(jobs.Job{ID: run.ID, Type: "optimize"}); err != nil {
		s.store.Delete(run.ID)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue optimization run")
	}

	s.logger.Info("optimization run submitted",
		zap.String("run_id", run.ID),
		zap.String("production_id", req.ProductionID),
		zap.Int("scenes", len(snap.Scenes)),
		zap.Int("horizon_days", snap.HorizonDays),
	)
	return &dto.OptimizeRunResponse{
		RunID:        run.ID,
		ProductionID: run.ProductionID,
		State:        string(run.State),
		SubmittedAt:  run.SubmittedAt.Format(time.RFC3339),
	}, nil
}

func (s *OptimizeService) buildSnapshot(ctx context.Context, req dto.OptimizeScheduleRequest) (*optimizer.Snapshot, error) {
	startDate := req.ParseStartDate()
	runCfg, horizon := buildRunConfig(s.optimizerCfg, req.Overrides)

	scenes, err := s.scenes.ListByProduction(ctx, req.ProductionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scenes")
	}
	if len(scenes) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "production has no scenes to schedule")
	}

	locations, err := s.locations.MapByProduction(ctx, req.ProductionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load locations")
	}

	rows, err := s.availability.ListWindow(ctx, req.ProductionID, startDate, startDate.AddDate(0, 0, horizon))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cast availability")
	}

	var forecast []models.WeatherDay
	if req.Latitude != nil && req.Longitude != nil && s.forecast != nil {
		forecast, err = s.forecast.Forecast(ctx, *req.Latitude, *req.Longitude, startDate, horizon)
		if err != nil {
			// Weather is advisory. A dead feed degrades the run to
			// weather-neutral instead of failing it.
			s.logger.Warn("weather feed unavailable, scheduling weather-neutral",
				zap.String("production_id", req.ProductionID), zap.Error(err))
			forecast = nil
		}
	}

	return &optimizer.Snapshot{
		ProductionID: req.ProductionID,
		Scenes:       scenes,
		Locations:    locations,
		Unavailable:  s.blocked(rows, startDate),
		Weather:      forecast,
		StartDate:    startDate,
		HorizonDays:  horizon,
		Config:       runCfg,
	}, nil
}

func (s *OptimizeService) executeRun(queueCtx context.Context, job jobs.Job) error {
	run, ok := s.store.Get(job.ID)
	if !ok {
		return fmt.Errorf("run %s vanished before execution", job.ID)
	}
	if run.State != RunStateQueued {
		return nil
	}

	s.store.Update(job.ID, func(r *optimizeRun) { r.State = RunStateRunning })
	s.metrics.RunStarted()

	ctx, cancel := context.WithCancel(run.ctx)
	defer cancel()
	stop := context.AfterFunc(queueCtx, cancel)
	defer stop()

	result, err := s.engine.Run(ctx, run.Snapshot)
	finished := time.Now().UTC()

	if err != nil {
		state := RunStateFailed
		if ctx.Err() != nil {
			state = RunStateCancelled
		}
		s.metrics.RunFinished(string(state), false, 0, finished.Sub(run.SubmittedAt))
		s.store.Update(job.ID, func(r *optimizeRun) {
			r.State = state
			r.FinishedAt = finished
			r.Err = appErrors.FromError(err).Message
		})
		return err
	}

	s.metrics.RunFinished(string(result.Status), result.FallbackUsed, result.Nodes, result.SolveTime)
	s.store.Update(job.ID, func(r *optimizeRun) {
		r.State = RunStateCompleted
		r.FinishedAt = finished
		r.Result = result
	})
	if s.cache != nil {
		s.cache.SetResult(queueCtx, job.ID, result)
	}
	return nil
}

// Get reports a run's state, with the schedule attached once finished.
// Runs evicted from the in-memory store fall back to the result cache.
func (s *OptimizeService) Get(ctx context.Context, runID string) (*dto.RunStatusResponse, error) {
	run, ok := s.store.Get(runID)
	if !ok {
		if result, hit := s.cache.GetResult(ctx, runID); hit {
			return &dto.RunStatusResponse{
				RunID:        runID,
				ProductionID: result.ProductionID,
				State:        string(RunStateCompleted),
				Result:       result,
			}, nil
		}
		return nil, appErrors.ErrRunNotFound
	}

	resp := &dto.RunStatusResponse{
		RunID:        run.ID,
		ProductionID: run.ProductionID,
		State:        string(run.State),
		SubmittedAt:  run.SubmittedAt.Format(time.RFC3339),
		Error:        run.Err,
		Result:       run.Result,
	}
	if !run.FinishedAt.IsZero() {
		resp.FinishedAt = run.FinishedAt.Format(time.RFC3339)
	}
	return resp, nil
}

// Cancel aborts an in-flight run. A solve holding an incumbent finishes
// with that incumbent; one without finishes empty as cancelled.
func (s *OptimizeService) Cancel(ctx context.Context, runID string) error {
	run, ok := s.store.Get(runID)
	if !ok {
		return appErrors.ErrRunNotFound
	}
	if run.State.Finished() {
		return appErrors.Clone(appErrors.ErrConflict, "run already finished")
	}
	run.cancel()
	s.store.Update(runID, func(r *optimizeRun) {
		if r.State == RunStateQueued {
			r.State = RunStateCancelled
			r.FinishedAt = time.Now().UTC()
		}
	})
	s.logger.Info("optimization run cancelled", zap.String("run_id", runID))
	return nil
}

// Save persists a completed run's schedule as shooting days. Saving the
// same run again replaces its previous rows.
func (s *OptimizeService) Save(ctx context.Context, req dto.SaveScheduleRequest) (*dto.SaveScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save payload")
	}
	run, ok := s.store.Get(req.RunID)
	if !ok {
		return nil, appErrors.ErrRunNotFound
	}
	if run.State != RunStateCompleted || run.Result == nil {
		return nil, appErrors.ErrRunNotFinished
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.days.DeleteByRun(ctx, tx, run.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear previous schedule")
	}

	predictor := s.engine.Predictor()
	dayIDs := make([]string, 0, len(run.Result.Days))
	for i, day := range run.Result.Days {
		record := &models.ShootingDay{
			ProductionID:      run.ProductionID,
			RunID:             run.ID,
			DayNumber:         i + 1,
			Date:              day.Date,
			PrimaryLocationID: day.PrimaryLocationID,
			TotalPages:        day.TotalPages,
		}
		if err = s.days.InsertDay(ctx, tx, record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist shooting day")
		}

		rows := make([]models.SceneSchedule, 0, len(day.Scenes))
		for j, scene := range day.Scenes {
			rows = append(rows, models.SceneSchedule{
				ShootingDayID:    record.ID,
				SceneID:          scene.ID,
				DayOrder:         j + 1,
				EstimatedMinutes: predictor.Predict(scene).Minutes,
			})
		}
		if err = s.days.InsertSceneSchedules(ctx, tx, rows); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist scene schedule")
		}
		dayIDs = append(dayIDs, record.ID)
	}

	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule")
	}

	s.logger.Info("schedule saved",
		zap.String("run_id", run.ID),
		zap.String("production_id", run.ProductionID),
		zap.Int("days", len(dayIDs)),
	)
	return &dto.SaveScheduleResponse{RunID: run.ID, ShootingDayIDs: dayIDs}, nil
}

// ExportFile is a rendered schedule document.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Export renders a completed run's schedule as a CSV table or a PDF call
// sheet.
func (s *OptimizeService) Export(ctx context.Context, runID, format string) (*ExportFile, error) {
	run, ok := s.store.Get(runID)
	if !ok {
		return nil, appErrors.ErrRunNotFound
	}
	if run.State != RunStateCompleted || run.Result == nil {
		return nil, appErrors.ErrRunNotFinished
	}

	dataset := scheduleDataset(run.Result)
	switch format {
	case "", "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Content: content, ContentType: "text/csv", Filename: fmt.Sprintf("schedule-%s.csv", runID)}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, fmt.Sprintf("Shooting Schedule %s", run.ProductionID))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Content: content, ContentType: "application/pdf", Filename: fmt.Sprintf("schedule-%s.pdf", runID)}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func scheduleDataset(result *optimizer.ScheduleResult) export.Dataset {
	headers := []string{"Day", "Date", "Scene", "Int/Ext", "Time", "Location", "Pages"}
	rows := make([]map[string]string, 0)
	for i, day := range result.Days {
		for _, scene := range day.Scenes {
			rows = append(rows, map[string]string{
				"Day":      strconv.Itoa(i + 1),
				"Date":     day.Date.Format("2006-01-02"),
				"Scene":    scene.SceneNumber,
				"Int/Ext":  scene.IntExt,
				"Time":     scene.TimeOfDay,
				"Location": scene.LocationID,
				"Pages":    strconv.FormatFloat(scene.EstimatedPages, 'f', 2, 64),
			})
		}
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

// PredictDuration estimates how long a scene will take to shoot. The
// scene comes from storage when an id is given, otherwise from the inline
// description.
func (s *OptimizeService) PredictDuration(ctx context.Context, req dto.PredictDurationRequest) (*optimizer.DurationEstimate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid prediction payload")
	}

	var scene models.Scene
	if req.SceneID != "" {
		scenes, err := s.scenes.FindByIDs(ctx, []string{req.SceneID})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scene")
		}
		if len(scenes) == 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("scene %s not found", req.SceneID))
		}
		scene = scenes[0]
	} else {
		scene = models.Scene{
			EstimatedPages: req.EstimatedPages,
			IntExt:         req.IntExt,
			TimeOfDay:      req.TimeOfDay,
			CastIDs:        req.CastIDs,
			ShotCount:      req.ShotCount,
		}
	}

	estimate := s.engine.Predictor().Predict(scene)
	return &estimate, nil
}

// RecommendOrder returns the advisory within-day shooting order for the
// named scenes.
func (s *OptimizeService) RecommendOrder(ctx context.Context, req dto.SceneOrderRequest) (*dto.SceneOrderResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid order payload")
	}

	scenes, err := s.scenes.FindByIDs(ctx, req.SceneIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scenes")
	}
	if len(scenes) != len(req.SceneIDs) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "one or more scenes not found")
	}

	orderCtx := optimizer.OrderContext{
		CurrentLocationID: req.CurrentLocationID,
		WeatherGood:       req.WeatherGood,
	}
	if req.PreviousSceneID != "" {
		previous, err := s.scenes.FindByIDs(ctx, []string{req.PreviousSceneID})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load previous scene")
		}
		if len(previous) == 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("scene %s not found", req.PreviousSceneID))
		}
		orderCtx.PreviousScene = &previous[0]
	}

	ordered := optimizer.RecommendOrder(scenes, orderCtx, s.engine.OrderWeights())
	resp := &dto.SceneOrderResponse{Order: make([]dto.SceneOrderItem, len(ordered))}
	for i, scene := range ordered {
		resp.Order[i] = dto.SceneOrderItem{
			Position:    i + 1,
			SceneID:     scene.ID,
			SceneNumber: scene.SceneNumber,
			LocationID:  scene.LocationID,
		}
	}
	return resp, nil
}

// buildRunConfig folds request overrides into the configured defaults.
func buildRunConfig(cfg config.OptimizerConfig, overrides *dto.OptimizerOverrides) (optimizer.Config, int) {
	runCfg := optimizer.Config{
		MaxPagesPerDay:        cfg.MaxPagesPerDay,
		LocationChangePenalty: cfg.LocationChangePenalty,
		ProximityBonus:        cfg.ProximityBonus,
		ProximityWindowDays:   cfg.ProximityWindowDays,
		SetupCostBase:         cfg.SetupCostBase,
		SetupCostExterior:     cfg.SetupCostExterior,
		SetupCostNight:        cfg.SetupCostNight,
		RainThresholdPct:      cfg.RainThresholdPct,
		WeatherRiskPenalty:    cfg.WeatherRiskPenalty,
		HardWeatherExclusion:  cfg.HardWeatherExclusion,
		HardRainThresholdPct:  cfg.HardRainThresholdPct,
		SolverTimeBudget:      cfg.SolverTimeBudget,
		MaxModelVariables:     cfg.MaxModelVariables,
	}
	horizon := cfg.HorizonDays

	if overrides == nil {
		return runCfg, horizon
	}
	if overrides.MaxPagesPerDay != nil {
		runCfg.MaxPagesPerDay = *overrides.MaxPagesPerDay
	}
	if overrides.HorizonDays != nil {
		horizon = *overrides.HorizonDays
	}
	if overrides.LocationChangePenalty != nil {
		runCfg.LocationChangePenalty = *overrides.LocationChangePenalty
	}
	if overrides.ProximityBonus != nil {
		runCfg.ProximityBonus = *overrides.ProximityBonus
	}
	if overrides.RainThresholdPct != nil {
		runCfg.RainThresholdPct = *overrides.RainThresholdPct
	}
	if overrides.HardWeatherExclusion != nil {
		runCfg.HardWeatherExclusion = *overrides.HardWeatherExclusion
	}
	if overrides.SolverTimeBudgetSec != nil {
		runCfg.SolverTimeBudget = time.Duration(*overrides.SolverTimeBudgetSec) * time.Second
	}
	return runCfg, horizon
}
