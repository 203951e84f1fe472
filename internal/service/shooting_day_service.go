package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/filmflow/shootplan-api/internal/dto"
	"github.com/filmflow/shootplan-api/internal/models"
	appErrors "github.com/filmflow/shootplan-api/pkg/errors"
)

type shootingDayReader interface {
	GetByID(ctx context.Context, id string) (*models.ShootingDay, error)
	List(ctx context.Context, productionID string, from, to *time.Time, page, size int) ([]models.ShootingDay, int, error)
	ListScenes(ctx context.Context, shootingDayID string) ([]models.SceneSchedule, error)
}

type durationHistory interface {
	Record(ctx context.Context, sample *models.DurationSample) error
	ListByProduction(ctx context.Context, productionID string, limit int) ([]models.DurationSample, error)
}

// ShootingDayService reads persisted schedules and collects the actual
// scene durations that feed predictor recalibration.
type ShootingDayService struct {
	days      shootingDayReader
	scenes    sceneReader
	history   durationHistory
	validator *validator.Validate
	logger    *zap.Logger
}

func NewShootingDayService(days shootingDayReader, scenes sceneReader, history durationHistory, validate *validator.Validate, logger *zap.Logger) *ShootingDayService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShootingDayService{days: days, scenes: scenes, history: history, validator: validate, logger: logger}
}

// List returns a production's saved shooting days with pagination.
func (s *ShootingDayService) List(ctx context.Context, query dto.ShootingDayQuery) ([]models.ShootingDay, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shooting day query")
	}

	var from, to *time.Time
	if query.From != "" {
		parsed, _ := time.Parse("2006-01-02", query.From)
		from = &parsed
	}
	if query.To != "" {
		parsed, _ := time.Parse("2006-01-02", query.To)
		to = &parsed
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 {
		size = 50
	}

	days, total, err := s.days.List(ctx, query.ProductionID, from, to, page, size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shooting days")
	}

	pagination := &models.Pagination{
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: (total + size - 1) / size,
	}
	return days, pagination, nil
}

// Get returns one saved shooting day.
func (s *ShootingDayService) Get(ctx context.Context, id string) (*models.ShootingDay, error) {
	day, err := s.days.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shooting day not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shooting day")
	}
	return day, nil
}

// Scenes returns the ordered scene rows of one saved day.
func (s *ShootingDayService) Scenes(ctx context.Context, shootingDayID string) ([]models.SceneSchedule, error) {
	rows, err := s.days.ListScenes(ctx, shootingDayID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list day scenes")
	}
	return rows, nil
}

// RecordActual stores how long a scene really took on a shot day. The
// sample carries the scene's predictor features so recalibration never
// needs to join back onto a scene that may have been edited since.
func (s *ShootingDayService) RecordActual(ctx context.Context, dayID, sceneID string, req dto.RecordSceneActualRequest) (*models.DurationSample, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid duration sample")
	}

	day, err := s.days.GetByID(ctx, dayID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shooting day not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shooting day")
	}

	scenes, err := s.scenes.FindByIDs(ctx, []string{sceneID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scene")
	}
	if len(scenes) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "scene not found")
	}
	scene := scenes[0]

	var shots int
	if scene.ShotCount != nil {
		shots = *scene.ShotCount
	}
	sample := &models.DurationSample{
		ProductionID:  day.ProductionID,
		SceneID:       scene.ID,
		Pages:         scene.EstimatedPages,
		IntExt:        scene.IntExt,
		TimeOfDay:     scene.TimeOfDay,
		CastCount:     len(scene.CastIDs),
		ShotCount:     shots,
		ActualMinutes: req.ActualMinutes,
	}
	if err := s.history.Record(ctx, sample); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record duration sample")
	}

	s.logger.Info("duration sample recorded",
		zap.String("productionId", day.ProductionID),
		zap.String("sceneId", scene.ID),
		zap.Int("actualMinutes", req.ActualMinutes),
	)
	return sample, nil
}

// History returns a production's recorded actuals, newest first.
func (s *ShootingDayService) History(ctx context.Context, query dto.DurationHistoryQuery) ([]models.DurationSample, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid duration history query")
	}
	samples, err := s.history.ListByProduction(ctx, query.ProductionID, query.Limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list duration samples")
	}
	return samples, nil
}
