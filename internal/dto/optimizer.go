package dto

import (
	"time"

	"github.com/filmflow/shootplan-api/internal/optimizer"
)

// OptimizerOverrides tunes a single run without touching server defaults.
// Every field is optional; zero values fall back to configuration.
type OptimizerOverrides struct {
	MaxPagesPerDay        *float64 `json:"maxPagesPerDay" validate:"omitempty,gt=0"`
	HorizonDays           *int     `json:"horizonDays" validate:"omitempty,min=1,max=120"`
	LocationChangePenalty *float64 `json:"locationChangePenalty" validate:"omitempty,min=0"`
	ProximityBonus        *float64 `json:"proximityBonus" validate:"omitempty,min=0"`
	RainThresholdPct      *int     `json:"rainThresholdPct" validate:"omitempty,min=0,max=100"`
	HardWeatherExclusion  *bool    `json:"hardWeatherExclusion"`
	SolverTimeBudgetSec   *int     `json:"solverTimeBudgetSec" validate:"omitempty,min=1,max=300"`
}

// OptimizeScheduleRequest starts an optimization run for a production.
type OptimizeScheduleRequest struct {
	ProductionID string              `json:"productionId" validate:"required"`
	StartDate    string              `json:"startDate" validate:"required,datetime=2006-01-02"`
	Latitude     *float64            `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude    *float64            `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Overrides    *OptimizerOverrides `json:"overrides" validate:"omitempty"`
}

// OptimizeRunResponse acknowledges a submitted run.
type OptimizeRunResponse struct {
	RunID        string `json:"runId"`
	ProductionID string `json:"productionId"`
	State        string `json:"state"`
	SubmittedAt  string `json:"submittedAt"`
}

// RunStatusResponse reports a run's lifecycle state, with the schedule
// attached once the run has finished.
type RunStatusResponse struct {
	RunID        string                    `json:"runId"`
	ProductionID string                    `json:"productionId"`
	State        string                    `json:"state"`
	SubmittedAt  string                    `json:"submittedAt"`
	FinishedAt   string                    `json:"finishedAt,omitempty"`
	Error        string                    `json:"error,omitempty"`
	Result       *optimizer.ScheduleResult `json:"result,omitempty"`
}

// SaveScheduleRequest persists a finished run as shooting days.
type SaveScheduleRequest struct {
	RunID string `json:"runId" validate:"required"`
}

// SaveScheduleResponse returns the persisted day identifiers.
type SaveScheduleResponse struct {
	RunID          string   `json:"runId"`
	ShootingDayIDs []string `json:"shootingDayIds"`
}

// PredictDurationRequest scores one scene with the duration model. The
// scene may be identified by id or described inline.
type PredictDurationRequest struct {
	SceneID        string   `json:"sceneId" validate:"required_without=EstimatedPages"`
	EstimatedPages float64  `json:"estimatedPages" validate:"omitempty,gt=0"`
	IntExt         string   `json:"intExt" validate:"omitempty,oneof=INT EXT"`
	TimeOfDay      string   `json:"timeOfDay" validate:"omitempty,oneof=DAY NIGHT DAWN DUSK CONTINUOUS"`
	CastIDs        []string `json:"castIds"`
	ShotCount      *int     `json:"shotCount" validate:"omitempty,min=1"`
}

// SceneOrderRequest asks for a recommended shooting order for one day.
type SceneOrderRequest struct {
	SceneIDs          []string `json:"sceneIds" validate:"required,min=1,dive,required"`
	PreviousSceneID   string   `json:"previousSceneId"`
	CurrentLocationID string   `json:"currentLocationId"`
	WeatherGood       bool     `json:"weatherGood"`
}

// SceneOrderItem is one slot of the recommended order.
type SceneOrderItem struct {
	Position    int    `json:"position"`
	SceneID     string `json:"sceneId"`
	SceneNumber string `json:"sceneNumber"`
	LocationID  string `json:"locationId"`
}

// SceneOrderResponse returns the recommended order.
type SceneOrderResponse struct {
	Order []SceneOrderItem `json:"order"`
}

// ShootingDayQuery filters the persisted schedule listing.
type ShootingDayQuery struct {
	ProductionID string `form:"productionId" json:"productionId" validate:"required"`
	From         string `form:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To           string `form:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
	Page         int    `form:"page" json:"page" validate:"omitempty,min=1"`
	PageSize     int    `form:"pageSize" json:"pageSize" validate:"omitempty,min=1,max=200"`
}

// RecordSceneActualRequest records how long a scheduled scene really took.
type RecordSceneActualRequest struct {
	ActualMinutes int `json:"actualMinutes" validate:"required,gt=0"`
}

// DurationHistoryQuery filters the recorded actuals that feed predictor
// recalibration.
type DurationHistoryQuery struct {
	ProductionID string `form:"productionId" json:"productionId" validate:"required"`
	Limit        int    `form:"limit" json:"limit" validate:"omitempty,min=1,max=1000"`
}

// ParseStartDate converts the request's date string. Validation has
// already guaranteed the layout.
func (r OptimizeScheduleRequest) ParseStartDate() time.Time {
	parsed, _ := time.Parse("2006-01-02", r.StartDate)
	return parsed
}
