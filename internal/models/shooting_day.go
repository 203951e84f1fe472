package models

import "time"

// ShootingDay statuses.
const (
	DayStatusScheduled   = "scheduled"
	DayStatusShooting    = "shooting"
	DayStatusWrapped     = "wrapped"
	DayStatusWeatherHold = "weather_hold"
	DayStatusCancelled   = "cancelled"
)

// ShootingDay is one persisted calendar day of an accepted schedule.
type ShootingDay struct {
	ID                string    `db:"id" json:"id"`
	ProductionID      string    `db:"production_id" json:"productionId"`
	RunID             string    `db:"run_id" json:"runId"`
	DayNumber         int       `db:"day_number" json:"dayNumber"`
	Date              time.Time `db:"shoot_date" json:"date"`
	Status            string    `db:"status" json:"status"`
	PrimaryLocationID string    `db:"primary_location_id" json:"primaryLocationId"`
	TotalPages        float64   `db:"total_pages" json:"totalPages"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// SceneSchedule links a scene to a shooting day with its running order.
type SceneSchedule struct {
	ID               string    `db:"id" json:"id"`
	ShootingDayID    string    `db:"shooting_day_id" json:"shootingDayId"`
	SceneID          string    `db:"scene_id" json:"sceneId"`
	DayOrder         int       `db:"day_order" json:"dayOrder"`
	EstimatedMinutes int       `db:"estimated_minutes" json:"estimatedMinutes"`
	Status           string    `db:"status" json:"status"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// DurationSample is one historical actual: how long a scene really took.
// Samples feed predictor weight recalibration.
type DurationSample struct {
	ID            string    `db:"id" json:"id"`
	ProductionID  string    `db:"production_id" json:"productionId"`
	SceneID       string    `db:"scene_id" json:"sceneId"`
	Pages         float64   `db:"pages" json:"pages"`
	IntExt        string    `db:"int_ext" json:"intExt"`
	TimeOfDay     string    `db:"time_of_day" json:"timeOfDay"`
	CastCount     int       `db:"cast_count" json:"castCount"`
	ShotCount     int       `db:"shot_count" json:"shotCount"`
	ActualMinutes int       `db:"actual_minutes" json:"actualMinutes"`
	RecordedAt    time.Time `db:"recorded_at" json:"recordedAt"`
}
