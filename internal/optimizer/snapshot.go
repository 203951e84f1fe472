package optimizer

import (
	"fmt"
	"sort"
	"time"

	"github.com/filmflow/shootplan-api/internal/models"
	appErrors "github.com/filmflow/shootplan-api/pkg/errors"
)

// Config carries every tunable of one optimization run. Values are plain
// data so tests can pin them without touching globals.
type Config struct {
	MaxPagesPerDay        float64
	LocationChangePenalty float64
	ProximityBonus        float64
	ProximityWindowDays   int
	SetupCostBase         float64
	SetupCostExterior     float64
	SetupCostNight        float64
	RainThresholdPct      int
	WeatherRiskPenalty    float64
	HardWeatherExclusion  bool
	HardRainThresholdPct  int
	SolverTimeBudget      time.Duration
	MaxModelVariables     int
}

// Snapshot is the immutable input bundle for one run: scenes, locations,
// cast unavailability, the weather signal and the horizon. It is built
// fresh per request and never mutated by the solve.
type Snapshot struct {
	ProductionID string
	Scenes       []models.Scene
	Locations    map[string]models.Location
	// Unavailable maps cast member id to the set of blocked day-offsets.
	Unavailable map[string]map[int]bool
	Weather     []models.WeatherDay
	StartDate   time.Time
	HorizonDays int
	Config      Config
}

// Validate rejects structurally broken input before model construction.
func (s *Snapshot) Validate() error {
	if s.HorizonDays <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "horizon must contain at least one day")
	}
	if s.Config.MaxPagesPerDay <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "max pages per day must be positive")
	}
	if len(s.Scenes) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "snapshot contains no scenes")
	}

	seen := make(map[string]bool, len(s.Scenes))
	for _, scene := range s.Scenes {
		if scene.EstimatedPages <= 0 {
			return appErrors.Clone(appErrors.ErrInvalidScene, fmt.Sprintf("scene %s has non-positive page count", scene.SceneNumber))
		}
		if _, ok := s.Locations[scene.LocationID]; !ok {
			return appErrors.Clone(appErrors.ErrInvalidScene, fmt.Sprintf("scene %s references unknown location %s", scene.SceneNumber, scene.LocationID))
		}
		if scene.EstimatedPages > s.Config.MaxPagesPerDay {
			return appErrors.Clone(appErrors.ErrInvalidScene, fmt.Sprintf("scene %s (%.2f pages) exceeds the daily page cap", scene.SceneNumber, scene.EstimatedPages))
		}
		if seen[scene.ID] {
			return appErrors.Clone(appErrors.ErrInvalidScene, fmt.Sprintf("duplicate scene id %s", scene.ID))
		}
		seen[scene.ID] = true
	}
	return nil
}

// DateFor maps a day-offset onto its calendar date.
func (s *Snapshot) DateFor(offset int) time.Time {
	return s.StartDate.AddDate(0, 0, offset)
}

// precipitation returns the forecast probability for a day-offset, zero
// when the signal does not cover the offset.
func (s *Snapshot) precipitation(offset int) int {
	for _, day := range s.Weather {
		if day.DayOffset == offset {
			return day.PrecipitationPct
		}
	}
	return 0
}

// rainRisky reports whether exterior work on the day carries weather risk.
func (s *Snapshot) rainRisky(offset int) bool {
	return s.precipitation(offset) > s.Config.RainThresholdPct
}

// rainExcluded reports whether the day is hard-excluded for exterior work.
func (s *Snapshot) rainExcluded(offset int) bool {
	return s.Config.HardWeatherExclusion && s.precipitation(offset) >= s.Config.HardRainThresholdPct
}

// castBlocked reports whether any cast member required by the scene is
// unavailable on the day.
func (s *Snapshot) castBlocked(scene models.Scene, offset int) bool {
	for _, castID := range scene.CastIDs {
		if days, ok := s.Unavailable[castID]; ok && days[offset] {
			return true
		}
	}
	return false
}

// orderedScenes returns scenes sorted pages-descending, scene number
// ascending, the deterministic search and placement order.
func (s *Snapshot) orderedScenes() []models.Scene {
	scenes := make([]models.Scene, len(s.Scenes))
	copy(scenes, s.Scenes)
	sort.Slice(scenes, func(i, j int) bool {
		if scenes[i].EstimatedPages != scenes[j].EstimatedPages {
			return scenes[i].EstimatedPages > scenes[j].EstimatedPages
		}
		return scenes[i].SceneNumber < scenes[j].SceneNumber
	})
	return scenes
}
