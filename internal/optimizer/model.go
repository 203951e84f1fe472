package optimizer

import (
	"fmt"

	"github.com/filmflow/shootplan-api/internal/models"
	appErrors "github.com/filmflow/shootplan-api/pkg/errors"
)

// assignmentModel is the binary assignment problem: one candidate variable
// per (scene, day) pair, with cast and hard-weather exclusions folded into
// the allowed-day lists and everything else expressed as objective terms.
type assignmentModel struct {
	scenes      []models.Scene
	days        int
	pages       []float64
	setupCost   []float64
	allowedDays [][]int
	// exteriorRisk[d] holds the soft penalty applied to an exterior scene
	// placed on day d.
	exteriorRisk []float64
	// coLocated[i] lists the indices of other scenes sharing scene i's
	// location, the candidates for the proximity bonus.
	coLocated [][]int
	cfg       Config
}

// buildModel translates a snapshot into the assignment model. It fails with
// ErrModelSizeExceeded before any search is attempted when the variable
// count is beyond the configured safety bound.
func buildModel(snap *Snapshot) (*assignmentModel, error) {
	scenes := snap.orderedScenes()
	days := snap.HorizonDays

	if bound := snap.Config.MaxModelVariables; bound > 0 && len(scenes)*days > bound {
		return nil, appErrors.Clone(appErrors.ErrModelSizeExceeded,
			fmt.Sprintf("%d scenes over %d days needs %d variables, bound is %d; reduce the horizon or pre-partition scenes",
				len(scenes), days, len(scenes)*days, bound))
	}

	m := &assignmentModel{
		scenes:       scenes,
		days:         days,
		pages:        make([]float64, len(scenes)),
		setupCost:    make([]float64, len(scenes)),
		allowedDays:  make([][]int, len(scenes)),
		exteriorRisk: make([]float64, days),
		coLocated:    make([][]int, len(scenes)),
		cfg:          snap.Config,
	}

	for d := 0; d < days; d++ {
		if snap.rainRisky(d) {
			m.exteriorRisk[d] = snap.Config.WeatherRiskPenalty
		}
	}

	byLocation := make(map[string][]int)
	for i, scene := range scenes {
		m.pages[i] = scene.EstimatedPages
		m.setupCost[i] = setupCost(scene, snap.Config)
		byLocation[scene.LocationID] = append(byLocation[scene.LocationID], i)

		allowed := make([]int, 0, days)
		for d := 0; d < days; d++ {
			if snap.castBlocked(scene, d) {
				continue
			}
			if scene.IsExterior() && snap.rainExcluded(d) {
				continue
			}
			allowed = append(allowed, d)
		}
		if len(allowed) == 0 {
			// Unsatisfiable scene: keep the model buildable and let the
			// solver report infeasibility so the fallback path engages.
			allowed = nil
		}
		m.allowedDays[i] = allowed
	}

	for _, indices := range byLocation {
		for _, i := range indices {
			for _, j := range indices {
				if i != j {
					m.coLocated[i] = append(m.coLocated[i], j)
				}
			}
		}
	}

	return m, nil
}

// setupCost is the fixed per-scene baseline: exteriors pay for weather
// dependency, night and dusk scenes pay for lighting setup, and the shot
// complexity tier scales the whole term.
func setupCost(scene models.Scene, cfg Config) float64 {
	cost := cfg.SetupCostBase
	if scene.IsExterior() {
		cost += cfg.SetupCostExterior
	}
	if scene.IsNight() {
		cost += cfg.SetupCostNight
	}
	return cost * models.ParseShotComplexity(scene.Complexity).Weight()
}
