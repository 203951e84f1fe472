package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/filmflow/shootplan-api/internal/models"
	appErrors "github.com/filmflow/shootplan-api/pkg/errors"
)

// fallbackSchedule is the deterministic greedy scheduler used when the
// solver reports infeasible or times out empty-handed. Scenes are grouped
// by location, interiors lead when the horizon carries weather risk, and
// groups spill day by day under the page cap. Cast unavailability stays a
// hard rule even when honoring it breaks location grouping.
func fallbackSchedule(snap *Snapshot) (map[string]int, error) {
	capacity := snap.Config.MaxPagesPerDay

	var totalPages float64
	for _, scene := range snap.Scenes {
		totalPages += scene.EstimatedPages
	}
	needed := int(math.Ceil(totalPages / capacity))
	if needed > snap.HorizonDays {
		return nil, horizonTooShort(needed - snap.HorizonDays)
	}

	riskyHorizon := false
	for d := 0; d < snap.HorizonDays; d++ {
		if snap.rainRisky(d) {
			riskyHorizon = true
			break
		}
	}

	assignment := make(map[string]int, len(snap.Scenes))
	remaining := make([]float64, snap.HorizonDays)
	for d := range remaining {
		remaining[d] = capacity
	}

	var unplacedPages float64
	for _, scene := range groupedScenes(snap, riskyHorizon) {
		day := pickDay(snap, scene, remaining)
		if day < 0 {
			unplacedPages += scene.EstimatedPages
			continue
		}
		assignment[scene.ID] = day
		remaining[day] -= scene.EstimatedPages
	}

	if unplacedPages > 0 {
		shortfall := int(math.Ceil(unplacedPages / capacity))
		return nil, horizonTooShort(shortfall)
	}
	return assignment, nil
}

// groupedScenes orders scenes location by location. Within a group,
// interiors precede exteriors when any horizon day is weather-risky;
// scene number breaks every remaining tie.
func groupedScenes(snap *Snapshot, riskyHorizon bool) []models.Scene {
	byLocation := make(map[string][]models.Scene)
	for _, scene := range snap.Scenes {
		byLocation[scene.LocationID] = append(byLocation[scene.LocationID], scene)
	}

	locationIDs := make([]string, 0, len(byLocation))
	for id := range byLocation {
		locationIDs = append(locationIDs, id)
	}
	sort.Strings(locationIDs)

	ordered := make([]models.Scene, 0, len(snap.Scenes))
	for _, id := range locationIDs {
		group := byLocation[id]
		sort.Slice(group, func(i, j int) bool {
			if riskyHorizon && group[i].IsExterior() != group[j].IsExterior() {
				return !group[i].IsExterior()
			}
			return group[i].SceneNumber < group[j].SceneNumber
		})
		ordered = append(ordered, group...)
	}
	return ordered
}

// pickDay scans the horizon in order for the first day that has capacity
// and no cast conflict. An exterior scene skips a rain-risky day whenever
// some calm day could still take it, so weather steers placement without
// ever becoming a hard rule.
func pickDay(snap *Snapshot, scene models.Scene, remaining []float64) int {
	feasible := func(d int) bool {
		if remaining[d] < scene.EstimatedPages {
			return false
		}
		if snap.castBlocked(scene, d) {
			return false
		}
		if scene.IsExterior() && snap.rainExcluded(d) {
			return false
		}
		return true
	}

	for d := 0; d < snap.HorizonDays; d++ {
		if !feasible(d) {
			continue
		}
		if scene.IsExterior() && snap.rainRisky(d) && calmAlternativeExists(snap, d, feasible) {
			continue
		}
		return d
	}
	// Second pass without weather steering: a risky day beats no day.
	for d := 0; d < snap.HorizonDays; d++ {
		if feasible(d) {
			return d
		}
	}
	return -1
}

func calmAlternativeExists(snap *Snapshot, skip int, feasible func(int) bool) bool {
	for d := 0; d < snap.HorizonDays; d++ {
		if d == skip || snap.rainRisky(d) {
			continue
		}
		if feasible(d) {
			return true
		}
	}
	return false
}

func horizonTooShort(shortfall int) error {
	if shortfall < 1 {
		shortfall = 1
	}
	return appErrors.Clone(appErrors.ErrHorizonTooShort,
		fmt.Sprintf("extend shooting horizon by at least %d day(s)", shortfall))
}
