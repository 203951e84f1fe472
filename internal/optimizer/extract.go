package optimizer

import (
	"sort"
	"time"

	"github.com/filmflow/shootplan-api/internal/models"
)

// DayAssignment is one calendar day of the extracted schedule with its
// scenes in recommended shooting order.
type DayAssignment struct {
	DayOffset         int            `json:"dayOffset"`
	Date              time.Time      `json:"date"`
	Scenes            []models.Scene `json:"scenes"`
	TotalPages        float64        `json:"totalPages"`
	PrimaryLocationID string         `json:"primaryLocationId"`
}

// ScheduleResult is the full outcome of one optimization run.
type ScheduleResult struct {
	ProductionID string          `json:"productionId"`
	Days         []DayAssignment `json:"days"`
	Status       Status          `json:"status"`
	Objective    float64         `json:"objective,omitempty"`
	SolveTime    time.Duration   `json:"solveTime"`
	Nodes        int64           `json:"nodesExplored,omitempty"`
	FallbackUsed bool            `json:"fallbackUsed"`
}

// extract turns a raw scene→day assignment into day buckets, picks each
// day's dominant location and runs the order recommender with context
// rolling forward from the previous day's closing scene.
func extract(snap *Snapshot, assignment map[string]int, orderWeights OrderWeights) []DayAssignment {
	byDay := make(map[int][]models.Scene)
	for _, scene := range snap.Scenes {
		if d, ok := assignment[scene.ID]; ok {
			byDay[d] = append(byDay[d], scene)
		}
	}

	offsets := make([]int, 0, len(byDay))
	for d := range byDay {
		offsets = append(offsets, d)
	}
	sort.Ints(offsets)

	days := make([]DayAssignment, 0, len(offsets))
	var previous *models.Scene
	for _, d := range offsets {
		scenes := byDay[d]
		primary := dominantLocation(scenes)

		ordered := RecommendOrder(scenes, OrderContext{
			PreviousScene:     previous,
			CurrentLocationID: primary,
			WeatherGood:       !snap.rainRisky(d),
		}, orderWeights)

		var pages float64
		for _, scene := range ordered {
			pages += scene.EstimatedPages
		}

		days = append(days, DayAssignment{
			DayOffset:         d,
			Date:              snap.DateFor(d),
			Scenes:            ordered,
			TotalPages:        pages,
			PrimaryLocationID: primary,
		})

		last := ordered[len(ordered)-1]
		previous = &last
	}
	return days
}

// dominantLocation is the location carrying the most pages on the day,
// ties broken lexically.
func dominantLocation(scenes []models.Scene) string {
	pages := make(map[string]float64)
	for _, scene := range scenes {
		pages[scene.LocationID] += scene.EstimatedPages
	}
	var best string
	var bestPages float64
	for id, p := range pages {
		if p > bestPages || (p == bestPages && (best == "" || id < best)) {
			best, bestPages = id, p
		}
	}
	return best
}
