// Command solver_bench runs the schedule optimizer against synthetic
// productions of increasing size and reports solve status, objective and
// wall time per configuration. Used when tuning penalties and the default
// time budget.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/filmflow/shootplan-api/internal/models"
	"github.com/filmflow/shootplan-api/internal/optimizer"
)

func main() {
	var (
		maxScenes int
		horizon   int
		budget    time.Duration
		rainDay   int
	)

	flag.IntVar(&maxScenes, "max-scenes", 24, "largest synthetic scene count")
	flag.IntVar(&horizon, "horizon", 10, "shooting horizon in days")
	flag.DurationVar(&budget, "budget", 5*time.Second, "solver time budget per run")
	flag.IntVar(&rainDay, "rain-day", 3, "day offset with 90% precipitation, -1 to disable")
	flag.Parse()

	engine := optimizer.New(
		optimizer.PredictorWeights{MinutesPerPage: 45, ExteriorMinutes: 15, NightMinutes: 30, MinutesPerCast: 10, MinutesPerShot: 20, DefaultShotCount: 3, ConfidencePct: 20},
		optimizer.OrderWeights{GoodWeatherBonus: 10, SharedCastBonus: 5, SameLocationBonus: 15},
		zap.NewNop(),
	)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "scenes\tstatus\tobjective\tnodes\telapsed\tfallback")

	for scenes := 6; scenes <= maxScenes; scenes += 6 {
		snap := syntheticSnapshot(scenes, horizon, budget, rainDay)
		result, err := engine.Run(context.Background(), snap)
		if err != nil {
			log.Fatalf("run with %d scenes failed: %v", scenes, err)
		}
		fmt.Fprintf(w, "%d\t%s\t%.0f\t%d\t%s\t%v\n",
			scenes, result.Status, result.Objective, result.Nodes, result.SolveTime.Round(time.Millisecond), result.FallbackUsed)
	}
	w.Flush()
}

func syntheticSnapshot(sceneCount, horizon int, budget time.Duration, rainDay int) *optimizer.Snapshot {
	locations := make(map[string]models.Location)
	scenes := make([]models.Scene, 0, sceneCount)

	for i := 0; i < sceneCount; i++ {
		locID := fmt.Sprintf("loc-%d", i%4)
		locations[locID] = models.Location{ID: locID, Name: locID}

		intExt := models.Interior
		if i%3 == 0 {
			intExt = models.Exterior
		}
		timeOfDay := models.TimeDay
		if i%5 == 0 {
			timeOfDay = models.TimeNight
		}
		scenes = append(scenes, models.Scene{
			ID:             fmt.Sprintf("scene-%02d", i),
			SceneNumber:    fmt.Sprintf("%02d", i+1),
			IntExt:         intExt,
			TimeOfDay:      timeOfDay,
			LocationID:     locID,
			EstimatedPages: 1 + float64(i%4),
			Complexity:     "standard",
			CastIDs:        []string{fmt.Sprintf("cast-%d", i%6)},
		})
	}

	var weather []models.WeatherDay
	if rainDay >= 0 && rainDay < horizon {
		weather = append(weather, models.WeatherDay{DayOffset: rainDay, PrecipitationPct: 90})
	}

	return &optimizer.Snapshot{
		ProductionID: "bench",
		Scenes:       scenes,
		Locations:    locations,
		Unavailable:  map[string]map[int]bool{},
		Weather:      weather,
		StartDate:    time.Now().UTC().Truncate(24 * time.Hour),
		HorizonDays:  horizon,
		Config: optimizer.Config{
			MaxPagesPerDay:        8,
			LocationChangePenalty: 1000,
			ProximityBonus:        50,
			ProximityWindowDays:   2,
			SetupCostBase:         100,
			SetupCostExterior:     50,
			SetupCostNight:        75,
			RainThresholdPct:      70,
			WeatherRiskPenalty:    700,
			SolverTimeBudget:      budget,
			MaxModelVariables:     10000,
		},
	}
}
