package optimizer

import (
	"sort"

	"github.com/filmflow/shootplan-api/internal/models"
)

// OrderWeights are the scoring bonuses of the within-day ordering pass.
type OrderWeights struct {
	GoodWeatherBonus  float64
	SharedCastBonus   float64
	SameLocationBonus float64
}

// OrderContext carries the rolling state the scorer sees: the scene that
// closed the previous block and whether the day's weather favors
// exteriors.
type OrderContext struct {
	PreviousScene     *models.Scene
	CurrentLocationID string
	WeatherGood       bool
}

// RecommendOrder sorts scenes for one shooting day by descending score.
// Exterior scenes score higher in good weather, shared cast with the
// previous block earns a bonus per member, and staying on the current
// location outranks both. Equal scores fall back to scene number so the
// ordering stays deterministic.
func RecommendOrder(scenes []models.Scene, ctx OrderContext, weights OrderWeights) []models.Scene {
	ordered := make([]models.Scene, len(scenes))
	copy(ordered, scenes)

	scores := make(map[string]float64, len(ordered))
	for _, scene := range ordered {
		scores[scene.ID] = orderScore(scene, ctx, weights)
	}

	sort.Slice(ordered, func(i, j int) bool {
		si, sj := scores[ordered[i].ID], scores[ordered[j].ID]
		if si != sj {
			return si > sj
		}
		return ordered[i].SceneNumber < ordered[j].SceneNumber
	})
	return ordered
}

func orderScore(scene models.Scene, ctx OrderContext, weights OrderWeights) float64 {
	var score float64
	if scene.IsExterior() && ctx.WeatherGood {
		score += weights.GoodWeatherBonus
	}
	if ctx.PreviousScene != nil {
		score += float64(sharedCast(scene, *ctx.PreviousScene)) * weights.SharedCastBonus
	}
	if ctx.CurrentLocationID != "" && scene.LocationID == ctx.CurrentLocationID {
		score += weights.SameLocationBonus
	}
	return score
}

func sharedCast(a, b models.Scene) int {
	members := make(map[string]bool, len(a.CastIDs))
	for _, id := range a.CastIDs {
		members[id] = true
	}
	var shared int
	for _, id := range b.CastIDs {
		if members[id] {
			shared++
		}
	}
	return shared
}
