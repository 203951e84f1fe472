package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmflow/shootplan-api/internal/models"
)

func sceneIDs(scenes []models.Scene) []string {
	ids := make([]string, len(scenes))
	for i, scene := range scenes {
		ids[i] = scene.ID
	}
	return ids
}

func TestRecommendOrderPrefersExteriorsInGoodWeather(t *testing.T) {
	scenes := []models.Scene{
		makeScene("int", "2", models.Interior, models.TimeDay, "loc-x", 2),
		makeScene("ext", "5", models.Exterior, models.TimeDay, "loc-y", 2),
	}

	ordered := RecommendOrder(scenes, OrderContext{WeatherGood: true}, testOrderWeights())
	assert.Equal(t, []string{"ext", "int"}, sceneIDs(ordered))

	ordered = RecommendOrder(scenes, OrderContext{WeatherGood: false}, testOrderWeights())
	assert.Equal(t, []string{"int", "ext"}, sceneIDs(ordered), "without the weather bonus scene number decides")
}

func TestRecommendOrderLocationMatchOutranksWeather(t *testing.T) {
	scenes := []models.Scene{
		makeScene("ext", "1", models.Exterior, models.TimeDay, "loc-y", 2),
		makeScene("int", "2", models.Interior, models.TimeDay, "loc-x", 2),
	}

	ordered := RecommendOrder(scenes, OrderContext{
		CurrentLocationID: "loc-x",
		WeatherGood:       true,
	}, testOrderWeights())
	assert.Equal(t, []string{"int", "ext"}, sceneIDs(ordered), "15-point location match beats the 10-point weather bonus")
}

func TestRecommendOrderScoresSharedCastPerMember(t *testing.T) {
	previous := makeScene("prev", "0", models.Interior, models.TimeDay, "loc-z", 2, "c1", "c2", "c3")
	scenes := []models.Scene{
		makeScene("one", "1", models.Exterior, models.TimeDay, "loc-y", 2, "c1"),
		makeScene("three", "2", models.Interior, models.TimeDay, "loc-x", 2, "c1", "c2", "c3"),
	}

	// Three shared members (15) tie the exterior's weather bonus plus one
	// shared member (10 + 5); scene number breaks the tie.
	ordered := RecommendOrder(scenes, OrderContext{
		PreviousScene: &previous,
		WeatherGood:   true,
	}, testOrderWeights())
	require.Equal(t, []string{"one", "three"}, sceneIDs(ordered))
}

func TestRecommendOrderTiesBreakBySceneNumber(t *testing.T) {
	scenes := []models.Scene{
		makeScene("b", "14", models.Interior, models.TimeDay, "loc-x", 2),
		makeScene("a", "12", models.Interior, models.TimeDay, "loc-x", 2),
		makeScene("c", "13", models.Interior, models.TimeDay, "loc-x", 2),
	}

	ordered := RecommendOrder(scenes, OrderContext{}, testOrderWeights())
	assert.Equal(t, []string{"a", "c", "b"}, sceneIDs(ordered))
}

func TestRecommendOrderDoesNotMutateInput(t *testing.T) {
	scenes := []models.Scene{
		makeScene("b", "2", models.Interior, models.TimeDay, "loc-x", 2),
		makeScene("a", "1", models.Exterior, models.TimeDay, "loc-x", 2),
	}

	RecommendOrder(scenes, OrderContext{WeatherGood: true}, testOrderWeights())
	assert.Equal(t, "b", scenes[0].ID)
	assert.Equal(t, "a", scenes[1].ID)
}
