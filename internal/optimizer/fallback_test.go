package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmflow/shootplan-api/internal/models"
	appErrors "github.com/filmflow/shootplan-api/pkg/errors"
)

func TestFallbackGroupsScenesByLocation(t *testing.T) {
	snap := makeSnapshot(3, []models.Scene{
		makeScene("s1", "1", models.Interior, models.TimeDay, "loc-b", 4),
		makeScene("s2", "2", models.Interior, models.TimeDay, "loc-a", 4),
		makeScene("s3", "3", models.Interior, models.TimeDay, "loc-b", 4),
		makeScene("s4", "4", models.Interior, models.TimeDay, "loc-a", 4),
	})

	assignment, err := fallbackSchedule(snap)
	require.NoError(t, err)

	// Locations fill in lexical order, so loc-a lands on the first day and
	// loc-b on the second.
	assert.Equal(t, 0, assignment["s2"])
	assert.Equal(t, 0, assignment["s4"])
	assert.Equal(t, 1, assignment["s1"])
	assert.Equal(t, 1, assignment["s3"])
}

func TestFallbackIsDeterministic(t *testing.T) {
	snap := makeSnapshot(4, []models.Scene{
		makeScene("s1", "1", models.Exterior, models.TimeDay, "loc-b", 3, "c1"),
		makeScene("s2", "2", models.Interior, models.TimeNight, "loc-a", 5, "c2"),
		makeScene("s3", "3", models.Interior, models.TimeDay, "loc-b", 2, "c1", "c2"),
		makeScene("s4", "4", models.Exterior, models.TimeDusk, "loc-c", 6),
	})
	snap.Weather = []models.WeatherDay{{DayOffset: 1, PrecipitationPct: 85}}

	first, err := fallbackSchedule(snap)
	require.NoError(t, err)
	second, err := fallbackSchedule(snap)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFallbackHorizonTooShort(t *testing.T) {
	snap := makeSnapshot(1, []models.Scene{
		makeScene("s1", "1", models.Interior, models.TimeDay, "loc-a", 8),
		makeScene("s2", "2", models.Interior, models.TimeDay, "loc-a", 8),
		makeScene("s3", "3", models.Interior, models.TimeDay, "loc-a", 8),
	})

	_, err := fallbackSchedule(snap)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrHorizonTooShort.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "2 day(s)")
}

func TestFallbackRespectsCastUnavailability(t *testing.T) {
	snap := makeSnapshot(3, []models.Scene{
		makeScene("s1", "1", models.Interior, models.TimeDay, "loc-a", 4, "lead"),
		makeScene("s2", "2", models.Interior, models.TimeDay, "loc-a", 4),
	})
	snap.Unavailable = map[string]map[int]bool{
		"lead": {0: true},
	}

	assignment, err := fallbackSchedule(snap)
	require.NoError(t, err)
	assert.NotEqual(t, 0, assignment["s1"])
}

func TestFallbackDefersExteriorFromRiskyDay(t *testing.T) {
	snap := makeSnapshot(2, []models.Scene{
		makeScene("s1", "1", models.Exterior, models.TimeDay, "loc-a", 4),
	})
	snap.Weather = []models.WeatherDay{
		{DayOffset: 0, PrecipitationPct: 80},
		{DayOffset: 1, PrecipitationPct: 20},
	}

	assignment, err := fallbackSchedule(snap)
	require.NoError(t, err)
	assert.Equal(t, 1, assignment["s1"])
}

func TestFallbackUsesRiskyDayWhenNoCalmDayFits(t *testing.T) {
	snap := makeSnapshot(1, []models.Scene{
		makeScene("s1", "1", models.Exterior, models.TimeDay, "loc-a", 4),
	})
	snap.Weather = []models.WeatherDay{{DayOffset: 0, PrecipitationPct: 95}}

	assignment, err := fallbackSchedule(snap)
	require.NoError(t, err)
	assert.Equal(t, 0, assignment["s1"])
}

func TestFallbackPutsInteriorsFirstUnderWeatherRisk(t *testing.T) {
	// Day 1 is risky, so the interior goes first and fills day 0 together
	// with nothing else, pushing the exterior to scan for a calm day. Day 0
	// still has room, so the exterior joins it.
	snap := makeSnapshot(2, []models.Scene{
		makeScene("s1", "1", models.Exterior, models.TimeDay, "loc-a", 4),
		makeScene("s2", "2", models.Interior, models.TimeDay, "loc-a", 4),
	})
	snap.Weather = []models.WeatherDay{{DayOffset: 1, PrecipitationPct: 90}}

	assignment, err := fallbackSchedule(snap)
	require.NoError(t, err)
	assert.Equal(t, 0, assignment["s2"])
	assert.Equal(t, 0, assignment["s1"])
}
