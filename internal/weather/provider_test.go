package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmflow/shootplan-api/internal/models"
	appErrors "github.com/filmflow/shootplan-api/pkg/errors"
)

func TestHTTPProviderForecast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "2026-09-07", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2026-09-09", r.URL.Query().Get("end_date"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"daily":{
			"time":["2026-09-07","2026-09-08","2026-09-09"],
			"precipitation_probability_max":[10,85,40],
			"temperature_2m_max":[21.5,17.0,19.2],
			"wind_speed_10m_max":[12.3,33.8,20.1]
		}}`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, 2*time.Second)
	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	forecast, err := provider.Forecast(context.Background(), 34.05, -118.24, start, 3)
	require.NoError(t, err)
	require.Len(t, forecast, 3)
	assert.Equal(t, models.WeatherDay{DayOffset: 1, PrecipitationPct: 85, TemperatureC: 17.0, WindSpeedKPH: 34}, forecast[1])
}

func TestHTTPProviderUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, 2*time.Second)
	_, err := provider.Forecast(context.Background(), 0, 0, time.Now(), 3)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrServiceUnavailable.Code, appErrors.FromError(err).Code)
}

func TestStaticProviderClipsToHorizon(t *testing.T) {
	provider := NewStaticProvider([]models.WeatherDay{
		{DayOffset: 0, PrecipitationPct: 10},
		{DayOffset: 1, PrecipitationPct: 90},
		{DayOffset: 5, PrecipitationPct: 50},
	})

	forecast, err := provider.Forecast(context.Background(), 0, 0, time.Now(), 3)
	require.NoError(t, err)
	require.Len(t, forecast, 2)
	assert.Equal(t, 90, forecast[1].PrecipitationPct)
}
