package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/filmflow/shootplan-api/internal/models"
	appErrors "github.com/filmflow/shootplan-api/pkg/errors"
)

// Provider supplies a daily forecast for the shooting horizon. Day offsets
// are relative to the requested start date.
type Provider interface {
	Forecast(ctx context.Context, latitude, longitude float64, startDate time.Time, days int) ([]models.WeatherDay, error)
}

// HTTPProvider reads a daily-forecast endpoint speaking the open-meteo
// wire shape: parallel per-day arrays for precipitation probability,
// maximum temperature and maximum wind speed.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type forecastResponse struct {
	Daily struct {
		Time                        []string  `json:"time"`
		PrecipitationProbabilityMax []int     `json:"precipitation_probability_max"`
		Temperature2mMax            []float64 `json:"temperature_2m_max"`
		WindSpeed10mMax             []float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
}

func (p *HTTPProvider) Forecast(ctx context.Context, latitude, longitude float64, startDate time.Time, days int) ([]models.WeatherDay, error) {
	endpoint, err := url.Parse(p.baseURL + "/v1/forecast")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid weather endpoint")
	}

	q := endpoint.Query()
	q.Set("latitude", fmt.Sprintf("%.4f", latitude))
	q.Set("longitude", fmt.Sprintf("%.4f", longitude))
	q.Set("daily", "precipitation_probability_max,temperature_2m_max,wind_speed_10m_max")
	q.Set("start_date", startDate.Format("2006-01-02"))
	q.Set("end_date", startDate.AddDate(0, 0, days-1).Format("2006-01-02"))
	q.Set("timezone", "UTC")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build weather request")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "weather service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable,
			fmt.Sprintf("weather service responded with status %d", resp.StatusCode))
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "decode weather payload")
	}

	forecast := make([]models.WeatherDay, 0, days)
	for i := range payload.Daily.Time {
		if i >= days {
			break
		}
		day := models.WeatherDay{DayOffset: i}
		if i < len(payload.Daily.PrecipitationProbabilityMax) {
			day.PrecipitationPct = payload.Daily.PrecipitationProbabilityMax[i]
		}
		if i < len(payload.Daily.Temperature2mMax) {
			day.TemperatureC = payload.Daily.Temperature2mMax[i]
		}
		if i < len(payload.Daily.WindSpeed10mMax) {
			day.WindSpeedKPH = math.Round(payload.Daily.WindSpeed10mMax[i])
		}
		forecast = append(forecast, day)
	}
	return forecast, nil
}

// StaticProvider returns a fixed forecast regardless of coordinates. Used
// in development and as the deterministic fixture source in tests.
type StaticProvider struct {
	days []models.WeatherDay
}

func NewStaticProvider(days []models.WeatherDay) *StaticProvider {
	return &StaticProvider{days: days}
}

func (p *StaticProvider) Forecast(_ context.Context, _, _ float64, _ time.Time, days int) ([]models.WeatherDay, error) {
	forecast := make([]models.WeatherDay, 0, days)
	for _, day := range p.days {
		if day.DayOffset < days {
			forecast = append(forecast, day)
		}
	}
	return forecast, nil
}
