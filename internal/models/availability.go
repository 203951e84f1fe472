package models

import "time"

// CastUnavailability is one blocked calendar date for a cast member.
// Absence of rows means the member is fully available.
type CastUnavailability struct {
	ID           string    `db:"id" json:"id"`
	ProductionID string    `db:"production_id" json:"productionId"`
	CastMemberID string    `db:"cast_member_id" json:"castMemberId"`
	Date         time.Time `db:"unavailable_on" json:"date"`
	Reason       string    `db:"reason" json:"reason"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// WeatherDay is the forecast signal for one day-offset of the horizon.
// Only the precipitation probability steers exterior placement.
type WeatherDay struct {
	DayOffset        int     `json:"dayOffset"`
	PrecipitationPct int     `json:"precipitationPct"`
	TemperatureC     float64 `json:"temperatureC"`
	WindSpeedKPH     float64 `json:"windSpeedKph"`
}
