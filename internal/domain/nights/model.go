package nights

import (
	"context"
	"time"
)

// Category identifies the activity a night is good for.
type Category string

const (
	CategoryStargazing Category = "stargazing"
	CategoryHiking     Category = "hiking"
	CategoryNone       Category = "none"
)

// Location identifies a subscriber's observation point.
type Location struct {
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

// NightAnalysis is the classification of a single candidate night.
// Instants are absolute; Date is the local calendar date in the
// location's timezone.
type NightAnalysis struct {
	Date                string         `json:"date"`
	IlluminationPercent int            `json:"illuminationPercent"`
	MoonPhase           float64        `json:"moonPhase"`
	MoonPhaseName       string         `json:"moonPhaseName"`
	MoonRise            *time.Time     `json:"moonRise,omitempty"`
	MoonSet             *time.Time     `json:"moonSet,omitempty"`
	Sunset              *time.Time     `json:"sunset,omitempty"`
	Weather             WeatherSummary `json:"weather"`
	IsGoodNight         bool           `json:"isGoodNight"`
	Category            Category       `json:"category"`
	Reason              string         `json:"reason,omitempty"`
}

// WeatherSummary is the display-oriented slice of the night's forecast.
// Numeric fields are nil when no forecast exists for the date.
type WeatherSummary struct {
	Label                    string   `json:"label"`
	CloudCover               *float64 `json:"cloudCover,omitempty"`
	Temperature              *float64 `json:"temperature,omitempty"`
	WindSpeed                *float64 `json:"windSpeed,omitempty"`
	PrecipitationProbability *float64 `json:"precipitationProbability,omitempty"`
}

// HourlySample is one hourly weather observation from the forecast
// provider. Time is local to the forecast location.
type HourlySample struct {
	Time                     time.Time
	CloudCover               float64 // percent
	Temperature              float64 // celsius
	WindSpeed                float64 // km/h
	PrecipitationProbability float64 // percent
	Visibility               float64 // meters
	Humidity                 float64 // percent
}

// NightConditions aggregates the hourly samples falling inside one
// night window (20:00 through 02:00 local).
type NightConditions struct {
	Date                        string  `json:"date"`
	AvgCloudCover               float64 `json:"avgCloudCover"`
	AvgTemperature              float64 `json:"avgTemperature"`
	AvgWindSpeed                float64 `json:"avgWindSpeed"`
	MaxPrecipitationProbability float64 `json:"maxPrecipitationProbability"`
	AvgVisibility               float64 `json:"avgVisibility"`
	AvgHumidity                 float64 `json:"avgHumidity"`
	Samples                     int     `json:"samples"`
}

// Illumination is the Moon's state at an instant: lit fraction of the
// disk and continuous cycle position (0 new, 0.5 full, wrapping at 1).
type Illumination struct {
	Fraction float64
	Phase    float64
}

// MoonEvents holds the Moon's rise and set for one local calendar day.
// Either event may be absent at extreme latitudes or when the lunar
// day drifts past local midnight.
type MoonEvents struct {
	Rise    time.Time
	Set     time.Time
	HasRise bool
	HasSet  bool
}

// Ephemeris supplies astronomical facts for the analyzer.
type Ephemeris interface {
	Illumination(t time.Time) Illumination
	MoonEvents(date time.Time, lat, lon float64) MoonEvents
	Sunset(date time.Time, lat, lon float64) (time.Time, bool)
}

// ForecastProvider returns nightly weather aggregates keyed by local
// calendar date (YYYY-MM-DD), covering at most the forecast horizon.
// A missing key is the expected state for dates beyond the horizon.
type ForecastProvider interface {
	NightForecast(ctx context.Context, lat, lon float64) (map[string]NightConditions, error)
}
