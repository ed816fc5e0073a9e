package nights

import (
	"github.com/thomas-desmond/owltrek/pkg/util"
)

// Night window bounds and the gate thresholds for a clear-enough night.
// Wind is always km/h; the threshold is not configurable.
const (
	nightStartHour = 20
	nightEndHour   = 2

	maxNightCloudCover    = 30.0
	maxNightPrecipitation = 20.0
	maxNightWindSpeed     = 25.0
)

// WeatherTooFarOut labels nights beyond the forecast horizon. The
// analyzer still treats them as clear, but never claims "Clear".
const WeatherTooFarOut = "Too far out"

// BucketNights groups hourly samples into per-date night aggregates.
//
// A sample belongs to the night of date D when its local hour is 20:00
// or later on D, or 02:00 or earlier on D+1: the early-morning hours
// count toward the previous evening, not their own calendar date.
// Dates without any night samples are absent from the result.
func BucketNights(samples []HourlySample) map[string]NightConditions {
	sums := make(map[string]*nightAccumulator)

	for _, s := range samples {
		hour := s.Time.Hour()
		var key string
		switch {
		case hour >= nightStartHour:
			key = util.DateKey(s.Time)
		case hour <= nightEndHour:
			key = util.DateKey(s.Time.AddDate(0, 0, -1))
		default:
			continue
		}

		acc, ok := sums[key]
		if !ok {
			acc = &nightAccumulator{}
			sums[key] = acc
		}
		acc.add(s)
	}

	out := make(map[string]NightConditions, len(sums))
	for key, acc := range sums {
		out[key] = acc.conditions(key)
	}
	return out
}

type nightAccumulator struct {
	cloud      float64
	temp       float64
	wind       float64
	visibility float64
	humidity   float64
	maxPrecip  float64
	count      int
}

func (a *nightAccumulator) add(s HourlySample) {
	a.cloud += s.CloudCover
	a.temp += s.Temperature
	a.wind += s.WindSpeed
	a.visibility += s.Visibility
	a.humidity += s.Humidity
	// Worst case gates the night: one high-probability hour is enough
	// to flag it.
	if s.PrecipitationProbability > a.maxPrecip {
		a.maxPrecip = s.PrecipitationProbability
	}
	a.count++
}

func (a *nightAccumulator) conditions(date string) NightConditions {
	n := float64(a.count)
	return NightConditions{
		Date:                        date,
		AvgCloudCover:               a.cloud / n,
		AvgTemperature:              a.temp / n,
		AvgWindSpeed:                a.wind / n,
		MaxPrecipitationProbability: a.maxPrecip,
		AvgVisibility:               a.visibility / n,
		AvgHumidity:                 a.humidity / n,
		Samples:                     a.count,
	}
}

// ClearEnough reports whether the night passes the weather gate.
func (c NightConditions) ClearEnough() bool {
	return c.AvgCloudCover < maxNightCloudCover &&
		c.MaxPrecipitationProbability < maxNightPrecipitation &&
		c.AvgWindSpeed < maxNightWindSpeed
}

// Label returns the descriptive sky category for display.
func (c NightConditions) Label() string {
	switch {
	case c.MaxPrecipitationProbability >= 50:
		return "Rain Likely"
	case c.AvgCloudCover < 25:
		return "Clear"
	case c.AvgCloudCover < 50:
		return "Partly Cloudy"
	case c.AvgCloudCover < 80:
		return "Mostly Cloudy"
	default:
		return "Overcast"
	}
}

// summary converts the aggregate into the display summary carried on a
// NightAnalysis. A nil aggregate means the date is beyond the horizon.
func summary(c *NightConditions) WeatherSummary {
	if c == nil {
		return WeatherSummary{Label: WeatherTooFarOut}
	}
	cloud := c.AvgCloudCover
	temp := c.AvgTemperature
	wind := c.AvgWindSpeed
	precip := c.MaxPrecipitationProbability
	return WeatherSummary{
		Label:                    c.Label(),
		CloudCover:               &cloud,
		Temperature:              &temp,
		WindSpeed:                &wind,
		PrecipitationProbability: &precip,
	}
}
