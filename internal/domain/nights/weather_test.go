package nights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func hourlyAt(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02T15:04", value)
	require.NoError(t, err)
	return ts
}

func TestBucketNightsAttribution(t *testing.T) {
	samples := []HourlySample{
		{Time: hourlyAt(t, "2024-07-01T20:00"), CloudCover: 10, Temperature: 18, WindSpeed: 5, PrecipitationProbability: 0},
		{Time: hourlyAt(t, "2024-07-01T23:00"), CloudCover: 20, Temperature: 16, WindSpeed: 10, PrecipitationProbability: 15},
		// Early-morning hours belong to the previous evening's night.
		{Time: hourlyAt(t, "2024-07-02T01:00"), CloudCover: 30, Temperature: 14, WindSpeed: 15, PrecipitationProbability: 5},
		{Time: hourlyAt(t, "2024-07-02T02:00"), CloudCover: 40, Temperature: 12, WindSpeed: 20, PrecipitationProbability: 10},
		// Daytime samples are not part of any night window.
		{Time: hourlyAt(t, "2024-07-02T12:00"), CloudCover: 100, Temperature: 30, WindSpeed: 50, PrecipitationProbability: 90},
		{Time: hourlyAt(t, "2024-07-02T19:59"), CloudCover: 100, Temperature: 30, WindSpeed: 50, PrecipitationProbability: 90},
	}

	buckets := BucketNights(samples)
	require.Len(t, buckets, 1)

	night, ok := buckets["2024-07-01"]
	require.True(t, ok)
	require.Equal(t, 4, night.Samples)
	require.InDelta(t, 25.0, night.AvgCloudCover, 1e-9)
	require.InDelta(t, 15.0, night.AvgTemperature, 1e-9)
	require.InDelta(t, 12.5, night.AvgWindSpeed, 1e-9)
	require.InDelta(t, 15.0, night.MaxPrecipitationProbability, 1e-9, "precipitation gates on the worst hour, not the average")
}

func TestBucketNightsEmptyBucketsNotEmitted(t *testing.T) {
	samples := []HourlySample{
		{Time: hourlyAt(t, "2024-07-01T09:00")},
		{Time: hourlyAt(t, "2024-07-01T15:00")},
	}
	require.Empty(t, BucketNights(samples))
	require.Empty(t, BucketNights(nil))
}

func TestClearEnoughThresholds(t *testing.T) {
	base := NightConditions{AvgCloudCover: 10, MaxPrecipitationProbability: 5, AvgWindSpeed: 10}
	require.True(t, base.ClearEnough())

	cloudy := base
	cloudy.AvgCloudCover = 31
	require.False(t, cloudy.ClearEnough())

	atCloudLimit := base
	atCloudLimit.AvgCloudCover = 30
	require.False(t, atCloudLimit.ClearEnough(), "threshold is strict")

	rainy := base
	rainy.MaxPrecipitationProbability = 20
	require.False(t, rainy.ClearEnough())

	windy := base
	windy.AvgWindSpeed = 25
	require.False(t, windy.ClearEnough())
}

func TestConditionLabels(t *testing.T) {
	require.Equal(t, "Clear", NightConditions{AvgCloudCover: 5}.Label())
	require.Equal(t, "Partly Cloudy", NightConditions{AvgCloudCover: 40}.Label())
	require.Equal(t, "Mostly Cloudy", NightConditions{AvgCloudCover: 70}.Label())
	require.Equal(t, "Overcast", NightConditions{AvgCloudCover: 95}.Label())
	require.Equal(t, "Rain Likely", NightConditions{AvgCloudCover: 5, MaxPrecipitationProbability: 60}.Label())
}

func TestSummaryWithoutForecast(t *testing.T) {
	s := summary(nil)
	require.Equal(t, WeatherTooFarOut, s.Label)
	require.Nil(t, s.CloudCover)
	require.Nil(t, s.Temperature)
	require.Nil(t, s.WindSpeed)
	require.Nil(t, s.PrecipitationProbability)
}
