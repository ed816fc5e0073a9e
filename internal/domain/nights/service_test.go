package nights

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/thomas-desmond/owltrek/pkg/errors"
	"github.com/thomas-desmond/owltrek/pkg/util"
)

type stubEphemeris struct {
	ill    Illumination
	events map[string]MoonEvents
	sunset map[string]time.Time
}

func (s *stubEphemeris) Illumination(time.Time) Illumination {
	return s.ill
}

func (s *stubEphemeris) MoonEvents(date time.Time, lat, lon float64) MoonEvents {
	return s.events[util.DateKey(date)]
}

func (s *stubEphemeris) Sunset(date time.Time, lat, lon float64) (time.Time, bool) {
	ts, ok := s.sunset[util.DateKey(date)]
	return ts, ok
}

type stubForecast struct {
	nights map[string]NightConditions
	err    error
	calls  int
}

func (s *stubForecast) NightForecast(ctx context.Context, lat, lon float64) (map[string]NightConditions, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.nights, nil
}

func newTestService(eph Ephemeris, forecast ForecastProvider) *service {
	return &service{
		cfg:       Config{GatePolicy: GateForecast, DefaultDays: 7, MaxDays: 14},
		ephemeris: eph,
		forecast:  forecast,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: func() time.Time {
			return time.Date(2024, 9, 2, 12, 0, 0, 0, time.UTC)
		},
	}
}

func palomarNight(t *testing.T) (time.Time, Location) {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	night := time.Date(2024, 9, 2, 0, 0, 0, 0, loc)
	return night, Location{Latitude: 33.159586, Longitude: -117.067950, Timezone: "America/Los_Angeles"}
}

func TestAnalyzeNewMoonBeyondForecastHorizon(t *testing.T) {
	night, observer := palomarNight(t)
	eph := &stubEphemeris{
		ill:    Illumination{Fraction: 0.02, Phase: 0.01},
		events: map[string]MoonEvents{},
		sunset: map[string]time.Time{"2024-09-02": night.Add(19 * time.Hour)},
	}
	svc := newTestService(eph, &stubForecast{})

	analysis, err := svc.AnalyzeNight(night, observer, nil)
	require.NoError(t, err)
	require.True(t, analysis.IsGoodNight)
	require.Equal(t, CategoryStargazing, analysis.Category)
	require.Equal(t, ReasonNewMoon, analysis.Reason)
	require.Equal(t, 2, analysis.IlluminationPercent)
	require.Equal(t, "New Moon", analysis.MoonPhaseName)
	require.Equal(t, WeatherTooFarOut, analysis.Weather.Label)
	require.Nil(t, analysis.Weather.CloudCover)
}

func TestAnalyzeMoonSetsEarly(t *testing.T) {
	night, observer := palomarNight(t)
	sunset := night.Add(19 * time.Hour)
	eph := &stubEphemeris{
		ill: Illumination{Fraction: 0.5, Phase: 0.25},
		events: map[string]MoonEvents{
			"2024-09-02": {Set: sunset.Add(30 * time.Minute), HasSet: true},
		},
		sunset: map[string]time.Time{"2024-09-02": sunset},
	}
	clear := NightConditions{AvgCloudCover: 5, MaxPrecipitationProbability: 0, AvgWindSpeed: 3, Samples: 7}
	svc := newTestService(eph, &stubForecast{})

	analysis, err := svc.AnalyzeNight(night, observer, &clear)
	require.NoError(t, err)
	require.True(t, analysis.IsGoodNight)
	require.Equal(t, CategoryStargazing, analysis.Category)
	require.Equal(t, ReasonMoonSetsEarly, analysis.Reason)
	require.Equal(t, "Clear", analysis.Weather.Label)
	require.NotNil(t, analysis.Weather.CloudCover)
}

func TestAnalyzeMoonDownAllEvening(t *testing.T) {
	night, observer := palomarNight(t)
	sunset := night.Add(19 * time.Hour)
	midnight := night.AddDate(0, 0, 1)
	eph := &stubEphemeris{
		ill: Illumination{Fraction: 0.4, Phase: 0.2},
		events: map[string]MoonEvents{
			"2024-09-02": {Set: sunset.Add(-2 * time.Hour), HasSet: true},
			"2024-09-03": {Rise: midnight.Add(3 * time.Hour), HasRise: true},
		},
		sunset: map[string]time.Time{"2024-09-02": sunset},
	}
	svc := newTestService(eph, &stubForecast{})

	analysis, err := svc.AnalyzeNight(night, observer, nil)
	require.NoError(t, err)
	require.Equal(t, ReasonMoonDownAllEvening, analysis.Reason)
	require.Equal(t, CategoryStargazing, analysis.Category)
}

func TestAnalyzeLateMoonrise(t *testing.T) {
	night, observer := palomarNight(t)
	sunset := night.Add(19 * time.Hour)
	eph := &stubEphemeris{
		ill: Illumination{Fraction: 0.4, Phase: 0.8},
		events: map[string]MoonEvents{
			"2024-09-02": {Rise: sunset.Add(5 * time.Hour), HasRise: true},
		},
		sunset: map[string]time.Time{"2024-09-02": sunset},
	}
	svc := newTestService(eph, &stubForecast{})

	analysis, err := svc.AnalyzeNight(night, observer, nil)
	require.NoError(t, err)
	require.Equal(t, ReasonLateMoonrise, analysis.Reason)
}

func TestAnalyzeFullMoonBeatsMoonFreeEvening(t *testing.T) {
	night, observer := palomarNight(t)
	sunset := night.Add(19 * time.Hour)
	eph := &stubEphemeris{
		ill: Illumination{Fraction: 0.97, Phase: 0.5},
		events: map[string]MoonEvents{
			// Also satisfies the moon-sets-early case; full moon must win.
			"2024-09-02": {Set: sunset.Add(30 * time.Minute), HasSet: true},
		},
		sunset: map[string]time.Time{"2024-09-02": sunset},
	}
	svc := newTestService(eph, &stubForecast{})

	analysis, err := svc.AnalyzeNight(night, observer, nil)
	require.NoError(t, err)
	require.Equal(t, CategoryHiking, analysis.Category)
	require.Equal(t, ReasonFullMoon, analysis.Reason)
}

func TestAnalyzeWeatherGateVetoesNewMoon(t *testing.T) {
	night, observer := palomarNight(t)
	eph := &stubEphemeris{
		ill:    Illumination{Fraction: 0.02, Phase: 0.0},
		events: map[string]MoonEvents{},
		sunset: map[string]time.Time{"2024-09-02": night.Add(19 * time.Hour)},
	}
	cloudy := NightConditions{AvgCloudCover: 31, MaxPrecipitationProbability: 0, AvgWindSpeed: 3, Samples: 7}
	svc := newTestService(eph, &stubForecast{})

	analysis, err := svc.AnalyzeNight(night, observer, &cloudy)
	require.NoError(t, err)
	require.False(t, analysis.IsGoodNight)
	require.Equal(t, CategoryNone, analysis.Category)
	require.Empty(t, analysis.Reason)
}

func TestAnalyzeNoSunsetPolarCase(t *testing.T) {
	night, observer := palomarNight(t)
	eph := &stubEphemeris{
		ill: Illumination{Fraction: 0.4, Phase: 0.2},
		events: map[string]MoonEvents{
			"2024-09-02": {Set: night.Add(17 * time.Hour), HasSet: true},
		},
		sunset: map[string]time.Time{},
	}
	svc := newTestService(eph, &stubForecast{})

	analysis, err := svc.AnalyzeNight(night, observer, nil)
	require.NoError(t, err)
	require.False(t, analysis.IsGoodNight)
	require.Empty(t, analysis.Reason)
	require.Nil(t, analysis.Sunset)
}

func TestAnalyzeIdempotent(t *testing.T) {
	night, observer := palomarNight(t)
	eph := &stubEphemeris{
		ill:    Illumination{Fraction: 0.02, Phase: 0.01},
		events: map[string]MoonEvents{},
		sunset: map[string]time.Time{"2024-09-02": night.Add(19 * time.Hour)},
	}
	svc := newTestService(eph, &stubForecast{})

	first, err := svc.AnalyzeNight(night, observer, nil)
	require.NoError(t, err)
	second, err := svc.AnalyzeNight(night, observer, nil)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestAnalyzeNightRejectsBadCoordinates(t *testing.T) {
	night, observer := palomarNight(t)
	observer.Latitude = 91
	svc := newTestService(&stubEphemeris{}, &stubForecast{})

	_, err := svc.AnalyzeNight(night, observer, nil)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestAnalyzeWindowMergesForecastByDate(t *testing.T) {
	_, observer := palomarNight(t)
	eph := &stubEphemeris{
		ill:    Illumination{Fraction: 0.02, Phase: 0.01},
		events: map[string]MoonEvents{},
		sunset: map[string]time.Time{},
	}
	forecast := &stubForecast{nights: map[string]NightConditions{
		"2024-09-02": {Date: "2024-09-02", AvgCloudCover: 10, Samples: 7},
	}}
	svc := newTestService(eph, forecast)

	analyses, err := svc.AnalyzeWindow(context.Background(), observer, 3, svc.now())
	require.NoError(t, err)
	require.Len(t, analyses, 3)
	require.Equal(t, "2024-09-02", analyses[0].Date)
	require.Equal(t, "Clear", analyses[0].Weather.Label)
	require.Equal(t, WeatherTooFarOut, analyses[1].Weather.Label)
	require.Equal(t, WeatherTooFarOut, analyses[2].Weather.Label)
	require.Equal(t, 1, forecast.calls)
}

func TestAnalyzeWindowDegradesWhenForecastFails(t *testing.T) {
	_, observer := palomarNight(t)
	eph := &stubEphemeris{
		ill:    Illumination{Fraction: 0.02, Phase: 0.01},
		events: map[string]MoonEvents{},
		sunset: map[string]time.Time{},
	}
	svc := newTestService(eph, &stubForecast{err: errors.New("upstream down")})

	analyses, err := svc.AnalyzeWindow(context.Background(), observer, 4, svc.now())
	require.NoError(t, err)
	require.Len(t, analyses, 4)
	for _, a := range analyses {
		require.Equal(t, WeatherTooFarOut, a.Weather.Label)
	}
}

func TestAnalyzeWindowOptimisticPolicySkipsForecast(t *testing.T) {
	_, observer := palomarNight(t)
	forecast := &stubForecast{err: errors.New("should not be called")}
	svc := newTestService(&stubEphemeris{
		ill:    Illumination{Fraction: 0.02, Phase: 0.01},
		events: map[string]MoonEvents{},
		sunset: map[string]time.Time{},
	}, forecast)
	svc.cfg.GatePolicy = GateOptimistic

	analyses, err := svc.AnalyzeWindow(context.Background(), observer, 2, svc.now())
	require.NoError(t, err)
	require.Len(t, analyses, 2)
	require.Zero(t, forecast.calls)
}

func TestDigestEmptyRequestYieldsZeroStats(t *testing.T) {
	svc := newTestService(&stubEphemeris{}, &stubForecast{})

	resp, err := svc.Digest(context.Background(), DigestRequest{})
	require.NoError(t, err)
	require.Empty(t, resp.Entries)
	require.True(t, resp.Stats.IsZero())
}

func TestDigestReportsPerLocationFailures(t *testing.T) {
	_, observer := palomarNight(t)
	broken := observer
	broken.Timezone = "Nowhere/Void"
	svc := newTestService(&stubEphemeris{
		ill:    Illumination{Fraction: 0.02, Phase: 0.01},
		events: map[string]MoonEvents{},
		sunset: map[string]time.Time{},
	}, &stubForecast{})

	resp, err := svc.Digest(context.Background(), DigestRequest{
		Locations: []Location{observer, broken},
		Days:      3,
	})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)

	require.Empty(t, resp.Entries[0].Error)
	require.Len(t, resp.Entries[0].Nights, 3)
	require.NotEmpty(t, resp.Entries[1].Error)
	require.Empty(t, resp.Entries[1].Nights)

	require.Equal(t, 2, resp.Stats.Locations)
	require.Equal(t, 3, resp.Stats.Nights)
	require.Equal(t, 3, resp.Stats.GoodNights)
	require.Equal(t, 1, resp.Stats.Failures)
}
