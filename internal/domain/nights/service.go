package nights

import (
	"context"
	"log/slog"
	"math"
	"time"

	apperrors "github.com/thomas-desmond/owltrek/pkg/errors"
	"github.com/thomas-desmond/owltrek/pkg/util"
)

// Gate policies. GateForecast applies the real weather gate whenever a
// forecast exists for the night; GateOptimistic skips forecasts and
// treats every night as clear.
const (
	GateForecast   = "forecast"
	GateOptimistic = "optimistic"
)

// Reasons attached to good nights, in decision-priority order.
const (
	ReasonFullMoon           = "Full moon for night hiking."
	ReasonNewMoon            = "New moon for stargazing."
	ReasonMoonDownAllEvening = "Moon down all evening — dark skies"
	ReasonMoonSetsEarly      = "Moon sets early — dark skies"
	ReasonLateMoonrise       = "Late moonrise — dark evening"
)

const (
	newMoonMaxIllumination  = 10.0 // percent
	fullMoonMinIllumination = 90.0 // percent
)

// Config wires runtime settings for the analyzer domain.
type Config struct {
	GatePolicy  string
	DefaultDays int
	MaxDays     int
	FanOut      int
}

// Service classifies candidate nights for outdoor activity.
type Service interface {
	AnalyzeNight(night time.Time, loc Location, wx *NightConditions) (NightAnalysis, error)
	AnalyzeWindow(ctx context.Context, loc Location, days int, now time.Time) ([]NightAnalysis, error)
	Digest(ctx context.Context, req DigestRequest) (DigestResponse, error)
}

type service struct {
	cfg       Config
	ephemeris Ephemeris
	forecast  ForecastProvider
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires up the night analyzer domain.
func NewService(cfg Config, eph Ephemeris, forecast ForecastProvider, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		ephemeris: eph,
		forecast:  forecast,
		logger:    logger.With("component", "nights.service"),
		now:       util.NowUTC,
	}
}

// AnalyzeNight classifies a single candidate night. night must be a
// local midnight produced by DateWindow; wx is the night's forecast
// aggregate, or nil when the date is beyond the forecast horizon.
func (s *service) AnalyzeNight(night time.Time, loc Location, wx *NightConditions) (NightAnalysis, error) {
	if err := validateCoordinates(loc); err != nil {
		return NightAnalysis{}, err
	}
	return s.analyze(night, loc, wx), nil
}

// AnalyzeWindow analyzes the next `days` nights for one location,
// starting at the location's local "today" derived from the frozen now.
func (s *service) AnalyzeWindow(ctx context.Context, loc Location, days int, now time.Time) ([]NightAnalysis, error) {
	if err := validateCoordinates(loc); err != nil {
		return nil, err
	}
	days = s.clampDays(days)

	window, err := DateWindow(loc.Timezone, days, now)
	if err != nil {
		return nil, err
	}

	var forecast map[string]NightConditions
	if s.cfg.GatePolicy != GateOptimistic {
		forecast, err = s.forecast.NightForecast(ctx, loc.Latitude, loc.Longitude)
		if err != nil {
			// Upstream unavailability degrades to "no forecast data"
			// so the caller still gets a complete result set.
			s.logger.Warn("night forecast unavailable, analyzing on moon criteria only",
				"latitude", loc.Latitude, "longitude", loc.Longitude, "error", err)
			forecast = nil
		}
	}

	analyses := make([]NightAnalysis, 0, len(window))
	for _, night := range window {
		var wx *NightConditions
		if c, ok := forecast[util.DateKey(night)]; ok {
			wx = &c
		}
		analyses = append(analyses, s.analyze(night, loc, wx))
	}
	return analyses, nil
}

func (s *service) clampDays(days int) int {
	if days <= 0 {
		days = s.cfg.DefaultDays
	}
	if s.cfg.MaxDays > 0 && days > s.cfg.MaxDays {
		days = s.cfg.MaxDays
	}
	return days
}

// analyze runs the layered decision policy for one night. Missing
// astronomical facts never abort the analysis; each absent field is
// simply "not applicable" to the case it feeds.
func (s *service) analyze(night time.Time, loc Location, wx *NightConditions) NightAnalysis {
	ill := s.ephemeris.Illumination(eveningOf(night))
	illumPct := ill.Fraction * 100

	endOfNight := nextLocalMidnight(night)
	tonight := s.ephemeris.MoonEvents(night, loc.Latitude, loc.Longitude)
	tomorrow := s.ephemeris.MoonEvents(endOfNight, loc.Latitude, loc.Longitude)
	sunset, hasSunset := s.ephemeris.Sunset(night, loc.Latitude, loc.Longitude)

	isNewMoon := illumPct < newMoonMaxIllumination
	isFullMoon := illumPct > fullMoonMinIllumination
	moonFree, moonFreeReason := moonFreeEvening(tonight, tomorrow, sunset, hasSunset, endOfNight)

	clearEnough := wx == nil || wx.ClearEnough()

	analysis := NightAnalysis{
		Date:                util.DateKey(night),
		IlluminationPercent: roundPercent(ill.Fraction),
		MoonPhase:           ill.Phase,
		MoonPhaseName:       PhaseName(ill.Phase),
		Weather:             summary(wx),
		Category:            CategoryNone,
	}
	if tonight.HasRise {
		rise := tonight.Rise
		analysis.MoonRise = &rise
	}
	if tonight.HasSet {
		set := tonight.Set
		analysis.MoonSet = &set
	}
	if hasSunset {
		analysis.Sunset = &sunset
	}

	// First match wins: the weather gate vetoes everything, then the
	// moon checks run full, new, moon-free.
	switch {
	case !clearEnough:
	case isFullMoon:
		analysis.Category = CategoryHiking
		analysis.Reason = ReasonFullMoon
	case isNewMoon:
		analysis.Category = CategoryStargazing
		analysis.Reason = ReasonNewMoon
	case moonFree:
		analysis.Category = CategoryStargazing
		analysis.Reason = moonFreeReason
	}
	analysis.IsGoodNight = analysis.Category != CategoryNone

	return analysis
}

// moonFreeEvening decides whether the moon stays below the horizon for
// a meaningful stretch of the evening window (sunset to local
// midnight). Cases are evaluated in fixed order; the first match wins.
func moonFreeEvening(tonight, tomorrow MoonEvents, sunset time.Time, hasSunset bool, endOfNight time.Time) (bool, string) {
	if !hasSunset {
		return false, ""
	}

	// The moonrise an evening observer would see next: tonight's rise
	// if it falls after sunset, otherwise tomorrow's. A rise relevant
	// to tonight's darkness may land after local midnight, on the next
	// calendar day.
	var nextRise time.Time
	hasNextRise := false
	switch {
	case tonight.HasRise && tonight.Rise.After(sunset):
		nextRise, hasNextRise = tonight.Rise, true
	case tomorrow.HasRise:
		nextRise, hasNextRise = tomorrow.Rise, true
	}

	if tonight.HasSet && tonight.Set.Before(sunset) && (!hasNextRise || nextRise.After(endOfNight)) {
		return true, ReasonMoonDownAllEvening
	}
	if tonight.HasSet && !tonight.Set.Before(sunset) && tonight.Set.Sub(sunset) <= time.Hour {
		return true, ReasonMoonSetsEarly
	}
	if hasNextRise && nextRise.Sub(sunset) >= 4*time.Hour {
		return true, ReasonLateMoonrise
	}
	return false, ""
}

func validateCoordinates(loc Location) error {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		return apperrors.Wrap("invalid_input", "latitude must be within [-90, 90]", nil)
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		return apperrors.Wrap("invalid_input", "longitude must be within [-180, 180]", nil)
	}
	return nil
}

// roundPercent rounds a 0-1 fraction to an integer percent, half up.
func roundPercent(fraction float64) int {
	return int(math.Round(fraction * 100))
}

// eveningOf picks the representative instant for "tonight": 22:00 wall
// clock of the candidate day.
func eveningOf(night time.Time) time.Time {
	year, month, day := night.Date()
	return time.Date(year, month, day, 22, 0, 0, 0, night.Location())
}

// nextLocalMidnight is the end of the candidate night's evening window,
// computed from wall-clock rules so DST days keep the right length.
func nextLocalMidnight(night time.Time) time.Time {
	year, month, day := night.Date()
	return time.Date(year, month, day+1, 0, 0, 0, 0, night.Location())
}
