package nights

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thomas-desmond/owltrek/pkg/metrics"
)

// DigestRequest asks for analyses across many subscriber locations.
type DigestRequest struct {
	Locations []Location `json:"locations" binding:"required,min=1"`
	Days      int        `json:"days"`
}

// DigestEntry is the per-location outcome. Error is set when that
// location failed (bad timezone, out-of-range coordinates); the rest
// of the batch is unaffected.
type DigestEntry struct {
	Location Location        `json:"location"`
	Nights   []NightAnalysis `json:"nights,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// DigestResponse is the full batch result plus run statistics.
type DigestResponse struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Entries     []DigestEntry    `json:"entries"`
	Stats       metrics.RunStats `json:"stats"`
}

const defaultFanOut = 8

// Digest analyzes every requested location concurrently. Now is frozen
// once for the whole run so all entries share the same "today"; each
// location's failure is reported on its entry, never as a batch error.
func (s *service) Digest(ctx context.Context, req DigestRequest) (DigestResponse, error) {
	now := s.now()
	entries := make([]DigestEntry, len(req.Locations))

	group, groupCtx := errgroup.WithContext(ctx)
	fanOut := s.cfg.FanOut
	if fanOut <= 0 {
		fanOut = defaultFanOut
	}
	group.SetLimit(fanOut)

	for i, loc := range req.Locations {
		i, loc := i, loc
		group.Go(func() error {
			analyses, err := s.AnalyzeWindow(groupCtx, loc, req.Days, now)
			entry := DigestEntry{Location: loc, Nights: analyses}
			if err != nil {
				entry.Error = err.Error()
				entry.Nights = nil
			}
			entries[i] = entry
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes.
	_ = group.Wait()

	stats := metrics.RunStats{Locations: len(entries)}
	for _, entry := range entries {
		if entry.Error != "" {
			stats.Failures++
			continue
		}
		stats.Nights += len(entry.Nights)
		for _, night := range entry.Nights {
			if night.IsGoodNight {
				stats.GoodNights++
			}
		}
	}

	if !stats.IsZero() {
		s.logger.Info("digest run complete",
			"locations", stats.Locations, "nights", stats.Nights,
			"good_nights", stats.GoodNights, "failures", stats.Failures)
	}

	return DigestResponse{GeneratedAt: now, Entries: entries, Stats: stats}, nil
}
