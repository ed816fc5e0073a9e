// Package openmeteo fetches hourly forecasts from the Open-Meteo API
// and reduces them to nightly aggregates for the analyzer.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/thomas-desmond/owltrek/internal/domain/nights"
	"github.com/thomas-desmond/owltrek/pkg/util"
)

const (
	defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

	hourlyFields = "cloud_cover,temperature_2m,wind_speed_10m,precipitation_probability,visibility,relative_humidity_2m"

	// Open-Meteo serves hourly timestamps without an offset; combined
	// with timezone=auto they are local to the forecast location.
	hourlyTimeLayout = "2006-01-02T15:04"
)

// Client queries the Open-Meteo forecast API.
type Client struct {
	baseURL     string
	horizonDays int
	httpClient  *http.Client
}

// NewClient builds an API client. horizonDays is clamped to the 7-day
// horizon the analyzer supports.
func NewClient(baseURL string, horizonDays int, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if horizonDays < 1 || horizonDays > 7 {
		horizonDays = 7
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:     baseURL,
		horizonDays: horizonDays,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// NightForecast fetches the hourly series for a coordinate and buckets
// it into per-date night aggregates. Any transport or decode failure
// surfaces as an error for the whole request; the caller decides how
// to degrade.
func (c *Client) NightForecast(ctx context.Context, lat, lon float64) (map[string]nights.NightConditions, error) {
	samples, err := c.fetchHourly(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	forecast := nights.BucketNights(samples)
	c.trimToHorizon(forecast, samples)
	return forecast, nil
}

// trimToHorizon drops buckets dated beyond the horizon. The extra
// fetched day completes the last night's post-midnight hours, but its
// own evening hours would otherwise surface as a partial bucket one
// date past the horizon.
func (c *Client) trimToHorizon(forecast map[string]nights.NightConditions, samples []nights.HourlySample) {
	if len(samples) == 0 {
		return
	}
	lastNight := util.DateKey(samples[0].Time.AddDate(0, 0, c.horizonDays-1))
	for key := range forecast {
		if key > lastNight {
			delete(forecast, key)
		}
	}
}

func (c *Client) fetchHourly(ctx context.Context, lat, lon float64) ([]nights.HourlySample, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', 6, 64))
	params.Set("hourly", hourlyFields)
	params.Set("timezone", "auto")
	// One extra day so the final night keeps its post-midnight hours.
	params.Set("forecast_days", strconv.Itoa(c.horizonDays+1))

	endpoint := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build forecast request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("forecast request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read forecast response: %w", err)
	}

	var raw apiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode forecast response: %w", err)
	}

	return toSamples(raw)
}

type apiResponse struct {
	UTCOffsetSeconds     int    `json:"utc_offset_seconds"`
	Timezone             string `json:"timezone"`
	TimezoneAbbreviation string `json:"timezone_abbreviation"`
	Hourly               hourly `json:"hourly"`
}

type hourly struct {
	Time                     []string  `json:"time"`
	CloudCover               []float64 `json:"cloud_cover"`
	Temperature              []float64 `json:"temperature_2m"`
	WindSpeed                []float64 `json:"wind_speed_10m"`
	PrecipitationProbability []float64 `json:"precipitation_probability"`
	Visibility               []float64 `json:"visibility"`
	Humidity                 []float64 `json:"relative_humidity_2m"`
}

func toSamples(raw apiResponse) ([]nights.HourlySample, error) {
	h := raw.Hourly
	n := len(h.Time)
	if len(h.CloudCover) != n || len(h.Temperature) != n || len(h.WindSpeed) != n ||
		len(h.PrecipitationProbability) != n || len(h.Visibility) != n || len(h.Humidity) != n {
		return nil, fmt.Errorf("forecast response: ragged hourly arrays (time=%d)", n)
	}

	zone := time.FixedZone(raw.TimezoneAbbreviation, raw.UTCOffsetSeconds)
	samples := make([]nights.HourlySample, 0, n)
	for i := 0; i < n; i++ {
		ts, err := time.ParseInLocation(hourlyTimeLayout, h.Time[i], zone)
		if err != nil {
			return nil, fmt.Errorf("forecast response: bad timestamp %q: %w", h.Time[i], err)
		}
		samples = append(samples, nights.HourlySample{
			Time:                     ts,
			CloudCover:               h.CloudCover[i],
			Temperature:              h.Temperature[i],
			WindSpeed:                h.WindSpeed[i],
			PrecipitationProbability: h.PrecipitationProbability[i],
			Visibility:               h.Visibility[i],
			Humidity:                 h.Humidity[i],
		})
	}
	return samples, nil
}

var _ nights.ForecastProvider = (*Client)(nil)
