package nights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/thomas-desmond/owltrek/pkg/errors"
)

func TestDateWindowCount(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)

	window, err := DateWindow("Europe/Kyiv", 10, now)
	require.NoError(t, err)
	require.Len(t, window, 10)

	for i := 1; i < len(window); i++ {
		require.True(t, window[i].After(window[i-1]))
		require.Equal(t, window[i-1].AddDate(0, 0, 1).Format("2006-01-02"), window[i].Format("2006-01-02"))
	}
}

func TestDateWindowSpansDSTTransition(t *testing.T) {
	// US DST starts 2024-03-10; the local day is 23 wall-clock hours.
	now := time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)

	window, err := DateWindow("America/New_York", 5, now)
	require.NoError(t, err)
	require.Len(t, window, 5)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	sawShortDay := false
	for i, night := range window {
		local := night.In(loc)
		require.Equal(t, 0, local.Hour(), "each instant must be a local midnight")
		require.Equal(t, 8+i, local.Day())
		if i > 0 {
			gap := night.Sub(window[i-1])
			require.GreaterOrEqual(t, gap, 23*time.Hour)
			require.LessOrEqual(t, gap, 25*time.Hour)
			if gap == 23*time.Hour {
				sawShortDay = true
			}
		}
	}
	require.True(t, sawShortDay, "window should contain the shortened DST day")
}

func TestDateWindowIgnoresHostTimezone(t *testing.T) {
	// 2024-06-10 23:00 UTC is already 2024-06-11 in Tokyo.
	now := time.Date(2024, 6, 10, 23, 0, 0, 0, time.UTC)

	window, err := DateWindow("Asia/Tokyo", 1, now)
	require.NoError(t, err)

	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 6, 11, 0, 0, 0, 0, loc), window[0])
}

func TestDateWindowInvalidTimezone(t *testing.T) {
	_, err := DateWindow("Mars/Olympus_Mons", 3, time.Now())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_timezone"))
}

func TestDateWindowInvalidCount(t *testing.T) {
	_, err := DateWindow("UTC", 0, time.Now())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}
