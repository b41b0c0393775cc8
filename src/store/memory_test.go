package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/username/tradeherder/src/models"
)

func midnight(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRawEntriesInWindowComparesCalendarDays(t *testing.T) {
	st := NewMemoryStore()
	rows := []models.RawEntry{
		{ImportSeq: 1, RefDate: midnight(2014, 2, 1).Add(14*time.Hour + 15*time.Minute)},
		{ImportSeq: 2, RefDate: midnight(2014, 2, 2)},
	}
	for i := range rows {
		require.NoError(t, st.InsertRawEntry(&rows[i]))
	}

	start := midnight(2014, 1, 1)
	end := midnight(2014, 2, 1)
	got, err := st.RawEntriesInWindow(&start, &end)
	require.NoError(t, err)
	require.Len(t, got, 1, "an afternoon timestamp still falls inside a window ending that day")
	require.Equal(t, int64(1), got[0].ImportSeq)
}

func TestTradesInWindowComparesCalendarDays(t *testing.T) {
	st := NewMemoryStore()
	trades := []models.Trade{
		{ImportSeq: 1, ExitDate: midnight(2014, 2, 1).Add(9 * time.Hour)},
		{ImportSeq: 2, ExitDate: midnight(2014, 2, 2)},
	}
	for i := range trades {
		require.NoError(t, st.SaveTrade(&trades[i]))
	}

	start := midnight(2014, 2, 1)
	end := midnight(2014, 2, 1)
	got, err := st.TradesInWindow(&start, &end)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(1), got[0].ImportSeq)
}
