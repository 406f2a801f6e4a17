package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func at(day int, hour int) time.Time {
	return time.Date(2026, 3, day, hour, 0, 0, 0, time.UTC)
}

func TestSummarizeLifetimeTotals(t *testing.T) {
	events := []Event{
		{Username: "u1", Site: "siteA", TimeSpentMs: 10, RecordedAt: at(1, 9)},
		{Username: "u1", Site: "siteA", TimeSpentMs: 5, RecordedAt: at(2, 9)},
		{Username: "u1", Site: "siteB", TimeSpentMs: 7, RecordedAt: at(1, 10)},
	}

	got := Summarize(events, false, time.UTC)

	require.Equal(t, []Group{
		{ID: Key{Username: "u1", Site: "siteA"}, TotalTime: 15, Visits: 2},
		{ID: Key{Username: "u1", Site: "siteB"}, TotalTime: 7, Visits: 1},
	}, got)
}

func TestSummarizeDailySplitsCalendarDates(t *testing.T) {
	events := []Event{
		{Username: "u1", Site: "siteA", TimeSpentMs: 10, RecordedAt: at(1, 9)},
		{Username: "u1", Site: "siteA", TimeSpentMs: 20, RecordedAt: at(2, 9)},
	}

	got := Summarize(events, true, time.UTC)

	require.Len(t, got, 2)
	// Most recent day first.
	require.Equal(t, Key{Username: "u1", Site: "siteA", Date: "2026-03-02"}, got[0].ID)
	require.Equal(t, Key{Username: "u1", Site: "siteA", Date: "2026-03-01"}, got[1].ID)
	require.Equal(t, int64(20), got[0].TotalTime)
	require.Equal(t, int64(10), got[1].TotalTime)
}

func TestSummarizeDailyOrdersByTotalWithinDay(t *testing.T) {
	events := []Event{
		{Username: "u1", Site: "siteA", TimeSpentMs: 5, RecordedAt: at(3, 8)},
		{Username: "u2", Site: "siteB", TimeSpentMs: 50, RecordedAt: at(3, 9)},
		{Username: "u1", Site: "siteC", TimeSpentMs: 20, RecordedAt: at(3, 10)},
	}

	got := Summarize(events, true, time.UTC)

	require.Len(t, got, 3)
	require.Equal(t, int64(50), got[0].TotalTime)
	require.Equal(t, int64(20), got[1].TotalTime)
	require.Equal(t, int64(5), got[2].TotalTime)
}

func TestSummarizeTiesKeepInputOrder(t *testing.T) {
	events := []Event{
		{Username: "u1", Site: "siteA", TimeSpentMs: 10, RecordedAt: at(1, 9)},
		{Username: "u2", Site: "siteB", TimeSpentMs: 10, RecordedAt: at(1, 9)},
		{Username: "u3", Site: "siteC", TimeSpentMs: 10, RecordedAt: at(1, 9)},
	}

	got := Summarize(events, false, time.UTC)

	require.Equal(t, "u1", got[0].ID.Username)
	require.Equal(t, "u2", got[1].ID.Username)
	require.Equal(t, "u3", got[2].ID.Username)
}

func TestSummarizeDateUsesDisplayZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+30*60)
	// 20:00 UTC on March 1st is already March 2nd in IST.
	events := []Event{
		{Username: "u1", Site: "siteA", TimeSpentMs: 1, RecordedAt: at(1, 20)},
	}

	utc := Summarize(events, true, time.UTC)
	shifted := Summarize(events, true, ist)

	require.Equal(t, "2026-03-01", utc[0].ID.Date)
	require.Equal(t, "2026-03-02", shifted[0].ID.Date)
}

func TestSummarizeEmptyInput(t *testing.T) {
	got := Summarize(nil, true, time.UTC)
	require.NotNil(t, got)
	require.Empty(t, got)
}
