package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sitetime/internal/config"
)

func TestFormatInstant(t *testing.T) {
	f := New(config.FormatInstant)
	ts := time.Date(2026, 3, 1, 14, 30, 5, 123_000_000, time.UTC)
	require.Equal(t, "2026-03-01T14:30:05Z", f.Format(ts))
}

func TestFormatInstantNormalizesZone(t *testing.T) {
	f := New(config.FormatInstant)
	est := time.FixedZone("EST", -5*3600)
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, est)
	require.Equal(t, "2026-03-01T14:00:00Z", f.Format(ts))
}

func TestFormatIST(t *testing.T) {
	f := New(config.FormatIST)
	// 14:30:05.123 UTC is 20:00:05.123 at UTC+5:30.
	ts := time.Date(2026, 3, 1, 14, 30, 5, 123_000_000, time.UTC)
	require.Equal(t, "2026-03-01 20:00:05.123", f.Format(ts))
}

func TestFormatISTPadsMilliseconds(t *testing.T) {
	f := New(config.FormatIST)
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "2026-03-01 05:30:00.000", f.Format(ts))
}

func TestFormatPtr(t *testing.T) {
	f := New(config.FormatInstant)
	require.Nil(t, f.FormatPtr(nil))

	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	got := f.FormatPtr(&ts)
	require.NotNil(t, got)
	require.Equal(t, "2026-03-01T00:00:00Z", *got)
}

func TestLocation(t *testing.T) {
	require.Equal(t, time.UTC, New(config.FormatInstant).Location())

	_, offset := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).In(New(config.FormatIST).Location()).Zone()
	require.Equal(t, 5*3600+30*60, offset)
}
