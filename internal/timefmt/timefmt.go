package timefmt

import (
	"time"

	"sitetime/internal/config"
)

// istLayout renders millisecond precision without a zone designator,
// matching what the browser extension historically received.
const istLayout = "2006-01-02 15:04:05.000"

// IST has no DST, so a fixed offset is sufficient.
var istZone = time.FixedZone("IST", 5*3600+30*60)

// Formatter renders timestamps for API responses. One format is picked
// per process; events are never mixed between formats.
type Formatter struct {
	format string
}

// New returns a Formatter for the given config.Format* value.
func New(format string) Formatter {
	return Formatter{format: format}
}

// Format renders t according to the configured wire format.
func (f Formatter) Format(t time.Time) string {
	if f.format == config.FormatIST {
		return t.In(istZone).Format(istLayout)
	}
	return t.UTC().Format(time.RFC3339)
}

// FormatPtr is Format for optional timestamps; nil stays nil.
func (f Formatter) FormatPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := f.Format(*t)
	return &s
}

// Location returns the zone in which calendar dates are derived for
// daily summary buckets.
func (f Formatter) Location() *time.Location {
	if f.format == config.FormatIST {
		return istZone
	}
	return time.UTC
}
