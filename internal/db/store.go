package db

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"sitetime/internal/aggregate"
	"sitetime/internal/config"
)

// ErrUnavailable is returned by every data operation when the database
// connection could not be established at startup. The process keeps
// serving requests (startup is not fatal); callers surface this as a
// store error.
var ErrUnavailable = errors.New("store unavailable: database connection was not established")

// NewEvent is a validated ingest payload with the server-assigned
// RecordedAt already set.
type NewEvent struct {
	Username    string
	Site        string
	TimeSpentMs int64
	StartTime   *time.Time
	EndTime     *time.Time
	RecordedAt  time.Time
}

// Filter narrows a raw usage query. Zero values mean "no filter".
// StartDate/EndDate are inclusive bounds on RecordedAt and only apply to
// the flat shape; the grouped shape returns whole user records.
type Filter struct {
	Username  string
	Site      string
	StartDate *time.Time
	EndDate   *time.Time
}

// LogResult is the persisted representation returned to the caller:
// the event itself for the flat shape, the updated user record for the
// grouped shape. Exactly one field is set.
type LogResult struct {
	Event *UsageEvent
	User  *UserRecord
}

// UsageResult holds a raw usage query's rows. Exactly one field is set,
// matching the storage shape. Empty matches yield empty slices, not nil
// errors.
type UsageResult struct {
	Events []UsageEvent
	Users  []UserRecord
}

// Store is the persistence client shared by all handlers. It is
// constructed once at process start and injected; no other state is
// shared between requests.
type Store interface {
	// LogUsage durably persists one event. Grouped shape appends via a
	// single atomic upsert (find-or-create + push cannot race).
	LogUsage(ev NewEvent) (*LogResult, error)

	// Usage fetches raw records. Flat: filtered, recorded_at descending.
	// Grouped: whole user records, username ascending.
	Usage(f Filter) (*UsageResult, error)

	// Events returns raw events for the aggregator, optionally
	// pre-filtered by username, in stable insert order.
	Events(username string) ([]aggregate.Event, error)

	// Usernames returns the distinct usernames, sorted ascending.
	Usernames() ([]string, error)
}

// NewStore returns the Store implementation for the configured shape.
// gdb may be nil when the startup connection failed; operations then
// return ErrUnavailable.
func NewStore(gdb *gorm.DB, shape string) Store {
	if shape == config.ShapeGrouped {
		return &groupedStore{db: gdb}
	}
	return &flatStore{db: gdb}
}
