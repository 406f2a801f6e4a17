package db

import (
	"time"

	"gorm.io/datatypes"
)

// UsageEvent is one interval of attention paid to a site, stored as its
// own row (flat storage shape). Events are immutable after ingest and
// are never updated or deleted.
type UsageEvent struct {
	ID uint `gorm:"primaryKey"`

	Username string `gorm:"index;size:128;not null"`
	Site     string `gorm:"index;size:255;not null"`

	// TimeSpentMs is dwell time in integer milliseconds. Integer
	// arithmetic keeps summary totals exact.
	TimeSpentMs int64 `gorm:"not null"`

	// StartTime and EndTime optionally bound the interval as reported
	// by the client. They are not validated against TimeSpentMs.
	StartTime *time.Time
	EndTime   *time.Time

	// RecordedAt is assigned by the server at write time.
	RecordedAt time.Time `gorm:"index;not null"`
}

// UserRecord is the grouped storage shape: one row per username owning
// an ordered, append-only JSONB array of activities. Created lazily on
// first ingest for a username and never deleted.
type UserRecord struct {
	ID uint `gorm:"primaryKey"`

	Username string `gorm:"uniqueIndex;size:128;not null"`

	// Activities holds the ordered Activity entries. Appends go through
	// a single atomic upsert so concurrent ingests for a new username
	// cannot produce two rows.
	Activities datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
}

// Activity is one element of UserRecord.Activities. The JSON tags define
// the stored representation; timestamps are kept as RFC3339 inside the
// array and rendered per the configured wire format on the way out.
type Activity struct {
	Site        string     `json:"site"`
	TimeSpentMs int64      `json:"timeSpent"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	RecordedAt  time.Time  `json:"timestamp"`
}
