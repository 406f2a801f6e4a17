package aggregate

import (
	"sort"
	"time"
)

// Event is one raw usage event as read from the store, independent of
// the storage shape it came from.
type Event struct {
	Username    string
	Site        string
	TimeSpentMs int64
	RecordedAt  time.Time
}

// Key identifies one summary group. Date is empty when the service runs
// with lifetime granularity.
type Key struct {
	Username string `json:"username"`
	Site     string `json:"site"`
	Date     string `json:"date,omitempty"`
}

// Group is one summary row: total dwell time and visit count for a key.
type Group struct {
	ID        Key   `json:"_id"`
	TotalTime int64 `json:"totalTime"`
	Visits    int64 `json:"visits"`
}

// Summarize runs the grouping/reduction pass over events: group by
// (username, site) plus the calendar date in loc when daily is set, then
// sum dwell time and count visits per group.
//
// Ordering: with daily granularity, date descending then totalTime
// descending; without, totalTime descending. Ties keep first-seen input
// order. A user with no events produces no group.
func Summarize(events []Event, daily bool, loc *time.Location) []Group {
	byKey := make(map[Key]*Group, len(events))
	groups := make([]*Group, 0, len(events))

	for _, e := range events {
		k := Key{Username: e.Username, Site: e.Site}
		if daily {
			k.Date = e.RecordedAt.In(loc).Format("2006-01-02")
		}
		g, ok := byKey[k]
		if !ok {
			g = &Group{ID: k}
			byKey[k] = g
			groups = append(groups, g)
		}
		g.TotalTime += e.TimeSpentMs
		g.Visits++
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if daily && groups[i].ID.Date != groups[j].ID.Date {
			return groups[i].ID.Date > groups[j].ID.Date
		}
		return groups[i].TotalTime > groups[j].TotalTime
	})

	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = *g
	}
	return out
}
