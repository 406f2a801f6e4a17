package handlers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"

	"sitetime/internal/cache"
	"sitetime/internal/config"
	dbpkg "sitetime/internal/db"
	"sitetime/internal/timefmt"
)

var (
	usageEventsTotal *prometheus.CounterVec
	usageTimeSpentMs *prometheus.CounterVec
)

func InitPrometheusMetrics() {
	usageEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitetime",
			Name:      "usage_events_total",
			Help:      "Total number of ingested usage events.",
		},
		[]string{"site"},
	)
	usageTimeSpentMs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitetime",
			Name:      "usage_time_spent_ms_total",
			Help:      "Total dwell time in milliseconds across ingested events.",
		},
		[]string{"site"},
	)
	prometheus.MustRegister(usageEventsTotal, usageTimeSpentMs)
}

type logUsageRequest struct {
	Username  string     `json:"username"`
	Site      string     `json:"site"`
	TimeSpent *int64     `json:"timeSpent"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

type eventResponse struct {
	Username  string  `json:"username"`
	Site      string  `json:"site"`
	TimeSpent int64   `json:"timeSpent"`
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
	Timestamp string  `json:"timestamp"`
}

type activityResponse struct {
	Site      string  `json:"site"`
	TimeSpent int64   `json:"timeSpent"`
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
	Timestamp string  `json:"timestamp"`
}

type userResponse struct {
	Username   string             `json:"username"`
	Activities []activityResponse `json:"activities"`
}

func toEventResponse(e dbpkg.UsageEvent, f timefmt.Formatter) eventResponse {
	return eventResponse{
		Username:  e.Username,
		Site:      e.Site,
		TimeSpent: e.TimeSpentMs,
		StartTime: f.FormatPtr(e.StartTime),
		EndTime:   f.FormatPtr(e.EndTime),
		Timestamp: f.Format(e.RecordedAt),
	}
}

func toUserResponse(r *dbpkg.UserRecord, f timefmt.Formatter) (userResponse, error) {
	acts, err := r.ActivityList()
	if err != nil {
		return userResponse{}, err
	}
	out := userResponse{Username: r.Username, Activities: make([]activityResponse, 0, len(acts))}
	for _, a := range acts {
		out.Activities = append(out.Activities, activityResponse{
			Site:      a.Site,
			TimeSpent: a.TimeSpentMs,
			StartTime: f.FormatPtr(a.StartTime),
			EndTime:   f.FormatPtr(a.EndTime),
			Timestamp: f.Format(a.RecordedAt),
		})
	}
	return out, nil
}

// LogUsage handles POST /log-usage. Required fields follow the client's
// truthiness contract: an absent or zero timeSpent is rejected just like
// an empty username or site.
func LogUsage(store dbpkg.Store, summary *cache.Summary, cfg *config.Config) fasthttp.RequestHandler {
	fmtr := timefmt.New(cfg.TimestampFormat)
	return func(ctx *fasthttp.RequestCtx) {
		var payload logUsageRequest
		if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}

		var missing []string
		if payload.Username == "" {
			missing = append(missing, "username")
		}
		if payload.Site == "" {
			missing = append(missing, "site")
		}
		if payload.TimeSpent == nil || *payload.TimeSpent <= 0 {
			missing = append(missing, "timeSpent")
		}
		if len(missing) > 0 {
			errResponse(ctx, fasthttp.StatusBadRequest, "missing required fields: "+strings.Join(missing, ", "))
			return
		}

		res, err := store.LogUsage(dbpkg.NewEvent{
			Username:    payload.Username,
			Site:        payload.Site,
			TimeSpentMs: *payload.TimeSpent,
			StartTime:   payload.StartTime,
			EndTime:     payload.EndTime,
			RecordedAt:  time.Now(),
		})
		if err != nil {
			storeError(ctx, "log-usage", err)
			return
		}

		usageEventsTotal.WithLabelValues(payload.Site).Inc()
		usageTimeSpentMs.WithLabelValues(payload.Site).Add(float64(*payload.TimeSpent))
		summary.Bump(ctx)

		if res.User != nil {
			user, err := toUserResponse(res.User, fmtr)
			if err != nil {
				storeError(ctx, "log-usage", err)
				return
			}
			jsonResponse(ctx, fasthttp.StatusCreated, map[string]any{
				"message": "Usage logged",
				"user":    user,
			})
			return
		}
		jsonResponse(ctx, fasthttp.StatusCreated, map[string]any{
			"message": "Usage logged",
			"data":    toEventResponse(*res.Event, fmtr),
		})
	}
}

// parseQueryTime accepts a date-only value or a full RFC3339 instant.
// A date-only end bound stays inclusive through the whole day. Invalid
// values are ignored, matching how the other query parameters degrade.
func parseQueryTime(s string, end bool) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		if end {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t
	}
	return nil
}

// Usage handles GET /usage: raw records with optional exact-match and
// date-range filters. No matches yields an empty array, not an error.
func Usage(store dbpkg.Store, cfg *config.Config) fasthttp.RequestHandler {
	fmtr := timefmt.New(cfg.TimestampFormat)
	return func(ctx *fasthttp.RequestCtx) {
		f := dbpkg.Filter{
			Username:  string(ctx.QueryArgs().Peek("username")),
			Site:      string(ctx.QueryArgs().Peek("site")),
			StartDate: parseQueryTime(string(ctx.QueryArgs().Peek("startDate")), false),
			EndDate:   parseQueryTime(string(ctx.QueryArgs().Peek("endDate")), true),
		}

		res, err := store.Usage(f)
		if err != nil {
			storeError(ctx, "usage", err)
			return
		}

		if res.Users != nil {
			users := make([]userResponse, 0, len(res.Users))
			for i := range res.Users {
				u, err := toUserResponse(&res.Users[i], fmtr)
				if err != nil {
					storeError(ctx, "usage", err)
					return
				}
				users = append(users, u)
			}
			jsonResponse(ctx, fasthttp.StatusOK, users)
			return
		}

		events := make([]eventResponse, 0, len(res.Events))
		for _, e := range res.Events {
			events = append(events, toEventResponse(e, fmtr))
		}
		jsonResponse(ctx, fasthttp.StatusOK, events)
	}
}
