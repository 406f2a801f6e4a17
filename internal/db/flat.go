package db

import (
	"gorm.io/gorm"

	"sitetime/internal/aggregate"
)

// flatStore persists each usage event as its own row.
type flatStore struct {
	db *gorm.DB
}

func (s *flatStore) LogUsage(ev NewEvent) (*LogResult, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}

	rec := UsageEvent{
		Username:    ev.Username,
		Site:        ev.Site,
		TimeSpentMs: ev.TimeSpentMs,
		StartTime:   ev.StartTime,
		EndTime:     ev.EndTime,
		RecordedAt:  ev.RecordedAt,
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return nil, err
	}
	return &LogResult{Event: &rec}, nil
}

func (s *flatStore) Usage(f Filter) (*UsageResult, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}

	q := s.db.Model(&UsageEvent{})
	if f.Username != "" {
		q = q.Where("username = ?", f.Username)
	}
	if f.Site != "" {
		q = q.Where("site = ?", f.Site)
	}
	if f.StartDate != nil {
		q = q.Where("recorded_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("recorded_at <= ?", *f.EndDate)
	}

	events := make([]UsageEvent, 0)
	if err := q.Order("recorded_at DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return &UsageResult{Events: events}, nil
}

func (s *flatStore) Events(username string) ([]aggregate.Event, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}

	q := s.db.Model(&UsageEvent{}).
		Select("username", "site", "time_spent_ms", "recorded_at")
	if username != "" {
		q = q.Where("username = ?", username)
	}

	// Insert order keeps summary tie-breaking stable.
	var rows []UsageEvent
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	events := make([]aggregate.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, aggregate.Event{
			Username:    r.Username,
			Site:        r.Site,
			TimeSpentMs: r.TimeSpentMs,
			RecordedAt:  r.RecordedAt,
		})
	}
	return events, nil
}

func (s *flatStore) Usernames() ([]string, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}

	names := make([]string, 0)
	err := s.db.Model(&UsageEvent{}).
		Distinct("username").
		Order("username").
		Pluck("username", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
