package db

import (
	"encoding/json"

	"gorm.io/gorm"

	"sitetime/internal/aggregate"
)

// groupedStore persists one UserRecord per username with an append-only
// JSONB activities array, mirroring the nested per-user schema.
type groupedStore struct {
	db *gorm.DB
}

func (s *groupedStore) LogUsage(ev NewEvent) (*LogResult, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}

	act := Activity{
		Site:        ev.Site,
		TimeSpentMs: ev.TimeSpentMs,
		StartTime:   ev.StartTime,
		EndTime:     ev.EndTime,
		RecordedAt:  ev.RecordedAt,
	}
	payload, err := json.Marshal([]Activity{act})
	if err != nil {
		return nil, err
	}

	// Single statement, so find-or-create + append cannot race with a
	// concurrent ingest for the same username: Postgres resolves the
	// uniqueness conflict and concatenates onto the winner's array.
	err = s.db.Exec(
		`INSERT INTO user_records (username, activities) VALUES (?, ?::jsonb)
		 ON CONFLICT (username) DO UPDATE SET activities = user_records.activities || excluded.activities`,
		ev.Username, string(payload),
	).Error
	if err != nil {
		return nil, err
	}

	var rec UserRecord
	if err := s.db.Where("username = ?", ev.Username).First(&rec).Error; err != nil {
		return nil, err
	}
	return &LogResult{User: &rec}, nil
}

func (s *groupedStore) Usage(f Filter) (*UsageResult, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}

	q := s.db.Model(&UserRecord{})
	if f.Username != "" {
		q = q.Where("username = ?", f.Username)
	}

	// Whole records come back regardless of per-activity timestamps;
	// date and site filters only apply to the flat shape.
	users := make([]UserRecord, 0)
	if err := q.Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return &UsageResult{Users: users}, nil
}

func (s *groupedStore) Events(username string) ([]aggregate.Event, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}

	q := s.db.Model(&UserRecord{})
	if username != "" {
		q = q.Where("username = ?", username)
	}

	var records []UserRecord
	if err := q.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}

	events := make([]aggregate.Event, 0)
	for _, rec := range records {
		acts, err := rec.ActivityList()
		if err != nil {
			return nil, err
		}
		for _, a := range acts {
			events = append(events, aggregate.Event{
				Username:    rec.Username,
				Site:        a.Site,
				TimeSpentMs: a.TimeSpentMs,
				RecordedAt:  a.RecordedAt,
			})
		}
	}
	return events, nil
}

func (s *groupedStore) Usernames() ([]string, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}

	names := make([]string, 0)
	err := s.db.Model(&UserRecord{}).
		Order("username").
		Pluck("username", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// ActivityList decodes the stored JSONB array.
func (r *UserRecord) ActivityList() ([]Activity, error) {
	if len(r.Activities) == 0 {
		return nil, nil
	}
	var acts []Activity
	if err := json.Unmarshal(r.Activities, &acts); err != nil {
		return nil, err
	}
	return acts, nil
}
