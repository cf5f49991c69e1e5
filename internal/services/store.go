package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// UsageStore is the persistence port for the template selector. The sqlx
// implementation below backs production; tests use an in-memory fake.
type UsageStore interface {
	RecordUsage(userID, templateText, templateHash string, isManual bool, buildingSerial string, usedAt time.Time) error
	HasRecentUsage(userID, templateHash string, since time.Time) (bool, error)
}

// PostCounter is the persistence port for the daily post-limit gate.
type PostCounter interface {
	CountPostedSince(userID string, since time.Time) (int, error)
}

// Store implements UsageStore and PostCounter over the application database.
type Store struct {
	DB *sqlx.DB
}

func (s *Store) RecordUsage(userID, templateText, templateHash string, isManual bool, buildingSerial string, usedAt time.Time) error {
	_, err := s.DB.Exec(`
INSERT INTO template_usage (id, user_id, template_text, template_hash, is_manual, building_serial, used_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, uuid.NewString(), userID, templateText, templateHash, isManual, buildingSerial, usedAt)
	return WrapError(err, "record template usage")
}

func (s *Store) HasRecentUsage(userID, templateHash string, since time.Time) (bool, error) {
	var count int
	err := s.DB.Get(&count, `
SELECT count(*) FROM template_usage
WHERE user_id = $1 AND template_hash = $2 AND is_manual = false AND used_at >= $3
`, userID, templateHash, since)
	if err != nil {
		return false, WrapError(err, "query template usage")
	}
	return count > 0, nil
}

func (s *Store) CountPostedSince(userID string, since time.Time) (int, error) {
	var count int
	err := s.DB.Get(&count, `
SELECT count(*) FROM post_queue
WHERE user_id = $1 AND status = 'posted' AND posted_at >= $2
`, userID, since)
	if err != nil {
		return 0, WrapError(err, "count posted entries")
	}
	return count, nil
}
