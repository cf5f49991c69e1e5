package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shedsites-backend-go/internal/models"
)

// EnqueueBuilding upserts a queue entry keyed on (user, building serial).
// Re-queuing an existing building resets it to a fresh pending state:
// attempts back to zero, error cleared, schedule and payload overwritten.
func EnqueueBuilding(db *sqlx.DB, userID, buildingSerial string, payload json.RawMessage, scheduledTime time.Time) error {
	now := time.Now().UTC()
	_, err := db.Exec(`
INSERT INTO post_queue (id, user_id, building_serial, payload, scheduled_time, status, attempts, last_error, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,'pending',0,NULL,$6,$6)
ON CONFLICT (user_id, building_serial) DO UPDATE SET
  payload = excluded.payload,
  scheduled_time = excluded.scheduled_time,
  status = 'pending',
  attempts = 0,
  last_error = NULL,
  updated_at = excluded.updated_at
`, uuid.NewString(), userID, buildingSerial, []byte(payload), scheduledTime, now)
	return WrapError(err, "enqueue building")
}

// DuePosts returns pending entries whose scheduled time has arrived.
func DuePosts(db *sqlx.DB, now time.Time) ([]models.PostQueueEntry, error) {
	entries := []models.PostQueueEntry{}
	err := db.Select(&entries, `
SELECT id, user_id, building_serial, payload, scheduled_time, status, attempts, last_error, created_at, updated_at, posted_at
FROM post_queue
WHERE status = 'pending' AND scheduled_time <= $1
ORDER BY scheduled_time ASC
`, now)
	if err != nil {
		return nil, WrapError(err, "list due posts")
	}
	return entries, nil
}

func MarkPosted(db *sqlx.DB, entryID string, now time.Time) error {
	_, err := db.Exec(`
UPDATE post_queue SET status = 'posted', posted_at = $2, updated_at = $2 WHERE id = $1
`, entryID, now)
	return WrapError(err, "mark posted")
}

// RecordFailure bumps the attempt count and flips the entry to its terminal
// failed state once attempts reach the retry bound. Below the bound the entry
// stays pending and is picked up again on the next due-post scan.
func RecordFailure(db *sqlx.DB, entry *models.PostQueueEntry, cause error, now time.Time) error {
	entry.Attempts++
	status := models.QueueStatusPending
	if entry.Attempts >= models.MaxPostAttempts {
		status = models.QueueStatusFailed
	}
	message := cause.Error()
	_, err := db.Exec(`
UPDATE post_queue SET attempts = $2, status = $3, last_error = $4, updated_at = $5 WHERE id = $1
`, entry.ID, entry.Attempts, status, message, now)
	if err != nil {
		return WrapError(err, "record post failure")
	}
	entry.Status = status
	entry.LastError = &message
	return nil
}

// DeferToNextDay pushes an entry's schedule forward by exactly one day,
// leaving status and attempts untouched. Used when the daily limit is
// exhausted or no template qualifies today.
func DeferToNextDay(db *sqlx.DB, entry *models.PostQueueEntry, now time.Time) error {
	deferred := entry.ScheduledTime.Add(24 * time.Hour)
	_, err := db.Exec(`
UPDATE post_queue SET scheduled_time = $2, updated_at = $3 WHERE id = $1
`, entry.ID, deferred, now)
	if err != nil {
		return WrapError(err, "defer queue entry")
	}
	entry.ScheduledTime = deferred
	return nil
}

// ProcessQueue runs one pass over due entries: gate on the daily limit,
// select a template, hand off to the poster, and settle the entry's state.
// Per-entry failures never abort the pass.
func ProcessQueue(db *sqlx.DB, selector *Selector, poster Poster, now time.Time) {
	entries, err := DuePosts(db, now)
	if err != nil {
		log.Printf("queue scan: %v", err)
		return
	}
	counter := &Store{DB: db}
	for i := range entries {
		entry := &entries[i]

		settings, err := GetPostingSettings(db, entry.UserID)
		if err != nil {
			log.Printf("queue %s: posting settings: %v", entry.ID, err)
			continue
		}

		ok, err := CanPostToday(counter, entry.UserID, settings.MaxPerDay, now)
		if err != nil {
			log.Printf("queue %s: daily limit check: %v", entry.ID, err)
			continue
		}
		if !ok {
			if err := DeferToNextDay(db, entry, now); err != nil {
				log.Printf("queue %s: %v", entry.ID, err)
			}
			continue
		}

		templates, err := ListTemplateBodies(db, entry.UserID)
		if err != nil {
			log.Printf("queue %s: list templates: %v", entry.ID, err)
			continue
		}
		selection := selector.Select(entry.UserID, templates, entry.ScheduledTime, false, entry.BuildingSerial)
		if selection.Template == nil {
			log.Printf("queue %s: no usable template (%s), deferring", entry.ID, selection.Reason)
			if err := DeferToNextDay(db, entry, now); err != nil {
				log.Printf("queue %s: %v", entry.ID, err)
			}
			continue
		}

		if err := poster.PublishPost(entry.UserID, *selection.Template, entry.Payload); err != nil {
			if ferr := RecordFailure(db, entry, err, now); ferr != nil {
				log.Printf("queue %s: %v", entry.ID, ferr)
			}
			continue
		}
		if err := MarkPosted(db, entry.ID, now); err != nil {
			log.Printf("queue %s: %v", entry.ID, err)
		}
	}
}
