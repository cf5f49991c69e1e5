package services

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shedsites-backend-go/internal/models"
)

var validFrequencies = map[string]bool{
	FrequencyImmediate: true,
	FrequencyDaily:     true,
	FrequencyCustom:    true,
	FrequencyWeekdays:  true,
}

// GetPostingSettings loads a user's cadence configuration, falling back to a
// conservative default (daily at most one post) when none is stored.
func GetPostingSettings(db *sqlx.DB, userID string) (models.PostingSettings, error) {
	row := models.PostingSettings{}
	err := db.Get(&row, `
SELECT user_id, frequency, days, start_time, end_time, max_per_day, updated_at
FROM posting_settings WHERE user_id = $1
`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PostingSettings{
			UserID:    userID,
			Frequency: FrequencyDaily,
			MaxPerDay: "1",
		}, nil
	}
	if err != nil {
		return models.PostingSettings{}, WrapError(err, "load posting settings")
	}
	return row, nil
}

func SavePostingSettings(db *sqlx.DB, settings models.PostingSettings) error {
	if !validFrequencies[settings.Frequency] {
		return ErrBadRequest("unknown posting frequency")
	}
	_, err := db.Exec(`
INSERT INTO posting_settings (user_id, frequency, days, start_time, end_time, max_per_day, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (user_id) DO UPDATE SET
  frequency = excluded.frequency,
  days = excluded.days,
  start_time = excluded.start_time,
  end_time = excluded.end_time,
  max_per_day = excluded.max_per_day,
  updated_at = excluded.updated_at
`, settings.UserID, settings.Frequency, settings.Days, settings.StartTime, settings.EndTime, settings.MaxPerDay, time.Now().UTC())
	return WrapError(err, "save posting settings")
}

// PostingConfigFor converts stored settings into the scheduler's config.
func PostingConfigFor(settings models.PostingSettings) PostingConfig {
	days := []string{}
	for _, day := range strings.Split(settings.Days, ",") {
		if trimmed := strings.TrimSpace(day); trimmed != "" {
			days = append(days, trimmed)
		}
	}
	return PostingConfig{
		Frequency: settings.Frequency,
		Days:      days,
		StartTime: settings.StartTime,
		EndTime:   settings.EndTime,
	}
}

func ListTemplates(db *sqlx.DB, userID string) ([]models.PostTemplate, error) {
	rows := []models.PostTemplate{}
	err := db.Select(&rows, `
SELECT id, user_id, body, sort_order, created_at
FROM post_templates WHERE user_id = $1
ORDER BY sort_order ASC, created_at ASC
`, userID)
	if err != nil {
		return nil, WrapError(err, "list templates")
	}
	return rows, nil
}

// ListTemplateBodies returns the template pool in caller-priority order, the
// shape the selector consumes.
func ListTemplateBodies(db *sqlx.DB, userID string) ([]string, error) {
	rows, err := ListTemplates(db, userID)
	if err != nil {
		return nil, err
	}
	bodies := make([]string, 0, len(rows))
	for _, row := range rows {
		bodies = append(bodies, row.Body)
	}
	return bodies, nil
}

func AddTemplate(db *sqlx.DB, userID, body string, sortOrder int) (models.PostTemplate, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.PostTemplate{}, ErrBadRequest("template body is required")
	}
	template := models.PostTemplate{
		ID:        uuid.NewString(),
		UserID:    userID,
		Body:      body,
		SortOrder: sortOrder,
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.Exec(`
INSERT INTO post_templates (id, user_id, body, sort_order, created_at)
VALUES ($1,$2,$3,$4,$5)
`, template.ID, template.UserID, template.Body, template.SortOrder, template.CreatedAt)
	if err != nil {
		return models.PostTemplate{}, WrapError(err, "add template")
	}
	return template, nil
}

func DeleteTemplate(db *sqlx.DB, userID, templateID string) error {
	result, err := db.Exec(`DELETE FROM post_templates WHERE id = $1 AND user_id = $2`, templateID, userID)
	if err != nil {
		return WrapError(err, "delete template")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound("template not found")
	}
	return nil
}
