package services

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shedsites-backend-go/internal/models"
)

func TestGetPostingSettingsDefault(t *testing.T) {
	database := openTestDB(t)
	settings, err := GetPostingSettings(database, "u1")
	require.NoError(t, err)
	assert.Equal(t, FrequencyDaily, settings.Frequency)
	assert.Equal(t, "1", settings.MaxPerDay)
}

func TestSavePostingSettingsRoundTrip(t *testing.T) {
	database := openTestDB(t)
	require.NoError(t, SavePostingSettings(database, models.PostingSettings{
		UserID:    "u1",
		Frequency: FrequencyCustom,
		Days:      "monday,thursday",
		StartTime: "08:30",
		EndTime:   "19:00",
		MaxPerDay: "3",
	}))

	settings, err := GetPostingSettings(database, "u1")
	require.NoError(t, err)
	assert.Equal(t, FrequencyCustom, settings.Frequency)
	assert.Equal(t, "monday,thursday", settings.Days)
	assert.Equal(t, "3", settings.MaxPerDay)

	// Saving again replaces the row instead of duplicating it.
	settings.MaxPerDay = "5"
	require.NoError(t, SavePostingSettings(database, settings))
	settings, err = GetPostingSettings(database, "u1")
	require.NoError(t, err)
	assert.Equal(t, "5", settings.MaxPerDay)
}

func TestSavePostingSettingsRejectsUnknownFrequency(t *testing.T) {
	database := openTestDB(t)
	err := SavePostingSettings(database, models.PostingSettings{UserID: "u1", Frequency: "hourly"})
	require.Error(t, err)
	var serviceErr ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, 400, serviceErr.Status)
}

func TestPostingConfigFor(t *testing.T) {
	cfg := PostingConfigFor(models.PostingSettings{
		Frequency: FrequencyCustom,
		Days:      " monday, thursday ,,friday",
		StartTime: "08:30",
		EndTime:   "19:00",
	})
	assert.Equal(t, FrequencyCustom, cfg.Frequency)
	assert.Equal(t, []string{"monday", "thursday", "friday"}, cfg.Days)
	assert.Equal(t, "08:30", cfg.StartTime)
}

func TestTemplateCRUD(t *testing.T) {
	database := openTestDB(t)

	first, err := AddTemplate(database, "u1", "New arrivals on the lot", 1)
	require.NoError(t, err)
	_, err = AddTemplate(database, "u1", "Rent to own available", 0)
	require.NoError(t, err)
	_, err = AddTemplate(database, "u2", "Other user's template", 0)
	require.NoError(t, err)

	_, err = AddTemplate(database, "u1", "   ", 0)
	require.Error(t, err)

	rows, err := ListTemplates(database, "u1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Sorted by sort_order.
	assert.Equal(t, "Rent to own available", rows[0].Body)
	assert.Equal(t, "New arrivals on the lot", rows[1].Body)

	bodies, err := ListTemplateBodies(database, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Rent to own available", "New arrivals on the lot"}, bodies)

	require.NoError(t, DeleteTemplate(database, "u1", first.ID))
	rows, err = ListTemplates(database, "u1")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	// Deleting again, or another user's template, is a 404.
	err = DeleteTemplate(database, "u1", first.ID)
	require.Error(t, err)
	err = DeleteTemplate(database, "u1", rowsID(t, database, "u2"))
	require.Error(t, err)
}

func rowsID(t *testing.T, db *sqlx.DB, userID string) string {
	t.Helper()
	var id string
	require.NoError(t, db.Get(&id, `SELECT id FROM post_templates WHERE user_id = $1`, userID))
	return id
}
