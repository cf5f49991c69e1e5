package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"shedsites-backend-go/internal/models"
	"shedsites-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type EnqueueRequest struct {
	BuildingSerial string          `json:"buildingSerial"`
	Payload        json.RawMessage `json:"payload"`
}

type QueueEntryDTO struct {
	ID             string          `json:"id"`
	BuildingSerial string          `json:"buildingSerial"`
	Payload        json.RawMessage `json:"payload"`
	ScheduledTime  string          `json:"scheduledTime"`
	Status         string          `json:"status"`
	Attempts       int             `json:"attempts"`
	LastError      *string         `json:"lastError"`
	PostedAt       *string         `json:"postedAt"`
}

// EnqueuePost queues (or re-queues) a building for auto-posting. The
// schedule comes from the user's cadence settings.
func (s *Server) EnqueuePost(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	var req EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BuildingSerial == "" {
		WriteError(w, http.StatusBadRequest, "buildingSerial is required")
		return
	}
	payload := req.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	settings, err := services.GetPostingSettings(s.DB, userID)
	if mapServiceError(w, err) {
		return
	}
	scheduled := services.NextPostTime(time.Now(), services.PostingConfigFor(settings), nil)
	if err := services.EnqueueBuilding(s.DB, userID, req.BuildingSerial, payload, scheduled); err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to enqueue post")
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{
		"scheduledTime": scheduled.UTC().Format(time.RFC3339),
	})
}

func (s *Server) ListQueue(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	rows := []models.PostQueueEntry{}
	if err := s.DB.Select(&rows, `
SELECT id, user_id, building_serial, payload, scheduled_time, status, attempts, last_error, created_at, updated_at, posted_at
FROM post_queue
WHERE user_id = $1
ORDER BY scheduled_time ASC
`, userID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]QueueEntryDTO, 0, len(rows))
	for _, row := range rows {
		var posted *string
		if row.PostedAt != nil {
			formatted := row.PostedAt.UTC().Format(time.RFC3339)
			posted = &formatted
		}
		items = append(items, QueueEntryDTO{
			ID:             row.ID,
			BuildingSerial: row.BuildingSerial,
			Payload:        row.Payload,
			ScheduledTime:  row.ScheduledTime.UTC().Format(time.RFC3339),
			Status:         row.Status,
			Attempts:       row.Attempts,
			LastError:      row.LastError,
			PostedAt:       posted,
		})
	}
	WriteJSON(w, http.StatusOK, items)
}
