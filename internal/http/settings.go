package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"shedsites-backend-go/internal/models"
	"shedsites-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type PostingSettingsDTO struct {
	Frequency string   `json:"frequency"`
	Days      []string `json:"days"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	MaxPerDay string   `json:"maxPerDay"`
}

func (s *Server) GetPostingSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := services.GetPostingSettings(s.DB, chi.URLParam(r, "userId"))
	if mapServiceError(w, err) {
		return
	}
	WriteJSON(w, http.StatusOK, settingsDTO(settings))
}

func (s *Server) SavePostingSettings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	var req PostingSettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	settings := models.PostingSettings{
		UserID:    userID,
		Frequency: strings.TrimSpace(req.Frequency),
		Days:      strings.Join(req.Days, ","),
		StartTime: strings.TrimSpace(req.StartTime),
		EndTime:   strings.TrimSpace(req.EndTime),
		MaxPerDay: strings.TrimSpace(req.MaxPerDay),
	}
	if settings.MaxPerDay == "" {
		settings.MaxPerDay = "1"
	}
	if err := services.SavePostingSettings(s.DB, settings); mapServiceError(w, err) {
		return
	}
	WriteJSON(w, http.StatusOK, settingsDTO(settings))
}

func settingsDTO(settings models.PostingSettings) PostingSettingsDTO {
	days := []string{}
	for _, day := range strings.Split(settings.Days, ",") {
		if trimmed := strings.TrimSpace(day); trimmed != "" {
			days = append(days, trimmed)
		}
	}
	return PostingSettingsDTO{
		Frequency: settings.Frequency,
		Days:      days,
		StartTime: settings.StartTime,
		EndTime:   settings.EndTime,
		MaxPerDay: settings.MaxPerDay,
	}
}

type TemplateRequest struct {
	Body      string `json:"body"`
	SortOrder int    `json:"sortOrder"`
}

type TemplateDTO struct {
	ID        string `json:"id"`
	Body      string `json:"body"`
	SortOrder int    `json:"sortOrder"`
	CreatedAt string `json:"createdAt"`
}

func (s *Server) ListTemplates(w http.ResponseWriter, r *http.Request) {
	rows, err := services.ListTemplates(s.DB, chi.URLParam(r, "userId"))
	if mapServiceError(w, err) {
		return
	}
	items := make([]TemplateDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, TemplateDTO{
			ID:        row.ID,
			Body:      row.Body,
			SortOrder: row.SortOrder,
			CreatedAt: row.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) AddTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	template, err := services.AddTemplate(s.DB, chi.URLParam(r, "userId"), req.Body, req.SortOrder)
	if mapServiceError(w, err) {
		return
	}
	WriteJSON(w, http.StatusCreated, TemplateDTO{
		ID:        template.ID,
		Body:      template.Body,
		SortOrder: template.SortOrder,
		CreatedAt: template.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	err := services.DeleteTemplate(s.DB, chi.URLParam(r, "userId"), chi.URLParam(r, "templateId"))
	if mapServiceError(w, err) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type PreviewRequest struct {
	ScheduledDate  string `json:"scheduledDate"`
	IsManual       bool   `json:"isManual"`
	BuildingSerial string `json:"buildingSerial"`
}

type PreviewResponse struct {
	Template *string `json:"template"`
	Reason   string  `json:"reason"`
}

// PreviewTemplate runs the selector for a manual post so the dealer can see
// which template would go out and why.
func (s *Server) PreviewTemplate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	scheduled := time.Now()
	if req.ScheduledDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.ScheduledDate)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "scheduledDate must be RFC3339")
			return
		}
		scheduled = parsed
	}
	templates, err := services.ListTemplateBodies(s.DB, userID)
	if mapServiceError(w, err) {
		return
	}
	selection := s.Selector.Select(userID, templates, scheduled, req.IsManual, req.BuildingSerial)
	WriteJSON(w, http.StatusOK, PreviewResponse{Template: selection.Template, Reason: selection.Reason})
}
