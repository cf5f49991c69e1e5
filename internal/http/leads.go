package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"shedsites-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type LeadRequest struct {
	Name           *string `json:"name"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	Message        *string `json:"message"`
	BuildingSerial *string `json:"buildingSerial"`
}

type LeadDTO struct {
	ID             string  `json:"id"`
	Name           *string `json:"name"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	Message        *string `json:"message"`
	BuildingSerial *string `json:"buildingSerial"`
	CreatedAt      string  `json:"createdAt"`
}

func (s *Server) SubmitLead(w http.ResponseWriter, r *http.Request) {
	dealer, err := services.GetDealerBySlug(s.DB, chi.URLParam(r, "dealerSlug"))
	if mapServiceError(w, err) {
		return
	}
	var req LeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	phone := trimString(ptrToString(req.Phone), 32)
	email := trimString(ptrToString(req.Email), 255)
	if phone == "" && email == "" {
		WriteError(w, http.StatusBadRequest, "A phone number or email is required")
		return
	}
	name := trimString(ptrToString(req.Name), 255)
	message := trimString(ptrToString(req.Message), 2000)
	serial := trimString(ptrToString(req.BuildingSerial), 64)
	ip := resolveClientIP(r)

	_, err = s.DB.Exec(`
INSERT INTO leads (id, dealer_id, name, phone, email, message, building_serial, ip_address, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, uuid.NewString(), dealer.ID, nullIfEmpty(name), nullIfEmpty(phone), nullIfEmpty(email),
		nullIfEmpty(message), nullIfEmpty(serial), nullIfEmpty(ip), time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ListLeads(w http.ResponseWriter, r *http.Request) {
	dealerID := chi.URLParam(r, "dealerId")
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	if limit > 200 {
		limit = 200
	}
	rows := []struct {
		ID             string    `db:"id"`
		Name           *string   `db:"name"`
		Phone          *string   `db:"phone"`
		Email          *string   `db:"email"`
		Message        *string   `db:"message"`
		BuildingSerial *string   `db:"building_serial"`
		CreatedAt      time.Time `db:"created_at"`
	}{}
	if err := s.DB.Select(&rows, `
SELECT id, name, phone, email, message, building_serial, created_at
FROM leads
WHERE dealer_id = $1
ORDER BY created_at DESC
LIMIT $2
`, dealerID, limit); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]LeadDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, LeadDTO{
			ID:             row.ID,
			Name:           row.Name,
			Phone:          row.Phone,
			Email:          row.Email,
			Message:        row.Message,
			BuildingSerial: row.BuildingSerial,
			CreatedAt:      row.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	WriteJSON(w, http.StatusOK, items)
}

func ptrToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
