package httpapi

import (
	"encoding/json"
	"net/http"

	"shedsites-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

// ImportInventoryCSV ingests a multipart CSV upload ("file" field). Rows
// with undecodable serials are reported back, not fatal.
func (s *Server) ImportInventoryCSV(w http.ResponseWriter, r *http.Request) {
	dealerID := chi.URLParam(r, "dealerId")
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart upload")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "A CSV file is required")
		return
	}
	defer file.Close()

	result, err := services.ImportCSV(s.DB, dealerID, file)
	if mapServiceError(w, err) {
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

type ScrapeRequest struct {
	Items []services.ScrapedBuilding `json:"items"`
}

// IngestScrapedInventory accepts a scraper batch over JSON, sharing the CSV
// importer's upsert path.
func (s *Server) IngestScrapedInventory(w http.ResponseWriter, r *http.Request) {
	dealerID := chi.URLParam(r, "dealerId")
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Items) == 0 {
		WriteError(w, http.StatusBadRequest, "items is required")
		return
	}
	result := services.IngestScraped(s.DB, dealerID, req.Items)
	WriteJSON(w, http.StatusOK, result)
}

type CreateDealerRequest struct {
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
}

type DealerDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Manufacturer string `json:"manufacturer"`
}

func (s *Server) CreateDealer(w http.ResponseWriter, r *http.Request) {
	var req CreateDealerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	dealer, err := services.CreateDealer(s.DB, req.Name, req.Manufacturer)
	if mapServiceError(w, err) {
		return
	}
	WriteJSON(w, http.StatusCreated, DealerDTO{
		ID:           dealer.ID,
		Name:         dealer.Name,
		Slug:         dealer.Slug,
		Manufacturer: dealer.Manufacturer,
	})
}
