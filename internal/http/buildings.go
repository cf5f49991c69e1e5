package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"shedsites-backend-go/internal/models"
	"shedsites-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type BuildingDTO struct {
	ID          string  `json:"id"`
	Serial      string  `json:"serial"`
	TypeCode    string  `json:"typeCode"`
	TypeName    string  `json:"typeName"`
	Width       int     `json:"width"`
	Length      int     `json:"length"`
	Size        string  `json:"size"`
	DateBuilt   string  `json:"dateBuilt"`
	Status      string  `json:"status"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       *string `json:"price"`
}

type BuildingListResponse struct {
	Items []BuildingDTO `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
}

func buildingDTO(row models.Building) BuildingDTO {
	var price *string
	if row.PriceCents != nil {
		formatted := "$" + strconv.FormatFloat(float64(*row.PriceCents)/100, 'f', 2, 64)
		price = &formatted
	}
	return BuildingDTO{
		ID:          row.ID,
		Serial:      row.Serial,
		TypeCode:    row.TypeCode,
		TypeName:    row.TypeName,
		Width:       row.Width,
		Length:      row.Length,
		Size:        row.SizeDisplay,
		DateBuilt:   row.DateBuilt,
		Status:      row.Status,
		Title:       row.Title,
		Description: row.Description,
		Price:       price,
	}
}

func (s *Server) PublicBuildings(w http.ResponseWriter, r *http.Request) {
	dealer, err := services.GetDealerBySlug(s.DB, chi.URLParam(r, "dealerSlug"))
	if mapServiceError(w, err) {
		return
	}
	s.listBuildings(w, r, dealer.ID)
}

func (s *Server) AdminBuildings(w http.ResponseWriter, r *http.Request) {
	s.listBuildings(w, r, chi.URLParam(r, "dealerId"))
}

func (s *Server) listBuildings(w http.ResponseWriter, r *http.Request, dealerID string) {
	typeCode := strings.TrimSpace(r.URL.Query().Get("type"))
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	limit := parseInt(r.URL.Query().Get("limit"), 24)
	page := parseInt(r.URL.Query().Get("page"), 1)
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	rows, total, err := services.ListBuildings(s.DB, dealerID, typeCode, status, limit, offset)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]BuildingDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, buildingDTO(row))
	}
	WriteJSON(w, http.StatusOK, BuildingListResponse{Items: items, Total: total, Page: page, Size: limit})
}

func (s *Server) PublicBuildingDetail(w http.ResponseWriter, r *http.Request) {
	dealer, err := services.GetDealerBySlug(s.DB, chi.URLParam(r, "dealerSlug"))
	if mapServiceError(w, err) {
		return
	}
	row, err := services.GetBuildingBySerial(s.DB, dealer.ID, chi.URLParam(r, "serial"))
	if mapServiceError(w, err) {
		return
	}
	WriteJSON(w, http.StatusOK, buildingDTO(row))
}
