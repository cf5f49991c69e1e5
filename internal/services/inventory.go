package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shedsites-backend-go/internal/models"
	"shedsites-backend-go/internal/serial"
)

// ImportResult summarizes one ingestion batch. Invalid serials are skipped
// and reported per row; they never abort the batch.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// ScrapedBuilding is one building lifted off a manufacturer listing page.
type ScrapedBuilding struct {
	Serial     string `json:"serial"`
	PriceCents *int64 `json:"priceCents"`
}

// ImportCSV ingests a dealer inventory upload. The first row must be a
// header containing at least a "serial" column; "price" is optional and
// read as dollars.
func ImportCSV(db *sqlx.DB, dealerID string, r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, ErrBadRequest("empty or unreadable CSV file")
	}
	serialCol, priceCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "serial", "serial_number", "serialnumber":
			serialCol = i
		case "price":
			priceCol = i
		}
	}
	if serialCol < 0 {
		return ImportResult{}, ErrBadRequest("CSV is missing a serial column")
	}

	result := ImportResult{Errors: []string{}}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		if serialCol >= len(record) {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing serial", line))
			continue
		}
		var price *int64
		if priceCol >= 0 && priceCol < len(record) {
			price = parsePriceCents(record[priceCol])
		}
		if err := UpsertBuilding(db, dealerID, strings.TrimSpace(record[serialCol]), price, "csv"); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

// IngestScraped applies a scraper batch through the same upsert path as a
// CSV upload.
func IngestScraped(db *sqlx.DB, dealerID string, items []ScrapedBuilding) ImportResult {
	result := ImportResult{Errors: []string{}}
	for i, item := range items {
		if err := UpsertBuilding(db, dealerID, strings.TrimSpace(item.Serial), item.PriceCents, "scraper"); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", i+1, err))
			continue
		}
		result.Imported++
	}
	return result
}

// UpsertBuilding decodes the serial and writes the building row keyed on
// (dealer, serial). A serial that fails the shape check is rejected here so
// callers can skip-and-warn.
func UpsertBuilding(db *sqlx.DB, dealerID, rawSerial string, priceCents *int64, source string) error {
	desc := serial.Decode(rawSerial)
	if !desc.Valid {
		return ErrBadRequest(fmt.Sprintf("serial %q does not decode", rawSerial))
	}
	now := time.Now().UTC()
	_, err := db.Exec(`
INSERT INTO buildings (id, dealer_id, serial, type_code, type_name, width, length, size_display,
  date_built, status, title, description, price_cents, source, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$15)
ON CONFLICT (dealer_id, serial) DO UPDATE SET
  type_code = excluded.type_code,
  type_name = excluded.type_name,
  width = excluded.width,
  length = excluded.length,
  size_display = excluded.size_display,
  date_built = excluded.date_built,
  status = excluded.status,
  title = excluded.title,
  description = excluded.description,
  price_cents = COALESCE(excluded.price_cents, buildings.price_cents),
  source = excluded.source,
  updated_at = excluded.updated_at
`, uuid.NewString(), dealerID, rawSerial, desc.Type.Code, desc.Type.Name, desc.Size.Width, desc.Size.Length,
		desc.Size.Display, desc.DateBuilt.Display, desc.Status, desc.Title, desc.Description, priceCents, source, now)
	return WrapError(err, "upsert building")
}

// parsePriceCents reads a dollar amount like "4350" or "$4,350.00".
func parsePriceCents(raw string) *int64 {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil
	}
	dollars, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	cents := int64(dollars*100 + 0.5)
	return &cents
}

// ListBuildings returns a page of a dealer's inventory, optionally filtered
// by type code or status.
func ListBuildings(db *sqlx.DB, dealerID, typeCode, status string, limit, offset int) ([]models.Building, int, error) {
	args := []interface{}{dealerID}
	where := "WHERE dealer_id = $1"
	if typeCode != "" {
		args = append(args, typeCode)
		where += fmt.Sprintf(" AND type_code = $%d", len(args))
	}
	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := db.Get(&total, "SELECT count(*) FROM buildings "+where, args...); err != nil {
		return nil, 0, WrapError(err, "count buildings")
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
SELECT id, dealer_id, serial, type_code, type_name, width, length, size_display,
       date_built, status, title, description, price_cents, source, created_at, updated_at, sold_at
FROM buildings
%s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))
	rows := []models.Building{}
	if err := db.Select(&rows, query, args...); err != nil {
		return nil, 0, WrapError(err, "list buildings")
	}
	return rows, total, nil
}

func GetBuildingBySerial(db *sqlx.DB, dealerID, rawSerial string) (models.Building, error) {
	row := models.Building{}
	err := db.Get(&row, `
SELECT id, dealer_id, serial, type_code, type_name, width, length, size_display,
       date_built, status, title, description, price_cents, source, created_at, updated_at, sold_at
FROM buildings WHERE dealer_id = $1 AND serial = $2
`, dealerID, rawSerial)
	if err != nil {
		return models.Building{}, ErrNotFound("building not found")
	}
	return row, nil
}
