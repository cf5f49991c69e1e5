package services

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shedsites-backend-go/internal/models"
	"shedsites-backend-go/internal/serial"
)

func Slugify(value string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	var b strings.Builder
	lastDash := false
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return uuid.NewString()
	}
	return slug
}

// ResolveDealerSlug finds an unused site slug for the dealer name, suffixing
// a counter on collision.
func ResolveDealerSlug(db *sqlx.DB, name string) (string, error) {
	base := Slugify(name)
	candidate := base
	counter := 2
	for {
		var count int
		err := db.Get(&count, `SELECT count(*) FROM dealers WHERE slug = $1`, candidate)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(counter)
		counter++
	}
}

func CreateDealer(db *sqlx.DB, name, manufacturer string) (models.Dealer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Dealer{}, ErrBadRequest("dealer name is required")
	}
	m, err := serial.ParseManufacturer(manufacturer)
	if err != nil {
		return models.Dealer{}, ErrBadRequest(err.Error())
	}
	slug, err := ResolveDealerSlug(db, name)
	if err != nil {
		return models.Dealer{}, WrapError(err, "resolve dealer slug")
	}
	now := time.Now().UTC()
	dealer := models.Dealer{
		ID:           uuid.NewString(),
		Name:         name,
		Slug:         slug,
		Manufacturer: string(m),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = db.Exec(`
INSERT INTO dealers (id, name, slug, manufacturer, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, dealer.ID, dealer.Name, dealer.Slug, dealer.Manufacturer, dealer.CreatedAt, dealer.UpdatedAt)
	if err != nil {
		return models.Dealer{}, WrapError(err, "create dealer")
	}
	return dealer, nil
}

func GetDealerBySlug(db *sqlx.DB, slug string) (models.Dealer, error) {
	row := models.Dealer{}
	err := db.Get(&row, `
SELECT id, name, slug, manufacturer, created_at, updated_at FROM dealers WHERE slug = $1
`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Dealer{}, ErrNotFound("dealer not found")
	}
	if err != nil {
		return models.Dealer{}, WrapError(err, "load dealer")
	}
	return row, nil
}
