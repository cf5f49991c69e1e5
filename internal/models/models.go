package models

import (
	"encoding/json"
	"time"
)

type Dealer struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Slug         string    `db:"slug"`
	Manufacturer string    `db:"manufacturer"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type Building struct {
	ID          string     `db:"id"`
	DealerID    string     `db:"dealer_id"`
	Serial      string     `db:"serial"`
	TypeCode    string     `db:"type_code"`
	TypeName    string     `db:"type_name"`
	Width       int        `db:"width"`
	Length      int        `db:"length"`
	SizeDisplay string     `db:"size_display"`
	DateBuilt   string     `db:"date_built"`
	Status      string     `db:"status"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	PriceCents  *int64     `db:"price_cents"`
	Source      string     `db:"source"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	SoldAt      *time.Time `db:"sold_at"`
}

const (
	QueueStatusPending = "pending"
	QueueStatusPosted  = "posted"
	QueueStatusFailed  = "failed"
)

// MaxPostAttempts bounds retries on a queue entry; the third failure is
// terminal.
const MaxPostAttempts = 3

type PostQueueEntry struct {
	ID             string          `db:"id"`
	UserID         string          `db:"user_id"`
	BuildingSerial string          `db:"building_serial"`
	Payload        json.RawMessage `db:"payload"`
	ScheduledTime  time.Time       `db:"scheduled_time"`
	Status         string          `db:"status"`
	Attempts       int             `db:"attempts"`
	LastError      *string         `db:"last_error"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
	PostedAt       *time.Time      `db:"posted_at"`
}

type TemplateUsage struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	TemplateText   string    `db:"template_text"`
	TemplateHash   string    `db:"template_hash"`
	IsManual       bool      `db:"is_manual"`
	BuildingSerial string    `db:"building_serial"`
	UsedAt         time.Time `db:"used_at"`
}

type PostTemplate struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Body      string    `db:"body"`
	SortOrder int       `db:"sort_order"`
	CreatedAt time.Time `db:"created_at"`
}

type PostingSettings struct {
	UserID    string    `db:"user_id"`
	Frequency string    `db:"frequency"`
	Days      string    `db:"days"`
	StartTime string    `db:"start_time"`
	EndTime   string    `db:"end_time"`
	MaxPerDay string    `db:"max_per_day"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Lead struct {
	ID             string    `db:"id"`
	DealerID       string    `db:"dealer_id"`
	Name           *string   `db:"name"`
	Phone          *string   `db:"phone"`
	Email          *string   `db:"email"`
	Message        *string   `db:"message"`
	BuildingSerial *string   `db:"building_serial"`
	IPAddress      *string   `db:"ip_address"`
	CreatedAt      time.Time `db:"created_at"`
}
