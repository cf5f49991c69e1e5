package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"shedsites-backend-go/internal/db"

	"github.com/jmoiron/sqlx"
)

// Mirror of migrations/V1__init.sql in sqlite-friendly form. The handler and
// store tests run against an in-memory database.
const testSchema = `
CREATE TABLE dealers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  manufacturer TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);

CREATE TABLE buildings (
  id TEXT PRIMARY KEY,
  dealer_id TEXT NOT NULL,
  serial TEXT NOT NULL,
  type_code TEXT NOT NULL,
  type_name TEXT NOT NULL,
  width INTEGER NOT NULL,
  length INTEGER NOT NULL,
  size_display TEXT NOT NULL,
  date_built TEXT NOT NULL,
  status TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  price_cents BIGINT NULL,
  source TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL,
  sold_at TIMESTAMP NULL,
  UNIQUE (dealer_id, serial)
);

CREATE TABLE post_queue (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  building_serial TEXT NOT NULL,
  payload TEXT NOT NULL,
  scheduled_time TIMESTAMP NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  attempts INTEGER NOT NULL DEFAULT 0,
  last_error TEXT NULL,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL,
  posted_at TIMESTAMP NULL,
  UNIQUE (user_id, building_serial)
);

CREATE TABLE template_usage (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  template_text TEXT NOT NULL,
  template_hash TEXT NOT NULL,
  is_manual BOOLEAN NOT NULL DEFAULT false,
  building_serial TEXT NOT NULL,
  used_at TIMESTAMP NOT NULL
);

CREATE TABLE post_templates (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  body TEXT NOT NULL,
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMP NOT NULL
);

CREATE TABLE posting_settings (
  user_id TEXT PRIMARY KEY,
  frequency TEXT NOT NULL,
  days TEXT NOT NULL DEFAULT '',
  start_time TEXT NOT NULL DEFAULT '',
  end_time TEXT NOT NULL DEFAULT '',
  max_per_day TEXT NOT NULL DEFAULT '1',
  updated_at TIMESTAMP NOT NULL
);

CREATE TABLE leads (
  id TEXT PRIMARY KEY,
  dealer_id TEXT NOT NULL,
  name TEXT NULL,
  phone TEXT NULL,
  email TEXT NULL,
  message TEXT NULL,
  building_serial TEXT NULL,
  ip_address TEXT NULL,
  created_at TIMESTAMP NOT NULL
);

CREATE TABLE server_metric_samples (
  id TEXT PRIMARY KEY,
  captured_at TIMESTAMP NOT NULL,
  pending_posts INTEGER NOT NULL,
  failed_posts INTEGER NOT NULL,
  posted_today INTEGER NOT NULL,
  buildings INTEGER NOT NULL,
  leads_today INTEGER NOT NULL,
  process_rss_bytes BIGINT NOT NULL,
  system_memory_total_bytes BIGINT NOT NULL,
  system_memory_used_bytes BIGINT NOT NULL,
  disk_total_bytes BIGINT NOT NULL,
  disk_used_bytes BIGINT NOT NULL,
  process_cpu_load REAL NOT NULL,
  system_cpu_load REAL NOT NULL
);
`

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	_, err = database.Exec(testSchema)
	require.NoError(t, err)
	return database
}
