package db

import (
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Open connects to the configured database. Postgres (via pgx) is the
// production engine; a dsn of the form "sqlite://path" (or ":memory:")
// selects the embedded sqlite driver, which the test suites use.
func Open(dsn string) (*sqlx.DB, error) {
	driver := "pgx"
	if strings.HasPrefix(dsn, "sqlite://") {
		driver = "sqlite"
		dsn = strings.TrimPrefix(dsn, "sqlite://")
	} else if dsn == ":memory:" {
		driver = "sqlite"
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "pgx" {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	} else {
		// sqlite :memory: loses the schema if the pool opens a second
		// connection.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}
