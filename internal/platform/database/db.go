package database

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"propdesk/internal/platform/config"
)

// Open connects to the service database. Foreign keys are enabled so that
// ledger and outbox rows referencing templates/accounts are checked by the
// store itself.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", cfg.Path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = 10
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
