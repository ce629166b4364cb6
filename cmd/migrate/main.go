package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"propdesk/internal/pkg/logger"
	"propdesk/internal/platform/config"
	"propdesk/internal/platform/database"
)

// Applies SQL files from the migrations directory in lexical order. Applied
// versions are tracked in schema_migrations so reruns are no-ops.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	dir := flag.String("dir", "migrations", "Directory containing .sql migration files")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
	)`); err != nil {
		log.Fatal().Err(err).Msg("Failed to create schema_migrations table")
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", *dir).Msg("Failed to read migrations directory")
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	applied := 0
	for _, name := range files {
		var exists int
		if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, name).Scan(&exists); err != nil {
			log.Fatal().Err(err).Str("version", name).Msg("Failed to check migration state")
		}
		if exists > 0 {
			continue
		}

		contents, err := os.ReadFile(filepath.Join(*dir, name))
		if err != nil {
			log.Fatal().Err(err).Str("version", name).Msg("Failed to read migration")
		}

		tx, err := db.Begin()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to begin transaction")
		}
		if _, err := tx.Exec(string(contents)); err != nil {
			tx.Rollback()
			log.Fatal().Err(err).Str("version", name).Msg("Migration failed")
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, name); err != nil {
			tx.Rollback()
			log.Fatal().Err(err).Str("version", name).Msg("Failed to record migration")
		}
		if err := tx.Commit(); err != nil {
			log.Fatal().Err(err).Str("version", name).Msg("Failed to commit migration")
		}

		log.Info().Str("version", name).Msg("Applied migration")
		applied++
	}

	log.Info().Int("applied", applied).Int("total", len(files)).Msg("Migrations complete")
}
