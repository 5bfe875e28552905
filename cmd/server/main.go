// Package main implements the entry point for the study API server, which
// schedules flashcard reviews with an SM-2 derived spaced repetition
// algorithm and serves per-deck study statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/flashdeck/study-api/internal/config"
	"github.com/flashdeck/study-api/internal/platform/logger"
	"github.com/flashdeck/study-api/internal/platform/postgres"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply pending database migrations and exit")
	flag.Parse()

	if err := run(*migrateOnly); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run loads configuration, wires dependencies, and starts the HTTP server.
// Split from main so initialization failures surface as ordinary errors.
func run(migrateOnly bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	ctx := context.Background()

	if err := postgres.RunMigrations(ctx, db, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if migrateOnly {
		appLogger.Info("Migrations applied, exiting")
		return db.Close()
	}

	app := newApplication(cfg, appLogger, db)

	return app.startHTTPServer(ctx, app.setupRouter())
}
