package main

import (
	"database/sql"
	"log/slog"

	"github.com/flashdeck/study-api/internal/config"
	"github.com/flashdeck/study-api/internal/domain/srs"
	"github.com/flashdeck/study-api/internal/platform/postgres"
	"github.com/flashdeck/study-api/internal/service/study"
	"github.com/flashdeck/study-api/internal/store"
)

// application holds the initialized dependencies of the server: the
// configuration, the shared logger, the database handle, and the
// study service the HTTP handlers dispatch to.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	deckStore    store.DeckStore
	cardStore    store.CardStore
	reviewStore  store.ReviewStore
	studyService study.StudyService
}

// newApplication wires the stores and services on top of an established
// database connection.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) *application {
	deckStore := postgres.NewPostgresDeckStore(db, logger)
	cardStore := postgres.NewPostgresCardStore(db, logger)
	reviewStore := postgres.NewPostgresReviewStore(db, logger)

	studyService := study.NewStudyService(
		db,
		deckStore,
		cardStore,
		reviewStore,
		srsServiceFromConfig(cfg),
		logger,
	)

	return &application{
		config:       cfg,
		logger:       logger,
		db:           db,
		deckStore:    deckStore,
		cardStore:    cardStore,
		reviewStore:  reviewStore,
		studyService: studyService,
	}
}

// srsServiceFromConfig builds the scheduling service, applying any
// overrides from the study section of the configuration. Zero values mean
// "use the default".
func srsServiceFromConfig(cfg *config.Config) srs.Service {
	params := srs.NewDefaultParams()
	if cfg.Study.MinEaseFactor > 0 {
		params.MinEaseFactor = cfg.Study.MinEaseFactor
	}
	if cfg.Study.FirstInterval > 0 {
		params.FirstInterval = cfg.Study.FirstInterval
	}
	if cfg.Study.SecondInterval > 0 {
		params.SecondInterval = cfg.Study.SecondInterval
	}

	return srs.NewServiceWithParams(params)
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
