package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/study-api/internal/domain"
	"github.com/flashdeck/study-api/internal/store"
)

// PostgresReviewStore implements the store.ReviewStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStore creates a new PostgreSQL implementation of the
// ReviewStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresReviewStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_store")),
	}
}

// Ensure PostgresReviewStore implements store.ReviewStore interface
var _ store.ReviewStore = (*PostgresReviewStore)(nil)

// WithTx implements store.ReviewStore.WithTx
func (s *PostgresReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return &PostgresReviewStore{
		db:     tx,
		logger: s.logger,
	}
}

const reviewColumns = `card_id, user_id, ease_factor, interval, repetitions,
		due_date, quality, last_reviewed, created_at, updated_at`

// Get implements store.ReviewStore.Get
func (s *PostgresReviewStore) Get(ctx context.Context, cardID, userID uuid.UUID) (*domain.ReviewRecord, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM card_reviews
		WHERE card_id = $1 AND user_id = $2`

	return s.scanReview(s.db.QueryRowContext(ctx, query, cardID, userID))
}

// GetForUpdate implements store.ReviewStore.GetForUpdate
// It locks the row with SELECT FOR UPDATE; call inside a transaction.
func (s *PostgresReviewStore) GetForUpdate(ctx context.Context, cardID, userID uuid.UUID) (*domain.ReviewRecord, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM card_reviews
		WHERE card_id = $1 AND user_id = $2
		FOR UPDATE`

	return s.scanReview(s.db.QueryRowContext(ctx, query, cardID, userID))
}

// Create implements store.ReviewStore.Create
// The ON CONFLICT DO NOTHING clause turns the first-review race into
// ErrReviewExists instead of a driver error; the caller re-reads the
// winner's row.
func (s *PostgresReviewStore) Create(ctx context.Context, rec *domain.ReviewRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO card_reviews (card_id, user_id, ease_factor, interval, repetitions,
			due_date, quality, last_reviewed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (card_id, user_id) DO NOTHING`

	result, err := s.db.ExecContext(ctx, query,
		rec.CardID,
		rec.UserID,
		rec.EaseFactor,
		rec.Interval,
		rec.Repetitions,
		rec.DueDate,
		rec.Quality,
		rec.LastReviewed,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrReviewExists
		}
		return fmt.Errorf("failed to create review record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrReviewExists
	}

	return nil
}

// Update implements store.ReviewStore.Update
func (s *PostgresReviewStore) Update(ctx context.Context, rec *domain.ReviewRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE card_reviews
		SET ease_factor = $3, interval = $4, repetitions = $5,
			due_date = $6, quality = $7, last_reviewed = $8, updated_at = $9
		WHERE card_id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query,
		rec.CardID,
		rec.UserID,
		rec.EaseFactor,
		rec.Interval,
		rec.Repetitions,
		rec.DueDate,
		rec.Quality,
		rec.LastReviewed,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update review record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrReviewNotFound
	}

	return nil
}

// CountReviewedCards implements store.ReviewStore.CountReviewedCards
func (s *PostgresReviewStore) CountReviewedCards(ctx context.Context, deckID, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(DISTINCT r.card_id)
		FROM card_reviews r
		JOIN cards c ON c.id = r.card_id
		WHERE c.deck_id = $1 AND r.user_id = $2`

	return s.scanCount(ctx, query, deckID, userID)
}

// CountDue implements store.ReviewStore.CountDue
func (s *PostgresReviewStore) CountDue(ctx context.Context, deckID, userID uuid.UUID, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM card_reviews r
		JOIN cards c ON c.id = r.card_id
		WHERE c.deck_id = $1 AND r.user_id = $2
		  AND r.due_date IS NOT NULL AND r.due_date <= $3`

	return s.scanCount(ctx, query, deckID, userID, now)
}

// CountReviewedSince implements store.ReviewStore.CountReviewedSince
func (s *PostgresReviewStore) CountReviewedSince(ctx context.Context, deckID, userID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM card_reviews r
		JOIN cards c ON c.id = r.card_id
		WHERE c.deck_id = $1 AND r.user_id = $2
		  AND r.last_reviewed >= $3`

	return s.scanCount(ctx, query, deckID, userID, since)
}

func (s *PostgresReviewStore) scanCount(ctx context.Context, query string, args ...any) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count review records: %w", err)
	}
	return count, nil
}

// scanReview maps a single review row onto the domain entity, translating
// sql.ErrNoRows into store.ErrReviewNotFound.
func (s *PostgresReviewStore) scanReview(row *sql.Row) (*domain.ReviewRecord, error) {
	var rec domain.ReviewRecord
	var dueDate sql.NullTime
	var quality sql.NullInt64

	err := row.Scan(
		&rec.CardID,
		&rec.UserID,
		&rec.EaseFactor,
		&rec.Interval,
		&rec.Repetitions,
		&dueDate,
		&quality,
		&rec.LastReviewed,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to scan review record: %w", err)
	}

	if dueDate.Valid {
		t := dueDate.Time
		rec.DueDate = &t
	}
	if quality.Valid {
		q := int(quality.Int64)
		rec.Quality = &q
	}

	return &rec, nil
}
