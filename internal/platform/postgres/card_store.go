package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/study-api/internal/domain"
	"github.com/flashdeck/study-api/internal/store"
)

// cardColumns is the projection shared by every card query.
const cardColumns = "c.id, c.user_id, c.deck_id, c.question, c.answer, c.created_at, c.updated_at"

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards c
		WHERE c.id = $1`

	return s.scanCard(s.db.QueryRowContext(ctx, query, id))
}

// CountByDeck implements store.CardStore.CountByDeck
func (s *PostgresCardStore) CountByDeck(ctx context.Context, deckID, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM cards c
		WHERE c.deck_id = $1 AND c.user_id = $2`

	var count int
	if err := s.db.QueryRowContext(ctx, query, deckID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}

	return count, nil
}

// NextDue implements store.CardStore.NextDue
// It picks from cards whose review record is due at or before now.
func (s *PostgresCardStore) NextDue(
	ctx context.Context,
	deckID, userID uuid.UUID,
	now time.Time,
	shuffle bool,
) (*domain.Card, error) {
	order := "r.due_date ASC, c.id ASC"
	if shuffle {
		order = "random()"
	}

	query := `
		SELECT ` + cardColumns + `
		FROM cards c
		JOIN card_reviews r ON r.card_id = c.id AND r.user_id = $2
		WHERE c.deck_id = $1 AND c.user_id = $2
		  AND r.due_date IS NOT NULL AND r.due_date <= $3
		ORDER BY ` + order + `
		LIMIT 1`

	return s.scanCard(s.db.QueryRowContext(ctx, query, deckID, userID, now))
}

// NextNew implements store.CardStore.NextNew
// It picks from cards with no review record for the user.
func (s *PostgresCardStore) NextNew(
	ctx context.Context,
	deckID, userID uuid.UUID,
	shuffle bool,
) (*domain.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards c
		LEFT JOIN card_reviews r ON r.card_id = c.id AND r.user_id = $2
		WHERE c.deck_id = $1 AND c.user_id = $2 AND r.card_id IS NULL
		ORDER BY ` + creationOrder(shuffle) + `
		LIMIT 1`

	return s.scanCard(s.db.QueryRowContext(ctx, query, deckID, userID))
}

// NextUnreviewedToday implements store.CardStore.NextUnreviewedToday
// It picks from cards untouched since dayStart, including never-reviewed ones.
func (s *PostgresCardStore) NextUnreviewedToday(
	ctx context.Context,
	deckID, userID uuid.UUID,
	dayStart time.Time,
	shuffle bool,
) (*domain.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards c
		LEFT JOIN card_reviews r ON r.card_id = c.id AND r.user_id = $2
		WHERE c.deck_id = $1 AND c.user_id = $2
		  AND (r.card_id IS NULL OR r.last_reviewed < $3)
		ORDER BY ` + creationOrder(shuffle) + `
		LIMIT 1`

	return s.scanCard(s.db.QueryRowContext(ctx, query, deckID, userID, dayStart))
}

// NextInDeck implements store.CardStore.NextInDeck
// It picks any card in the deck outside the excluded set.
func (s *PostgresCardStore) NextInDeck(
	ctx context.Context,
	deckID, userID uuid.UUID,
	excluded []uuid.UUID,
	shuffle bool,
) (*domain.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards c
		WHERE c.deck_id = $1 AND c.user_id = $2`
	args := []any{deckID, userID}

	if len(excluded) > 0 {
		placeholders := make([]string, len(excluded))
		for i, id := range excluded {
			args = append(args, id)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		query += "\n\t\t  AND c.id NOT IN (" + strings.Join(placeholders, ", ") + ")"
	}

	query += `
		ORDER BY ` + creationOrder(shuffle) + `
		LIMIT 1`

	return s.scanCard(s.db.QueryRowContext(ctx, query, args...))
}

// creationOrder returns the ORDER BY expression for a pick: uniform random
// under shuffle, creation order (earliest first, id tie-break) otherwise.
func creationOrder(shuffle bool) string {
	if shuffle {
		return "random()"
	}
	return "c.created_at ASC, c.id ASC"
}

// scanCard maps a single-card row onto the domain entity, translating
// sql.ErrNoRows into store.ErrCardNotFound.
func (s *PostgresCardStore) scanCard(row *sql.Row) (*domain.Card, error) {
	var card domain.Card
	err := row.Scan(
		&card.ID,
		&card.UserID,
		&card.DeckID,
		&card.Question,
		&card.Answer,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}

	return &card, nil
}
