package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashdeck/study-api/internal/store"
)

func setupCardStoreTest(t *testing.T) (*PostgresCardStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresCardStore(db, nil), mock
}

func cardRows(id, userID, deckID uuid.UUID, question, answer string, at time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "deck_id", "question", "answer", "created_at", "updated_at",
	}).AddRow(id.String(), userID.String(), deckID.String(), question, answer, at, at)
}

func TestCardStoreGetByID(t *testing.T) {
	ctx := context.Background()
	cardID := uuid.New()
	userID := uuid.New()
	deckID := uuid.New()
	now := time.Now().UTC()

	t.Run("success", func(t *testing.T) {
		s, mock := setupCardStoreTest(t)
		mock.ExpectQuery(`(?s)SELECT.*FROM cards c.*WHERE c\.id = \$1`).
			WithArgs(cardID).
			WillReturnRows(cardRows(cardID, userID, deckID, "Q", "A", now))

		card, err := s.GetByID(ctx, cardID)
		require.NoError(t, err)
		assert.Equal(t, cardID, card.ID)
		assert.Equal(t, userID, card.UserID)
		assert.Equal(t, deckID, card.DeckID)
		assert.Equal(t, "Q", card.Question)
		assert.Equal(t, "A", card.Answer)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := setupCardStoreTest(t)
		mock.ExpectQuery(`(?s)SELECT.*FROM cards c.*WHERE c\.id = \$1`).
			WithArgs(cardID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "deck_id", "question", "answer", "created_at", "updated_at",
			}))

		_, err := s.GetByID(ctx, cardID)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})
}

func TestCardStoreCountByDeck(t *testing.T) {
	ctx := context.Background()
	deckID := uuid.New()
	userID := uuid.New()

	s, mock := setupCardStoreTest(t)
	mock.ExpectQuery(`(?s)SELECT COUNT\(\*\).*FROM cards c.*WHERE c\.deck_id = \$1 AND c\.user_id = \$2`).
		WithArgs(deckID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := s.CountByDeck(ctx, deckID, userID)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardStoreNextDue(t *testing.T) {
	ctx := context.Background()
	cardID := uuid.New()
	deckID := uuid.New()
	userID := uuid.New()
	now := time.Now().UTC()

	t.Run("deterministic order is due date then id", func(t *testing.T) {
		s, mock := setupCardStoreTest(t)
		mock.ExpectQuery(`(?s)JOIN card_reviews r.*r\.due_date <= \$3.*ORDER BY r\.due_date ASC, c\.id ASC.*LIMIT 1`).
			WithArgs(deckID, userID, now).
			WillReturnRows(cardRows(cardID, userID, deckID, "Q", "A", now))

		card, err := s.NextDue(ctx, deckID, userID, now, false)
		require.NoError(t, err)
		assert.Equal(t, cardID, card.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("shuffle picks at random", func(t *testing.T) {
		s, mock := setupCardStoreTest(t)
		mock.ExpectQuery(`(?s)JOIN card_reviews r.*ORDER BY random\(\).*LIMIT 1`).
			WithArgs(deckID, userID, now).
			WillReturnRows(cardRows(cardID, userID, deckID, "Q", "A", now))

		_, err := s.NextDue(ctx, deckID, userID, now, true)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty candidate set", func(t *testing.T) {
		s, mock := setupCardStoreTest(t)
		mock.ExpectQuery(`(?s)JOIN card_reviews r`).
			WithArgs(deckID, userID, now).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "deck_id", "question", "answer", "created_at", "updated_at",
			}))

		_, err := s.NextDue(ctx, deckID, userID, now, false)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})
}

func TestCardStoreNextNew(t *testing.T) {
	ctx := context.Background()
	cardID := uuid.New()
	deckID := uuid.New()
	userID := uuid.New()
	now := time.Now().UTC()

	s, mock := setupCardStoreTest(t)
	mock.ExpectQuery(`(?s)LEFT JOIN card_reviews r.*r\.card_id IS NULL.*ORDER BY c\.created_at ASC, c\.id ASC`).
		WithArgs(deckID, userID).
		WillReturnRows(cardRows(cardID, userID, deckID, "Q", "A", now))

	card, err := s.NextNew(ctx, deckID, userID, false)
	require.NoError(t, err)
	assert.Equal(t, cardID, card.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardStoreNextUnreviewedToday(t *testing.T) {
	ctx := context.Background()
	cardID := uuid.New()
	deckID := uuid.New()
	userID := uuid.New()
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	s, mock := setupCardStoreTest(t)
	mock.ExpectQuery(`(?s)LEFT JOIN card_reviews r.*\(r\.card_id IS NULL OR r\.last_reviewed < \$3\)`).
		WithArgs(deckID, userID, dayStart).
		WillReturnRows(cardRows(cardID, userID, deckID, "Q", "A", now))

	card, err := s.NextUnreviewedToday(ctx, deckID, userID, dayStart, false)
	require.NoError(t, err)
	assert.Equal(t, cardID, card.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardStoreNextInDeck(t *testing.T) {
	ctx := context.Background()
	cardID := uuid.New()
	deckID := uuid.New()
	userID := uuid.New()
	now := time.Now().UTC()

	t.Run("without exclusions", func(t *testing.T) {
		s, mock := setupCardStoreTest(t)
		mock.ExpectQuery(`(?s)FROM cards c.*WHERE c\.deck_id = \$1 AND c\.user_id = \$2.*LIMIT 1`).
			WithArgs(deckID, userID).
			WillReturnRows(cardRows(cardID, userID, deckID, "Q", "A", now))

		card, err := s.NextInDeck(ctx, deckID, userID, nil, false)
		require.NoError(t, err)
		assert.Equal(t, cardID, card.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exclusions become NOT IN placeholders", func(t *testing.T) {
		s, mock := setupCardStoreTest(t)
		seen := []uuid.UUID{uuid.New(), uuid.New()}

		mock.ExpectQuery(`(?s)AND c\.id NOT IN \(\$3, \$4\)`).
			WithArgs(deckID, userID, seen[0], seen[1]).
			WillReturnRows(cardRows(cardID, userID, deckID, "Q", "A", now))

		card, err := s.NextInDeck(ctx, deckID, userID, seen, false)
		require.NoError(t, err)
		assert.Equal(t, cardID, card.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exhausted deck", func(t *testing.T) {
		s, mock := setupCardStoreTest(t)
		seen := []uuid.UUID{uuid.New()}

		mock.ExpectQuery(`(?s)AND c\.id NOT IN \(\$3\)`).
			WithArgs(deckID, userID, seen[0]).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "deck_id", "question", "answer", "created_at", "updated_at",
			}))

		_, err := s.NextInDeck(ctx, deckID, userID, seen, false)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})
}
