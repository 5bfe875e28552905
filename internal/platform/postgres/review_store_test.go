package postgres

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashdeck/study-api/internal/domain"
	"github.com/flashdeck/study-api/internal/store"
)

func setupReviewStoreTest(t *testing.T) (*PostgresReviewStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresReviewStore(db, nil), mock
}

func reviewColumnNames() []string {
	return []string{
		"card_id", "user_id", "ease_factor", "interval", "repetitions",
		"due_date", "quality", "last_reviewed", "created_at", "updated_at",
	}
}

func testReviewRecord() *domain.ReviewRecord {
	now := time.Now().UTC()
	quality := 4
	due := now.AddDate(0, 0, 6)

	return &domain.ReviewRecord{
		CardID:       uuid.New(),
		UserID:       uuid.New(),
		EaseFactor:   2.5,
		Interval:     6,
		Repetitions:  2,
		DueDate:      &due,
		Quality:      &quality,
		LastReviewed: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestReviewStoreGet(t *testing.T) {
	ctx := context.Background()

	t.Run("scans a full row", func(t *testing.T) {
		s, mock := setupReviewStoreTest(t)
		rec := testReviewRecord()

		rows := sqlmock.NewRows(reviewColumnNames()).AddRow(
			rec.CardID.String(), rec.UserID.String(), rec.EaseFactor, rec.Interval,
			rec.Repetitions, *rec.DueDate, int64(*rec.Quality), rec.LastReviewed,
			rec.CreatedAt, rec.UpdatedAt,
		)
		mock.ExpectQuery(`(?s)SELECT.*FROM card_reviews.*WHERE card_id = \$1 AND user_id = \$2`).
			WithArgs(rec.CardID, rec.UserID).
			WillReturnRows(rows)

		got, err := s.Get(ctx, rec.CardID, rec.UserID)
		require.NoError(t, err)
		assert.Equal(t, rec.CardID, got.CardID)
		assert.Equal(t, rec.EaseFactor, got.EaseFactor)
		assert.Equal(t, rec.Interval, got.Interval)
		assert.Equal(t, rec.Repetitions, got.Repetitions)
		require.NotNil(t, got.DueDate)
		assert.True(t, got.DueDate.Equal(*rec.DueDate))
		require.NotNil(t, got.Quality)
		assert.Equal(t, *rec.Quality, *got.Quality)
	})

	t.Run("maps null due date and quality", func(t *testing.T) {
		s, mock := setupReviewStoreTest(t)
		rec := testReviewRecord()

		rows := sqlmock.NewRows(reviewColumnNames()).AddRow(
			rec.CardID.String(), rec.UserID.String(), rec.EaseFactor, rec.Interval,
			rec.Repetitions, nil, nil, rec.LastReviewed, rec.CreatedAt, rec.UpdatedAt,
		)
		mock.ExpectQuery(`(?s)SELECT.*FROM card_reviews`).
			WithArgs(rec.CardID, rec.UserID).
			WillReturnRows(rows)

		got, err := s.Get(ctx, rec.CardID, rec.UserID)
		require.NoError(t, err)
		assert.Nil(t, got.DueDate)
		assert.Nil(t, got.Quality)
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := setupReviewStoreTest(t)
		cardID := uuid.New()
		userID := uuid.New()

		mock.ExpectQuery(`(?s)SELECT.*FROM card_reviews`).
			WithArgs(cardID, userID).
			WillReturnRows(sqlmock.NewRows(reviewColumnNames()))

		_, err := s.Get(ctx, cardID, userID)
		assert.ErrorIs(t, err, store.ErrReviewNotFound)
	})
}

func TestReviewStoreGetForUpdate(t *testing.T) {
	ctx := context.Background()
	s, mock := setupReviewStoreTest(t)
	rec := testReviewRecord()

	rows := sqlmock.NewRows(reviewColumnNames()).AddRow(
		rec.CardID.String(), rec.UserID.String(), rec.EaseFactor, rec.Interval,
		rec.Repetitions, *rec.DueDate, int64(*rec.Quality), rec.LastReviewed,
		rec.CreatedAt, rec.UpdatedAt,
	)
	mock.ExpectQuery(`(?s)SELECT.*FROM card_reviews.*FOR UPDATE`).
		WithArgs(rec.CardID, rec.UserID).
		WillReturnRows(rows)

	got, err := s.GetForUpdate(ctx, rec.CardID, rec.UserID)
	require.NoError(t, err)
	assert.Equal(t, rec.CardID, got.CardID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func reviewArgs(rec *domain.ReviewRecord) []driver.Value {
	return []driver.Value{
		rec.CardID, rec.UserID, rec.EaseFactor, rec.Interval, rec.Repetitions,
		rec.DueDate, rec.Quality, rec.LastReviewed, rec.CreatedAt, rec.UpdatedAt,
	}
}

func TestReviewStoreCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts a new row", func(t *testing.T) {
		s, mock := setupReviewStoreTest(t)
		rec := testReviewRecord()

		mock.ExpectExec(`(?s)INSERT INTO card_reviews.*ON CONFLICT \(card_id, user_id\) DO NOTHING`).
			WithArgs(reviewArgs(rec)...).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Create(ctx, rec))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost race reports ErrReviewExists", func(t *testing.T) {
		s, mock := setupReviewStoreTest(t)
		rec := testReviewRecord()

		mock.ExpectExec(`(?s)INSERT INTO card_reviews`).
			WithArgs(reviewArgs(rec)...).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Create(ctx, rec), store.ErrReviewExists)
	})

	t.Run("unique violation reports ErrReviewExists", func(t *testing.T) {
		s, mock := setupReviewStoreTest(t)
		rec := testReviewRecord()

		mock.ExpectExec(`(?s)INSERT INTO card_reviews`).
			WithArgs(reviewArgs(rec)...).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

		assert.ErrorIs(t, s.Create(ctx, rec), store.ErrReviewExists)
	})

	t.Run("rejects invalid records before touching the database", func(t *testing.T) {
		s, mock := setupReviewStoreTest(t)
		rec := testReviewRecord()
		rec.EaseFactor = 0.5

		assert.ErrorIs(t, s.Create(ctx, rec), store.ErrInvalidEntity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReviewStoreUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("updates an existing row", func(t *testing.T) {
		s, mock := setupReviewStoreTest(t)
		rec := testReviewRecord()

		mock.ExpectExec(`(?s)UPDATE card_reviews.*WHERE card_id = \$1 AND user_id = \$2`).
			WithArgs(
				rec.CardID, rec.UserID, rec.EaseFactor, rec.Interval, rec.Repetitions,
				rec.DueDate, rec.Quality, rec.LastReviewed, rec.UpdatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Update(ctx, rec))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row reports ErrReviewNotFound", func(t *testing.T) {
		s, mock := setupReviewStoreTest(t)
		rec := testReviewRecord()

		mock.ExpectExec(`(?s)UPDATE card_reviews`).
			WithArgs(
				rec.CardID, rec.UserID, rec.EaseFactor, rec.Interval, rec.Repetitions,
				rec.DueDate, rec.Quality, rec.LastReviewed, rec.UpdatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Update(ctx, rec), store.ErrReviewNotFound)
	})
}

func TestReviewStoreCounts(t *testing.T) {
	ctx := context.Background()
	deckID := uuid.New()
	userID := uuid.New()
	now := time.Now().UTC()

	t.Run("CountReviewedCards counts distinct cards", func(t *testing.T) {
		s, mock := setupReviewStoreTest(t)
		mock.ExpectQuery(`(?s)SELECT COUNT\(DISTINCT r\.card_id\).*JOIN cards c`).
			WithArgs(deckID, userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		count, err := s.CountReviewedCards(ctx, deckID, userID)
		require.NoError(t, err)
		assert.Equal(t, 4, count)
	})

	t.Run("CountDue filters on due date", func(t *testing.T) {
		s, mock := setupReviewStoreTest(t)
		mock.ExpectQuery(`(?s)SELECT COUNT\(\*\).*r\.due_date IS NOT NULL AND r\.due_date <= \$3`).
			WithArgs(deckID, userID, now).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := s.CountDue(ctx, deckID, userID, now)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("CountReviewedSince filters on last review", func(t *testing.T) {
		s, mock := setupReviewStoreTest(t)
		since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`(?s)SELECT COUNT\(\*\).*r\.last_reviewed >= \$3`).
			WithArgs(deckID, userID, since).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		count, err := s.CountReviewedSince(ctx, deckID, userID, since)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}
