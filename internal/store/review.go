package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/study-api/internal/domain"
)

// ReviewStore defines the interface for the review ledger: the durable
// mapping from (card, user) to spaced-repetition state. It is the only
// mutable state this service owns.
type ReviewStore interface {
	// Get retrieves a review record by the (card, user) key.
	// Returns ErrReviewNotFound if no record exists.
	// NOTE: no row locking; do not use when you plan to update the row
	// under concurrency. Use GetForUpdate inside a transaction instead.
	Get(ctx context.Context, cardID, userID uuid.UUID) (*domain.ReviewRecord, error)

	// GetForUpdate retrieves a review record with a row-level lock using
	// SELECT FOR UPDATE. Must be called within a transaction.
	// Returns ErrReviewNotFound if no record exists.
	GetForUpdate(ctx context.Context, cardID, userID uuid.UUID) (*domain.ReviewRecord, error)

	// Create inserts a new review record. The insert uses ON CONFLICT DO
	// NOTHING on the unique (card_id, user_id) key and reports the loss of
	// a first-review race as ErrReviewExists; the caller re-reads the
	// winner's row instead of creating a duplicate.
	Create(ctx context.Context, rec *domain.ReviewRecord) error

	// Update overwrites an existing record identified by its (card, user)
	// key. Returns ErrReviewNotFound if the record does not exist.
	Update(ctx context.Context, rec *domain.ReviewRecord) error

	// CountReviewedCards returns the number of distinct cards in the deck
	// that have a review record for the user.
	CountReviewedCards(ctx context.Context, deckID, userID uuid.UUID) (int, error)

	// CountDue returns the number of review records for the deck and user
	// with a due date at or before now.
	CountDue(ctx context.Context, deckID, userID uuid.UUID, now time.Time) (int, error)

	// CountReviewedSince returns the number of review records for the deck
	// and user last reviewed at or after the given instant. With since set
	// to the start of the local day this is the "done today" counter.
	CountReviewedSince(ctx context.Context, deckID, userID uuid.UUID, since time.Time) (int, error)

	// WithTx returns a ReviewStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ReviewStore
}
