package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/study-api/internal/domain"
)

// CardStore defines the interface for card reads, including the per-mode
// candidate-set picks the scheduler is built on. Cards are read-only to this
// service.
//
// Every Next* method returns ErrCardNotFound when its candidate set is
// empty; callers translate that into "nothing actionable", not a failure.
// When shuffle is false the pick is deterministic: creation order
// (created_at, then id) unless the method documents otherwise.
type CardStore interface {
	// GetByID retrieves a card by its unique ID, including its owner and
	// answer text. Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// CountByDeck returns the number of cards in the deck for the user.
	CountByDeck(ctx context.Context, deckID, userID uuid.UUID) (int, error)

	// NextDue picks a card from the deck whose review record is due at or
	// before now. Without shuffle the pick is the smallest due date, ties
	// broken by card ID ascending.
	NextDue(ctx context.Context, deckID, userID uuid.UUID, now time.Time, shuffle bool) (*domain.Card, error)

	// NextNew picks a card from the deck with no review record for the user.
	NextNew(ctx context.Context, deckID, userID uuid.UUID, shuffle bool) (*domain.Card, error)

	// NextUnreviewedToday picks a card from the deck that either has no
	// review record or was last reviewed before dayStart.
	NextUnreviewedToday(ctx context.Context, deckID, userID uuid.UUID, dayStart time.Time, shuffle bool) (*domain.Card, error)

	// NextInDeck picks any card from the deck that is not in the excluded
	// set. Used by quiz and exam modes, which ignore review history.
	NextInDeck(ctx context.Context, deckID, userID uuid.UUID, excluded []uuid.UUID, shuffle bool) (*domain.Card, error)

	// WithTx returns a CardStore bound to the provided transaction.
	WithTx(tx *sql.Tx) CardStore
}
