package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/flashdeck/study-api/internal/domain"
)

// DeckStore defines the read interface the scheduler needs for decks.
// Deck CRUD is owned by the surrounding system; this service only verifies
// identity and ownership.
type DeckStore interface {
	// GetByID retrieves a deck by its unique ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)
}
