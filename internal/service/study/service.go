// Package study implements the core of the scheduler: next-card selection
// across the four study modes, review submission, and per-deck statistics.
package study

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/study-api/internal/domain"
)

// StudyService exposes the scheduler's logical operations. It is consumed by
// the HTTP layer and backed by the review ledger and the card/deck stores.
type StudyService interface {
	// GetStats computes the per-deck counters. A deck with nothing to do
	// yields zero counts, not an error.
	// Returns ErrDeckNotFound if the deck is missing or not owned by the user.
	GetStats(ctx context.Context, deckID, userID uuid.UUID) (*DeckStats, error)

	// NextCard selects the card to present next under the requested mode.
	// Returns (nil, nil) when the deck has nothing actionable right now;
	// that is a normal outcome, not a failure.
	// Returns ErrDeckNotFound if the deck is missing or not owned by the user.
	NextCard(ctx context.Context, req NextCardRequest) (*StudyCard, error)

	// SubmitReview validates and applies a user's response, creating the
	// review record on first contact. Validation errors are returned before
	// any mutation.
	SubmitReview(ctx context.Context, req SubmitRequest) (*SubmitOutcome, error)
}

// DeckStats holds the per-deck counters. The counters are computed
// independently and may overlap: a card reviewed this morning on a one-day
// interval counts in Done and, once due again, in ToReview.
type DeckStats struct {
	New      int `json:"new"`
	ToReview int `json:"to_review"`
	Done     int `json:"done"`
}

// NextCardRequest carries the scheduler inputs for one pick.
type NextCardRequest struct {
	DeckID uuid.UUID
	UserID uuid.UUID
	Mode   domain.StudyMode

	// Shuffle requests a uniformly random pick instead of the mode's
	// deterministic order.
	Shuffle bool

	// SessionCards is the caller-tracked set of card IDs already shown in
	// this sitting. Only quiz and exam honor it; it is never persisted.
	SessionCards []uuid.UUID
}

// StudyCard is a card annotated with its review standing for the requesting
// user.
type StudyCard struct {
	ID       uuid.UUID  `json:"id"`
	DeckID   uuid.UUID  `json:"deck_id"`
	Question string     `json:"question"`
	Answer   string     `json:"answer"`
	IsNew    bool       `json:"is_new"`
	DueDate  *time.Time `json:"due_date"`
}

// SubmitRequest carries a user's response. Which payload field matters
// depends on the mode: spaced needs Quality, quiz and exam need Answer, fast
// needs neither.
type SubmitRequest struct {
	CardID  uuid.UUID
	UserID  uuid.UUID
	Mode    domain.StudyMode
	Quality *int
	Answer  *string
}

// SubmitOutcome is the per-mode result of a submission. Exactly one of the
// three fields is set, matching the mode that produced it.
type SubmitOutcome struct {
	Spaced *SpacedOutcome
	Fast   *FastOutcome
	Quiz   *QuizOutcome
}

// SpacedOutcome reports the schedule produced by a spaced-mode review.
type SpacedOutcome struct {
	NextReviewInDays int     `json:"next_review_in_days"`
	EaseFactor       float64 `json:"ease_factor"`
	Repetitions      int     `json:"repetitions"`
}

// FastOutcome acknowledges a fast-mode touch.
type FastOutcome struct {
	Reviewed bool `json:"reviewed"`
}

// QuizOutcome reports the graded answer of a quiz or exam submission.
type QuizOutcome struct {
	Correct        bool   `json:"correct"`
	ExpectedAnswer string `json:"expected_answer"`
}
