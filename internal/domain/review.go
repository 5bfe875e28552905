package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StudyMode selects the scheduling policy for a study session.
type StudyMode string

// Possible study mode values
const (
	StudyModeSpaced StudyMode = "spaced"
	StudyModeFast   StudyMode = "fast"
	StudyModeQuiz   StudyMode = "quiz"
	StudyModeExam   StudyMode = "exam"
)

// ParseStudyMode converts a string into a StudyMode.
// Returns ErrInvalidStudyMode for anything outside the four known modes.
func ParseStudyMode(s string) (StudyMode, error) {
	switch StudyMode(s) {
	case StudyModeSpaced, StudyModeFast, StudyModeQuiz, StudyModeExam:
		return StudyMode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStudyMode, s)
	}
}

// IsAssessment reports whether the mode records answers without touching the
// spaced-repetition schedule. Quiz and exam share one policy.
func (m StudyMode) IsAssessment() bool {
	return m == StudyModeQuiz || m == StudyModeExam
}

// Default review state for newly created records.
const (
	DefaultEaseFactor = 2.5
	DefaultInterval   = 1
	MinEaseFactor     = 1.3
	MinQuality        = 0
	MaxQuality        = 5
	PassQualityCutoff = 3 // quality below this resets progress
	FastReviewQuality = 4 // quality stamped on fast-mode first creation
)

// Common validation errors for ReviewRecord
var (
	ErrInvalidStudyMode        = errors.New("invalid study mode")
	ErrEmptyReviewCardID       = errors.New("review record card ID cannot be empty")
	ErrEmptyReviewUserID       = errors.New("review record user ID cannot be empty")
	ErrInvalidReviewInterval   = errors.New("interval must be at least 1 day")
	ErrInvalidReviewEaseFactor = errors.New("ease factor must be at least 1.3")
	ErrInvalidRepetitions      = errors.New("repetitions cannot be negative")
	ErrInvalidQuality          = errors.New("quality must be between 0 and 5")
)

// ReviewRecord tracks a user's spaced-repetition state for a single card.
// At most one record exists per (card, user) pair; a card with no record is
// "new" for that user. Records are created lazily on the first submission.
type ReviewRecord struct {
	CardID       uuid.UUID  `json:"card_id"`
	UserID       uuid.UUID  `json:"user_id"`
	EaseFactor   float64    `json:"ease_factor"`   // SM-2 ease, floored at 1.3
	Interval     int        `json:"interval"`      // Current interval in days
	Repetitions  int        `json:"repetitions"`   // Consecutive passes since last failure
	DueDate      *time.Time `json:"due_date"`      // Absent until the first spaced review
	Quality      *int       `json:"quality"`       // Most recent response quality, 0-5
	LastReviewed time.Time  `json:"last_reviewed"` // When the card was last submitted
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewReviewRecord creates a review record with the defaults a first
// submission starts from: ease 2.5, interval 1 day, zero repetitions.
func NewReviewRecord(cardID, userID uuid.UUID) (*ReviewRecord, error) {
	now := time.Now().UTC()
	rec := &ReviewRecord{
		CardID:      cardID,
		UserID:      userID,
		EaseFactor:  DefaultEaseFactor,
		Interval:    DefaultInterval,
		Repetitions: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return rec, nil
}

// Validate checks if the ReviewRecord has valid data.
// Returns an error if any field fails validation.
func (r *ReviewRecord) Validate() error {
	if r.CardID == uuid.Nil {
		return ErrEmptyReviewCardID
	}

	if r.UserID == uuid.Nil {
		return ErrEmptyReviewUserID
	}

	if r.Interval < 1 {
		return ErrInvalidReviewInterval
	}

	if r.EaseFactor < MinEaseFactor {
		return ErrInvalidReviewEaseFactor
	}

	if r.Repetitions < 0 {
		return ErrInvalidRepetitions
	}

	if r.Quality != nil && (*r.Quality < MinQuality || *r.Quality > MaxQuality) {
		return ErrInvalidQuality
	}

	return nil
}

// IsDue reports whether the record is due at the given instant.
// A record with no due date is not due; it is scheduled the first time the
// card passes through a spaced review.
func (r *ReviewRecord) IsDue(now time.Time) bool {
	return r.DueDate != nil && !r.DueDate.After(now)
}
