package study

import "errors"

// Service-level sentinel errors. Handlers map these to HTTP status codes;
// nothing below this layer leaks to clients.
var (
	// ErrDeckNotFound is returned when the deck does not exist or is not
	// owned by the requesting user. Ownership failures are deliberately
	// indistinguishable from missing decks.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrCardNotFound is returned when the card does not exist or is not
	// owned by the requesting user.
	ErrCardNotFound = errors.New("card not found")

	// ErrInvalidMode is returned when the study mode is not one of
	// spaced, fast, quiz, exam.
	ErrInvalidMode = errors.New("invalid study mode")

	// ErrQualityRequired is returned when a spaced-mode submission carries
	// no quality value.
	ErrQualityRequired = errors.New("quality is required for spaced mode")

	// ErrInvalidQuality is returned when quality is outside [0, 5].
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")

	// ErrAnswerRequired is returned when a quiz or exam submission carries
	// no answer text.
	ErrAnswerRequired = errors.New("answer is required for quiz and exam modes")

	// ErrConflict is returned when the first-review creation race could not
	// be resolved within the internal retry budget. Transient; the caller
	// may retry the submission.
	ErrConflict = errors.New("review record conflict, retry the submission")
)
