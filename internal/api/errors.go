package api

import (
	"errors"
	"net/http"

	"github.com/flashdeck/study-api/internal/service/study"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors (including ownership failures, which are
	// indistinguishable by design)
	case errors.Is(err, study.ErrDeckNotFound),
		errors.Is(err, study.ErrCardNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, study.ErrInvalidMode),
		errors.Is(err, study.ErrQualityRequired),
		errors.Is(err, study.ErrInvalidQuality),
		errors.Is(err, study.ErrAnswerRequired):
		return http.StatusBadRequest

	// Transient first-review race that exhausted its retries
	case errors.Is(err, study.ErrConflict):
		return http.StatusConflict

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, study.ErrDeckNotFound):
		return "Deck not found"

	case errors.Is(err, study.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, study.ErrInvalidMode):
		return "Invalid study mode"

	case errors.Is(err, study.ErrQualityRequired):
		return "Quality is required for spaced mode"

	case errors.Is(err, study.ErrInvalidQuality):
		return "Quality must be between 0 and 5"

	case errors.Is(err, study.ErrAnswerRequired):
		return "Answer is required for quiz and exam modes"

	case errors.Is(err, study.ErrConflict):
		return "Conflicting review in progress, please retry"

	default:
		return "An unexpected error occurred"
	}
}
