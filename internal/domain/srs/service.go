package srs

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")
)

// Service defines the interface for SM-2 interval calculation, so callers
// can swap the scheduler's tuning (or the whole algorithm) in tests.
type Service interface {
	// Advance computes the review state that follows a response of the
	// given quality. Quality must be in [0, 5].
	Advance(ease float64, interval, repetitions, quality int, now time.Time) (Result, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates an SM-2 service with the standard constants.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates an SM-2 service with custom constants.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// Advance implements the Service interface.
func (s *defaultService) Advance(
	ease float64,
	interval, repetitions, quality int,
	now time.Time,
) (Result, error) {
	if quality < 0 || quality > 5 {
		return Result{}, ErrInvalidQuality
	}

	return Advance(ease, interval, repetitions, quality, now, s.params), nil
}
