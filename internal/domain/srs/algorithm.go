// Package srs implements the SM-2-derived interval calculation used by
// spaced-mode reviews. The functions here are pure: no I/O, no clock reads,
// no mutation of their inputs.
package srs

import (
	"math"
	"time"
)

// Result holds the review state produced by one application of the update
// law, ready to be written back to the review record.
type Result struct {
	EaseFactor  float64
	Interval    int // days until the next review
	Repetitions int
	DueDate     time.Time
}

// calculateNewEaseFactor adjusts the ease factor for a response of the given
// quality (0 = total failure, 5 = perfect recall).
//
// The adjustment is the classic SM-2 polynomial: quality 5 gains 0.1,
// quality 4 is neutral at -0.0 after the quadratic term, and lower qualities
// shave progressively more off. The result is floored at params.MinEaseFactor.
func calculateNewEaseFactor(currentEF float64, quality int, params *Params) float64 {
	q := float64(quality)
	newEF := currentEF + (0.1 - (5-q)*(0.08+(5-q)*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the next interval in days.
//
// A failing response (quality below params.PassQuality) resets repetitions
// and returns the caller to the one-day interval. Passing responses walk the
// SM-2 ladder: 1-day first, 6-day second, and from the third consecutive
// pass onward the prior interval multiplied by the newly computed ease.
//
// The multiplication uses the interval from before this review together with
// the ease from after it, matching SM-2.
//
// Rounding convention: math.Round, i.e. half away from zero. Intervals are
// positive, so .5 boundaries round up (2.5 * ease boundaries never round
// down to the shorter interval).
func calculateNewInterval(
	prevInterval int,
	newRepetitions int,
	newEase float64,
	params *Params,
) int {
	switch newRepetitions {
	case 1:
		return params.FirstInterval
	case 2:
		return params.SecondInterval
	default:
		return int(math.Round(float64(prevInterval) * newEase))
	}
}

// Advance applies one review of the given quality to the prior state
// (ease, interval, repetitions) and returns the updated state.
//
// The due date is now plus the new interval in whole days.
func Advance(
	ease float64,
	interval int,
	repetitions int,
	quality int,
	now time.Time,
	params *Params,
) Result {
	newEase := calculateNewEaseFactor(ease, quality, params)

	var newRepetitions, newInterval int
	if quality < params.PassQuality {
		// Failure resets progress to the beginning.
		newRepetitions = 0
		newInterval = 1
	} else {
		newRepetitions = repetitions + 1
		newInterval = calculateNewInterval(interval, newRepetitions, newEase, params)
	}

	return Result{
		EaseFactor:  newEase,
		Interval:    newInterval,
		Repetitions: newRepetitions,
		DueDate:     now.AddDate(0, 0, newInterval),
	}
}
