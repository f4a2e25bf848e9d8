// Package scoring converts reading-session counters into fluency metrics.
package scoring

import (
	"errors"
	"math"
)

// ErrInvalidConfiguration reports a non-positive duration or a negative counter.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Input holds the final counters of a reading session.
type Input struct {
	WordsRead       int
	Errors          int
	SelfCorrections int
	DurationSeconds int
}

// Result holds the derived reading metrics.
type Result struct {
	CorrectWords    int     `json:"correct_words"`
	EffectiveErrors int     `json:"effective_errors"`
	WPM             float64 `json:"wpm"`
	Accuracy        float64 `json:"accuracy"`
}

// Score computes words-per-minute and accuracy for a session.
//
// Self-corrections cancel raw errors one for one, floored at zero. WPM is
// normalized to the duration budget and rounded to one decimal; accuracy is
// the net-correct share of words read, rounded to three decimals. Both use
// round-half-to-even on the scaled value. Score has no side effects.
func Score(in Input) (Result, error) {
	if in.DurationSeconds <= 0 {
		return Result{}, ErrInvalidConfiguration
	}
	if in.WordsRead < 0 || in.Errors < 0 || in.SelfCorrections < 0 {
		return Result{}, ErrInvalidConfiguration
	}

	effectiveErrors := max(in.Errors-in.SelfCorrections, 0)
	correctWords := max(in.WordsRead-effectiveErrors, 0)

	minutes := float64(in.DurationSeconds) / 60.0
	wpm := roundTo(float64(correctWords)/minutes, 1)
	accuracy := roundTo(float64(correctWords)/float64(max(in.WordsRead, 1)), 3)

	return Result{
		CorrectWords:    correctWords,
		EffectiveErrors: effectiveErrors,
		WPM:             wpm,
		Accuracy:        accuracy,
	}, nil
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(v*scale) / scale
}
