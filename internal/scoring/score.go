package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"math"
)

// ErrScorerUnavailable is reported when no learned model is configured.
var ErrScorerUnavailable = errors.New("learned scorer is not configured")

// LearnedScore is either a model score in [0, 100] or an explicit
// unavailable marker. The zero value is unavailable.
type LearnedScore struct {
	value     float64
	available bool
	reason    string
}

// Available wraps a score already scaled to [0, 100].
func Available(v float64) LearnedScore {
	return LearnedScore{value: v, available: true}
}

// Unavailable returns the unavailable marker with a short reason.
func Unavailable(reason string) LearnedScore {
	return LearnedScore{reason: reason}
}

// Value returns the score and whether one is present.
func (s LearnedScore) Value() (float64, bool) {
	return s.value, s.available
}

// IsAvailable reports whether the score carries a value.
func (s LearnedScore) IsAvailable() bool {
	return s.available
}

// Reason explains why the score is unavailable. It is empty for available scores.
func (s LearnedScore) Reason() string {
	if s.available {
		return ""
	}
	if s.reason == "" {
		return ErrScorerUnavailable.Error()
	}
	return s.reason
}

// Ptr returns a pointer to the value, or nil when unavailable.
func (s LearnedScore) Ptr() *float64 {
	if !s.available {
		return nil
	}
	v := s.value
	return &v
}

// MarshalJSON encodes the score as a number, or null when unavailable.
func (s LearnedScore) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Ptr())
}

// TextPairScorer produces a learned score for a resume and job text pair.
// Implementations never fail; problems surface as an unavailable score.
type TextPairScorer interface {
	Score(ctx context.Context, resumeText, jobText string) LearnedScore
}

// Predictor is a trained text regression model that maps a single input text
// to a value that is expected to lie in [0, 1].
type Predictor interface {
	Predict(ctx context.Context, text string) (float64, error)
}

// Scale clamps a raw prediction to [0, 1] and converts it to a percentage
// rounded to two decimals.
func Scale(raw float64) float64 {
	clamped := math.Max(0, math.Min(1, raw))
	return math.Round(clamped*100*100) / 100
}
