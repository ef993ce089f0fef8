package scoring

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// Separator joins the resume and job text into a single model input.
const Separator = " [SEP] "

const defaultTimeout = 2 * time.Second

// Cache stores learned scores keyed by a digest of the model input.
type Cache interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, value float64) error
}

// Observer receives the outcome of every learned scoring attempt.
type Observer interface {
	ObserveLearned(outcome string, d time.Duration)
}

// Outcomes reported to the Observer.
const (
	OutcomeOK          = "ok"
	OutcomeCached      = "cached"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
	OutcomeTimeout     = "timeout"
	OutcomeInvalid     = "invalid"
)

// Options configures a Learned scorer.
type Options struct {
	// ModelID distinguishes cache entries produced by different models.
	ModelID  string
	Timeout  time.Duration
	Cache    Cache
	Observer Observer
	Logger   *zap.Logger
}

// Learned adapts a Predictor to the TextPairScorer contract.
type Learned struct {
	predictor Predictor
	modelID   string
	timeout   time.Duration
	cache     Cache
	observer  Observer
	logger    *zap.Logger
}

// NewLearned returns a scorer backed by predictor. A nil predictor yields a
// scorer that always reports unavailable.
func NewLearned(predictor Predictor, opts Options) *Learned {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Learned{
		predictor: predictor,
		modelID:   opts.ModelID,
		timeout:   opts.Timeout,
		cache:     opts.Cache,
		observer:  opts.Observer,
		logger:    opts.Logger,
	}
}

// Enabled reports whether a predictor is configured.
func (l *Learned) Enabled() bool {
	return l != nil && l.predictor != nil
}

// Score implements TextPairScorer.
func (l *Learned) Score(ctx context.Context, resumeText, jobText string) LearnedScore {
	start := time.Now()

	if !l.Enabled() {
		l.observe(OutcomeUnavailable, start)
		return Unavailable(ErrScorerUnavailable.Error())
	}

	input := resumeText + Separator + jobText
	key := l.cacheKey(input)

	if l.cache != nil {
		v, ok, err := l.cache.Get(ctx, key)
		switch {
		case err != nil:
			l.logger.Warn("reading learned score from cache", zap.Error(err))
		case ok && !validScore(v):
			l.logger.Warn("ignoring out of range learned score from cache", zap.Float64("cached", v))
		case ok:
			l.observe(OutcomeCached, start)
			return Available(v)
		}
	}

	raw, err := l.predict(ctx, input)
	if err != nil {
		outcome := OutcomeError
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			outcome = OutcomeTimeout
		}
		l.logger.Warn("learned scorer failed", zap.Error(err), zap.String("outcome", outcome))
		l.observe(outcome, start)
		return Unavailable(err.Error())
	}

	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		l.logger.Warn("learned scorer returned a non-finite value", zap.Float64("raw", raw))
		l.observe(OutcomeInvalid, start)
		return Unavailable("model returned a non-finite value")
	}

	score := Scale(raw)
	l.logger.Debug("learned score computed",
		zap.Float64("raw", raw),
		zap.Float64("score", score),
		zap.Duration("duration", time.Since(start)),
	)

	if l.cache != nil {
		if err := l.cache.Set(ctx, key, score); err != nil {
			l.logger.Warn("storing learned score in cache", zap.Error(err))
		}
	}

	l.observe(OutcomeOK, start)
	return Available(score)
}

type prediction struct {
	value float64
	err   error
}

// predict runs the model under the configured deadline and turns panics into errors.
func (l *Learned) predict(ctx context.Context, input string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	done := make(chan prediction, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- prediction{err: fmt.Errorf("model panicked: %v", r)}
			}
		}()
		v, err := l.predictor.Predict(ctx, input)
		done <- prediction{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case p := <-done:
		return p.value, p.err
	}
}

// validScore reports whether v is a finite percentage.
func validScore(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= 100
}

func (l *Learned) cacheKey(input string) string {
	sum := sha256.Sum256([]byte(l.modelID + "\x00" + input))
	return hex.EncodeToString(sum[:])
}

func (l *Learned) observe(outcome string, start time.Time) {
	if l == nil || l.observer == nil {
		return
	}
	l.observer.ObserveLearned(outcome, time.Since(start))
}
