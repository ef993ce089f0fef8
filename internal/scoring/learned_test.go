package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubPredictor struct {
	value     float64
	err       error
	panicWith any
	delay     time.Duration
	lastInput string
	calls     int
}

func (s *stubPredictor) Predict(ctx context.Context, text string) (float64, error) {
	s.calls++
	s.lastInput = text
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.value, s.err
}

type memoryCache struct {
	mu     sync.Mutex
	values map[string]float64
	getErr error
}

func (m *memoryCache) Get(_ context.Context, key string) (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]float64)
	}
	m.values[key] = value
	return nil
}

type recordingObserver struct {
	outcomes []string
}

func (r *recordingObserver) ObserveLearned(outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}

func TestLearnedScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		predictor *stubPredictor
		available bool
		expect    float64
	}{
		{name: "scales to percentage", predictor: &stubPredictor{value: 0.7125}, available: true, expect: 71.25},
		{name: "rounds to two decimals", predictor: &stubPredictor{value: 0.123456}, available: true, expect: 12.35},
		{name: "clamps above one", predictor: &stubPredictor{value: 1.7}, available: true, expect: 100},
		{name: "clamps below zero", predictor: &stubPredictor{value: -0.3}, available: true, expect: 0},
		{name: "error is unavailable", predictor: &stubPredictor{err: errors.New("boom")}},
		{name: "nan is unavailable", predictor: &stubPredictor{value: math.NaN()}},
		{name: "inf is unavailable", predictor: &stubPredictor{value: math.Inf(1)}},
		{name: "panic is unavailable", predictor: &stubPredictor{panicWith: "corrupt weights"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			scorer := NewLearned(tt.predictor, Options{})
			score := scorer.Score(context.Background(), "resume", "job")

			v, ok := score.Value()
			if ok != tt.available {
				t.Fatalf("expected available=%v, got %v (reason %q)", tt.available, ok, score.Reason())
			}
			if ok && v != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, v)
			}
			if !ok && score.Reason() == "" {
				t.Fatalf("expected a reason for unavailable score")
			}
		})
	}
}

func TestLearnedJoinsTextsWithSeparator(t *testing.T) {
	stub := &stubPredictor{value: 0.5}
	NewLearned(stub, Options{}).Score(context.Background(), "python dev", "need python")

	if stub.lastInput != "python dev [SEP] need python" {
		t.Fatalf("unexpected model input: %q", stub.lastInput)
	}
}

func TestLearnedWithoutPredictor(t *testing.T) {
	obs := &recordingObserver{}
	scorer := NewLearned(nil, Options{Observer: obs})

	if scorer.Enabled() {
		t.Fatalf("expected scorer to be disabled")
	}

	score := scorer.Score(context.Background(), "a", "b")
	if score.IsAvailable() {
		t.Fatalf("expected unavailable score")
	}
	if score.Reason() != ErrScorerUnavailable.Error() {
		t.Fatalf("unexpected reason: %q", score.Reason())
	}
	if len(obs.outcomes) != 1 || obs.outcomes[0] != OutcomeUnavailable {
		t.Fatalf("unexpected outcomes: %v", obs.outcomes)
	}
}

func TestLearnedTimeout(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	obs := &recordingObserver{}
	stub := &stubPredictor{value: 0.9, delay: 200 * time.Millisecond}

	scorer := NewLearned(stub, Options{
		Timeout:  10 * time.Millisecond,
		Observer: obs,
		Logger:   zap.New(core),
	})

	score := scorer.Score(context.Background(), "a", "b")
	if score.IsAvailable() {
		t.Fatalf("expected timeout to produce unavailable score")
	}
	if len(obs.outcomes) != 1 || obs.outcomes[0] != OutcomeTimeout {
		t.Fatalf("unexpected outcomes: %v", obs.outcomes)
	}
	if logs.FilterMessage("learned scorer failed").Len() != 1 {
		t.Fatalf("expected a warning to be logged")
	}
}

func TestLearnedUsesCache(t *testing.T) {
	cache := &memoryCache{}
	obs := &recordingObserver{}
	stub := &stubPredictor{value: 0.42}

	scorer := NewLearned(stub, Options{ModelID: "m1", Cache: cache, Observer: obs})

	first := scorer.Score(context.Background(), "resume", "job")
	second := scorer.Score(context.Background(), "resume", "job")

	if stub.calls != 1 {
		t.Fatalf("expected a single prediction, got %d", stub.calls)
	}

	v1, _ := first.Value()
	v2, ok := second.Value()
	if !ok || v1 != v2 || v2 != 42 {
		t.Fatalf("unexpected cached value: %v %v", v1, v2)
	}

	if len(obs.outcomes) != 2 || obs.outcomes[0] != OutcomeOK || obs.outcomes[1] != OutcomeCached {
		t.Fatalf("unexpected outcomes: %v", obs.outcomes)
	}

	other := NewLearned(stub, Options{ModelID: "m2", Cache: cache})
	other.Score(context.Background(), "resume", "job")
	if stub.calls != 2 {
		t.Fatalf("expected cache keys to depend on the model id")
	}
}

func TestLearnedIgnoresCacheErrors(t *testing.T) {
	cache := &memoryCache{getErr: errors.New("connection refused")}
	stub := &stubPredictor{value: 0.5}

	score := NewLearned(stub, Options{Cache: cache}).Score(context.Background(), "a", "b")
	if v, ok := score.Value(); !ok || v != 50 {
		t.Fatalf("expected prediction despite cache failure, got %v %v", v, ok)
	}
}

func TestLearnedRejectsOutOfRangeCache(t *testing.T) {
	for _, cached := range []float64{250, -1, math.NaN(), math.Inf(1)} {
		stub := &stubPredictor{value: 0.5}
		scorer := NewLearned(stub, Options{ModelID: "m1"})
		cache := &memoryCache{values: map[string]float64{
			scorer.cacheKey("resume" + Separator + "job"): cached,
		}}
		scorer.cache = cache

		score := scorer.Score(context.Background(), "resume", "job")
		if v, ok := score.Value(); !ok || v != 50 {
			t.Fatalf("cached %v: expected fresh prediction of 50, got %v %v", cached, v, ok)
		}
		if stub.calls != 1 {
			t.Fatalf("cached %v: expected the model to be called", cached)
		}
		if got := cache.values[scorer.cacheKey("resume"+Separator+"job")]; got != 50 {
			t.Fatalf("cached %v: expected cache entry to be replaced, got %v", cached, got)
		}
	}
}

func TestLearnedScoreJSON(t *testing.T) {
	data, err := json.Marshal(map[string]LearnedScore{
		"present": Available(12.5),
		"absent":  Unavailable("no model"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(data) != `{"absent":null,"present":12.5}` {
		t.Fatalf("unexpected json: %s", data)
	}
}

func TestNilLearnedIsUnavailable(t *testing.T) {
	var scorer *Learned
	if scorer.Score(context.Background(), "a", "b").IsAvailable() {
		t.Fatalf("expected nil scorer to be unavailable")
	}
}
