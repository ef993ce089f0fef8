package analysis

import (
	"context"
	"reflect"
	"testing"

	"github.com/U-Jay-git/ResumeRise/internal/scoring"
	"github.com/U-Jay-git/ResumeRise/internal/taxonomy"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubScorer struct {
	score  scoring.LearnedScore
	resume string
	job    string
}

func (s *stubScorer) Score(_ context.Context, resumeText, jobText string) scoring.LearnedScore {
	s.resume = resumeText
	s.job = jobText
	return s.score
}

type stubRecorder struct {
	scores []int
}

func (s *stubRecorder) ObserveAnalysis(score int) {
	s.scores = append(s.scores, score)
}

func testTaxonomy(t *testing.T) *taxonomy.Taxonomy {
	t.Helper()

	tax, err := taxonomy.Parse([]byte(`{"Languages": ["Python", "Java"], "Web": ["React"]}`))
	if err != nil {
		t.Fatalf("parsing taxonomy: %v", err)
	}
	return tax
}

func TestAnalyze(t *testing.T) {
	scorer := &stubScorer{score: scoring.Available(64.5)}
	recorder := &stubRecorder{}
	core, logs := observer.New(zapcore.InfoLevel)

	a := New(Config{
		Taxonomy:  testTaxonomy(t),
		Scorer:    scorer,
		Recorder:  recorder,
		Logger:    zap.New(core),
		Breakdown: true,
	})

	resp := a.Analyze(context.Background(), Request{
		ResumeText: "I know Python and React",
		JobText:    "Need Python, Java, React developer",
	})

	if resp.OverlapScore != 66 {
		t.Fatalf("expected overlap score 66, got %d", resp.OverlapScore)
	}
	if resp.ModelScore == nil || *resp.ModelScore != 64.5 {
		t.Fatalf("unexpected model score: %v", resp.ModelScore)
	}
	if !reflect.DeepEqual(resp.MissingSkills, []string{"java"}) {
		t.Fatalf("unexpected missing skills: %v", resp.MissingSkills)
	}
	if resp.Breakdown == nil {
		t.Fatalf("expected breakdown")
	}
	expectMatched := map[string][]string{"Languages": {"python"}, "Web": {"react"}}
	if !reflect.DeepEqual(resp.Matched, expectMatched) {
		t.Fatalf("unexpected matched breakdown: %v", resp.Matched)
	}
	expectMissing := map[string][]string{"Languages": {"java"}}
	if !reflect.DeepEqual(resp.Missing, expectMissing) {
		t.Fatalf("unexpected missing breakdown: %v", resp.Missing)
	}

	if scorer.resume != "I know Python and React" || scorer.job != "Need Python, Java, React developer" {
		t.Fatalf("scorer received unexpected texts: %q / %q", scorer.resume, scorer.job)
	}

	if !reflect.DeepEqual(recorder.scores, []int{66}) {
		t.Fatalf("unexpected recorded scores: %v", recorder.scores)
	}

	entries := logs.FilterMessage("analysis finished").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["overlap_score"] != int64(66) {
		t.Fatalf("unexpected logged score: %v", entries[0].ContextMap()["overlap_score"])
	}
}

func TestAnalyzeBreakdownOverride(t *testing.T) {
	a := New(Config{Taxonomy: testTaxonomy(t), Breakdown: true})

	off := false
	resp := a.Analyze(context.Background(), Request{ResumeText: "Python", JobText: "Python", Breakdown: &off})
	if resp.Breakdown != nil {
		t.Fatalf("expected breakdown to be disabled by request")
	}
}

func TestAnalyzeWithoutScorer(t *testing.T) {
	a := New(Config{Taxonomy: testTaxonomy(t)})

	resp := a.Analyze(context.Background(), Request{ResumeText: "", JobText: "Python and React"})

	if resp.ModelAvailable || resp.ModelScore != nil {
		t.Fatalf("expected model score to be unavailable")
	}
	if resp.OverlapScore != 0 {
		t.Fatalf("expected zero overlap, got %d", resp.OverlapScore)
	}
	if !reflect.DeepEqual(resp.MissingSkills, []string{"python", "react"}) {
		t.Fatalf("unexpected missing skills: %v", resp.MissingSkills)
	}
	if len(resp.MatchedSkills) != 0 {
		t.Fatalf("expected no matched skills, got %v", resp.MatchedSkills)
	}
}
