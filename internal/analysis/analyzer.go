package analysis

import (
	"context"
	"unicode/utf8"

	"github.com/U-Jay-git/ResumeRise/internal/matching"
	"github.com/U-Jay-git/ResumeRise/internal/report"
	"github.com/U-Jay-git/ResumeRise/internal/scoring"
	"github.com/U-Jay-git/ResumeRise/internal/taxonomy"
	"github.com/U-Jay-git/ResumeRise/internal/utils"
	"go.uber.org/zap"
)

const defaultMaxLogLength = 200

// Recorder receives the overlap score of every finished analysis.
type Recorder interface {
	ObserveAnalysis(score int)
}

// Request is a single resume/job pair to analyze.
type Request struct {
	ResumeText string
	JobText    string
	// Breakdown overrides the analyzer default when set.
	Breakdown *bool
}

// Config configures an Analyzer.
type Config struct {
	Taxonomy     *taxonomy.Taxonomy
	Scorer       scoring.TextPairScorer
	Recorder     Recorder
	Logger       *zap.Logger
	Breakdown    bool
	MaxLogLength int
}

// Analyzer runs skill extraction, comparison and learned scoring for a
// resume/job pair. It holds no per-request state and is safe for concurrent use.
type Analyzer struct {
	taxonomy  *taxonomy.Taxonomy
	scorer    scoring.TextPairScorer
	recorder  Recorder
	logger    *zap.Logger
	breakdown bool
	maxLogLen int
}

func New(cfg Config) *Analyzer {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Scorer == nil {
		cfg.Scorer = scoring.NewLearned(nil, scoring.Options{Logger: cfg.Logger})
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = defaultMaxLogLength
	}

	return &Analyzer{
		taxonomy:  cfg.Taxonomy,
		scorer:    cfg.Scorer,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger,
		breakdown: cfg.Breakdown,
		maxLogLen: cfg.MaxLogLength,
	}
}

// Analyze never fails: a broken learned scorer only marks the model score as unavailable.
func (a *Analyzer) Analyze(ctx context.Context, req Request) *report.Response {
	a.logger.Debug("analyzing resume against job",
		zap.Int("resume_length", utf8.RuneCountInString(req.ResumeText)),
		zap.Int("job_length", utf8.RuneCountInString(req.JobText)),
		zap.String("resume_preview", utils.TruncateForLog(req.ResumeText, a.maxLogLen)),
		zap.String("job_preview", utils.TruncateForLog(req.JobText, a.maxLogLen)),
	)

	resume := matching.Extract(req.ResumeText, a.taxonomy)
	job := matching.Extract(req.JobText, a.taxonomy)
	cmp := matching.Compare(resume, job)

	learned := a.scorer.Score(ctx, req.ResumeText, req.JobText)

	breakdown := a.breakdown
	if req.Breakdown != nil {
		breakdown = *req.Breakdown
	}

	resp := report.Assemble(cmp, resume, job, learned, report.Options{Breakdown: breakdown})

	fields := []zap.Field{
		zap.Int("overlap_score", cmp.Score),
		zap.Int("required", cmp.TotalRequired),
		zap.Int("matched", cmp.TotalMatched),
		zap.Bool("model_available", resp.ModelAvailable),
	}
	if v, ok := learned.Value(); ok {
		fields = append(fields, zap.Float64("model_score", v))
	}
	a.logger.Info("analysis finished", fields...)

	if a.recorder != nil {
		a.recorder.ObserveAnalysis(cmp.Score)
	}

	return resp
}
