package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/U-Jay-git/ResumeRise/internal/ai/gemini"
	"github.com/U-Jay-git/ResumeRise/internal/analysis"
	"github.com/U-Jay-git/ResumeRise/internal/cache"
	"github.com/U-Jay-git/ResumeRise/internal/logger"
	"github.com/U-Jay-git/ResumeRise/internal/metrics"
	"github.com/U-Jay-git/ResumeRise/internal/scoring"
	"github.com/U-Jay-git/ResumeRise/internal/secrets"
	"github.com/U-Jay-git/ResumeRise/internal/taxonomy"

	"go.uber.org/zap"
)

const (
	providerPipeline = "pipeline"
	providerGemini   = "gemini"

	geminiKeyEnv = "GEMINI_API_KEY"
)

// newAnalyzer loads the taxonomy and wires the learned scorer. A taxonomy
// failure is returned; a scorer failure only disables the model score.
// The returned cleanup releases the cache connection.
func newAnalyzer(ctx context.Context, config *Config, m *metrics.Metrics, log *zap.Logger) (*analysis.Analyzer, func(), error) {
	tax, err := taxonomy.Load(config.Taxonomy)
	if err != nil {
		return nil, nil, err
	}

	log.Info("taxonomy loaded",
		zap.String("path", config.Taxonomy),
		zap.Int("categories", tax.Len()),
		zap.Int("skills", tax.SkillCount()),
	)

	scorer, cleanup := newScorer(ctx, config, m, log)

	cfg := analysis.Config{
		Taxonomy:  tax,
		Scorer:    scorer,
		Logger:    log,
		Breakdown: config.Breakdown,
	}
	if m != nil {
		cfg.Recorder = m
	}
	if config.Model != nil && config.Model.Gemini != nil {
		cfg.MaxLogLength = config.Model.Gemini.MaxLogLength
	}

	return analysis.New(cfg), cleanup, nil
}

func newScorer(ctx context.Context, config *Config, m *metrics.Metrics, log *zap.Logger) (*scoring.Learned, func()) {
	cleanup := func() {}

	opts := scoring.Options{Logger: log}
	if m != nil {
		opts.Observer = m
	}

	model := config.Model
	if model == nil || !model.Enabled {
		log.Info("learned scorer disabled")
		return scoring.NewLearned(nil, opts), cleanup
	}
	opts.Timeout = model.Timeout

	predictor, modelID, err := newPredictor(ctx, model, log)
	if err != nil {
		log.Warn("learned scorer unavailable, model scores will be reported as missing", zap.Error(err))
		return scoring.NewLearned(nil, opts), cleanup
	}

	opts.ModelID = modelID
	opts.Logger = logger.WithScorer(log, model.Provider, modelID)

	if config.Cache != nil && strings.TrimSpace(config.Cache.RedisURL) != "" {
		c, err := cache.New(ctx, config.Cache.RedisURL, config.Cache.TTL)
		if err != nil {
			log.Warn("score cache disabled", zap.Error(err))
		} else {
			opts.Cache = c
			cleanup = func() { _ = c.Close() }
			log.Info("score cache enabled", zap.Duration("ttl", config.Cache.TTL))
		}
	}

	opts.Logger.Info("learned scorer ready")

	return scoring.NewLearned(predictor, opts), cleanup
}

func newPredictor(ctx context.Context, model *ModelConfig, log *zap.Logger) (scoring.Predictor, string, error) {
	provider := strings.TrimSpace(strings.ToLower(model.Provider))

	switch provider {
	case "", providerPipeline:
		p, err := scoring.LoadPipeline(model.Artifact)
		if err != nil {
			return nil, "", err
		}
		id := providerPipeline + ":" + p.Version()
		if p.Version() == "" {
			id = providerPipeline + ":" + model.Artifact
		}
		log.Debug("model artifact loaded", zap.String("artifact", model.Artifact), zap.Int("features", p.Features()))
		return p, id, nil

	case providerGemini:
		if model.Gemini == nil {
			return nil, "", fmt.Errorf("gemini configuration is required when model.provider is gemini")
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: model.Gemini.APIKey,
			File:  model.Gemini.APIKeyFile,
			Env:   geminiKeyEnv,
		})
		if err != nil {
			return nil, "", fmt.Errorf("%w (set model.gemini.api-key-file, %s_MODEL_GEMINI_API_KEY or %s)", err, envPrefix, geminiKeyEnv)
		}

		genLogger := logger.WithScorer(log, providerGemini, model.Gemini.Model).With(
			zap.Int("ai_retry_attempts", model.Gemini.MaxRetries),
		)

		generator, err := gemini.NewGenerator(ctx, apiKey, model.Gemini.Model, model.Gemini.MaxRetries, genLogger)
		if err != nil {
			return nil, "", err
		}

		p := gemini.NewPredictor(generator, model.Gemini.MaxLogLength, genLogger)
		return p, p.ModelID(), nil

	default:
		return nil, "", fmt.Errorf("unsupported model provider: %s", model.Provider)
	}
}
