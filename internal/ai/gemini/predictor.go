package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/U-Jay-git/ResumeRise/internal/scoring"
	"github.com/U-Jay-git/ResumeRise/internal/utils"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

//go:embed prompt.md
var systemPrompt string

const defaultMaxLogLength = 200

// Assessment is the decoded model reply.
type Assessment struct {
	Score  float64 `mapstructure:"score"`
	Reason string  `mapstructure:"reason"`
}

// Predictor asks Gemini to estimate the overlap between a resume and a job.
// It satisfies scoring.Predictor.
type Predictor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewPredictor(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Predictor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Predictor{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Predict returns the model score in [0, 1] for the joined resume/job text.
func (p *Predictor) Predict(ctx context.Context, text string) (float64, error) {
	if p == nil || p.generator == nil {
		return 0, errors.New("gemini predictor is not initialized")
	}

	message := buildMessage(text)

	p.logger.Debug("gemini generate content request",
		zap.Int("message_length", utf8.RuneCountInString(message)),
		zap.String("message_preview", utils.TruncateForLog(message, p.maxLogLen)),
	)

	raw, err := p.generator.GenerateContent(ctx, systemPrompt, message)
	if err != nil {
		return 0, err
	}

	p.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, p.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return 0, err
	}

	p.logger.Debug("gemini assessment", zap.Float64("score", assessment.Score), zap.String("reason", assessment.Reason))

	return assessment.Score, nil
}

// ModelID identifies the underlying model for cache keys and logs.
func (p *Predictor) ModelID() string {
	if p == nil || p.generator == nil {
		return ""
	}
	return "gemini:" + p.generator.Model()
}

// buildMessage splits the model input at the last separator, which is the one
// the learned scorer appended after the resume.
func buildMessage(text string) string {
	i := strings.LastIndex(text, scoring.Separator)
	if i < 0 {
		return "Resume and job description:\n" + text
	}
	resume, job := text[:i], text[i+len(scoring.Separator):]
	return "Resume:\n" + resume + "\n\nJob description:\n" + job
}

func parseResponse(raw string) (*Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	if v, ok := data["score"]; !ok || v == nil {
		return nil, errors.New("gemini response has no score")
	}

	var assessment Assessment
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &assessment,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	// Percentages are accepted and brought back to a ratio.
	if assessment.Score > 1 && assessment.Score <= 100 {
		assessment.Score /= 100
	}
	assessment.Reason = strings.TrimSpace(assessment.Reason)

	return &assessment, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
