package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldScorer is the structured log field key for the learned scorer kind.
	FieldScorer = "scorer"
	// FieldModel is the structured log field key for the model identifier.
	FieldModel = "scorer_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches the provided fields to the logger, defaulting to a
// no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ScorerFields describes the learned scorer in use. Empty values are dropped.
func ScorerFields(scorer, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldScorer, Value: scorer},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithScorer attaches the scorer fields to the provided logger.
func WithScorer(logger *zap.Logger, scorer, model string) *zap.Logger {
	return WithFields(logger, ScorerFields(scorer, model)...)
}
