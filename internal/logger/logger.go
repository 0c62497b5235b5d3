package logger

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new zap logger. Both configs write to stderr, which is
// where PostgreSQL collects archive and restore command output.
func New(development bool) (*zap.Logger, error) {
	var cfg zap.Config

	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	}

	return cfg.Build()
}

// Must creates a logger or panics
func Must(development bool) *zap.Logger {
	log, err := New(development)
	if err != nil {
		panic(err)
	}
	return log
}

// ForOperation tags every line with the command name and a fresh
// operation id, so concurrent invocations can be told apart in the
// server log.
func ForOperation(log *zap.Logger, operation string) *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return log.With(
		zap.String("operation", operation),
		zap.String("op_id", uuid.NewString()),
	)
}
