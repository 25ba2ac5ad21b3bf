// Package logger builds the zap loggers used across the screener.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Structured field keys shared by every component
const (
	FieldRunID     = "run_id"
	FieldCandidate = "candidate"
	FieldJobID     = "job_id"
	FieldFile      = "file"
	FieldProvider  = "scoring_provider"
)

// New builds a logger writing to stderr so command output on stdout stays
// machine-readable.
func New(json bool, debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}
	return cfg.Build()
}

// OrNop returns l, or a no-op logger when l is nil
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// WithRun attaches the screening run and job identifiers to the logger.
// Empty values are skipped.
func WithRun(l *zap.Logger, runID string, jobID int) *zap.Logger {
	l = OrNop(l)
	fields := make([]zap.Field, 0, 2)
	if strings.TrimSpace(runID) != "" {
		fields = append(fields, zap.String(FieldRunID, runID))
	}
	if jobID > 0 {
		fields = append(fields, zap.Int(FieldJobID, jobID))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
