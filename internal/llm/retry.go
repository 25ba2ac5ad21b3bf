// Package llm talks to hosted language models.
package llm

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	maxRetries   = 3
	retryBackoff = 10 * time.Second
)

// Generator produces text for a prompt
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// RetryingGenerator retries rate-limited calls with linear backoff
type RetryingGenerator struct {
	next       Generator
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// WithRetry wraps next with the default retry policy
func WithRetry(next Generator, logger *zap.Logger) *RetryingGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingGenerator{
		next:       next,
		maxRetries: maxRetries,
		backoff:    retryBackoff,
		logger:     logger,
	}
}

// GenerateContent implements Generator. Only rate-limit errors are retried.
func (r *RetryingGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			wait := r.backoff * time.Duration(attempt)
			r.logger.Warn("rate limited, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(lastErr),
			)
			if err := waitFor(ctx, wait); err != nil {
				return "", err
			}
		}

		out, err := r.next.GenerateContent(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if !IsRateLimitError(err) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

// IsRateLimitError reports whether err looks like a quota or throttling error
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "resourceexhausted") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota")
}

func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
