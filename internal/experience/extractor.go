// Package experience infers total years of professional experience from
// free resume text using a fixed set of textual heuristics.
package experience

import (
	"time"

	"go.uber.org/zap"
)

// DefaultMaxYears is the largest year count treated as plausible
const DefaultMaxYears = 50

// Extractor evaluates its rules independently and keeps the largest
// plausible value. It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	rules    []Rule
	maxYears int
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithRules replaces the default rule set
func WithRules(rules ...Rule) Option {
	return func(e *Extractor) { e.rules = rules }
}

// WithMaxYears sets the upper bound of the plausible range
func WithMaxYears(maxYears int) Option {
	return func(e *Extractor) {
		if maxYears > 0 {
			e.maxYears = maxYears
		}
	}
}

// WithClock sets the source of the current year for "present" and "since" phrasing
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithLogger attaches a logger for per-rule debug output
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// New creates an Extractor with the default rules
func New(opts ...Option) *Extractor {
	e := &Extractor{
		rules:    DefaultRules(),
		maxYears: DefaultMaxYears,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractYears returns the maximum year count found by any rule within
// [0, maxYears], or 0 when nothing plausible is found.
func (e *Extractor) ExtractYears(text string) int {
	if text == "" {
		return 0
	}

	now := e.now()
	best := 0
	for _, rule := range e.rules {
		for _, years := range rule.Candidates(text, now) {
			if years < 0 || years > e.maxYears {
				e.logger.Debug("discarding implausible experience value",
					zap.String("rule", rule.Name()),
					zap.Int("years", years),
				)
				continue
			}
			if years > best {
				best = years
			}
		}
	}

	return best
}
