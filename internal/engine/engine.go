// Package engine scores and ranks a batch of resumes against one job.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/anonymize"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/experience"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/logger"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/ranking"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/scoring"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Scoring providers
const (
	ProviderHeuristic = "heuristic"
	ProviderVertex    = "vertex"
)

// ErrLengthMismatch is returned when resume texts and experience values are not parallel
var ErrLengthMismatch = errors.New("resume texts and experience values differ in length")

// Config holds the engine policy
type Config struct {
	Scoring            scoring.Config
	Provider           string
	Anonymization      anonymize.Mode
	MaxExperienceYears int
	Workers            int
}

// DefaultConfig returns the heuristic engine configuration
func DefaultConfig() Config {
	return Config{
		Scoring:            scoring.DefaultConfig(),
		Provider:           ProviderHeuristic,
		Anonymization:      anonymize.ModeLabels,
		MaxExperienceYears: experience.DefaultMaxYears,
		Workers:            4,
	}
}

// Engine scores batches. It is safe for concurrent use.
type Engine struct {
	scorer    scoring.Scorer
	fallback  *scoring.HeuristicScorer
	extractor *experience.Extractor
	workers   int
	logger    *zap.Logger

	generator scoring.ContentGenerator
	clock     func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithGenerator supplies the LLM client used by the vertex provider
func WithGenerator(gen scoring.ContentGenerator) Option {
	return func(e *Engine) { e.generator = gen }
}

// WithScorer overrides the configured scorer
func WithScorer(s scoring.Scorer) Option {
	return func(e *Engine) { e.scorer = s }
}

// WithLogger attaches a logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger.OrNop(l) }
}

// WithClock sets the clock used for "present"-style experience phrasing
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.clock = now }
}

// New creates an engine from cfg
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Scoring.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	redactor, err := anonymize.New(cfg.Anonymization)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		fallback: scoring.NewHeuristicScorer(cfg.Scoring, redactor),
		workers:  cfg.Workers,
		logger:   zap.NewNop(),
		clock:    time.Now,
	}
	if e.workers < 1 {
		e.workers = 1
	}
	for _, opt := range opts {
		opt(e)
	}

	e.extractor = experience.New(
		experience.WithMaxYears(cfg.MaxExperienceYears),
		experience.WithClock(e.clock),
		experience.WithLogger(e.logger),
	)

	if e.scorer == nil {
		switch cfg.Provider {
		case "", ProviderHeuristic:
			e.scorer = e.fallback
		case ProviderVertex:
			if e.generator == nil {
				return nil, fmt.Errorf("scoring provider %q needs an LLM client", cfg.Provider)
			}
			e.scorer = scoring.NewLLMScorer(e.generator, e.fallback, e.logger)
		default:
			return nil, fmt.Errorf("unknown scoring provider: %q", cfg.Provider)
		}
	}

	return e, nil
}

// ExtractYears infers years of experience from resume text
func (e *Engine) ExtractYears(text string) int {
	return e.extractor.ExtractYears(text)
}

// ScoreBatch scores parallel lists of resume texts and experience values and
// returns the ranked batch. A nil experience slice infers every value from
// its resume text.
func (e *Engine) ScoreBatch(ctx context.Context, resumeTexts []string, job models.JobRequirement, experienceYears []float64) (models.RankedBatch, error) {
	if experienceYears != nil && len(experienceYears) != len(resumeTexts) {
		return nil, fmt.Errorf("%w: %d resumes, %d experience values", ErrLengthMismatch, len(resumeTexts), len(experienceYears))
	}

	inputs := make([]models.CandidateInput, len(resumeTexts))
	for i, text := range resumeTexts {
		inputs[i] = models.CandidateInput{
			Label:      fmt.Sprintf("resume %d", i+1),
			ResumeText: text,
		}
		if experienceYears != nil {
			inputs[i].ExperienceYears = experienceYears[i]
		} else {
			inputs[i].ExperienceYears = float64(e.ExtractYears(text))
		}
	}

	return e.ScoreCandidates(ctx, inputs, job)
}

// ScoreCandidates scores every input in parallel, ranks the results and
// labels them "Candidate #N" by final position.
func (e *Engine) ScoreCandidates(ctx context.Context, inputs []models.CandidateInput, job models.JobRequirement) (models.RankedBatch, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	scored := make([]models.ScoredCandidate, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := e.scorer.Score(gctx, in.ResumeText, job, in.ExperienceYears)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				e.logger.Warn("scorer failed, using heuristic scores",
					zap.String(logger.FieldCandidate, in.Label),
					zap.Error(err),
				)
				c = e.fallback.Evaluate(in.ResumeText, job, in.ExperienceYears)
			}
			c.Label = in.Label
			c.SourcePath = in.SourcePath
			scored[i] = c

			e.logger.Debug("candidate scored",
				zap.String(logger.FieldCandidate, in.Label),
				zap.Int("total_score", c.TotalScore),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := ranking.Rank(scored)
	for i := range ranked {
		ranked[i].Label = models.CandidateLabel(i)
	}
	return ranked, nil
}
