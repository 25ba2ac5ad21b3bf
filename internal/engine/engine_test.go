package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var job = models.JobRequirement{Title: "Data Engineer", Skills: []string{"Python", "SQL", "Docker"}}

func fixedClock() time.Time {
	return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(DefaultConfig(), append([]Option{WithClock(fixedClock)}, opts...)...)
	require.NoError(t, err)
	return e
}

func TestScoreBatch_Example(t *testing.T) {
	e := newTestEngine(t)

	batch, err := e.ScoreBatch(context.Background(), []string{"I know Python and SQL well."}, job, []float64{2})
	require.NoError(t, err)
	require.Len(t, batch, 1)

	c := batch[0]
	assert.Equal(t, "Candidate #1", c.Label)
	assert.Equal(t, 67, c.SkillMatchScore)
	assert.Equal(t, 20, c.ExperienceScore)
	assert.Equal(t, 53, c.TotalScore)
	assert.Equal(t, []string{"Python", "SQL"}, c.MatchedSkills)
	assert.Equal(t, []string{"Docker"}, c.MissingSkills)
	assert.Empty(t, c.BiasFlags)
}

func TestScoreBatch_RanksAndLabels(t *testing.T) {
	e := newTestEngine(t)
	resumes := []string{
		"Nothing relevant",
		"Python only",
		"Python, SQL and Docker",
		"Docker only",
	}

	batch, err := e.ScoreBatch(context.Background(), resumes, job, []float64{10, 0, 3, 0})
	require.NoError(t, err)
	require.Len(t, batch, 4)

	// Python-only and Docker-only tie and keep input order. The candidate with
	// no skill match goes last even though its total is higher than theirs.
	assert.Equal(t, []string{"Python", "SQL", "Docker"}, batch[0].MatchedSkills)
	assert.Equal(t, []string{"Python"}, batch[1].MatchedSkills)
	assert.Equal(t, 23, batch[1].TotalScore)
	assert.Equal(t, []string{"Docker"}, batch[2].MatchedSkills)
	assert.Equal(t, 23, batch[2].TotalScore)
	assert.Equal(t, 0, batch[3].SkillMatchScore)
	assert.Equal(t, 30, batch[3].TotalScore)

	for i, c := range batch {
		assert.Equal(t, models.CandidateLabel(i), c.Label)
	}
}

func TestScoreBatch_InfersExperience(t *testing.T) {
	e := newTestEngine(t)

	batch, err := e.ScoreBatch(context.Background(), []string{"Python developer since 2020"}, job, nil)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, 60, batch[0].ExperienceScore)
}

func TestScoreBatch_LengthMismatch(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.ScoreBatch(context.Background(), []string{"a", "b"}, job, []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestScoreBatch_Empty(t *testing.T) {
	e := newTestEngine(t)

	batch, err := e.ScoreBatch(context.Background(), nil, job, nil)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestScoreBatch_InvalidJob(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.ScoreBatch(context.Background(), []string{"x"}, models.JobRequirement{RequiredYearsExperience: -1}, nil)
	assert.Error(t, err)
}

type failingScorer struct {
	calls atomic.Int32
}

func (f *failingScorer) Score(context.Context, string, models.JobRequirement, float64) (models.ScoredCandidate, error) {
	f.calls.Add(1)
	return models.ScoredCandidate{}, errors.New("backend down")
}

func TestScoreCandidates_ContainsScorerFailures(t *testing.T) {
	s := &failingScorer{}
	e := newTestEngine(t, WithScorer(s))

	inputs := []models.CandidateInput{
		{Label: "a.pdf", ResumeText: "Python and SQL", ExperienceYears: 2, SourcePath: "/tmp/a.pdf"},
		{Label: "b.pdf", ResumeText: "Docker", ExperienceYears: 1},
	}
	batch, err := e.ScoreCandidates(context.Background(), inputs, job)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	assert.Equal(t, int32(2), s.calls.Load())
	assert.Equal(t, 53, batch[0].TotalScore)
	assert.Equal(t, "/tmp/a.pdf", batch[0].SourcePath)
}

func TestScoreCandidates_Cancelled(t *testing.T) {
	e := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ScoreCandidates(ctx, []models.CandidateInput{{ResumeText: "Python"}}, job)
	assert.ErrorIs(t, err, context.Canceled)
}

type stubGenerator struct{}

func (stubGenerator) GenerateContent(context.Context, string) (string, error) {
	return `{"skill_match_score": 100, "experience_score": 100, "reasoning": "ideal"}`, nil
}

func TestNew_Providers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderVertex
	_, err := New(cfg)
	assert.Error(t, err, "vertex without a client must fail")

	e, err := New(cfg, WithGenerator(stubGenerator{}))
	require.NoError(t, err)
	batch, err := e.ScoreBatch(context.Background(), []string{"Python"}, job, []float64{1})
	require.NoError(t, err)
	assert.Equal(t, 100, batch[0].TotalScore)
	assert.Equal(t, "ideal", batch[0].Reasoning)

	cfg.Provider = "openai"
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scoring = scoring.Config{SkillWeight: 2, ExperienceWeight: 0}
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Anonymization = "strict"
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestNew_AggressiveAnonymization(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Anonymization = "aggressive"
	e, err := New(cfg)
	require.NoError(t, err)

	batch, err := e.ScoreBatch(context.Background(), []string{"Alice knows Python"}, job, []float64{1})
	require.NoError(t, err)
	assert.Equal(t, "[REDACTED] knows [REDACTED]", batch[0].AnonymizedResumeText)
}
