package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/anonymize"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/skills"
)

// Bias flags, in the order they are appended
const (
	FlagLowSkillMatch = "Low skill match"
	FlagLowExperience = "Less than 1 year experience"
)

const (
	// ExperienceCapYears is the number of years after which experience stops adding score
	ExperienceCapYears = 10
	// minExperienceYears is the threshold below which FlagLowExperience is raised
	minExperienceYears = 1
)

// Scorer scores one resume against a job
type Scorer interface {
	Score(ctx context.Context, resumeText string, job models.JobRequirement, experienceYears float64) (models.ScoredCandidate, error)
}

// Config holds the scoring policy
type Config struct {
	SkillWeight       float64 `mapstructure:"skill_weight"`
	ExperienceWeight  float64 `mapstructure:"experience_weight"`
	LowSkillThreshold int     `mapstructure:"low_skill_threshold"`
}

// DefaultConfig returns the standard 0.7 / 0.3 weighting
func DefaultConfig() Config {
	return Config{
		SkillWeight:       0.7,
		ExperienceWeight:  0.3,
		LowSkillThreshold: 50,
	}
}

// Validate checks that the weights are usable
func (c Config) Validate() error {
	if c.SkillWeight < 0 || c.ExperienceWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if sum := c.SkillWeight + c.ExperienceWeight; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("scoring weights must sum to 1, got %.2f", sum)
	}
	if c.LowSkillThreshold < 0 || c.LowSkillThreshold > 100 {
		return fmt.Errorf("low skill threshold must be within 0-100, got %d", c.LowSkillThreshold)
	}
	return nil
}

// HeuristicScorer is the deterministic, offline scorer
type HeuristicScorer struct {
	cfg      Config
	redactor *anonymize.Redactor
}

// NewHeuristicScorer creates a heuristic scorer. A nil redactor uses
// line-label redaction.
func NewHeuristicScorer(cfg Config, redactor *anonymize.Redactor) *HeuristicScorer {
	if redactor == nil {
		redactor, _ = anonymize.New(anonymize.ModeLabels)
	}
	return &HeuristicScorer{
		cfg:      cfg,
		redactor: redactor,
	}
}

// Score implements Scorer. It never returns an error.
func (s *HeuristicScorer) Score(_ context.Context, resumeText string, job models.JobRequirement, experienceYears float64) (models.ScoredCandidate, error) {
	return s.Evaluate(resumeText, job, experienceYears), nil
}

// Evaluate scores a resume without a context
func (s *HeuristicScorer) Evaluate(resumeText string, job models.JobRequirement, experienceYears float64) models.ScoredCandidate {
	match := skills.Match(resumeText, job.Skills)

	skillScore := SkillMatchScore(len(match.Matched), len(job.Skills))
	expScore := ExperienceScore(experienceYears)

	return models.ScoredCandidate{
		SkillMatchScore:      skillScore,
		ExperienceScore:      expScore,
		TotalScore:           s.TotalScore(skillScore, expScore),
		MatchedSkills:        match.Matched,
		MissingSkills:        match.Missing,
		BiasFlags:            s.BiasFlags(skillScore, experienceYears),
		AnonymizedResumeText: s.redactor.Redact(resumeText),
	}
}

// TotalScore combines the two component scores with the configured weights
func (s *HeuristicScorer) TotalScore(skillScore, experienceScore int) int {
	total := roundInt(float64(skillScore)*s.cfg.SkillWeight + float64(experienceScore)*s.cfg.ExperienceWeight)
	return clamp(total, 0, 100)
}

// BiasFlags returns the review warnings for a candidate. The skill flag
// always precedes the experience flag.
func (s *HeuristicScorer) BiasFlags(skillScore int, experienceYears float64) []string {
	flags := []string{}
	if skillScore < s.cfg.LowSkillThreshold {
		flags = append(flags, FlagLowSkillMatch)
	}
	if experienceYears < minExperienceYears {
		flags = append(flags, FlagLowExperience)
	}
	return flags
}

// SkillMatchScore returns round(100 * matched / total), or 0 when the job
// lists no skills.
func SkillMatchScore(matched, total int) int {
	if total <= 0 {
		return 0
	}
	return clamp(roundInt(100*float64(matched)/float64(total)), 0, 100)
}

// ExperienceScore gives 10 points per whole year of experience, capped at
// ExperienceCapYears. Fractional years are truncated before scoring, so 2.5
// years scores 20 rather than 25 and the result is always a multiple of 10.
func ExperienceScore(years float64) int {
	if years <= 0 || math.IsNaN(years) {
		return 0
	}
	whole := int(math.Min(math.Floor(years), ExperienceCapYears))
	return whole * (100 / ExperienceCapYears)
}

// roundInt rounds half away from zero
func roundInt(v float64) int {
	return int(math.Round(v))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
