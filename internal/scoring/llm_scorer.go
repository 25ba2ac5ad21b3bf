package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/logger"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/schema"
	"go.uber.org/zap"
)

const (
	maxResumeChars      = 8000
	maxDescriptionChars = 1500
)

// ContentGenerator is the subset of an LLM client the scorer needs
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// llmScores is the JSON document the model must return
type llmScores struct {
	SkillMatchScore float64 `json:"skill_match_score"`
	ExperienceScore float64 `json:"experience_score"`
	Reasoning       string  `json:"reasoning"`
}

// LLMScorer asks a language model for the two component scores and derives
// everything else locally. Any model failure falls back to the heuristic.
type LLMScorer struct {
	gen      ContentGenerator
	fallback *HeuristicScorer
	logger   *zap.Logger
}

// NewLLMScorer creates an LLM-backed scorer
func NewLLMScorer(gen ContentGenerator, fallback *HeuristicScorer, log *zap.Logger) *LLMScorer {
	if fallback == nil {
		fallback = NewHeuristicScorer(DefaultConfig(), nil)
	}
	return &LLMScorer{
		gen:      gen,
		fallback: fallback,
		logger:   logger.OrNop(log),
	}
}

// Score implements Scorer. It only returns an error when ctx is done.
func (s *LLMScorer) Score(ctx context.Context, resumeText string, job models.JobRequirement, experienceYears float64) (models.ScoredCandidate, error) {
	base := s.fallback.Evaluate(resumeText, job, experienceYears)

	prompt := s.buildScoringPrompt(resumeText, job, experienceYears)
	response, err := s.gen.GenerateContent(ctx, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.ScoredCandidate{}, ctxErr
		}
		s.logger.Warn("LLM scoring failed, using heuristic scores", zap.Error(err))
		return base, nil
	}

	scores, err := s.parseScores(response)
	if err != nil {
		s.logger.Warn("invalid LLM response, using heuristic scores",
			zap.Error(err),
			zap.String("response", logger.TruncateForLog(response, 200)),
		)
		return base, nil
	}

	skill := clamp(roundInt(scores.SkillMatchScore), 0, 100)
	exp := clamp(roundInt(scores.ExperienceScore), 0, 100)

	base.SkillMatchScore = skill
	base.ExperienceScore = exp
	base.TotalScore = s.fallback.TotalScore(skill, exp)
	base.BiasFlags = s.fallback.BiasFlags(skill, experienceYears)
	base.Reasoning = strings.TrimSpace(scores.Reasoning)

	return base, nil
}

// buildScoringPrompt creates the prompt for the model. Only the anonymized
// resume is sent.
func (s *LLMScorer) buildScoringPrompt(resumeText string, job models.JobRequirement, experienceYears float64) string {
	var sb strings.Builder

	sb.WriteString("You are screening a resume for a job. Score it strictly and consistently.\n\n")

	sb.WriteString("## JOB\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", job.Title))
	if job.Description != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", truncate(sanitizeUTF8(job.Description), maxDescriptionChars)))
	}
	sb.WriteString(fmt.Sprintf("Required skills: %s\n", strings.Join(job.Skills, "; ")))
	if job.RequiredYearsExperience > 0 {
		sb.WriteString(fmt.Sprintf("Required years of experience: %g\n", job.RequiredYearsExperience))
	}
	sb.WriteString("\n")

	sb.WriteString("## RESUME (anonymized)\n")
	resume := sanitizeUTF8(s.fallback.redactor.Redact(resumeText))
	if len(resume) > maxResumeChars {
		sb.WriteString(truncate(resume, maxResumeChars))
		sb.WriteString("\n[Resume truncated for length]")
	} else {
		sb.WriteString(resume)
	}
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Extracted years of experience: %g\n\n", experienceYears))

	sb.WriteString("## INSTRUCTIONS\n")
	sb.WriteString("Ignore names, gender, age and any other personal attributes.\n")
	sb.WriteString("Return ONLY a JSON object in this format:\n")
	sb.WriteString("{\n")
	sb.WriteString(`  "skill_match_score": <0-100, how well the resume covers the required skills>,` + "\n")
	sb.WriteString(`  "experience_score": <0-100, how well the experience fits the role>,` + "\n")
	sb.WriteString(`  "reasoning": "<two or three sentences>"` + "\n")
	sb.WriteString("}\n")

	return sb.String()
}

// parseScores extracts and validates the JSON object in an LLM response
func (s *LLMScorer) parseScores(response string) (llmScores, error) {
	jsonStr, err := extractJSON(response)
	if err != nil {
		return llmScores{}, err
	}

	if err := schema.Validate(schema.LLMScore, jsonStr); err != nil {
		return llmScores{}, fmt.Errorf("response does not match schema: %w", err)
	}

	var scores llmScores
	if err := json.Unmarshal([]byte(jsonStr), &scores); err != nil {
		return llmScores{}, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return scores, nil
}

// extractJSON returns the outermost JSON object in text, ignoring code fences
// and surrounding prose.
func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	startIdx := strings.Index(text, "{")
	endIdx := strings.LastIndex(text, "}")
	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return "", fmt.Errorf("no JSON found in response")
	}

	return text[startIdx : endIdx+1], nil
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with the replacement character
func sanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncate cuts s to maxLen bytes without splitting a rune and appends "..."
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
