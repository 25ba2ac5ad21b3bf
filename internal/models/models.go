package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Batch-level validation errors reported before any candidate is scored
var (
	ErrNoJobSelected = errors.New("select a job")
	ErrNoResumes     = errors.New("upload at least one resume")
	ErrTooManyFiles  = errors.New("too many resume files")
	ErrJobNotFound   = errors.New("job not found")
)

var validate = validator.New()

// JobRequirement is the job a batch of resumes is scored against
type JobRequirement struct {
	Title                   string   `json:"title"`
	Description             string   `json:"description"`
	Skills                  []string `json:"skills"`
	RequiredYearsExperience float64  `json:"required_years_experience" validate:"gte=0"`
}

// Validate checks the requirement's numeric fields. An empty skill list is
// allowed and simply scores every candidate at zero skill match.
func (j JobRequirement) Validate() error {
	if err := validate.Struct(j); err != nil {
		return fmt.Errorf("invalid job requirement: %w", err)
	}
	return nil
}

// JobRecord is a job as stored and served by the job store
type JobRecord struct {
	ID              int    `json:"id"`
	Title           string `json:"title" validate:"required"`
	Skills          string `json:"skills" validate:"required"`
	Description     string `json:"description" validate:"required"`
	YearsExperience int    `json:"years_experience" validate:"gte=0"`
}

// UnmarshalJSON accepts years_experience as a number or a numeric string.
// Browser form inputs post the latter.
func (r *JobRecord) UnmarshalJSON(data []byte) error {
	type plain JobRecord
	aux := struct {
		*plain
		YearsExperience json.RawMessage `json:"years_experience"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.YearsExperience) == 0 || string(aux.YearsExperience) == "null" {
		return nil
	}

	if err := json.Unmarshal(aux.YearsExperience, &r.YearsExperience); err == nil {
		return nil
	}
	var s string
	if err := json.Unmarshal(aux.YearsExperience, &s); err != nil {
		return fmt.Errorf("years_experience must be an integer, got %s", aux.YearsExperience)
	}
	years, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("years_experience must be an integer, got %q", s)
	}
	r.YearsExperience = years
	return nil
}

// Validate checks that all required job fields are present
func (r JobRecord) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("missing job fields: %w", err)
	}
	return nil
}

// Requirement converts the record into the engine's job representation,
// splitting the comma-separated skill list and trimming each entry.
func (r JobRecord) Requirement() JobRequirement {
	return JobRequirement{
		Title:                   r.Title,
		Description:             r.Description,
		Skills:                  SplitSkills(r.Skills),
		RequiredYearsExperience: float64(r.YearsExperience),
	}
}

// SplitSkills splits a comma-separated skill list, dropping empty entries
func SplitSkills(raw string) []string {
	skills := []string{}
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// CandidateInput is one resume entering the engine
type CandidateInput struct {
	Label           string  `json:"label"`
	ResumeText      string  `json:"resume_text"`
	ExperienceYears float64 `json:"experience_years"`
	SourcePath      string  `json:"source_path,omitempty"`
}

// ScoredCandidate is the engine's result for one resume
type ScoredCandidate struct {
	Label                string   `json:"label"`
	SkillMatchScore      int      `json:"skill_match_score"` // 0-100
	ExperienceScore      int      `json:"experience_score"`  // 0-100, 10 per whole year
	TotalScore           int      `json:"total_score"`       // 0-100
	MatchedSkills        []string `json:"matched_skills"`
	MissingSkills        []string `json:"missing_skills"`
	BiasFlags            []string `json:"bias_flags"`
	AnonymizedResumeText string   `json:"anonymized_resume_text"`
	Reasoning            string   `json:"reasoning,omitempty"`
	SourcePath           string   `json:"source_path,omitempty"`
}

// RankedBatch is the final ordering of a batch of scored candidates
type RankedBatch []ScoredCandidate

// CandidateLabel returns the display label for a zero-based rank position
func CandidateLabel(position int) string {
	return fmt.Sprintf("Candidate #%d", position+1)
}

// ScreeningReport is the stored outcome of one screening run
type ScreeningReport struct {
	RunID      string      `json:"run_id"`
	Job        JobRecord   `json:"job"`
	Candidates RankedBatch `json:"candidates"`
	Timestamp  string      `json:"timestamp"`
}
