package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRecordRequirement(t *testing.T) {
	rec := JobRecord{
		ID:              3,
		Title:           "Backend Engineer",
		Skills:          " Python, SQL ,,Docker ",
		Description:     "Build services",
		YearsExperience: 2,
	}

	req := rec.Requirement()

	assert.Equal(t, "Backend Engineer", req.Title)
	assert.Equal(t, "Build services", req.Description)
	assert.Equal(t, []string{"Python", "SQL", "Docker"}, req.Skills)
	assert.Equal(t, 2.0, req.RequiredYearsExperience)
}

func TestSplitSkills(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "Empty string", raw: "", want: []string{}},
		{name: "Only separators", raw: " , ,", want: []string{}},
		{name: "Single skill", raw: "Go", want: []string{"Go"}},
		{name: "Keeps order", raw: "SQL, Go, AWS", want: []string{"SQL", "Go", "AWS"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSkills(tt.raw))
		})
	}
}

func TestJobRecordValidate(t *testing.T) {
	valid := JobRecord{Title: "QA", Skills: "Selenium", Description: "Testing", YearsExperience: 1}
	require.NoError(t, valid.Validate())

	missingTitle := valid
	missingTitle.Title = ""
	assert.Error(t, missingTitle.Validate())

	negative := valid
	negative.YearsExperience = -1
	assert.Error(t, negative.Validate())
}

func TestJobRequirementValidate(t *testing.T) {
	assert.NoError(t, JobRequirement{}.Validate())
	assert.Error(t, JobRequirement{RequiredYearsExperience: -2}.Validate())
}

func TestJobRecordJSONFieldNames(t *testing.T) {
	data := []byte(`{"id":7,"title":"Data Analyst","skills":"SQL, Excel","description":"Reports","years_experience":3}`)

	var rec JobRecord
	require.NoError(t, json.Unmarshal(data, &rec))

	assert.Equal(t, 7, rec.ID)
	assert.Equal(t, 3, rec.YearsExperience)
	assert.Equal(t, []string{"SQL", "Excel"}, rec.Requirement().Skills)
}

func TestJobRecordUnmarshal_YearsExperience(t *testing.T) {
	tests := []struct {
		name    string
		years   string
		want    int
		wantErr bool
	}{
		{name: "Number", years: `4`, want: 4},
		{name: "Numeric string", years: `"5"`, want: 5},
		{name: "Padded string", years: `" 2 "`, want: 2},
		{name: "Null", years: `null`, want: 0},
		{name: "Word", years: `"five"`, wantErr: true},
		{name: "Fraction", years: `1.5`, wantErr: true},
		{name: "Bool", years: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte(`{"id":2,"title":"QA","skills":"Go","description":"d","years_experience":` + tt.years + `}`)

			var rec JobRecord
			err := json.Unmarshal(data, &rec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.YearsExperience)
			assert.Equal(t, 2, rec.ID)
			assert.Equal(t, "QA", rec.Title)
		})
	}
}

func TestJobRecordMarshal_YearsAsNumber(t *testing.T) {
	data, err := json.Marshal(JobRecord{ID: 1, Title: "QA", Skills: "Go", Description: "d", YearsExperience: 3})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"years_experience":3`)
}

func TestCandidateLabel(t *testing.T) {
	assert.Equal(t, "Candidate #1", CandidateLabel(0))
	assert.Equal(t, "Candidate #15", CandidateLabel(14))
}
