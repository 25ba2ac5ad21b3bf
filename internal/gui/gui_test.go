package gui

import (
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/agent"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/config"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/engine"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/ingestion"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/jobs"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobFromForm(t *testing.T) {
	rec, err := jobFromForm(" Analyst ", "SQL, Excel", "Reports", " 3 ")
	require.NoError(t, err)
	assert.Equal(t, models.JobRecord{Title: "Analyst", Skills: "SQL, Excel", Description: "Reports", YearsExperience: 3}, rec)

	rec, err = jobFromForm("Analyst", "SQL", "Reports", "")
	require.NoError(t, err)
	assert.Equal(t, 0, rec.YearsExperience)

	_, err = jobFromForm("Analyst", "SQL", "Reports", "three")
	assert.Error(t, err)

	_, err = jobFromForm("Analyst", "SQL", "Reports", "-1")
	assert.Error(t, err)

	_, err = jobFromForm("Analyst", "", "Reports", "1")
	assert.Error(t, err)
}

func TestAppendPath(t *testing.T) {
	paths, err := appendPath(nil, "/tmp/a.pdf", 2)
	require.NoError(t, err)
	paths, err = appendPath(paths, "/tmp/a.pdf", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/a.pdf"}, paths)

	paths, err = appendPath(paths, "/tmp/b.txt", 2)
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	_, err = appendPath(paths, "/tmp/c.docx", 2)
	assert.ErrorIs(t, err, models.ErrTooManyFiles)

	_, err = appendPath(nil, "/tmp/photo.png", 2)
	assert.Error(t, err)
}

func TestResultCell(t *testing.T) {
	batch := models.RankedBatch{
		{
			Label:           "Candidate #1",
			SkillMatchScore: 67,
			ExperienceScore: 20,
			TotalScore:      53,
			MatchedSkills:   []string{"Python", "SQL"},
			MissingSkills:   []string{"Docker"},
			BiasFlags:       []string{},
		},
	}

	assert.Equal(t, "Rank", resultCell(batch, 0, 0))
	assert.Equal(t, "Bias Flags", resultCell(batch, 0, 7))
	assert.Equal(t, "1", resultCell(batch, 1, 0))
	assert.Equal(t, "Candidate #1", resultCell(batch, 1, 1))
	assert.Equal(t, "67", resultCell(batch, 1, 2))
	assert.Equal(t, "20", resultCell(batch, 1, 3))
	assert.Equal(t, "53", resultCell(batch, 1, 4))
	assert.Equal(t, "Python, SQL", resultCell(batch, 1, 5))
	assert.Equal(t, "Docker", resultCell(batch, 1, 6))
	assert.Equal(t, "", resultCell(batch, 1, 7))
	assert.Equal(t, "", resultCell(batch, 2, 0))
	assert.Equal(t, "", resultCell(batch, 1, 8))
}

func TestResumePreview(t *testing.T) {
	assert.Equal(t, "text", resumePreview(models.ScoredCandidate{AnonymizedResumeText: "text"}))
	assert.Equal(t, "Reasoning: strong SQL\n\ntext", resumePreview(models.ScoredCandidate{AnonymizedResumeText: "text", Reasoning: "strong SQL"}))
}

func TestNewApp_LoadsJobs(t *testing.T) {
	dir := t.TempDir()
	store := jobs.NewStore(filepath.Join(dir, "jobs.json"), nil)
	_, err := store.Add(models.JobRecord{Title: "Analyst", Skills: "SQL", Description: "Reports", YearsExperience: 1})
	require.NoError(t, err)

	eng, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)
	ag := agent.New(ingestion.NewFileHandler(filepath.Join(dir, "uploads"), ingestion.DefaultMaxFiles, nil), eng)

	a := NewApp(test.NewApp(), config.DefaultConfig(), filepath.Join(dir, "screener.json"), store, ag, nil)

	assert.Equal(t, []string{"#1 Analyst"}, a.jobSelect.Options)
	_, err = a.selectedJobRecord()
	assert.ErrorIs(t, err, models.ErrNoJobSelected)

	a.jobSelect.SetSelectedIndex(0)
	job, err := a.selectedJobRecord()
	require.NoError(t, err)
	assert.Equal(t, "Analyst", job.Title)
	assert.Equal(t, "Job Application", a.subjectEntry.Text)
}
