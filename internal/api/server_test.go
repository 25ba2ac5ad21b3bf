package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/agent"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/engine"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/export"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/ingestion"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/jobs"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestServer(t *testing.T) (http.Handler, *jobs.Store) {
	t.Helper()
	h, store, _ := newTestServerWithAgent(t)
	return h, store
}

func newTestServerWithAgent(t *testing.T) (http.Handler, *jobs.Store, *agent.ScreeningAgent) {
	t.Helper()
	dir := t.TempDir()

	eng, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)

	files := ingestion.NewFileHandler(filepath.Join(dir, "uploads"), ingestion.DefaultMaxFiles, nil)
	store := jobs.NewStore(filepath.Join(dir, "jobs.json"), nil)
	a := agent.New(files, eng)
	return NewServer(a, store, nil).Router(), store, a
}

func do(t *testing.T, h http.Handler, method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const jobBody = `{"title":"Data Engineer","skills":"Python, SQL, Docker","description":"Pipelines","years_experience":2}`

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOptionsPreflight(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodOptions, "/add_job", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestUnknownRoute(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Route not found"}`, rec.Body.String())
}

func TestJobCRUD(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/jobs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/add_job", []byte(jobBody), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	added := decode[models.JobRecord](t, rec)
	assert.Equal(t, 1, added.ID)
	assert.Equal(t, "Data Engineer", added.Title)

	update := `{"title":"Senior Data Engineer","skills":"Python","description":"Lead","years_experience":5}`
	rec = do(t, h, http.MethodPut, "/update_job?id=1", []byte(update), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Job updated"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/jobs", nil, "")
	list := decode[[]models.JobRecord](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Senior Data Engineer", list[0].Title)
	assert.Equal(t, 5, list[0].YearsExperience)

	rec = do(t, h, http.MethodDelete, "/delete_job?id=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Job deleted"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/jobs", nil, "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAddJob_YearsFromFormString(t *testing.T) {
	h, store := newTestServer(t)

	body := `{"title":"Data Engineer","skills":"Python, SQL","description":"Pipelines","years_experience":"5"}`
	rec := do(t, h, http.MethodPost, "/add_job", []byte(body), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 5, decode[models.JobRecord](t, rec).YearsExperience)

	stored, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.YearsExperience)

	update := `{"title":"Data Engineer","skills":"Python","description":"Pipelines","years_experience":"7"}`
	rec = do(t, h, http.MethodPut, "/update_job?id=1", []byte(update), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err = store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.YearsExperience)

	bad := `{"title":"X","skills":"Go","description":"d","years_experience":"lots"}`
	rec = do(t, h, http.MethodPost, "/add_job", []byte(bad), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddJob_MissingFields(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/add_job", []byte(`{"title":"X","skills":"Go"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Missing job fields", body["error"])
	assert.NotEmpty(t, body["details"])

	rec = do(t, h, http.MethodPost, "/add_job", []byte(`not json`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateJob_Errors(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPut, "/update_job", []byte(jobBody), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing job id"}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/update_job?id=abc", []byte(jobBody), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/update_job?id=9", []byte(jobBody), "application/json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Job not found"}`, rec.Body.String())
}

func TestDeleteJob_MissingID(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodDelete, "/delete_job", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/delete_job?id=9", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestScreenAndReports(t *testing.T) {
	h, store := newTestServer(t)
	job, err := store.Add(models.JobRecord{Title: "Data Engineer", Skills: "Python, SQL, Docker", Description: "Pipelines", YearsExperience: 2})
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/report", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body, ct := multipartBody(t,
		map[string]string{"job_id": "1"},
		map[string]string{
			"alex.txt": "Name: Alex\nPython, SQL and Docker with 6 years of experience",
			"sam.txt":  "Name: Sam\nSQL only, 1 year of experience",
		},
	)
	rec = do(t, h, http.MethodPost, "/screen", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	report := decode[models.ScreeningReport](t, rec)
	assert.Equal(t, job, report.Job)
	require.Len(t, report.Candidates, 2)
	assert.Equal(t, "Candidate #1", report.Candidates[0].Label)
	assert.Equal(t, 88, report.Candidates[0].TotalScore)
	assert.NotContains(t, rec.Body.String(), "Alex")

	rec = do(t, h, http.MethodGet, "/report", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, report.RunID, decode[models.ScreeningReport](t, rec).RunID)

	rec = do(t, h, http.MethodGet, "/report.csv", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), export.DelimitedFileName)
	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Candidate #1", rows[1][0])
	assert.Equal(t, "88", rows[1][3])

	rec = do(t, h, http.MethodGet, "/report.xlsx", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	got, err := f.GetCellValue(export.CandidatesSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Candidate #1", got)
}

func TestScreen_Validation(t *testing.T) {
	h, store := newTestServer(t)
	_, err := store.Add(models.JobRecord{Title: "T", Skills: "Go", Description: "D", YearsExperience: 1})
	require.NoError(t, err)

	body, ct := multipartBody(t, nil, map[string]string{"a.txt": "Go"})
	rec := do(t, h, http.MethodPost, "/screen", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartBody(t, map[string]string{"job_id": "7"}, map[string]string{"a.txt": "Go"})
	rec = do(t, h, http.MethodPost, "/screen", body, ct)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body, ct = multipartBody(t, map[string]string{"job_id": "1"}, nil)
	rec = do(t, h, http.MethodPost, "/screen", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	files := map[string]string{}
	for i := 0; i <= ingestion.DefaultMaxFiles; i++ {
		files[strings.Repeat("a", i+1)+".txt"] = "Go"
	}
	body, ct = multipartBody(t, map[string]string{"job_id": "1"}, files)
	rec = do(t, h, http.MethodPost, "/screen", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "too many")
}

func TestScreen_SecondRequestWhileRunning(t *testing.T) {
	h, store, a := newTestServerWithAgent(t)
	_, err := store.Add(models.JobRecord{Title: "Data Engineer", Skills: "Python, SQL, Docker", Description: "Pipelines", YearsExperience: 2})
	require.NoError(t, err)

	// hold the first run once its uploads are on disk
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	a.SetProgressCallback(func(current, _ int, _ string) {
		if current == 0 {
			return
		}
		once.Do(func() {
			close(started)
			<-release
		})
	})

	first, ct := multipartBody(t,
		map[string]string{"job_id": "1"},
		map[string]string{"alex.txt": "Python, SQL and Docker with 6 years of experience"},
	)
	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- do(t, h, http.MethodPost, "/screen", first, ct)
	}()
	<-started

	saved := filepath.Join(a.Files().UploadsDir(), "alex.txt")
	require.FileExists(t, saved)

	second, ct2 := multipartBody(t,
		map[string]string{"job_id": "1"},
		map[string]string{"sam.txt": "SQL"},
	)
	rec := do(t, h, http.MethodPost, "/screen", second, ct2)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.FileExists(t, saved)

	close(release)
	rec = <-done
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[models.ScreeningReport](t, rec)
	require.Len(t, report.Candidates, 1)
	assert.Equal(t, 88, report.Candidates[0].TotalScore)
}

func TestScreenGmail_NotConfigured(t *testing.T) {
	h, store := newTestServer(t)
	_, err := store.Add(models.JobRecord{Title: "T", Skills: "Go", Description: "D", YearsExperience: 1})
	require.NoError(t, err)

	body, ct := multipartBody(t, map[string]string{"job_id": "1", "subject": "Job Application"}, nil)
	rec := do(t, h, http.MethodPost, "/screen_gmail", body, ct)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAnonymize(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/anonymize", []byte(`{"text":"Jane, jane@x.com, she"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"anonymized":"[REDACTED], [REDACTED], [REDACTED]"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/anonymize", []byte(`{`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
