// Package api exposes the job store and screening runs over HTTP.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/agent"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/anonymize"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/export"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/jobs"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/logger"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/schema"
	"go.uber.org/zap"
)

const (
	maxUploadBytes = 32 << 20
	maxJSONBytes   = 1 << 20

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Server handles HTTP requests
type Server struct {
	agent  *agent.ScreeningAgent
	jobs   *jobs.Store
	logger *zap.Logger
}

// NewServer creates a new API server
func NewServer(a *agent.ScreeningAgent, store *jobs.Store, log *zap.Logger) *Server {
	return &Server{
		agent:  a,
		jobs:   store,
		logger: logger.OrNop(log),
	}
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("POST /add_job", s.handleAddJob)
	mux.HandleFunc("PUT /update_job", s.handleUpdateJob)
	mux.HandleFunc("DELETE /delete_job", s.handleDeleteJob)

	mux.HandleFunc("POST /screen", s.handleScreen)
	mux.HandleFunc("POST /screen_gmail", s.handleScreenGmail)
	mux.HandleFunc("GET /report", s.handleReport)
	mux.HandleFunc("GET /report.csv", s.handleReportCSV)
	mux.HandleFunc("GET /report.xlsx", s.handleReportXLSX)
	mux.HandleFunc("POST /anonymize", s.handleAnonymize)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("/", s.handleNotFound)

	return s.loggingMiddleware(corsMiddleware(mux))
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "Resume Screener",
		"endpoints": map[string]string{
			"GET /jobs":              "List job postings",
			"POST /add_job":          "Create a job posting",
			"PUT /update_job?id=":    "Replace a job posting",
			"DELETE /delete_job?id=": "Delete a job posting",
			"POST /screen":           "Upload resumes and screen them against job_id",
			"POST /screen_gmail":     "Screen Gmail attachments against job_id",
			"GET /report":            "Latest ranked candidates",
			"GET /report.csv":        "Latest report as CSV",
			"GET /report.xlsx":       "Latest report as an Excel workbook",
			"POST /anonymize":        "Redact pasted resume text",
			"GET /health":            "Health check",
		},
	})
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, http.StatusNotFound, "Route not found")
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	list, err := s.jobs.List()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleAddJob(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.decodeJob(w, r)
	if !ok {
		return
	}

	added, err := s.jobs.Add(rec)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, added)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.jobID(w, r.URL.Query().Get("id"))
	if !ok {
		return
	}
	rec, ok := s.decodeJob(w, r)
	if !ok {
		return
	}

	if _, err := s.jobs.Update(id, rec); err != nil {
		s.respondError(w, statusFor(err), errorMessage(err))
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Job updated"})
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.jobID(w, r.URL.Query().Get("id"))
	if !ok {
		return
	}

	if err := s.jobs.Delete(id); err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Job deleted"})
}

// decodeJob checks the request body against the job schema before decoding it
func (s *Server) decodeJob(w http.ResponseWriter, r *http.Request) (models.JobRecord, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBytes))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read body: %v", err))
		return models.JobRecord{}, false
	}

	if err := schema.Validate(schema.Job, string(body)); err != nil {
		var ve *schema.ValidationError
		if errors.As(err, &ve) {
			s.respondJSON(w, http.StatusBadRequest, map[string]any{
				"error":   "Missing job fields",
				"details": ve.Errors,
			})
			return models.JobRecord{}, false
		}
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid job payload: %v", err))
		return models.JobRecord{}, false
	}

	var rec models.JobRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid job payload: %v", err))
		return models.JobRecord{}, false
	}
	return rec, true
}

func (s *Server) jobID(w http.ResponseWriter, raw string) (int, bool) {
	if raw == "" {
		s.respondError(w, http.StatusBadRequest, "Missing job id")
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid job id: %q", raw))
		return 0, false
	}
	return id, true
}

// lookupJob resolves the job_id form value
func (s *Server) lookupJob(w http.ResponseWriter, r *http.Request) (models.JobRecord, bool) {
	raw := r.FormValue("job_id")
	if raw == "" {
		s.respondError(w, http.StatusBadRequest, models.ErrNoJobSelected.Error())
		return models.JobRecord{}, false
	}
	id, ok := s.jobID(w, raw)
	if !ok {
		return models.JobRecord{}, false
	}
	job, err := s.jobs.Get(id)
	if err != nil {
		s.respondError(w, statusFor(err), errorMessage(err))
		return models.JobRecord{}, false
	}
	return job, true
}

// handleScreen saves the uploaded resumes and screens them against job_id
func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return
	}

	job, ok := s.lookupJob(w, r)
	if !ok {
		return
	}

	headers := r.MultipartForm.File["files"]
	uploads := make([]agent.Upload, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read file %s: %v", header.Filename, err))
			return
		}
		defer f.Close()
		uploads = append(uploads, agent.Upload{Name: filepath.Base(header.Filename), Content: f})
	}

	report, err := s.agent.ScreenUploads(r.Context(), job, uploads)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleScreenGmail(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	subject := strings.TrimSpace(r.FormValue("subject"))
	if subject == "" {
		s.respondError(w, http.StatusBadRequest, "subject is required")
		return
	}

	report, err := s.agent.ScreenFromGmail(r.Context(), job, subject)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

// handleReport returns the latest screening report
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.agent.Report()
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	report, err := s.agent.Report()
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.DelimitedFileName))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, export.ToDelimitedText(report.Candidates))
}

func (s *Server) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	report, err := s.agent.Report()
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	var buf bytes.Buffer
	if err := export.WriteExcel(&buf, report.Candidates, report.Job); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.ExcelFileName))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

type anonymizeRequest struct {
	Text string `json:"text"`
}

// handleAnonymize redacts pasted resume text with the aggressive policy
func (s *Server) handleAnonymize(w http.ResponseWriter, r *http.Request) {
	var req anonymizeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBytes)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"anonymized": anonymize.RedactAggressive(req.Text),
	})
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrJobNotFound), errors.Is(err, agent.ErrNoReport):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNoJobSelected), errors.Is(err, models.ErrNoResumes), errors.Is(err, models.ErrTooManyFiles):
		return http.StatusBadRequest
	case errors.Is(err, agent.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, agent.ErrGmailNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage keeps the short "Job not found" wording for missing jobs
func errorMessage(err error) string {
	if errors.Is(err, models.ErrJobNotFound) {
		return "Job not found"
	}
	return err.Error()
}

// corsMiddleware allows any origin and answers preflight requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
