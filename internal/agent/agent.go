// Package agent runs screening sessions: it loads resumes, scores them with
// the engine and keeps the latest report for the API and GUI.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/engine"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/ingestion"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/logger"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNoReport is returned by Report before any run has completed
	ErrNoReport = errors.New("no results available, run a screening first")
	// ErrGmailNotConfigured is returned by ScreenFromGmail without an attachment source
	ErrGmailNotConfigured = errors.New("gmail intake is not configured")
	// ErrRunInProgress is returned when a second run starts before the first ends
	ErrRunInProgress = errors.New("a screening run is already in progress")
)

// ProgressCallback is called to report progress during a run, on a 0-100 scale
type ProgressCallback func(current, total int, message string)

// AttachmentSource downloads resume attachments into the uploads directory
type AttachmentSource interface {
	FetchAttachments(ctx context.Context, subject string, progress func(name string)) ([]string, error)
}

// Upload is a resume file received from a client
type Upload struct {
	Name    string
	Content io.Reader
}

// ScreeningAgent orchestrates a screening run
type ScreeningAgent struct {
	files  *ingestion.FileHandler
	engine *engine.Engine
	logger *zap.Logger
	now    func() time.Time

	mu         sync.RWMutex
	gmail      AttachmentSource
	report     *models.ScreeningReport
	progressCb ProgressCallback
	cancel     context.CancelFunc
	run        uint64
}

// Option configures a ScreeningAgent
type Option func(*ScreeningAgent)

// WithGmail enables ScreenFromGmail
func WithGmail(src AttachmentSource) Option {
	return func(a *ScreeningAgent) { a.gmail = src }
}

// WithLogger attaches a logger
func WithLogger(l *zap.Logger) Option {
	return func(a *ScreeningAgent) { a.logger = logger.OrNop(l) }
}

// WithClock sets the clock used for report timestamps
func WithClock(now func() time.Time) Option {
	return func(a *ScreeningAgent) { a.now = now }
}

// New creates a screening agent
func New(files *ingestion.FileHandler, eng *engine.Engine, opts ...Option) *ScreeningAgent {
	a := &ScreeningAgent{
		files:  files,
		engine: eng,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetAttachmentSource enables or replaces the Gmail intake
func (a *ScreeningAgent) SetAttachmentSource(src AttachmentSource) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gmail = src
}

// HasAttachmentSource reports whether ScreenFromGmail can run
func (a *ScreeningAgent) HasAttachmentSource() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.gmail != nil
}

// Files returns the agent's upload handler
func (a *ScreeningAgent) Files() *ingestion.FileHandler {
	return a.files
}

// SetProgressCallback sets the progress callback function
func (a *ScreeningAgent) SetProgressCallback(cb ProgressCallback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.progressCb = cb
}

func (a *ScreeningAgent) reportProgress(current int, message string) {
	a.mu.RLock()
	cb := a.progressCb
	a.mu.RUnlock()

	if cb != nil {
		cb(current, 100, message)
	}
}

// Cancel stops the run in progress. It reports whether a run was cancelled.
func (a *ScreeningAgent) Cancel() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel == nil {
		return false
	}
	a.cancel()
	a.cancel = nil
	return true
}

// Running reports whether a run is in progress
func (a *ScreeningAgent) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cancel != nil
}

func (a *ScreeningAgent) begin(ctx context.Context) (context.Context, func(), error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return nil, nil, ErrRunInProgress
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.run++
	run := a.run
	return ctx, func() {
		cancel()
		a.mu.Lock()
		if a.run == run {
			a.cancel = nil
		}
		a.mu.Unlock()
	}, nil
}

// ScreenFiles scores the resumes at paths against job and stores the report
func (a *ScreeningAgent) ScreenFiles(ctx context.Context, job models.JobRecord, paths []string) (models.ScreeningReport, error) {
	if err := checkJob(job); err != nil {
		return models.ScreeningReport{}, err
	}
	if err := a.files.CheckCount(len(paths)); err != nil {
		return models.ScreeningReport{}, err
	}

	ctx, done, err := a.begin(ctx)
	if err != nil {
		return models.ScreeningReport{}, err
	}
	defer done()

	return a.screen(ctx, job, paths, 0)
}

// ScreenUploads replaces the contents of the uploads directory with uploads
// and screens them against job. The directory is left alone when another run
// is in progress. A repeated file name is prefixed with its position.
func (a *ScreeningAgent) ScreenUploads(ctx context.Context, job models.JobRecord, uploads []Upload) (models.ScreeningReport, error) {
	if err := checkJob(job); err != nil {
		return models.ScreeningReport{}, err
	}
	if err := a.files.CheckCount(len(uploads)); err != nil {
		return models.ScreeningReport{}, err
	}

	ctx, done, err := a.begin(ctx)
	if err != nil {
		return models.ScreeningReport{}, err
	}
	defer done()

	a.reportProgress(0, "Saving uploads...")
	if err := a.files.ClearUploads(); err != nil {
		return models.ScreeningReport{}, fmt.Errorf("failed to clear uploads: %w", err)
	}

	used := make(map[string]bool, len(uploads))
	paths := make([]string, 0, len(uploads))
	for i, u := range uploads {
		name := u.Name
		if used[strings.ToLower(name)] {
			name = fmt.Sprintf("%d_%s", i+1, name)
		}
		used[strings.ToLower(name)] = true

		path, err := a.files.SaveUploadedFile(name, u.Content)
		if err != nil {
			return models.ScreeningReport{}, fmt.Errorf("failed to save file %s: %w", u.Name, err)
		}
		paths = append(paths, path)
	}

	return a.screen(ctx, job, paths, 10)
}

// ScreenFromGmail downloads resume attachments whose message subject matches
// and screens them against job. The uploads directory is cleared first.
func (a *ScreeningAgent) ScreenFromGmail(ctx context.Context, job models.JobRecord, subject string) (models.ScreeningReport, error) {
	a.mu.RLock()
	src := a.gmail
	a.mu.RUnlock()
	if src == nil {
		return models.ScreeningReport{}, ErrGmailNotConfigured
	}
	if err := checkJob(job); err != nil {
		return models.ScreeningReport{}, err
	}

	ctx, done, err := a.begin(ctx)
	if err != nil {
		return models.ScreeningReport{}, err
	}
	defer done()

	a.reportProgress(0, "Clearing existing uploads...")
	if err := a.files.ClearUploads(); err != nil {
		return models.ScreeningReport{}, fmt.Errorf("failed to clear uploads: %w", err)
	}

	a.reportProgress(5, "Fetching emails from Gmail...")
	fetched := 0
	paths, err := src.FetchAttachments(ctx, subject, func(name string) {
		fetched++
		a.reportProgress(5+min(fetched, 30), fmt.Sprintf("Downloaded %s", name))
	})
	if err != nil {
		return models.ScreeningReport{}, fmt.Errorf("failed to fetch Gmail attachments: %w", err)
	}
	if err := a.files.CheckCount(len(paths)); err != nil {
		return models.ScreeningReport{}, err
	}

	return a.screen(ctx, job, paths, 40)
}

// screen runs extraction and scoring, mapping progress onto base..100
func (a *ScreeningAgent) screen(ctx context.Context, job models.JobRecord, paths []string, base int) (models.ScreeningReport, error) {
	runID := uuid.NewString()
	log := logger.WithRun(a.logger, runID, job.ID)
	log.Info("screening started", zap.Int("resumes", len(paths)))

	span := 100 - base
	loadEnd := base + span*6/10

	a.reportProgress(base, "Loading resumes...")
	inputs, err := a.files.LoadResumes(ctx, paths, func(n, total int, name string) {
		a.reportProgress(base+(loadEnd-base)*n/total, fmt.Sprintf("Read %s (%d/%d)", name, n, total))
	})
	if err != nil {
		return models.ScreeningReport{}, err
	}

	for i := range inputs {
		inputs[i].ExperienceYears = float64(a.engine.ExtractYears(inputs[i].ResumeText))
	}

	a.reportProgress(loadEnd, fmt.Sprintf("Scoring %d candidates...", len(inputs)))
	batch, err := a.engine.ScoreCandidates(ctx, inputs, job.Requirement())
	if err != nil {
		log.Warn("screening failed", zap.Error(err))
		return models.ScreeningReport{}, err
	}

	report := models.ScreeningReport{
		RunID:      runID,
		Job:        job,
		Candidates: batch,
		Timestamp:  a.now().Format(time.RFC3339),
	}

	a.mu.Lock()
	a.report = &report
	a.mu.Unlock()

	log.Info("screening complete", zap.Int("candidates", len(batch)))
	a.reportProgress(100, "Screening complete!")
	return report, nil
}

// Report returns the most recent screening report
func (a *ScreeningAgent) Report() (models.ScreeningReport, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.report == nil {
		return models.ScreeningReport{}, ErrNoReport
	}
	r := *a.report
	r.Candidates = append(models.RankedBatch(nil), a.report.Candidates...)
	return r, nil
}

func checkJob(job models.JobRecord) error {
	if job == (models.JobRecord{}) {
		return models.ErrNoJobSelected
	}
	return job.Validate()
}
