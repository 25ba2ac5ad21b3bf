// Package gui is the desktop front end: manage jobs, pick resumes, run a
// screening and export the ranked results.
package gui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/agent"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/config"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/export"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/ingestion"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/jobs"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/logger"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
	"go.uber.org/zap"
)

var resultHeaders = []string{"Rank", "Candidate", "Skill Match", "Experience", "Total Score", "Matched Skills", "Missing Skills", "Bias Flags"}

// App represents the main GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	config     *config.Config
	configPath string
	store      *jobs.Store
	agent      *agent.ScreeningAgent
	logger     *zap.Logger

	jobList   []models.JobRecord
	filePaths []string
	report    models.ScreeningReport

	// Screening tab
	jobSelect     *widget.Select
	fileList      *widget.List
	subjectEntry  *widget.Entry
	processBtn    *widget.Button
	gmailBtn      *widget.Button
	cancelBtn     *widget.Button
	progressBar   *widget.ProgressBar
	progressLabel *widget.Label
	resultsTable  *widget.Table
	resumeView    *widget.Entry
	exportCSVBtn  *widget.Button
	exportXLSXBtn *widget.Button

	// Jobs tab
	jobsList    *widget.List
	selectedJob int
}

// NewApp creates the main window on fyneApp
func NewApp(fyneApp fyne.App, cfg *config.Config, configPath string, store *jobs.Store, ag *agent.ScreeningAgent, log *zap.Logger) *App {
	w := fyneApp.NewWindow("Resume Screener")
	w.Resize(fyne.NewSize(1100, 760))

	a := &App{
		fyneApp:     fyneApp,
		mainWindow:  w,
		config:      cfg,
		configPath:  configPath,
		store:       store,
		agent:       ag,
		logger:      logger.OrNop(log),
		selectedJob: -1,
	}

	a.setupUI()
	a.reloadJobs()
	return a
}

// Run starts the GUI application
func (a *App) Run() {
	a.mainWindow.ShowAndRun()
}

func (a *App) setupUI() {
	tabs := container.NewAppTabs(
		container.NewTabItem("Screen Resumes", a.createScreenTab()),
		container.NewTabItem("Jobs", a.createJobsTab()),
		container.NewTabItem("Settings", a.createSettingsTab()),
	)
	a.mainWindow.SetContent(tabs)
}

func (a *App) createScreenTab() fyne.CanvasObject {
	a.jobSelect = widget.NewSelect(nil, nil)
	a.jobSelect.PlaceHolder = "Select a job"

	jobSection := container.NewVBox(
		widget.NewLabel("Job"),
		container.NewBorder(nil, nil, nil, widget.NewButton("Refresh", a.reloadJobs), a.jobSelect),
	)

	a.fileList = widget.NewList(
		func() int { return len(a.filePaths) },
		func() fyne.CanvasObject { return widget.NewLabel("Template") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(filepath.Base(a.filePaths[id]))
		},
	)
	addBtn := widget.NewButton("Add Resume...", a.handleAddFile)
	clearBtn := widget.NewButton("Clear", func() {
		a.filePaths = nil
		a.fileList.Refresh()
	})
	fileSection := container.NewBorder(
		widget.NewLabel(fmt.Sprintf("Resumes (PDF, DOCX or TXT, at most %d)", a.agent.Files().MaxFiles())),
		container.NewHBox(addBtn, clearBtn),
		nil, nil,
		container.NewGridWrap(fyne.NewSize(400, 120), a.fileList),
	)

	a.subjectEntry = widget.NewEntry()
	a.subjectEntry.SetText(a.config.Gmail.Subject)
	a.subjectEntry.SetPlaceHolder("e.g., Job Application")
	a.gmailBtn = widget.NewButton("Screen Gmail Attachments", a.handleGmail)
	gmailSection := container.NewVBox(
		widget.NewLabel("Gmail Subject Filter"),
		container.NewBorder(nil, nil, nil, a.gmailBtn, a.subjectEntry),
	)

	a.progressBar = widget.NewProgressBar()
	a.progressLabel = widget.NewLabel("Ready")
	a.processBtn = widget.NewButton("Start Screening", a.handleProcess)
	a.cancelBtn = widget.NewButton("Cancel", a.handleCancel)
	a.cancelBtn.Disable()

	progressSection := container.NewVBox(
		a.progressLabel,
		a.progressBar,
		container.NewHBox(a.processBtn, a.cancelBtn),
	)

	a.resultsTable = widget.NewTable(
		func() (int, int) {
			return len(a.report.Candidates) + 1, len(resultHeaders)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Template")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			label.TextStyle = fyne.TextStyle{Bold: id.Row == 0}
			label.SetText(resultCell(a.report.Candidates, id.Row, id.Col))
		},
	)
	for col, width := range []float32{50, 110, 90, 90, 90, 200, 200, 240} {
		a.resultsTable.SetColumnWidth(col, width)
	}
	a.resultsTable.OnSelected = func(id widget.TableCellID) {
		if id.Row > 0 && id.Row-1 < len(a.report.Candidates) {
			c := a.report.Candidates[id.Row-1]
			a.resumeView.SetText(resumePreview(c))
		}
	}

	a.resumeView = widget.NewMultiLineEntry()
	a.resumeView.Wrapping = fyne.TextWrapWord
	a.resumeView.SetPlaceHolder("Select a candidate to view the anonymized resume")
	a.resumeView.SetMinRowsVisible(8)

	a.exportCSVBtn = widget.NewButton("Export CSV", a.handleExportCSV)
	a.exportXLSXBtn = widget.NewButton("Export Excel", a.handleExportExcel)
	a.exportCSVBtn.Disable()
	a.exportXLSXBtn.Disable()

	resultsSection := container.NewVBox(
		widget.NewLabel("Ranked Candidates"),
		container.NewGridWrap(fyne.NewSize(1060, 260), a.resultsTable),
		a.resumeView,
		container.NewHBox(a.exportCSVBtn, a.exportXLSXBtn),
	)

	return container.NewVScroll(
		container.NewVBox(
			jobSection,
			widget.NewSeparator(),
			fileSection,
			widget.NewSeparator(),
			gmailSection,
			widget.NewSeparator(),
			progressSection,
			widget.NewSeparator(),
			resultsSection,
		),
	)
}

func (a *App) createJobsTab() fyne.CanvasObject {
	a.jobsList = widget.NewList(
		func() int { return len(a.jobList) },
		func() fyne.CanvasObject { return widget.NewLabel("Template") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			j := a.jobList[id]
			obj.(*widget.Label).SetText(fmt.Sprintf("%s  |  %s  |  %d+ years", jobOptionLabel(j), j.Skills, j.YearsExperience))
		},
	)
	a.jobsList.OnSelected = func(id widget.ListItemID) { a.selectedJob = id }
	a.jobsList.OnUnselected = func(widget.ListItemID) { a.selectedJob = -1 }

	titleEntry := widget.NewEntry()
	skillsEntry := widget.NewEntry()
	skillsEntry.SetPlaceHolder("Comma separated, e.g. Python, SQL, Docker")
	descEntry := widget.NewMultiLineEntry()
	descEntry.SetMinRowsVisible(3)
	yearsEntry := widget.NewEntry()
	yearsEntry.SetPlaceHolder("0")

	form := widget.NewForm(
		widget.NewFormItem("Title", titleEntry),
		widget.NewFormItem("Skills", skillsEntry),
		widget.NewFormItem("Description", descEntry),
		widget.NewFormItem("Years of Experience", yearsEntry),
	)
	form.SubmitText = "Add Job"
	form.OnSubmit = func() {
		rec, err := jobFromForm(titleEntry.Text, skillsEntry.Text, descEntry.Text, yearsEntry.Text)
		if err == nil {
			_, err = a.store.Add(rec)
		}
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		for _, e := range []*widget.Entry{titleEntry, skillsEntry, descEntry, yearsEntry} {
			e.SetText("")
		}
		a.reloadJobs()
	}

	deleteBtn := widget.NewButton("Delete Selected", func() {
		if a.selectedJob < 0 || a.selectedJob >= len(a.jobList) {
			dialog.ShowError(models.ErrNoJobSelected, a.mainWindow)
			return
		}
		j := a.jobList[a.selectedJob]
		dialog.ShowConfirm("Delete Job", fmt.Sprintf("Delete %q?", j.Title), func(ok bool) {
			if !ok {
				return
			}
			if err := a.store.Delete(j.ID); err != nil {
				dialog.ShowError(err, a.mainWindow)
				return
			}
			a.jobsList.UnselectAll()
			a.reloadJobs()
		}, a.mainWindow)
	})

	return container.NewBorder(
		container.NewVBox(widget.NewLabel("New Job"), form, widget.NewSeparator(), widget.NewLabel("Saved Jobs")),
		deleteBtn,
		nil, nil,
		a.jobsList,
	)
}

func (a *App) createSettingsTab() fyne.CanvasObject {
	providerSelect := widget.NewSelect([]string{"heuristic", "vertex"}, nil)
	providerSelect.SetSelected(a.config.Scoring.Provider)

	projectEntry := widget.NewEntry()
	projectEntry.SetText(a.config.Google.Project)

	locationEntry := widget.NewEntry()
	locationEntry.SetText(a.config.Google.Location)

	gmailCredsEntry := widget.NewEntry()
	gmailCredsEntry.SetText(a.config.Gmail.CredentialsPath)

	gmailCredsBtn := widget.NewButton("Browse...", func() {
		dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err == nil && uc != nil {
				gmailCredsEntry.SetText(uc.URI().Path())
				uc.Close()
			}
		}, a.mainWindow)
	})

	form := widget.NewForm(
		widget.NewFormItem("Scoring Provider", providerSelect),
		widget.NewFormItem("Google Cloud Project", projectEntry),
		widget.NewFormItem("Google Cloud Location", locationEntry),
		widget.NewFormItem("Gmail Credentials", container.NewBorder(nil, nil, nil, gmailCredsBtn, gmailCredsEntry)),
	)

	saveBtn := widget.NewButton("Save Settings", func() {
		updated := *a.config
		updated.Scoring.Provider = providerSelect.Selected
		updated.Google.Project = strings.TrimSpace(projectEntry.Text)
		updated.Google.Location = strings.TrimSpace(locationEntry.Text)
		updated.Gmail.CredentialsPath = strings.TrimSpace(gmailCredsEntry.Text)

		if err := updated.Validate(); err != nil {
			dialog.ShowError(fmt.Errorf("validation failed: %w", err), a.mainWindow)
			return
		}
		if err := updated.SaveTo(a.configPath); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		*a.config = updated
		dialog.ShowInformation("Saved", "Settings saved. Restart to apply scoring changes.", a.mainWindow)
	})

	authBtn := widget.NewButton("Authorize Gmail", a.handleAuthenticate)

	return container.NewVBox(
		form,
		container.NewHBox(saveBtn, authBtn),
	)
}

// reloadJobs refreshes both job views from the store
func (a *App) reloadJobs() {
	list, err := a.store.List()
	if err != nil {
		a.logger.Warn("failed to load jobs", zap.Error(err))
		dialog.ShowError(err, a.mainWindow)
		return
	}
	a.jobList = list

	options := make([]string, len(list))
	for i, j := range list {
		options[i] = jobOptionLabel(j)
	}
	selected := a.jobSelect.Selected
	a.jobSelect.SetOptions(options)
	if !slices.Contains(options, selected) {
		a.jobSelect.ClearSelected()
	}
	a.jobsList.Refresh()
}

func (a *App) selectedJobRecord() (models.JobRecord, error) {
	idx := a.jobSelect.SelectedIndex()
	if idx < 0 || idx >= len(a.jobList) {
		return models.JobRecord{}, models.ErrNoJobSelected
	}
	return a.jobList[idx], nil
}

func (a *App) handleAddFile() {
	fd := dialog.NewFileOpen(func(uc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return
		}
		uc.Close()

		paths, err := appendPath(a.filePaths, uc.URI().Path(), a.agent.Files().MaxFiles())
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		a.filePaths = paths
		a.fileList.Refresh()
	}, a.mainWindow)
	fd.SetFilter(storage.NewExtensionFileFilter(ingestion.SupportedExtensions))
	fd.Show()
}

func (a *App) handleProcess() {
	job, err := a.selectedJobRecord()
	if err != nil {
		dialog.ShowError(err, a.mainWindow)
		return
	}
	if err := a.agent.Files().CheckCount(len(a.filePaths)); err != nil {
		dialog.ShowError(err, a.mainWindow)
		return
	}

	paths := append([]string(nil), a.filePaths...)
	a.run(func(ctx context.Context) (models.ScreeningReport, error) {
		return a.agent.ScreenFiles(ctx, job, paths)
	})
}

func (a *App) handleGmail() {
	job, err := a.selectedJobRecord()
	if err != nil {
		dialog.ShowError(err, a.mainWindow)
		return
	}
	subject := strings.TrimSpace(a.subjectEntry.Text)
	if subject == "" {
		dialog.ShowError(errors.New("please enter an email subject filter"), a.mainWindow)
		return
	}
	if !a.agent.HasAttachmentSource() {
		if err := a.connectGmail(); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
	}

	a.run(func(ctx context.Context) (models.ScreeningReport, error) {
		return a.agent.ScreenFromGmail(ctx, job, subject)
	})
}

// run executes a screening in the background and updates the UI when it ends
func (a *App) run(screen func(ctx context.Context) (models.ScreeningReport, error)) {
	a.processBtn.Disable()
	a.gmailBtn.Disable()
	a.cancelBtn.Enable()
	a.exportCSVBtn.Disable()
	a.exportXLSXBtn.Disable()

	a.agent.SetProgressCallback(func(current, total int, message string) {
		fyne.Do(func() {
			a.progressBar.SetValue(float64(current) / float64(total))
			a.progressLabel.SetText(message)
		})
	})

	go func() {
		report, err := screen(context.Background())

		fyne.Do(func() {
			a.processBtn.Enable()
			a.gmailBtn.Enable()
			a.cancelBtn.Disable()

			if err != nil {
				if errors.Is(err, context.Canceled) {
					a.progressLabel.SetText("Screening canceled")
				} else {
					a.progressLabel.SetText("Error: " + err.Error())
					dialog.ShowError(err, a.mainWindow)
				}
				return
			}

			a.report = report
			a.resultsTable.Refresh()
			a.resumeView.SetText("")
			a.exportCSVBtn.Enable()
			a.exportXLSXBtn.Enable()
			a.progressLabel.SetText(fmt.Sprintf("Complete! Ranked %d candidates", len(report.Candidates)))

			a.fyneApp.SendNotification(&fyne.Notification{
				Title:   "Screening Complete",
				Content: fmt.Sprintf("Ranked %d candidates for %s", len(report.Candidates), report.Job.Title),
			})
		})
	}()
}

func (a *App) handleCancel() {
	if a.agent.Cancel() {
		a.progressLabel.SetText("Canceling...")
	}
}

func (a *App) handleExportCSV() {
	a.saveReport(export.DelimitedFileName, func(w io.Writer) error {
		_, err := io.WriteString(w, export.ToDelimitedText(a.report.Candidates))
		return err
	})
}

func (a *App) handleExportExcel() {
	a.saveReport(export.ExcelFileName, func(w io.Writer) error {
		return export.WriteExcel(w, a.report.Candidates, a.report.Job)
	})
}

func (a *App) saveReport(defaultName string, write func(io.Writer) error) {
	if len(a.report.Candidates) == 0 {
		dialog.ShowError(errors.New("no results to export"), a.mainWindow)
		return
	}

	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return
		}
		defer uc.Close()

		if err := write(uc); err != nil {
			dialog.ShowError(fmt.Errorf("failed to export: %w", err), a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Results exported to "+uc.URI().Name(), a.mainWindow)
	}, a.mainWindow)
	fd.SetFileName(defaultName)
	fd.Show()
}

// handleAuthenticate walks the user through the Gmail OAuth consent flow
func (a *App) handleAuthenticate() {
	oauthCfg, err := ingestion.LoadOAuthConfig(a.config.Gmail.CredentialsPath)
	if err != nil {
		dialog.ShowError(fmt.Errorf("%w. Configure Gmail credentials in Settings", err), a.mainWindow)
		return
	}

	urlEntry := widget.NewEntry()
	urlEntry.SetText(ingestion.AuthCodeURL(oauthCfg))
	codeEntry := widget.NewEntry()
	codeEntry.SetPlaceHolder("Paste the authorization code")

	items := []*widget.FormItem{
		widget.NewFormItem("Open this URL", urlEntry),
		widget.NewFormItem("Code", codeEntry),
	}
	dialog.ShowForm("Authorize Gmail", "Authorize", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		code := strings.TrimSpace(codeEntry.Text)
		go func() {
			err := ingestion.Authorize(context.Background(), oauthCfg, code, a.config.Gmail.TokenPath)
			if err == nil {
				err = a.connectGmail()
			}
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(fmt.Errorf("authentication failed: %w", err), a.mainWindow)
					return
				}
				dialog.ShowInformation("Success", "Gmail authorized. You can now screen attachments.", a.mainWindow)
			})
		}()
	}, a.mainWindow)
}

// connectGmail attaches a Gmail source built from the cached token
func (a *App) connectGmail() error {
	oauthCfg, err := ingestion.LoadOAuthConfig(a.config.Gmail.CredentialsPath)
	if err != nil {
		return err
	}
	h, err := ingestion.NewGmailHandler(context.Background(), oauthCfg, a.config.Gmail.TokenPath, a.agent.Files(), a.logger)
	if err != nil {
		return err
	}
	a.agent.SetAttachmentSource(h)
	return nil
}

// jobOptionLabel is how a job appears in pickers
func jobOptionLabel(j models.JobRecord) string {
	return fmt.Sprintf("#%d %s", j.ID, j.Title)
}

// jobFromForm builds a job record from the add-job form fields
func jobFromForm(title, skills, description, years string) (models.JobRecord, error) {
	rec := models.JobRecord{
		Title:       strings.TrimSpace(title),
		Skills:      strings.TrimSpace(skills),
		Description: strings.TrimSpace(description),
	}
	if y := strings.TrimSpace(years); y != "" {
		n, err := strconv.Atoi(y)
		if err != nil || n < 0 {
			return models.JobRecord{}, fmt.Errorf("years of experience must be a whole number, got %q", years)
		}
		rec.YearsExperience = n
	}
	if err := rec.Validate(); err != nil {
		return models.JobRecord{}, err
	}
	return rec, nil
}

// appendPath adds path to the selection unless it is already there
func appendPath(paths []string, path string, maxFiles int) ([]string, error) {
	if !ingestion.IsSupported(path) {
		return paths, fmt.Errorf("unsupported file type: %s", filepath.Base(path))
	}
	if slices.Contains(paths, path) {
		return paths, nil
	}
	if len(paths) >= maxFiles {
		return paths, fmt.Errorf("%w: at most %d allowed", models.ErrTooManyFiles, maxFiles)
	}
	return append(paths, path), nil
}

// resultCell returns the table text for row (0 is the header) and col
func resultCell(batch models.RankedBatch, row, col int) string {
	if col < 0 || col >= len(resultHeaders) {
		return ""
	}
	if row == 0 {
		return resultHeaders[col]
	}
	if row-1 >= len(batch) {
		return ""
	}

	c := batch[row-1]
	switch col {
	case 0:
		return strconv.Itoa(row)
	case 1:
		return models.CandidateLabel(row - 1)
	case 2:
		return strconv.Itoa(c.SkillMatchScore)
	case 3:
		return strconv.Itoa(c.ExperienceScore)
	case 4:
		return strconv.Itoa(c.TotalScore)
	case 5:
		return strings.Join(c.MatchedSkills, ", ")
	case 6:
		return strings.Join(c.MissingSkills, ", ")
	default:
		return strings.Join(c.BiasFlags, ", ")
	}
}

func resumePreview(c models.ScoredCandidate) string {
	if c.Reasoning == "" {
		return c.AnonymizedResumeText
	}
	return "Reasoning: " + c.Reasoning + "\n\n" + c.AnonymizedResumeText
}
