package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/jobs"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/schema"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scoreJobFile string
	scoreJobID   int
	scoreOut     string
)

var scoreCmd = &cobra.Command{
	Use:   "score [flags] RESUME...",
	Short: "Score and rank resume files against a job",
	Long: `Score and rank PDF, DOCX or TXT resumes against a job.

The job comes from --job-file (a JSON job record), --job (an id in the job store)
or, when neither is given, an interactive picker over the stored jobs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreJobFile, "job-file", "", "JSON file with title, skills, description and years_experience")
	scoreCmd.Flags().IntVar(&scoreJobID, "job", 0, "id of a stored job")
	scoreCmd.Flags().StringVarP(&scoreOut, "out", "o", "", "write the report to this file (.csv or .xlsx)")
	scoreCmd.MarkFlagsMutuallyExclusive("job-file", "job")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := setup(ctx, cfgFile)
	if err != nil {
		return err
	}
	defer rt.Close()

	job, err := resolveJob(rt.store, scoreJobFile, scoreJobID)
	if err != nil {
		return err
	}

	rt.agent.SetProgressCallback(func(current, _ int, message string) {
		rt.logger.Debug(message, zap.Int("progress", current))
	})

	report, err := rt.agent.ScreenFiles(ctx, job, args)
	if err != nil {
		return err
	}

	if scoreOut != "" {
		path, err := writeReport(scoreOut, report)
		if err != nil {
			return err
		}
		rt.logger.Info("report written", zap.String("path", path))
	}

	return printReport(cmd.OutOrStdout(), report)
}

// resolveJob picks the job to screen against
func resolveJob(store *jobs.Store, jobFile string, jobID int) (models.JobRecord, error) {
	switch {
	case jobFile != "":
		return readJobFile(jobFile)
	case jobID > 0:
		return store.Get(jobID)
	default:
		return promptJob(store)
	}
}

func readJobFile(path string) (models.JobRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.JobRecord{}, fmt.Errorf("failed to read job file: %w", err)
	}
	if err := schema.Validate(schema.Job, string(data)); err != nil {
		return models.JobRecord{}, fmt.Errorf("invalid job file %s: %w", path, err)
	}

	var job models.JobRecord
	if err := json.Unmarshal(data, &job); err != nil {
		return models.JobRecord{}, fmt.Errorf("failed to parse job file: %w", err)
	}
	return job, nil
}

func promptJob(store *jobs.Store) (models.JobRecord, error) {
	list, err := store.List()
	if err != nil {
		return models.JobRecord{}, err
	}
	if len(list) == 0 {
		return models.JobRecord{}, fmt.Errorf("%w: the job store is empty, add one with `screener jobs add`", models.ErrNoJobSelected)
	}

	items := make([]string, len(list))
	for i, j := range list {
		items[i] = fmt.Sprintf("%d %s (%s)", j.ID, j.Title, j.Skills)
	}

	prompt := promptui.Select{
		Label: "Choose a job and press ENTER",
		Items: items,
		Size:  10,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return models.JobRecord{}, err
	}
	return list[idx], nil
}
