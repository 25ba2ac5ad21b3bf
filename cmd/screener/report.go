package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/export"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
)

// printReport writes the ranked candidates as an aligned table
func printReport(w io.Writer, report models.ScreeningReport) error {
	fmt.Fprintf(w, "Job: %s (run %s)\n\n", report.Job.Title, report.RunID)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCANDIDATE\tSKILL\tEXPERIENCE\tTOTAL\tMISSING\tFLAGS")
	for i, c := range report.Candidates {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%s\t%s\n",
			i+1,
			models.CandidateLabel(i),
			c.SkillMatchScore,
			c.ExperienceScore,
			c.TotalScore,
			orDash(strings.Join(c.MissingSkills, ", ")),
			orDash(strings.Join(c.BiasFlags, "; ")),
		)
	}
	return tw.Flush()
}

// writeReport saves the report as an Excel workbook when path ends in .xlsx
// and as delimited text otherwise. It returns the path written.
func writeReport(path string, report models.ScreeningReport) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return export.ExportToExcel(report.Candidates, report.Job, path)
	}
	if err := os.WriteFile(path, []byte(export.ToDelimitedText(report.Candidates)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
