package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
	"github.com/xuri/excelize/v2"
)

// ExcelFileName is the download name of the report workbook
const ExcelFileName = "screening_results.xlsx"

// Sheet names of the workbook
const (
	SummarySheet    = "Summary"
	CandidatesSheet = "Ranked Candidates"
	ResumesSheet    = "Anonymized Resumes"
)

// score bands used for row colouring and summary statistics
var bands = []struct {
	label string
	min   int
	color string
}{
	{label: "Excellent (90-100)", min: 90, color: "C6EFCE"},
	{label: "Good (70-89)", min: 70, color: "FFEB9C"},
	{label: "Fair (50-69)", min: 50, color: "FFC7CE"},
	{label: "Poor (<50)", min: 0, color: "FF9999"},
}

func bandIndex(score int) int {
	for i, b := range bands {
		if score >= b.min {
			return i
		}
	}
	return len(bands) - 1
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// ExportToExcel writes the report workbook to outputPath and returns the path
// actually written, which always ends in .xlsx.
func ExportToExcel(batch models.RankedBatch, job models.JobRecord, outputPath string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f, err := buildWorkbook(batch, job, time.Now())
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(outputPath); err != nil {
		// Fall back to an in-memory write when excelize cannot save in place
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return "", fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}
		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0o644); fileErr != nil {
			return "", fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return outputPath, nil
}

// WriteExcel streams the report workbook to w
func WriteExcel(w io.Writer, batch models.RankedBatch, job models.JobRecord) error {
	f, err := buildWorkbook(batch, job, time.Now())
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel report: %w", err)
	}
	return nil
}

func buildWorkbook(batch models.RankedBatch, job models.JobRecord, generated time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{CandidatesSheet, ResumesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	if err := createSummarySheet(f, batch, job, generated); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := createRankedCandidatesSheet(f, batch); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create ranked candidates sheet: %w", err)
	}
	if err := createResumesSheet(f, batch); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create anonymized resumes sheet: %w", err)
	}

	return f, nil
}

func headerStyle(f *excelize.File, size float64) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: size, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
}

// createSummarySheet writes job details and score statistics
func createSummarySheet(f *excelize.File, batch models.RankedBatch, job models.JobRecord, generated time.Time) error {
	sheet := SummarySheet
	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 60)

	titleStyle, err := headerStyle(f, 14)
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 1
	section := func(title string) {
		f.SetCellValue(sheet, cell("A", row), title)
		f.SetCellStyle(sheet, cell("A", row), cell("B", row), titleStyle)
		f.MergeCell(sheet, cell("A", row), cell("B", row))
		row++
	}
	pair := func(label string, value interface{}) {
		f.SetCellValue(sheet, cell("A", row), label)
		f.SetCellStyle(sheet, cell("A", row), cell("A", row), labelStyle)
		f.SetCellValue(sheet, cell("B", row), value)
		row++
	}

	section("Resume Screening Report")
	row++
	pair("Job Title:", job.Title)
	pair("Required Skills:", job.Skills)
	pair("Required Experience (years):", job.YearsExperience)
	pair("Generated:", generated.Format("2006-01-02 15:04:05"))
	pair("Candidates Scored:", len(batch))
	row++

	if len(batch) == 0 {
		return nil
	}

	section("Statistics")
	counts := make([]int, len(bands))
	flagged := 0
	sum, highest, lowest := 0, batch[0].TotalScore, batch[0].TotalScore
	for _, c := range batch {
		counts[bandIndex(c.TotalScore)]++
		if len(c.BiasFlags) > 0 {
			flagged++
		}
		sum += c.TotalScore
		if c.TotalScore > highest {
			highest = c.TotalScore
		}
		if c.TotalScore < lowest {
			lowest = c.TotalScore
		}
	}
	for i, b := range bands {
		pair(b.label+":", counts[i])
	}
	row++
	pair("Average Score:", fmt.Sprintf("%.2f", float64(sum)/float64(len(batch))))
	pair("Highest Score:", highest)
	pair("Lowest Score:", lowest)
	pair("Candidates with Bias Flags:", flagged)

	return nil
}

// createRankedCandidatesSheet writes one colour-coded row per candidate
func createRankedCandidatesSheet(f *excelize.File, batch models.RankedBatch) error {
	sheet := CandidatesSheet
	widths := map[string]float64{"A": 8, "B": 16, "C": 12, "D": 12, "E": 12, "F": 30, "G": 30, "H": 34}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}

	hdr, err := headerStyle(f, 11)
	if err != nil {
		return err
	}
	bandStyles := make([]int, len(bands))
	for i, b := range bands {
		style, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{b.color}, Pattern: 1},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
			Border:    thinBorder,
		})
		if err != nil {
			return err
		}
		bandStyles[i] = style
	}

	headers := []string{"Rank", "Candidate", "Skill Match", "Experience", "Total Score", "Matched Skills", "Missing Skills", "Bias Flags"}
	for col, header := range headers {
		c := cell(string(rune('A'+col)), 1)
		f.SetCellValue(sheet, c, header)
		f.SetCellStyle(sheet, c, c, hdr)
	}

	for i, c := range batch {
		row := i + 2
		f.SetCellValue(sheet, cell("A", row), i+1)
		f.SetCellValue(sheet, cell("B", row), models.CandidateLabel(i))
		f.SetCellValue(sheet, cell("C", row), c.SkillMatchScore)
		f.SetCellValue(sheet, cell("D", row), c.ExperienceScore)
		f.SetCellValue(sheet, cell("E", row), c.TotalScore)
		f.SetCellValue(sheet, cell("F", row), strings.Join(c.MatchedSkills, "; "))
		f.SetCellValue(sheet, cell("G", row), strings.Join(c.MissingSkills, "; "))
		f.SetCellValue(sheet, cell("H", row), strings.Join(c.BiasFlags, "; "))
		f.SetCellStyle(sheet, cell("A", row), cell("H", row), bandStyles[bandIndex(c.TotalScore)])
	}

	if len(batch) > 0 {
		f.AutoFilter(sheet, fmt.Sprintf("A1:H%d", len(batch)+1), []excelize.AutoFilterOptions{})
	}
	return freezeHeader(f, sheet)
}

// createResumesSheet writes the anonymized text and any model reasoning
func createResumesSheet(f *excelize.File, batch models.RankedBatch) error {
	sheet := ResumesSheet
	f.SetColWidth(sheet, "A", "A", 16)
	f.SetColWidth(sheet, "B", "B", 50)
	f.SetColWidth(sheet, "C", "C", 90)

	hdr, err := headerStyle(f, 11)
	if err != nil {
		return err
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}

	for col, header := range []string{"Candidate", "Reasoning", "Anonymized Resume"} {
		c := cell(string(rune('A'+col)), 1)
		f.SetCellValue(sheet, c, header)
		f.SetCellStyle(sheet, c, c, hdr)
	}

	for i, c := range batch {
		row := i + 2
		f.SetCellValue(sheet, cell("A", row), models.CandidateLabel(i))
		f.SetCellValue(sheet, cell("B", row), c.Reasoning)
		f.SetCellValue(sheet, cell("C", row), c.AnonymizedResumeText)
		f.SetCellStyle(sheet, cell("A", row), cell("C", row), wrapStyle)
		f.SetRowHeight(sheet, row, 120)
	}

	return freezeHeader(f, sheet)
}

func freezeHeader(f *excelize.File, sheet string) error {
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
