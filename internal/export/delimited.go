package export

import (
	"strconv"
	"strings"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
)

// DelimitedFileName is the download name used for delimited reports
const DelimitedFileName = "screening_results.csv"

var delimitedHeader = []string{
	"Candidate",
	"Skill Match Score",
	"Experience Score",
	"Total Score",
	"Matched Skills",
	"Missing Skills",
	"Bias Flags",
}

// ToDelimitedText renders a ranked batch as comma-separated text. Every field
// is double-quoted, lists are joined with "; " and rows are joined with "\n"
// without a trailing newline. Candidates are labelled "Candidate #N" by their
// position in the batch.
func ToDelimitedText(batch models.RankedBatch) string {
	rows := make([]string, 0, len(batch)+1)
	rows = append(rows, quoteRow(delimitedHeader))

	for i, c := range batch {
		rows = append(rows, quoteRow([]string{
			models.CandidateLabel(i),
			strconv.Itoa(c.SkillMatchScore),
			strconv.Itoa(c.ExperienceScore),
			strconv.Itoa(c.TotalScore),
			strings.Join(c.MatchedSkills, "; "),
			strings.Join(c.MissingSkills, "; "),
			strings.Join(c.BiasFlags, "; "),
		}))
	}

	return strings.Join(rows, "\n")
}

func quoteRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
