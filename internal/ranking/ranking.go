// Package ranking orders scored candidates for review.
package ranking

import (
	"sort"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
)

// Rank returns the candidates ordered by total score, highest first.
// Candidates with no skill match go after every candidate that matched at
// least one skill, in input order, whatever their total. Ties keep their
// input order and labels are never reassigned. The input is not modified.
func Rank(candidates []models.ScoredCandidate) models.RankedBatch {
	ranked := make(models.RankedBatch, 0, len(candidates))
	unmatched := make([]models.ScoredCandidate, 0)

	for _, c := range candidates {
		if c.SkillMatchScore == 0 {
			unmatched = append(unmatched, c)
			continue
		}
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})

	return append(ranked, unmatched...)
}

// Top returns at most n leading candidates of a ranked batch
func Top(batch models.RankedBatch, n int) models.RankedBatch {
	if n < 0 {
		n = 0
	}
	if n > len(batch) {
		n = len(batch)
	}
	return batch[:n]
}
