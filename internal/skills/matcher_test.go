package skills

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name        string
		resume      string
		skills      []string
		wantMatched []string
		wantMissing []string
	}{
		{
			name:        "Partial match keeps job order",
			resume:      "I know Python and SQL well.",
			skills:      []string{"Python", "SQL", "Docker"},
			wantMatched: []string{"Python", "SQL"},
			wantMissing: []string{"Docker"},
		},
		{
			name:        "Case insensitive",
			resume:      "KUBERNETES and terraform",
			skills:      []string{"Terraform", "kubernetes"},
			wantMatched: []string{"Terraform", "kubernetes"},
			wantMissing: []string{},
		},
		{
			name:        "Substring false positive",
			resume:      "Frontend work in JavaScript",
			skills:      []string{"Java"},
			wantMatched: []string{"Java"},
			wantMissing: []string{},
		},
		{
			name:        "Empty resume",
			resume:      "",
			skills:      []string{"Go", "Rust"},
			wantMatched: []string{},
			wantMissing: []string{"Go", "Rust"},
		},
		{
			name:        "No required skills",
			resume:      "Anything at all",
			skills:      nil,
			wantMatched: []string{},
			wantMissing: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.resume, tt.skills)
			assert.Equal(t, tt.wantMatched, got.Matched)
			assert.Equal(t, tt.wantMissing, got.Missing)
		})
	}
}

// Matched and Missing always partition the required skills.
func TestMatch_PartitionsSkills(t *testing.T) {
	resume := "Go, gRPC, PostgreSQL, some AWS"
	required := []string{"go", "AWS", "Kafka", "postgresql", "Redis", "gRPC"}

	got := Match(resume, required)

	seen := map[string]int{}
	for _, s := range got.Matched {
		seen[strings.ToLower(s)]++
	}
	for _, s := range got.Missing {
		seen[strings.ToLower(s)]++
	}

	assert.Len(t, seen, len(required))
	for _, s := range required {
		assert.Equal(t, 1, seen[strings.ToLower(s)], "skill %q must appear exactly once", s)
	}
}
