// Package skills matches a job's required skills against resume text.
package skills

import "strings"

// Result holds the outcome of matching one resume against a skill list.
// Both slices keep the order of the required skills.
type Result struct {
	Matched []string
	Missing []string
}

// Match reports which required skills appear in the resume text.
//
// A skill matches when its lowercased form is a substring of the lowercased
// resume. There is no tokenization or word-boundary check, so short skills can
// match inside longer words: "java" matches "javascript" and "go" matches
// "google". An empty skill list yields empty Matched and Missing slices.
func Match(resumeText string, requiredSkills []string) Result {
	res := Result{
		Matched: []string{},
		Missing: []string{},
	}

	lower := strings.ToLower(resumeText)
	for _, skill := range requiredSkills {
		if strings.Contains(lower, strings.ToLower(skill)) {
			res.Matched = append(res.Matched, skill)
		} else {
			res.Missing = append(res.Missing, skill)
		}
	}

	return res
}
