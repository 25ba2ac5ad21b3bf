package experience

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Rule is one experience heuristic. Candidates returns every year count the
// rule finds in text; range filtering is left to the Extractor.
type Rule interface {
	Name() string
	Candidates(text string, now time.Time) []int
}

// countRule reads the first capture group as a number of years
type countRule struct {
	name    string
	pattern *regexp.Regexp
}

func (r countRule) Name() string { return r.name }

func (r countRule) Candidates(text string, _ time.Time) []int {
	var years []int
	for _, m := range r.pattern.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			years = append(years, n)
		}
	}
	return years
}

// dateRangeRule turns "2018 - 2022" or "2019 – present" into elapsed years
type dateRangeRule struct {
	name    string
	pattern *regexp.Regexp
}

func (r dateRangeRule) Name() string { return r.name }

func (r dateRangeRule) Candidates(text string, now time.Time) []int {
	var years []int
	for _, m := range r.pattern.FindAllStringSubmatch(text, -1) {
		start, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		end := now.Year()
		if token := strings.ToLower(m[2]); token != "present" && token != "current" {
			if end, err = strconv.Atoi(m[2]); err != nil {
				continue
			}
		}

		if end < start {
			continue
		}
		years = append(years, end-start)
	}
	return years
}

// sinceRule turns "since 2017" or "from 2019" into years up to now
type sinceRule struct {
	name    string
	pattern *regexp.Regexp
}

func (r sinceRule) Name() string { return r.name }

func (r sinceRule) Candidates(text string, now time.Time) []int {
	var years []int
	for _, m := range r.pattern.FindAllStringSubmatch(text, -1) {
		start, err := strconv.Atoi(m[1])
		if err != nil || start > now.Year() {
			continue
		}
		years = append(years, now.Year()-start)
	}
	return years
}

// DefaultRules returns the built-in heuristics in evaluation order
func DefaultRules() []Rule {
	return []Rule{
		countRule{
			name:    "years-of-experience",
			pattern: regexp.MustCompile(`(?i)(\d+)[+\-]?\s*(?:years?|yrs?)\s*(?:of\s*)?(?:experience|exp)`),
		},
		countRule{
			name:    "experience-label",
			pattern: regexp.MustCompile(`(?i)experience:?\s*(\d+)[+\-]?\s*(?:years?|yrs?)`),
		},
		countRule{
			name:    "years-in-as-with",
			pattern: regexp.MustCompile(`(?i)(\d+)[+\-]?\s*(?:years?|yrs?)\s*(?:in|as|with)`),
		},
		countRule{
			name:    "over-more-than",
			pattern: regexp.MustCompile(`(?i)(?:over|more\s*than)\s*(\d+)[+\-]?\s*(?:years?|yrs?)`),
		},
		// Only the lower bound of "5-8 years of experience" counts here.
		countRule{
			name:    "year-range",
			pattern: regexp.MustCompile(`(?i)(\d+)[\s\-to]*(\d+)?\s*(?:years?|yrs?)\s*(?:of\s*)?(?:experience|exp)`),
		},
		dateRangeRule{
			name:    "date-range",
			pattern: regexp.MustCompile(`(?i)(\d{4})\s*[-–]\s*(\d{4}|present|current)`),
		},
		sinceRule{
			name:    "since-from",
			pattern: regexp.MustCompile(`(?i)(?:since|from)\s*(\d{4})`),
		},
	}
}
