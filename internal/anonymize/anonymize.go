// Package anonymize redacts identity-revealing text from resumes before
// they are shown to reviewers.
package anonymize

import (
	"fmt"
	"regexp"
)

// Redaction markers
const (
	LabelMarker      = "[redacted]"
	AggressiveMarker = "[REDACTED]"
)

// Mode selects a redaction policy
type Mode string

const (
	// ModeLabels redacts whole lines starting with Name, Email, Phone or Contact.
	ModeLabels Mode = "labels"
	// ModeAggressive also redacts embedded emails, phone numbers, gendered
	// words and every capitalized word.
	ModeAggressive Mode = "aggressive"
)

var (
	labelLine = regexp.MustCompile(`(?im)^([ \t]*)(?:name|email|phone|contact):?.*$`)

	emailPattern       = regexp.MustCompile(`\b[\w.-]+@[\w.-]+\.\w{2,4}\b`)
	phonePattern       = regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	genderPattern      = regexp.MustCompile(`(?i)\b(?:male|female|he|she|his|her)\b`)
	capitalizedPattern = regexp.MustCompile(`\b[A-Z][a-z]+\b`)
)

// Redactor applies one redaction policy
type Redactor struct {
	mode Mode
}

// New creates a Redactor for the given mode
func New(mode Mode) (*Redactor, error) {
	switch mode {
	case ModeLabels, ModeAggressive:
		return &Redactor{mode: mode}, nil
	case "":
		return &Redactor{mode: ModeLabels}, nil
	default:
		return nil, fmt.Errorf("unknown anonymization mode: %q", mode)
	}
}

// Mode returns the redactor's policy
func (r *Redactor) Mode() Mode {
	return r.mode
}

// Redact applies the redactor's policy to text
func (r *Redactor) Redact(text string) string {
	if r.mode == ModeAggressive {
		return RedactAggressive(text)
	}
	return Redact(text)
}

// Redact replaces every line labelled Name, Email, Phone or Contact
// (case-insensitive, optional colon) with [redacted]. Leading indentation is
// kept; all other lines pass through unchanged.
func Redact(text string) string {
	return labelLine.ReplaceAllString(text, "${1}"+LabelMarker)
}

// RedactAggressive redacts emails and phone numbers first, then gendered words
// and capitalized words, anywhere in the text.
func RedactAggressive(text string) string {
	out := emailPattern.ReplaceAllString(text, AggressiveMarker)
	out = phonePattern.ReplaceAllString(out, AggressiveMarker)
	out = genderPattern.ReplaceAllString(out, AggressiveMarker)
	out = capitalizedPattern.ReplaceAllString(out, AggressiveMarker)
	return out
}
