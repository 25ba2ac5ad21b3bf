// Package ingestion turns uploaded files and mailbox attachments into resume text.
package ingestion

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

const (
	// MinExtractedTextLength is the minimum PDF text length treated as a successful extraction
	MinExtractedTextLength = 50
	// BinarySampleSize is the number of bytes to sample for binary detection
	BinarySampleSize = 1000
	// BinaryThreshold is the proportion of non-printable characters that indicates binary data
	BinaryThreshold = 0.3
)

// SupportedExtensions lists the resume formats ExtractText understands
var SupportedExtensions = []string{".pdf", ".docx", ".txt"}

var (
	inlineSpace = regexp.MustCompile(`[ \t\r\f\v\x{00A0}]+`)
	blankLines  = regexp.MustCompile(`\n{3,}`)
	xmlTags     = regexp.MustCompile(`<[^>]+>`)
)

// IsSupported reports whether the file name has a supported extension
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ExtractText reads a resume file from disk and returns its text
func ExtractText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filepath.Base(filePath), err)
	}
	return ExtractBytes(filepath.Base(filePath), data)
}

// ExtractBytes returns the text of a resume held in memory. The file name
// selects the format.
func ExtractBytes(name string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))

	switch ext {
	case ".txt":
		text := string(data)
		if IsBinaryData(text) {
			return "", fmt.Errorf("file %s looks binary, not plain text", name)
		}
		return text, nil
	case ".pdf":
		return extractPDF(name, data)
	case ".docx":
		return extractDOCX(name, data)
	default:
		return "", fmt.Errorf("unsupported file type: %q", ext)
	}
}

// extractPDF reads the plain-text layer of a PDF. Scanned PDFs without text
// yield an error.
func extractPDF(name string, data []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed PDF %s: %v", name, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF %s: %w", name, err)
	}
	rs, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text %s: %w", name, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rs); err != nil {
		return "", fmt.Errorf("failed to read PDF text %s: %w", name, err)
	}

	text = normalizeWhitespace(buf.String())
	if len(text) < MinExtractedTextLength {
		return "", fmt.Errorf("extracted text is too short (likely a scanned PDF): %s", name)
	}
	return text, nil
}

// extractDOCX pulls paragraph text out of word/document.xml
func extractDOCX(name string, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX %s: %w", name, err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open DOCX body %s: %w", name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read DOCX body %s: %w", name, err)
		}

		xml := strings.ReplaceAll(string(body), "</w:p>", "\n")
		xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
		text := html.UnescapeString(xmlTags.ReplaceAllString(xml, ""))
		return normalizeWhitespace(text), nil
	}

	return "", fmt.Errorf("no document.xml found in DOCX %s", name)
}

// normalizeWhitespace collapses runs of inline whitespace and blank lines.
// Line breaks are kept so line-oriented redaction still works.
func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// IsBinaryData checks if content appears to be binary (PDF/ZIP markers)
func IsBinaryData(content string) bool {
	if len(content) == 0 {
		return false
	}

	if strings.HasPrefix(content, "%PDF-") {
		return true
	}
	if strings.HasPrefix(content, "PK") {
		return true
	}

	sampleSize := min(BinarySampleSize, len(content))
	nonPrintable := 0
	for i := 0; i < sampleSize; i++ {
		ch := content[i]
		if ch < 32 && ch != '\n' && ch != '\r' && ch != '\t' {
			nonPrintable++
		}
	}

	return float64(nonPrintable)/float64(sampleSize) > BinaryThreshold
}
