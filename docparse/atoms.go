// Package docparse turns uploaded business-brief documents into text and
// runs the field extraction pipeline over it.
//
// The package is organised the same way as the rest of the service:
//   - atoms.go: pure helpers for text normalisation and size estimates
//   - kind.go: document kind detection from magic bytes, MIME type and name
//   - pdf.go, docx.go, legacy_doc.go: per-format text extractors
//   - service.go: the Service organism that validates, decodes, extracts
//     fields, records metrics and writes history
package docparse

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTrailingWS = regexp.MustCompile(`[ \t]+\n`)
	reBlankRuns  = regexp.MustCompile(`\n{3,}`)
)

// EstimateTokenCount provides a rough estimate of tokens in a text using an
// average of 4 characters per token.
//
// Example:
//
//	tokens := EstimateTokenCount("Hello, world!") // Returns 3
//	tokens := EstimateTokenCount("")              // Returns 0
func EstimateTokenCount(text string) int {
	if len(text) == 0 {
		return 0
	}
	return len(text) / 4
}

// TruncateTextWithEllipsis truncates text to maxLen runes and appends "..."
// if truncated. The result never exceeds maxLen runes. If maxLen is less
// than 4, no ellipsis is added.
//
// Example:
//
//	result := TruncateTextWithEllipsis("Hello, world!", 8)  // Returns "Hello..."
//	result := TruncateTextWithEllipsis("Hi", 10)            // Returns "Hi"
func TruncateTextWithEllipsis(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen < 4 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// NormalizeDocumentText prepares decoded document text for extraction.
// Line endings become "\n", NUL bytes are dropped, trailing spaces on each
// line are removed and runs of blank lines collapse to a single blank line.
// Tabs inside a line are preserved so table cells stay on one line.
//
// Example:
//
//	NormalizeDocumentText("Title\r\n\r\n\r\n\r\nBody  \r\n") // "Title\n\nBody"
func NormalizeDocumentText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = reCRLF.ReplaceAllString(text, "\n")
	text = reTrailingWS.ReplaceAllString(text, "\n")
	text = reBlankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
