// Package extraction turns the plain text of a business brief into a set of
// canonical fields. Every strategy in this package is a pure function over
// strings; nothing here performs I/O or logs.
package extraction

import (
	"regexp"
	"strings"
	"unicode"
)

// isEdgeSeparator reports whether r belongs to the run of bullet, dash, pipe
// and whitespace characters that CleanValue strips from both ends of a value.
func isEdgeSeparator(r rune) bool {
	switch r {
	case '-', '–', '—', '•', '·', '▪', '|':
		return true
	}
	return unicode.IsSpace(r)
}

// CleanValue canonicalizes a raw captured value.
// It removes the leading and trailing run of bullet/dash/pipe/tab characters,
// turns newlines into spaces, collapses internal whitespace to a single space
// and trims the result. CleanValue(CleanValue(s)) == CleanValue(s).
//
// Example:
//
//	CleanValue("  - Foo\n  Bar |") // Returns "Foo Bar"
//	CleanValue("\t•\t")            // Returns ""
func CleanValue(raw string) string {
	trimmed := strings.TrimFunc(raw, isEdgeSeparator)
	if trimmed == "" {
		return ""
	}
	return strings.Join(strings.Fields(trimmed), " ")
}

var (
	leadingFieldPunct  = regexp.MustCompile(`^[-:•]\s*`)
	trailingFieldPunct = regexp.MustCompile(`\s*[-:]$`)
)

// stripFieldPunctuation removes a label colon or dash left on either side of
// a value captured by the field mapper.
func stripFieldPunctuation(value string) string {
	value = leadingFieldPunct.ReplaceAllString(value, "")
	value = trailingFieldPunct.ReplaceAllString(value, "")
	return strings.TrimSpace(value)
}

// SplitList splits a captured value on commas and semicolons into cleaned,
// non-empty items.
func SplitList(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if item := CleanValue(p); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil
	}
	return items
}

// InferBoolean reports whether text reads as an affirmative answer.
func InferBoolean(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "yes") ||
		strings.Contains(lower, "true") ||
		strings.Contains(lower, "affects")
}

// nonEmptyLines splits text into trimmed lines, dropping blank ones.
func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
