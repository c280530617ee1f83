package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultLabelMaxLen is the length below which a value containing a label
// word is treated as a label rather than content.
const DefaultLabelMaxLen = 50

// defaultLabelWords are the words that mark a short string as a field
// label. Value words such as "high" or "draft" are deliberately absent so
// that "Priority High" yields "high".
var defaultLabelWords = []string{
	"priority",
	"status",
	"owner",
	"unit",
	"theme",
	"objective",
	"outcomes",
	"scope",
	"impact",
	"path",
	"exceptions",
	"users",
	"solutions",
	"urgency",
	"description",
	"submitted",
}

// LabelFilter decides whether a candidate value is really just a field label
// that a pattern captured by mistake.
type LabelFilter struct {
	words  []string
	maxLen int
}

// NewLabelFilter creates a filter over the given label words. A value is a
// label when it is shorter than maxLen runes and contains one of the words.
func NewLabelFilter(words []string, maxLen int) LabelFilter {
	lower := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			lower = append(lower, w)
		}
	}
	return LabelFilter{words: lower, maxLen: maxLen}
}

// DefaultLabelFilter returns the filter shared by every extractor.
func DefaultLabelFilter() LabelFilter {
	return NewLabelFilter(defaultLabelWords, DefaultLabelMaxLen)
}

// IsLabel reports whether value looks like a field label.
// A label word matches any word that starts with it, so inflected forms
// such as "owners" or "impacted" count while "community" does not count
// as "unit".
//
// Example:
//
//	f.IsLabel("Business Owner")   // true
//	f.IsLabel("Impacted teams")   // true
//	f.IsLabel("High")             // false
func (f LabelFilter) IsLabel(value string) bool {
	if utf8.RuneCountInString(value) >= f.maxLen {
		return false
	}
	tokens := strings.FieldsFunc(strings.ToLower(value), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, tok := range tokens {
		for _, w := range f.words {
			if strings.HasPrefix(tok, w) {
				return true
			}
		}
	}
	return false
}
