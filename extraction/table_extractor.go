package extraction

import (
	"regexp"
	"strings"
)

// TableExtractor reads label/value pairs laid out one per line, the way
// text comes out of a two-column table: "Priority High" or a label on one
// line with its value on the next.
type TableExtractor struct {
	filter LabelFilter
	rules  []tableRule
}

type tableRule struct {
	name   FieldName
	labels []*regexp.Regexp
}

// NewTableExtractor builds line matchers for every catalog variant.
// Boolean fields are left to the field mapper, which evaluates the whole
// labelled sentence.
func NewTableExtractor(catalog *Catalog, filter LabelFilter) *TableExtractor {
	t := &TableExtractor{filter: filter}
	for _, name := range catalog.Fields() {
		if name.Kind() == KindBoolean {
			continue
		}
		rule := tableRule{name: name}
		for _, variant := range catalog.Variants(name) {
			rule.labels = append(rule.labels, regexp.MustCompile(`(?i)`+labelExpr(variant)))
		}
		t.rules = append(t.rules, rule)
	}
	return t
}

// Extract scans the non-empty, trimmed lines of text. For each line and each
// field whose label occurs in it, the rest of the line is the value; when
// the rest is too short or is itself a label, the next line is used. A
// field keeps the first value found for it.
func (t *TableExtractor) Extract(text string) FieldSet {
	var fields FieldSet
	lines := nonEmptyLines(text)
	for i, line := range lines {
		for _, rule := range t.rules {
			if fields.Has(rule.name) {
				continue
			}
			for _, label := range rule.labels {
				loc := label.FindStringIndex(line)
				if loc == nil {
					continue
				}
				value, ok := t.valueFor(lines, i, loc)
				if ok && t.store(&fields, rule.name, value) {
					break
				}
			}
		}
	}
	return fields
}

// valueFor returns the value for a label found at loc within lines[i].
func (t *TableExtractor) valueFor(lines []string, i int, loc []int) (string, bool) {
	line := lines[i]
	rest := tableValue(line[:loc[0]] + " " + line[loc[1]:])
	if len(rest) > 2 && !t.filter.IsLabel(rest) {
		return rest, true
	}
	if i+1 < len(lines) {
		next := tableValue(lines[i+1])
		if len(next) > 2 && !t.filter.IsLabel(next) {
			return next, true
		}
	}
	return "", false
}

func (t *TableExtractor) store(fields *FieldSet, name FieldName, value string) bool {
	switch name.Kind() {
	case KindPriority, KindStatus:
		value = strings.ToLower(value)
	}
	return fields.Set(name, value)
}

// tableValue cleans a cell and drops the colon or dash that separated it
// from its label.
func tableValue(s string) string {
	return CleanValue(stripFieldPunctuation(CleanValue(s)))
}
