package extraction

import (
	"regexp"
	"strings"
)

// titleKeywords mark a leading line as a plausible initiative title.
var titleKeywords = []string{"Dashboard", "Platform", "System", "Enhancement", "Management", "Service"}

var (
	percentPattern     = regexp.MustCompile(`\d+(?:\.\d+)?%`)
	currencyPattern    = regexp.MustCompile(`(?i)\$[\d,]+(?:\.\d+)?(?:K|M|B)?`)
	improvementPattern = regexp.MustCompile(`(?i)(?:increase|decrease|reduce|save|roi)[^.]{0,50}(?:\d+%|\$[\d,]+)`)
)

// priorityCues are checked in order; the first group with a hit decides.
var priorityCues = []struct {
	priority Priority
	cues     []string
}{
	{PriorityCritical, []string{"critical", "urgent", "asap"}},
	{PriorityHigh, []string{"high priority", "important", "soon"}},
	{PriorityLow, []string{"low priority", "nice to have", "optional"}},
}

// Enhance fills gaps left by ExtractFields with document-wide guesses.
// It never overwrites a field that is already present.
func (m *FieldMapper) Enhance(fields FieldSet, text string) FieldSet {
	if strings.TrimSpace(text) == "" {
		return fields
	}
	if !fields.Has(FieldTitle) {
		if title, ok := inferTitle(text); ok && !m.filter.IsLabel(title) {
			fields.Set(FieldTitle, title)
		}
	}
	if !fields.Has(FieldQuantifiableBusinessOutcomes) {
		if metrics := financialMetrics(text); len(metrics) > 0 {
			fields.Set(FieldQuantifiableBusinessOutcomes, strings.Join(metrics, ", "))
		}
	}
	if !fields.Has(FieldPriority) {
		fields.Priority = inferPriority(text)
	}
	return fields
}

// inferTitle looks at the first five non-empty lines for one of moderate
// length that names a kind of system.
func inferTitle(text string) (string, bool) {
	lines := nonEmptyLines(text)
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		if len(line) <= 10 || len(line) >= 100 {
			continue
		}
		for _, kw := range titleKeywords {
			if strings.Contains(line, kw) {
				return CleanValue(line), true
			}
		}
	}
	return "", false
}

// financialMetrics collects percentages, currency amounts and short
// improvement phrases, in that order, without duplicates.
func financialMetrics(text string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(matches []string) {
		for _, m := range matches {
			m = strings.TrimSpace(m)
			if m != "" && !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	add(percentPattern.FindAllString(text, -1))
	add(currencyPattern.FindAllString(text, -1))
	add(improvementPattern.FindAllString(text, -1))
	return out
}

// inferPriority scans the whole document for urgency cues, falling back to
// medium like NormalizePriority.
func inferPriority(text string) Priority {
	lower := strings.ToLower(text)
	for _, group := range priorityCues {
		for _, cue := range group.cues {
			if strings.Contains(lower, cue) {
				return group.priority
			}
		}
	}
	return PriorityMedium
}
