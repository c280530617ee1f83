package extraction

import "time"

// sectionRule holds the ordered patterns for one narrative field. Each
// pattern starts at a section heading and stops, without consuming it, at
// the heading that usually follows.
type sectionRule struct {
	name     FieldName
	patterns []string
}

var sectionRules = []sectionRule{
	{FieldDescription, []string{
		`business\s*objective\s*[&\s]*description\s*of\s*change\s*([\s\S]{10,2000}?)(?=\n\s*(?:quantifiable|expected\s*results)|$)`,
		`the\s*initiative\s*proposes\s*the\s*creation[\s\S]{10,2000}?(?=\n\s*(?:quantifiable|expected\s*results)|$)`,
		`business\s*objective[\s\S]{0,50}?([\s\S]{10,2000}?)(?=\n\s*(?:quantifiable|key\s*challenges)|$)`,
	}},
	{FieldQuantifiableBusinessOutcomes, []string{
		`quantifiable\s*business\s*outcomes\s*([\s\S]{10,800}?)(?=\n\s*(?:scope|impact|user\s*experience)|$)`,
		`expected\s*results\s*([\s\S]{10,800}?)(?=\n\s*(?:scope|impact|user\s*experience)|$)`,
	}},
	{FieldInScope, []string{
		`\b(?:scope\s*&\s*impact|in\s*scope)\b\s*([\s\S]{10,800}?)(?=\n\s*(?:impact\s*of|user\s*experience|technology)|$)`,
		`included\s*scope[:\s]*([\s\S]{10,800}?)(?=\n\s*(?:impact\s*of|user\s*experience)|$)`,
	}},
	{FieldImpactOfDoNothing, []string{
		`impact\s*of\s*do(?:ing)?\s*nothing[:\s]*([\s\S]{10,500}?)(?=\n\s*(?:user\s*experience|technology|affected)|$)`,
	}},
	{FieldHappyPath, []string{
		`happy\s*path[:\s]*[-\s]*([\s\S]{10,300}?)(?=\n\s*(?:exceptions|technology|affected)|$)`,
	}},
	{FieldExceptions, []string{
		`exceptions[:\s]*[-\s]*([\s\S]{10,300}?)(?=\n\s*(?:technology|affected|impacted)|$)`,
	}},
	{FieldImpactedEndUsers, []string{
		`impacted\s*end\s*users[:\s]*[-\s]*([\s\S]{10,300}?)(?=\n\s*(?:technology|solutions|tech\s*tools)|$)`,
	}},
	{FieldTechnologySolutions, []string{
		`technology\s*solutions[:\s]*[-\s]*([\s\S]{10,400}?)(?=\n\s*$|$)`,
	}},
}

// SectionExtractor captures narrative fields that run over several lines
// beneath a heading.
type SectionExtractor struct {
	filter LabelFilter
	rules  []compiledSection
}

type compiledSection struct {
	name     FieldName
	patterns []longPattern
}

// NewSectionExtractor compiles the section patterns with the given per-match
// timeout.
func NewSectionExtractor(filter LabelFilter, timeout time.Duration) *SectionExtractor {
	s := &SectionExtractor{filter: filter}
	for _, rule := range sectionRules {
		cs := compiledSection{name: rule.name}
		for _, p := range rule.patterns {
			cs.patterns = append(cs.patterns, compileLong(p, timeout))
		}
		s.rules = append(s.rules, cs)
	}
	return s
}

// Extract returns the narrative fields found in text. Fields already present
// in resolved are skipped. For each field the first pattern producing a
// cleaned value longer than ten characters wins.
func (s *SectionExtractor) Extract(text string, resolved FieldSet) FieldSet {
	var fields FieldSet
	for _, rule := range s.rules {
		if resolved.Has(rule.name) {
			continue
		}
		for _, p := range rule.patterns {
			raw, ok := p.find(text)
			if !ok {
				continue
			}
			value := CleanValue(raw)
			if len(value) <= 10 || s.filter.IsLabel(value) {
				continue
			}
			fields.Set(rule.name, value)
			break
		}
	}
	return fields
}
