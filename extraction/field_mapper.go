package extraction

import (
	"regexp"
	"strings"
	"unicode"
)

// matchFunc finds a candidate value for a field in text.
type matchFunc func(text string) (string, bool)

// fieldRule is the ordered list of matchers tried for one field.
type fieldRule struct {
	name     FieldName
	matchers []matchFunc
}

// FieldMapper is the generic, catalog-driven strategy. For every field it
// tries each label variant in catalog order and, per variant, a fixed
// sequence of capture patterns; the first acceptable capture wins.
//
// Matching is case-insensitive, so captured values keep the document's
// original casing.
type FieldMapper struct {
	catalog *Catalog
	filter  LabelFilter
	rules   []fieldRule
}

var (
	// personName matches a capitalized first and last name.
	personName = regexp.MustCompile(`\b[A-Z][a-z]+\s+[A-Z][a-z]+\b`)

	negativeAnswer = regexp.MustCompile(`(?i)^(?:no|none|false|not|n/?a)\b`)
	negationWord   = regexp.MustCompile(`(?i)\b(?:no|not|none|false)\b`)

	// noImpactCue matches sentences that rule out any effect on existing
	// systems without using one of the boolean labels.
	noImpactCue = regexp.MustCompile(`(?i)\b(?:no|without)\s+(?:(?:technical|technology|system)\s+)?impacts?\s+(?:is\s+)?(?:expected|anticipated|foreseen)\b` +
		`|\bdoes\s+not\s+(?:affect|impact)\s+(?:current|existing)\s+(?:systems|technology)\b`)
)

// NewFieldMapper compiles the capture patterns for every catalog variant.
func NewFieldMapper(catalog *Catalog, filter LabelFilter) *FieldMapper {
	m := &FieldMapper{catalog: catalog, filter: filter}
	for _, name := range catalog.Fields() {
		rule := fieldRule{name: name}
		for _, variant := range catalog.Variants(name) {
			switch name.Kind() {
			case KindList:
				rule.matchers = append(rule.matchers, m.listMatcher(variant))
				rule.matchers = append(rule.matchers, m.textMatchers(variant)[1:]...)
			case KindBoolean:
				rule.matchers = append(rule.matchers, booleanMatcher(variant))
			default:
				rule.matchers = append(rule.matchers, m.textMatchers(variant)...)
			}
		}
		if name.Kind() == KindBoolean {
			rule.matchers = append(rule.matchers, noImpactMatcher)
		}
		m.rules = append(m.rules, rule)
	}
	return m
}

// labelExpr turns a variant into a case-insensitive regular expression
// fragment. Whitespace inside the variant matches any whitespace run, and
// word boundaries are added where the variant starts or ends with a letter
// or digit.
func labelExpr(variant string) string {
	words := strings.Fields(variant)
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	expr := strings.Join(quoted, `\s+`)
	if r := []rune(variant); len(r) > 0 {
		if isWordRune(r[0]) {
			expr = `\b` + expr
		}
		if isWordRune(r[len(r)-1]) {
			expr += `\b`
		}
	}
	return expr
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// textMatchers builds the five capture patterns for one variant:
// same line (or the next line when the label stands alone), a bounded
// span after an optional colon, an indented block up to the next
// "Heading:" line, a table cell after a pipe or tab, and finally the
// variant's words with arbitrary punctuation between them.
func (m *FieldMapper) textMatchers(variant string) []matchFunc {
	label := labelExpr(variant)
	matchers := []matchFunc{
		m.capture(regexp.MustCompile(`(?i)`+label+`\s*([^\n\r]+)`), 3),
		m.capture(regexp.MustCompile(`(?i)`+label+`[\s:]*\n?([^\n\r]{5,500})`), 3),
		m.capture(regexp.MustCompile(`(?i)`+label+`[\s:]*\n([\s\S]{10,1000}?)(?:\n\s*[A-Z][a-z\s]+:|\n\s*$|$)`), 10),
		m.capture(regexp.MustCompile(`(?i)`+label+`[\s|\t]+([^|\n\r]{5,300})`), 3),
	}
	if words := strings.Fields(variant); len(words) > 1 {
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		partial := `(?i)\b` + strings.Join(quoted, `[\s\W]*`)
		if last := []rune(variant); isWordRune(last[len(last)-1]) {
			partial += `\b`
		}
		partial += `[\s:]*([^\n\r]{5,300})`
		matchers = append(matchers, m.capture(regexp.MustCompile(partial), 3))
	}
	return matchers
}

// capture accepts the first submatch when it is longer than minLen and is not
// itself a label.
func (m *FieldMapper) capture(re *regexp.Regexp, minLen int) matchFunc {
	return func(text string) (string, bool) {
		sub := re.FindStringSubmatch(text)
		if sub == nil {
			return "", false
		}
		value := strings.TrimSpace(sub[1])
		if len(value) <= minLen || m.filter.IsLabel(value) {
			return "", false
		}
		value = stripFieldPunctuation(CleanValue(value))
		return value, value != ""
	}
}

// listMatcher takes the rest of the label's line, however short its items
// are. The longer text shapes follow it in the field's rule.
func (m *FieldMapper) listMatcher(variant string) matchFunc {
	re := regexp.MustCompile(`(?i)` + labelExpr(variant) + `[\s:]+([^\n\r]+)`)
	return func(text string) (string, bool) {
		sub := re.FindStringSubmatch(text)
		if sub == nil {
			return "", false
		}
		value := stripFieldPunctuation(CleanValue(sub[1]))
		if value == "" || m.filter.IsLabel(value) {
			return "", false
		}
		return value, true
	}
}

// booleanMatcher reads the answer that follows a boolean label and reports
// it as "yes" or "no".
func booleanMatcher(variant string) matchFunc {
	re := regexp.MustCompile(`(?i)` + labelExpr(variant) + `[\s:|-]*([^\n\r]*)`)
	labelAffirms := InferBoolean(variant)
	return func(text string) (string, bool) {
		sub := re.FindStringSubmatch(text)
		if sub == nil {
			return "", false
		}
		return booleanAnswer(stripFieldPunctuation(CleanValue(sub[1])), labelAffirms)
	}
}

// booleanAnswer decides a boolean from the text after its label. A leading
// negative wins over everything else. When the label itself is a statement,
// as in "affects current systems", the sentence counts as yes unless the
// rest of it is negated.
func booleanAnswer(answer string, labelAffirms bool) (string, bool) {
	switch {
	case negativeAnswer.MatchString(answer):
		return "no", true
	case InferBoolean(answer):
		return "yes", true
	case negationWord.MatchString(answer):
		return "no", true
	case labelAffirms:
		return "yes", true
	case answer != "":
		return "no", true
	}
	return "", false
}

// noImpactMatcher answers "no" for prose such as "No impact expected".
func noImpactMatcher(text string) (string, bool) {
	if noImpactCue.MatchString(text) {
		return "no", true
	}
	return "", false
}

// ExtractFields runs every field rule over text and returns the fields that
// produced an acceptable value.
func (m *FieldMapper) ExtractFields(text string) FieldSet {
	var fields FieldSet
	if strings.TrimSpace(text) == "" {
		return fields
	}
	for _, rule := range m.rules {
		for _, match := range rule.matchers {
			value, ok := match(text)
			if !ok {
				continue
			}
			if rule.name == FieldBusinessOwner || rule.name == FieldRelevantBusinessOwners {
				value = isolatePersonName(value)
			}
			if fields.Set(rule.name, value) {
				break
			}
		}
	}
	return fields
}

// isolatePersonName returns the first "First Last" name in value, or value
// unchanged when there is none.
func isolatePersonName(value string) string {
	if name := personName.FindString(value); name != "" {
		return name
	}
	return value
}
