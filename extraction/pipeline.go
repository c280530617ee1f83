package extraction

import (
	"strings"
	"time"
)

// Options configures a Pipeline. Zero values fall back to the defaults.
type Options struct {
	// Catalog supplies label variants (default: DefaultCatalog)
	Catalog *Catalog

	// LabelWords overrides the words that mark a short value as a label
	LabelWords []string

	// LabelMaxLen is the label length threshold (default: 50)
	LabelMaxLen int

	// MatchTimeout bounds each long-span pattern match (default: 250ms)
	MatchTimeout time.Duration
}

// DefaultOptions returns the options used by NewDefaultPipeline.
func DefaultOptions() Options {
	return Options{
		Catalog:      DefaultCatalog(),
		LabelWords:   defaultLabelWords,
		LabelMaxLen:  DefaultLabelMaxLen,
		MatchTimeout: DefaultMatchTimeout,
	}
}

// Pipeline runs every extraction strategy over a document and merges their
// results. A Pipeline holds only compiled patterns and is safe for
// concurrent use.
type Pipeline struct {
	catalog  *Catalog
	filter   LabelFilter
	mapper   *FieldMapper
	table    *TableExtractor
	section  *SectionExtractor
	template *TemplateExtractor
}

// NewPipeline compiles all strategies.
func NewPipeline(opts Options) *Pipeline {
	def := DefaultOptions()
	if opts.Catalog == nil {
		opts.Catalog = def.Catalog
	}
	if len(opts.LabelWords) == 0 {
		opts.LabelWords = def.LabelWords
	}
	if opts.LabelMaxLen <= 0 {
		opts.LabelMaxLen = def.LabelMaxLen
	}
	if opts.MatchTimeout <= 0 {
		opts.MatchTimeout = def.MatchTimeout
	}

	filter := NewLabelFilter(opts.LabelWords, opts.LabelMaxLen)
	return &Pipeline{
		catalog:  opts.Catalog,
		filter:   filter,
		mapper:   NewFieldMapper(opts.Catalog, filter),
		table:    NewTableExtractor(opts.Catalog, filter),
		section:  NewSectionExtractor(filter, opts.MatchTimeout),
		template: NewTemplateExtractor(filter, opts.MatchTimeout),
	}
}

// NewDefaultPipeline creates a pipeline over the embedded catalog.
func NewDefaultPipeline() *Pipeline {
	return NewPipeline(DefaultOptions())
}

// LoadPipeline builds a pipeline over the catalog at catalogPath, or the
// embedded catalog when catalogPath is empty.
func LoadPipeline(catalogPath string, matchTimeout time.Duration) (*Pipeline, error) {
	opts := DefaultOptions()
	if catalogPath != "" {
		catalog, err := LoadCatalog(catalogPath)
		if err != nil {
			return nil, err
		}
		opts.Catalog = catalog
	}
	if matchTimeout > 0 {
		opts.MatchTimeout = matchTimeout
	}
	return NewPipeline(opts), nil
}

// Catalog returns the catalog the pipeline was built with.
func (p *Pipeline) Catalog() *Catalog {
	return p.catalog
}

// Trace records what each strategy produced for one document.
type Trace struct {
	Basic    FieldSet `json:"basic"`
	Enhanced FieldSet `json:"enhanced"`
	Table    FieldSet `json:"table"`
	Section  FieldSet `json:"section"`
	Template FieldSet `json:"template"`
	Result   FieldSet `json:"result"`
}

// Source returns the name of the strategy whose value ended up in Result
// for the field, or "" when the field is absent.
func (t Trace) Source(name FieldName) string {
	switch {
	case !t.Result.Has(name):
		return ""
	case t.Template.Has(name):
		return "template"
	case t.Section.Has(name):
		return "section"
	case t.Table.Has(name):
		return "table"
	case t.Basic.Has(name):
		return "mapper"
	default:
		return "enhancer"
	}
}

// Extract returns the merged fields for text. Empty or whitespace-only text
// yields an empty FieldSet.
func (p *Pipeline) Extract(text string) FieldSet {
	return p.Explain(text).Result
}

// Explain runs the strategies in precedence order and keeps each one's
// output. Later strategies overwrite earlier ones only for the fields they
// actually found: mapper, enhancer, table, section, template.
func (p *Pipeline) Explain(text string) Trace {
	var tr Trace
	if strings.TrimSpace(text) == "" {
		return tr
	}

	tr.Basic = p.mapper.ExtractFields(text)
	tr.Enhanced = p.mapper.Enhance(tr.Basic, text)
	tr.Table = p.table.Extract(text)
	tr.Section = p.section.Extract(text, tr.Table)
	tr.Template = p.template.Extract(text)

	result := tr.Enhanced
	result.Merge(tr.Table)
	result.Merge(tr.Section)
	result.Merge(tr.Template)
	scrubLabels(&result, p.filter)
	tr.Result = result
	return tr
}

// scrubLabels removes any text value or list item that is only a label.
func scrubLabels(fields *FieldSet, filter LabelFilter) {
	for _, name := range fields.Names() {
		switch name.Kind() {
		case KindText, KindStatus:
			if p := fields.textField(name); filter.IsLabel(*p) {
				*p = ""
			}
		case KindList:
			p := fields.listField(name)
			kept := (*p)[:0:0]
			for _, item := range *p {
				if !filter.IsLabel(item) {
					kept = append(kept, item)
				}
			}
			if len(kept) == 0 {
				kept = nil
			}
			*p = kept
		}
	}
}
