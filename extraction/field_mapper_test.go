package extraction

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestMapper() *FieldMapper {
	return NewFieldMapper(DefaultCatalog(), DefaultLabelFilter())
}

func TestFieldMapper_ExtractFields(t *testing.T) {
	text := "Idea Name: Supplier Onboarding Portal\n" +
		"Submitted By: Jordan Lee\n" +
		"Business Owner: Priya Raman, VP Procurement\n" +
		"Additional Business Units: Finance; Legal, IT\n" +
		"Supporting Documents: charter.pdf, budget.xlsx\n" +
		"Priority: Urgent\n"

	got := newTestMapper().ExtractFields(text)

	want := FieldSet{
		Title:                   "Supplier Onboarding Portal",
		SubmittedBy:             "Jordan Lee",
		BusinessOwner:           "Priya Raman",
		AdditionalBusinessUnits: []string{"Finance", "Legal", "IT"},
		SupportingDocuments:     []string{"charter.pdf", "budget.xlsx"},
		Priority:                PriorityCritical,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExtractFields mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldMapper_LabelOnNextLine(t *testing.T) {
	text := "Happy Path\n\nCustomer signs in, reviews the dashboard and exports a report"

	got := newTestMapper().ExtractFields(text)

	want := "Customer signs in, reviews the dashboard and exports a report"
	if got.HappyPath != want {
		t.Errorf("HappyPath = %q, want %q", got.HappyPath, want)
	}
}

func TestFieldMapper_SkipsLabelValues(t *testing.T) {
	// "Status" captured after "Priority" is itself a label and must not stick.
	got := newTestMapper().ExtractFields("Priority\nStatus\n")

	if got.Has(FieldPriority) {
		t.Errorf("Priority = %q, want absent", got.Priority)
	}
}

func TestFieldMapper_Boolean(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    *bool
		present bool
	}{
		{
			name:    "affects current systems",
			text:    "This change affects current systems significantly",
			want:    boolPtr(true),
			present: true,
		},
		{
			name:    "explicit no",
			text:    "Impacts Existing Technology: No impact expected",
			want:    boolPtr(false),
			present: true,
		},
		{
			name:    "explicit yes",
			text:    "Impacts existing technology - Yes, the billing engine",
			want:    boolPtr(true),
			present: true,
		},
		{
			name:    "affects label answered no",
			text:    "Affects current systems: No",
			want:    boolPtr(false),
			present: true,
		},
		{
			name:    "affects label answered none",
			text:    "Affects current systems - none that we know of",
			want:    boolPtr(false),
			present: true,
		},
		{
			name:    "label on its own line",
			text:    "Impacts Existing Technology\nYes",
			want:    boolPtr(true),
			present: true,
		},
		{
			name:    "no impact prose",
			text:    "No impact expected",
			want:    boolPtr(false),
			present: true,
		},
		{
			name:    "does not affect prose",
			text:    "The rollout does not affect existing systems.",
			want:    boolPtr(false),
			present: true,
		},
		{
			name:    "not mentioned",
			text:    "Nothing about systems here",
			present: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestMapper().ExtractFields(tt.text)
			if got.Has(FieldImpactsExistingTechnology) != tt.present {
				t.Fatalf("present = %v, want %v", got.Has(FieldImpactsExistingTechnology), tt.present)
			}
			if tt.present && *got.ImpactsExistingTechnology != *tt.want {
				t.Errorf("ImpactsExistingTechnology = %v, want %v", *got.ImpactsExistingTechnology, *tt.want)
			}
		})
	}
}

func TestFieldMapper_ListShapes(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		field FieldName
		want  []string
	}{
		{"same line", "Technology Solutions: Snowflake, Power BI", FieldTechnologySolutions, []string{"Snowflake", "Power BI"}},
		{"short items", "Supporting Documents: a.pdf; b", FieldSupportingDocuments, []string{"a.pdf", "b"}},
		{"punctuated label", "Tech-Stack: Go; Postgres", FieldTechnologySolutions, []string{"Go", "Postgres"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestMapper().ExtractFields(tt.text)
			v, ok := got.Get(tt.field)
			if !ok {
				t.Fatalf("%s absent", tt.field)
			}
			if diff := cmp.Diff(tt.want, v); diff != "" {
				t.Errorf("%s mismatch (-want +got):\n%s", tt.field, diff)
			}
		})
	}
}

func TestFieldMapper_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   \n\t  "} {
		if got := newTestMapper().ExtractFields(text); !got.IsEmpty() {
			t.Errorf("ExtractFields(%q) = %+v, want empty", text, got)
		}
	}
}

func TestLabelExpr(t *testing.T) {
	tests := []struct {
		variant string
		want    string
	}{
		{"priority", `\bpriority\b`},
		{"idea name", `\bidea\s+name\b`},
		{"cross-department impact", `\bcross-department\s+impact\b`},
		{"business objective & description of change", `\bbusiness\s+objective\s+&\s+description\s+of\s+change\b`},
	}

	for _, tt := range tests {
		if got := labelExpr(tt.variant); got != tt.want {
			t.Errorf("labelExpr(%q) = %q, want %q", tt.variant, got, tt.want)
		}
	}
}
