package extraction

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestTemplate() *TemplateExtractor {
	return NewTemplateExtractor(DefaultLabelFilter(), DefaultMatchTimeout)
}

func TestTemplateExtractor_Anchors(t *testing.T) {
	text := "AI-Powered Customer Insights Dashboard\n" +
		"Submitted By Rowen Gopi\n" +
		"Business Owner Sarah Khan, Head of Digital Transformation\n" +
		"Lead Business Unit IT & Digital Services\n" +
		"Primary Strategic Theme Data-Driven Decision Making & Customer-Centricity\n" +
		"Priority High\n" +
		"Status Draft\n"

	got := newTestTemplate().Extract(text)

	want := FieldSet{
		Title:                 "AI-Powered Customer Insights Dashboard",
		SubmittedBy:           "Rowen Gopi",
		BusinessOwner:         "Sarah Khan, Head of Digital Transformation",
		LeadBusinessUnit:      "IT & Digital Services",
		PrimaryStrategicTheme: "Data-Driven Decision Making & Customer-Centricity",
		Priority:              PriorityHigh,
		Status:                "draft",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateExtractor_Description(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantStart string
	}{
		{
			name: "consolidation paragraph",
			text: "The platform consolidates customer interaction data from CRM and call centre.\n" +
				"Quantifiable Business Outcomes\nFewer complaints",
			wantStart: "consolidates customer interaction data from CRM",
		},
		{
			name: "generic proposal sentence",
			text: "The initiative proposes a shared booking tool for field engineers.\n" +
				"Key challenges\nLegacy scheduling",
			wantStart: "The initiative proposes a shared booking tool",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestTemplate().Extract(tt.text)
			if !strings.HasPrefix(got.Description, tt.wantStart) {
				t.Errorf("Description = %q, want prefix %q", got.Description, tt.wantStart)
			}
			for _, stop := range []string{"Quantifiable", "Key challenges"} {
				if strings.Contains(got.Description, stop) {
					t.Errorf("Description %q runs into %q", got.Description, stop)
				}
			}
		})
	}
}

func TestTemplateExtractor_Outcomes(t *testing.T) {
	text := "Quantifiable Business Outcomes\n" +
		"20% reduction in customer complaints within 12 months\n" +
		"15% uplift in NPS\n" +
		"Scope & Impact\nAll regions"

	got := newTestTemplate().Extract(text)

	want := "20% reduction in customer complaints within 12 months 15% uplift in NPS"
	if got.QuantifiableBusinessOutcomes != want {
		t.Errorf("QuantifiableBusinessOutcomes = %q, want %q", got.QuantifiableBusinessOutcomes, want)
	}
}

func TestTemplateExtractor_NoAnchors(t *testing.T) {
	got := newTestTemplate().Extract("An unrelated memo about parking spaces.")
	if !got.IsEmpty() {
		t.Errorf("Extract = %+v, want empty", got)
	}
}
