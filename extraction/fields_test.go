package extraction

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizePriority(t *testing.T) {
	tests := []struct {
		input string
		want  Priority
	}{
		{"Critical", PriorityCritical},
		{"urgent - exec sponsor", PriorityCritical},
		{"High", PriorityHigh},
		{"HIGH PRIORITY", PriorityHigh},
		{"low", PriorityLow},
		{"Medium", PriorityMedium},
		{"to be confirmed", PriorityMedium},
		{"", PriorityMedium},
	}

	for _, tt := range tests {
		if got := NormalizePriority(tt.input); got != tt.want {
			t.Errorf("NormalizePriority(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizePriority_Closure(t *testing.T) {
	valid := map[Priority]bool{
		PriorityLow: true, PriorityMedium: true, PriorityHigh: true, PriorityCritical: true,
	}
	inputs := []string{
		"", "???", "P1", "not urgent really", "below target", "höch", "Priority: High",
		strings.Repeat("x", 500), "critical/high/low", "\x00\x01",
	}

	for _, in := range inputs {
		if got := NormalizePriority(in); !valid[got] {
			t.Errorf("NormalizePriority(%q) = %q, outside the priority set", in, got)
		}
	}
}

func TestFieldName_Kind(t *testing.T) {
	tests := []struct {
		name FieldName
		want FieldKind
	}{
		{FieldTitle, KindText},
		{FieldSupportingDocuments, KindList},
		{FieldImpactsExistingTechnology, KindBoolean},
		{FieldPriority, KindPriority},
		{FieldStatus, KindStatus},
		{FieldName("nope"), KindUnknown},
	}

	for _, tt := range tests {
		if got := tt.name.Kind(); got != tt.want {
			t.Errorf("%s.Kind() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAllFields(t *testing.T) {
	fields := AllFields()
	if len(fields) != 24 {
		t.Fatalf("AllFields() returned %d fields, want 24", len(fields))
	}
	fields[0] = "mutated"
	if AllFields()[0] != FieldTitle {
		t.Error("AllFields() exposes its backing slice")
	}
}

func TestFieldSet_Set(t *testing.T) {
	var f FieldSet

	if f.Set(FieldTitle, "   ") {
		t.Error("Set accepted a blank value")
	}
	if f.Has(FieldTitle) {
		t.Error("blank value made the field present")
	}

	f.Set(FieldTitle, "Customer Portal")
	f.Set(FieldPriority, "urgent")
	f.Set(FieldStatus, "DRAFT")
	f.Set(FieldAdditionalBusinessUnits, "Finance; HR")
	f.Set(FieldImpactsExistingTechnology, "Yes, the CRM")

	want := FieldSet{
		Title:                     "Customer Portal",
		Priority:                  PriorityCritical,
		Status:                    "draft",
		AdditionalBusinessUnits:   []string{"Finance", "HR"},
		ImpactsExistingTechnology: boolPtr(true),
	}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("FieldSet mismatch (-want +got):\n%s", diff)
	}

	gotNames := f.Names()
	wantNames := []FieldName{
		FieldTitle, FieldAdditionalBusinessUnits, FieldImpactsExistingTechnology, FieldPriority, FieldStatus,
	}
	if diff := cmp.Diff(wantNames, gotNames); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldSet_UnrecognizedStatusKeepsCase(t *testing.T) {
	var f FieldSet
	f.Set(FieldStatus, "Awaiting CFO")
	if f.Status != "Awaiting CFO" {
		t.Errorf("Status = %q, want %q", f.Status, "Awaiting CFO")
	}
}

func TestFieldSet_Get(t *testing.T) {
	f := FieldSet{SupportingDocuments: []string{"Brief.pdf"}, ImpactsExistingTechnology: boolPtr(false)}

	v, ok := f.Get(FieldSupportingDocuments)
	if !ok {
		t.Fatal("Get(supportingDocuments) not present")
	}
	docs := v.([]string)
	docs[0] = "changed"
	if f.SupportingDocuments[0] != "Brief.pdf" {
		t.Error("Get returned the backing slice")
	}

	v, ok = f.Get(FieldImpactsExistingTechnology)
	if !ok || v.(bool) != false {
		t.Errorf("Get(impactsExistingTechnology) = %v, %v; want false, true", v, ok)
	}

	if _, ok := f.Get(FieldTitle); ok {
		t.Error("Get(title) reported an absent field as present")
	}
}

func TestFieldSet_Merge(t *testing.T) {
	base := FieldSet{Title: "Old", Description: "Kept", Priority: PriorityLow}
	overlay := FieldSet{Title: "New", Status: "draft"}

	base.Merge(overlay)

	want := FieldSet{Title: "New", Description: "Kept", Priority: PriorityLow, Status: "draft"}
	if diff := cmp.Diff(want, base); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldSet_JSONOmitsMissing(t *testing.T) {
	f := FieldSet{Title: "Customer Portal", ImpactsExistingTechnology: boolPtr(false)}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(m) != 2 {
		t.Errorf("JSON has %d keys, want 2: %s", len(m), data)
	}
	if _, ok := m["description"]; ok {
		t.Error("absent description serialized")
	}
	if v, ok := m["impactsExistingTechnology"]; !ok || v != false {
		t.Errorf("impactsExistingTechnology = %v, %v; want explicit false", v, ok)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
