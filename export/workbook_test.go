package export

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"aura_backend/extraction"
)

func TestHeaderFor(t *testing.T) {
	tests := []struct {
		name extraction.FieldName
		want string
	}{
		{extraction.FieldTitle, "Title"},
		{extraction.FieldSubmittedBy, "Submitted By"},
		{extraction.FieldImpactOfDoNothing, "Impact Of Do Nothing"},
	}
	for _, tt := range tests {
		if got := HeaderFor(tt.name); got != tt.want {
			t.Errorf("HeaderFor(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCellValue(t *testing.T) {
	yes := true
	fields := extraction.FieldSet{
		Title:                     "Insights Dashboard",
		Priority:                  extraction.PriorityHigh,
		SupportingDocuments:       []string{"Roadmap", "Budget"},
		ImpactsExistingTechnology: &yes,
	}

	tests := []struct {
		name extraction.FieldName
		want string
	}{
		{extraction.FieldTitle, "Insights Dashboard"},
		{extraction.FieldPriority, "high"},
		{extraction.FieldSupportingDocuments, "Roadmap; Budget"},
		{extraction.FieldImpactsExistingTechnology, "Yes"},
		{extraction.FieldStatus, ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			if got := CellValue(fields, tt.name); got != tt.want {
				t.Errorf("CellValue(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}

	no := false
	fields.ImpactsExistingTechnology = &no
	if got := CellValue(fields, extraction.FieldImpactsExistingTechnology); got != "No" {
		t.Errorf("CellValue(false) = %q, want No", got)
	}
}

func TestWriteWorkbook(t *testing.T) {
	rows := []Row{
		{Filename: "a.pdf", Fields: extraction.FieldSet{Title: "Alpha", Status: "draft"}},
		{Filename: "b.docx", Fields: extraction.FieldSet{Priority: extraction.PriorityLow}},
	}

	data, err := WriteWorkbook(rows)
	if err != nil {
		t.Fatalf("WriteWorkbook() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); !cmp.Equal(got, []string{SheetName}) {
		t.Errorf("sheets = %v, want [%s]", got, SheetName)
	}

	got, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d rows, want 3", len(got))
	}
	if diff := cmp.Diff(Headers(), got[0]); diff != "" {
		t.Errorf("header row mismatch (-want +got):\n%s", diff)
	}

	col := func(name extraction.FieldName) int {
		for i, f := range extraction.AllFields() {
			if f == name {
				return i + 1
			}
		}
		t.Fatalf("unknown field %q", name)
		return -1
	}
	cell := func(row []string, i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	if got[1][0] != "a.pdf" || cell(got[1], col(extraction.FieldTitle)) != "Alpha" || cell(got[1], col(extraction.FieldStatus)) != "draft" {
		t.Errorf("first data row = %v", got[1])
	}
	if got[2][0] != "b.docx" || cell(got[2], col(extraction.FieldPriority)) != "low" {
		t.Errorf("second data row = %v", got[2])
	}
}

func TestWriteWorkbook_NoRows(t *testing.T) {
	data, err := WriteWorkbook(nil)
	if err != nil {
		t.Fatalf("WriteWorkbook(nil) error = %v", err)
	}
	if len(data) == 0 {
		t.Error("empty workbook bytes")
	}
}
