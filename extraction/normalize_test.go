package extraction

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCleanValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Customer Portal", want: "Customer Portal"},
		{name: "leading bullet and dash", input: "  - • Customer Portal", want: "Customer Portal"},
		{name: "trailing pipe", input: "High |", want: "High"},
		{name: "tabs around table cell", input: "\tIT & Digital Services\t", want: "IT & Digital Services"},
		{name: "newlines become spaces", input: "first line\n  second line\r\nthird", want: "first line second line third"},
		{name: "internal runs collapse", input: "a    b\t\tc", want: "a b c"},
		{name: "internal dash kept", input: "Follow-up - review", want: "Follow-up - review"},
		{name: "only separators", input: " -|\t• ", want: ""},
		{name: "empty", input: "", want: ""},
		{name: "non-breaking space", input: " Owner  Name ", want: "Owner Name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanValue(tt.input)
			if got != tt.want {
				t.Errorf("CleanValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanValue_Idempotent(t *testing.T) {
	inputs := []string{
		"- - x",
		"| a | b |",
		"  •\t- nested  - bullets -  ",
		"line one\n\n- line two",
		"—em dash lead",
		"20% reduction in customer complaints",
		"\t\t",
	}

	for _, in := range inputs {
		once := CleanValue(in)
		twice := CleanValue(once)
		if once != twice {
			t.Errorf("CleanValue not idempotent for %q: once %q, twice %q", in, once, twice)
		}
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "commas", input: "Finance, HR, Legal", want: []string{"Finance", "HR", "Legal"}},
		{name: "semicolons and bullets", input: "- Finance; • HR ;", want: []string{"Finance", "HR"}},
		{name: "single item", input: "Operations", want: []string{"Operations"}},
		{name: "nothing usable", input: " ; , ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, SplitList(tt.input)); diff != "" {
				t.Errorf("SplitList(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestInferBoolean(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Yes", true},
		{"TRUE", true},
		{"affects current systems significantly", true},
		{"No impact expected", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := InferBoolean(tt.input); got != tt.want {
			t.Errorf("InferBoolean(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestStripFieldPunctuation(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{": High", "High"},
		{"- Sarah Khan", "Sarah Khan"},
		{"Draft -", "Draft"},
		{"Value:", "Value"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := stripFieldPunctuation(tt.input); got != tt.want {
			t.Errorf("stripFieldPunctuation(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
