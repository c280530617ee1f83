package docparse

import "testing"

func TestEstimateTokenCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"Hello, world!", 3},
		{"Priority: High and Status: Draft", 8},
	}
	for _, tt := range tests {
		if got := EstimateTokenCount(tt.text); got != tt.want {
			t.Errorf("EstimateTokenCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestTruncateTextWithEllipsis(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{"fits", "Hi", 10, "Hi"},
		{"exact", "Hello", 5, "Hello"},
		{"truncated", "Hello, world!", 8, "Hello..."},
		{"tiny limit", "Hello", 3, "Hel"},
		{"zero", "Hello", 0, ""},
		{"multibyte", "Café société", 7, "Café..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateTextWithEllipsis(tt.text, tt.maxLen); got != tt.want {
				t.Errorf("TruncateTextWithEllipsis(%q, %d) = %q, want %q", tt.text, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestNormalizeDocumentText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf and blank runs", "Title\r\n\r\n\r\n\r\nBody  \r\n", "Title\n\nBody"},
		{"bare cr", "Priority\rHigh", "Priority\nHigh"},
		{"nul bytes", "Sta\x00tus", "Status"},
		{"tabs kept inside lines", "Priority\tHigh\t\nStatus\tDraft", "Priority\tHigh\nStatus\tDraft"},
		{"surrounding space", "\n\n  Brief  \n\n", "Brief"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDocumentText(tt.in); got != tt.want {
				t.Errorf("NormalizeDocumentText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
