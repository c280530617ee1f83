package docparse

import (
	"errors"
	"testing"
	"unicode/utf8"
)

func utf16LE(s string) []byte {
	var out []byte
	for _, r := range s {
		out = append(out, byte(r), byte(r>>8))
	}
	return out
}

func TestPrintableRuns(t *testing.T) {
	tests := []struct {
		name string
		in   []rune
		want string
	}{
		{"paragraph marks", []rune("Priority High\rStatus Draft\r"), "Priority High\nStatus Draft"},
		{"short runs dropped", []rune("ab\x01Business Owner\x02xy"), "Business Owner"},
		{"runs joined on one line", []rune("Scope\x01Impact"), "Scope Impact"},
		{"replacement chars split runs", []rune{'T', 'e', 'x', 't', utf8.RuneError, 'M', 'o', 'r', 'e'}, "Text More"},
		{"vertical tab", []rune("Line one\x0bLine two"), "Line one\nLine two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := printableRuns(tt.in); got != tt.want {
				t.Errorf("printableRuns() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecoders(t *testing.T) {
	if got := string(decode8Bit([]byte("Brief"))); got != "Brief" {
		t.Errorf("decode8Bit = %q", got)
	}
	if got := decode8Bit([]byte{0xe9}); got[0] != utf8.RuneError {
		t.Errorf("decode8Bit(0xe9) = %q, want RuneError", got)
	}
	if got := string(decodeUTF16LE(utf16LE("Status"))); got != "Status" {
		t.Errorf("decodeUTF16LE = %q", got)
	}
}

func TestLegacyDocExtractor_Errors(t *testing.T) {
	e := NewLegacyDocExtractor()
	if _, err := e.Extract(nil); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("Extract(nil) error = %v, want ErrEmptyDocument", err)
	}
	if _, err := e.Extract([]byte("this is not a compound file at all")); !errors.Is(err, ErrCorruptDocument) {
		t.Errorf("Extract(text) error = %v, want ErrCorruptDocument", err)
	}
}
