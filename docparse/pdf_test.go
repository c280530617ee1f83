package docparse

import (
	"errors"
	"testing"
)

func TestPDFExtractor_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrEmptyDocument},
		{"garbage", []byte("%PDF-1.4\nthis is not really a pdf"), ErrCorruptDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPDFExtractor(DefaultPDFConfig()).Extract(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("Extract() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDefaultPDFConfig(t *testing.T) {
	config := DefaultPDFConfig()
	if !config.ContinueOnError {
		t.Error("ContinueOnError should default to true")
	}
	if config.PageSeparator == "" {
		t.Error("PageSeparator should not be empty")
	}
}
