package docparse

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageResult represents extracted text from a single PDF page.
type PageResult struct {
	// PageNumber is the 1-indexed page number
	PageNumber int

	// Text is the extracted text content
	Text string

	// Error is non-nil if extraction failed for this page
	Error error
}

// PDFResult contains the complete result of PDF text extraction.
type PDFResult struct {
	// Text is the full extracted text from all pages
	Text string

	// TotalPages is the number of pages in the PDF
	TotalPages int

	// ExtractedPages is the number of pages that yielded text
	ExtractedPages int

	// SkippedPages is the number of pages that were skipped (empty or error)
	SkippedPages int

	// Pages contains per-page extraction results
	Pages []PageResult

	// Errors contains any errors encountered during extraction
	Errors []error
}

// PDFConfig holds configuration for PDF text extraction.
type PDFConfig struct {
	// PageSeparator is the string inserted between page texts.
	// Defaults to "\n\n" if empty.
	PageSeparator string

	// ContinueOnError when true continues extraction even if some pages fail
	ContinueOnError bool

	// MaxPages limits extraction to first N pages (0 for all pages)
	MaxPages int
}

// DefaultPDFConfig returns the configuration used for uploads.
func DefaultPDFConfig() PDFConfig {
	return PDFConfig{
		PageSeparator:   "\n\n",
		ContinueOnError: true,
	}
}

// PDFExtractor extracts text from PDF documents held in memory.
type PDFExtractor struct {
	config PDFConfig
}

// NewPDFExtractor creates a PDFExtractor with the given configuration.
func NewPDFExtractor(config PDFConfig) *PDFExtractor {
	if config.PageSeparator == "" {
		config.PageSeparator = "\n\n"
	}
	return &PDFExtractor{config: config}
}

// Extract returns the text of every page in data joined by the page
// separator. Empty pages are skipped. ErrNoTextContent is returned, along
// with the partial result, when no page yields text.
//
// Example:
//
//	result, err := NewPDFExtractor(DefaultPDFConfig()).Extract(data)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Text)
func (e *PDFExtractor) Extract(data []byte) (result *PDFResult, err error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	// The PDF library panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: malformed PDF: %v", ErrCorruptDocument, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open PDF: %v", ErrCorruptDocument, err)
	}
	return e.extractFromReader(r)
}

func (e *PDFExtractor) extractFromReader(r *pdf.Reader) (*PDFResult, error) {
	totalPages := r.NumPage()

	result := &PDFResult{
		TotalPages: totalPages,
		Pages:      make([]PageResult, 0, totalPages),
	}

	pagesToProcess := totalPages
	if e.config.MaxPages > 0 && e.config.MaxPages < totalPages {
		pagesToProcess = e.config.MaxPages
	}

	var textBuilder strings.Builder

	// Pages are 1-indexed in ledongthuc/pdf
	for pageIndex := 1; pageIndex <= pagesToProcess; pageIndex++ {
		page := extractPage(r, pageIndex)
		result.Pages = append(result.Pages, page)

		if page.Error != nil {
			result.Errors = append(result.Errors, fmt.Errorf("page %d: %w", pageIndex, page.Error))
			result.SkippedPages++
			if !e.config.ContinueOnError {
				return result, page.Error
			}
			continue
		}

		if page.Text == "" {
			result.SkippedPages++
			continue
		}

		result.ExtractedPages++
		if textBuilder.Len() > 0 {
			textBuilder.WriteString(e.config.PageSeparator)
		}
		textBuilder.WriteString(page.Text)
	}

	result.Text = textBuilder.String()
	if result.Text == "" {
		return result, ErrNoTextContent
	}
	return result, nil
}

func extractPage(r *pdf.Reader, pageIndex int) (result PageResult) {
	result.PageNumber = pageIndex

	defer func() {
		if rec := recover(); rec != nil {
			result.Text = ""
			result.Error = fmt.Errorf("page decode panic: %v", rec)
		}
	}()

	p := r.Page(pageIndex)
	if p.V.IsNull() {
		return result
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		result.Error = fmt.Errorf("failed to extract text: %w", err)
		return result
	}
	result.Text = strings.TrimSpace(text)
	return result
}
