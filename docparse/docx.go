package docparse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// docxBodyPart is the OOXML part holding the main document story.
const docxBodyPart = "word/document.xml"

// DefaultMaxDocxXMLBytes caps how much of word/document.xml is decoded.
const DefaultMaxDocxXMLBytes = 32 << 20

// DocxExtractor extracts plain text from Office Open XML word documents.
//
// Paragraphs become lines. Inside a table each row becomes one line with
// its cells separated by tabs, so a "label | value" row reads as
// "label\tvalue".
type DocxExtractor struct {
	maxXMLBytes int64
}

// NewDocxExtractor creates a DocxExtractor. A non-positive maxXMLBytes uses
// DefaultMaxDocxXMLBytes.
func NewDocxExtractor(maxXMLBytes int64) *DocxExtractor {
	if maxXMLBytes <= 0 {
		maxXMLBytes = DefaultMaxDocxXMLBytes
	}
	return &DocxExtractor{maxXMLBytes: maxXMLBytes}
}

// Extract returns the text of the document body.
func (e *DocxExtractor) Extract(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a zip container: %v", ErrCorruptDocument, err)
	}

	for _, f := range zr.File {
		if f.Name != docxBodyPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: failed to open %s: %v", ErrCorruptDocument, docxBodyPart, err)
		}
		defer rc.Close()

		text, err := e.extractBody(io.LimitReader(rc, e.maxXMLBytes))
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", ErrNoTextContent
		}
		return text, nil
	}
	return "", fmt.Errorf("%w: %s not found", ErrCorruptDocument, docxBodyPart)
}

// docxWriter tracks where in the WordprocessingML tree the decoder is.
type docxWriter struct {
	buf    strings.Builder
	inText bool
	runs   int
	cells  int   // open w:tc elements
	rowPos []int // cells seen in each open w:tr
}

func (w *docxWriter) inCell() bool {
	return w.cells > 0
}

func (w *docxWriter) lineBreak() {
	if w.inCell() {
		w.buf.WriteByte(' ')
		return
	}
	w.buf.WriteByte('\n')
}

func (w *docxWriter) start(name string) {
	switch name {
	case "t":
		w.inText = true
	case "r":
		w.runs++
	case "tab":
		if w.runs > 0 {
			w.buf.WriteByte('\t')
		}
	case "br", "cr":
		if w.runs > 0 {
			w.lineBreak()
		}
	case "tr":
		w.rowPos = append(w.rowPos, 0)
	case "tc":
		if n := len(w.rowPos); n > 0 {
			if w.rowPos[n-1] > 0 {
				w.buf.WriteByte('\t')
			}
			w.rowPos[n-1]++
		}
		w.cells++
	}
}

func (w *docxWriter) end(name string) {
	switch name {
	case "t":
		w.inText = false
	case "r":
		if w.runs > 0 {
			w.runs--
		}
	case "p":
		w.lineBreak()
	case "tc":
		if w.cells > 0 {
			w.cells--
		}
	case "tr":
		if n := len(w.rowPos); n > 0 {
			w.rowPos = w.rowPos[:n-1]
		}
		w.lineBreak()
	}
}

func (e *DocxExtractor) extractBody(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	w := &docxWriter{}

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: invalid document XML: %v", ErrCorruptDocument, err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			w.start(t.Name.Local)
		case xml.EndElement:
			w.end(t.Name.Local)
		case xml.CharData:
			if w.inText {
				w.buf.Write(t)
			}
		}
	}
	return w.buf.String(), nil
}
