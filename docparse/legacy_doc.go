package docparse

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/richardlehane/mscfb"
)

// wordDocumentStream is the OLE2 stream that carries the text of a Word 97
// to 2003 document.
const wordDocumentStream = "WordDocument"

const (
	// minRunLength is the shortest printable run kept from the binary stream.
	minRunLength = 4
	// minRecoveredWords is how many words a .doc must yield to count as text.
	minRecoveredWords = 3
)

// LegacyDocExtractor recovers text from binary .doc files.
//
// It does not interpret the Word piece table. It reads the WordDocument
// stream from the compound file and keeps runs of printable characters,
// decoding the stream both as ASCII and as UTF-16LE and keeping
// whichever reading recovers more letters. Paragraph marks become line
// breaks.
type LegacyDocExtractor struct{}

// NewLegacyDocExtractor creates a LegacyDocExtractor.
func NewLegacyDocExtractor() *LegacyDocExtractor {
	return &LegacyDocExtractor{}
}

// Extract returns the text recovered from data.
func (e *LegacyDocExtractor) Extract(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}

	stream, err := readWordStream(data)
	if err != nil {
		return "", err
	}

	narrow := printableRuns(decode8Bit(stream))
	wide := printableRuns(decodeUTF16LE(stream))
	text := narrow
	if letterCount(wide) > letterCount(narrow) {
		text = wide
	}

	if len(strings.Fields(text)) < minRecoveredWords {
		return "", ErrNoTextContent
	}
	return text, nil
}

func readWordStream(data []byte) ([]byte, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: not an OLE2 compound file: %v", ErrCorruptDocument, err)
	}

	for entry, err := doc.Next(); ; entry, err = doc.Next() {
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read compound file: %v", ErrCorruptDocument, err)
		}
		if entry.Name != wordDocumentStream {
			continue
		}
		stream, err := io.ReadAll(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read %s stream: %v", ErrCorruptDocument, wordDocumentStream, err)
		}
		return stream, nil
	}
	return nil, fmt.Errorf("%w: %s stream not found", ErrCorruptDocument, wordDocumentStream)
}

func decode8Bit(b []byte) []rune {
	out := make([]rune, len(b))
	for i, c := range b {
		if c >= 0x80 {
			out[i] = utf8.RuneError
			continue
		}
		out[i] = rune(c)
	}
	return out
}

func decodeUTF16LE(b []byte) []rune {
	out := make([]rune, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		out = append(out, rune(uint16(b[i])|uint16(b[i+1])<<8))
	}
	return out
}

// printableRuns keeps runs of at least minRunLength printable characters.
// Word paragraph marks (\r) and line breaks end a line; any other control
// character ends the current run.
func printableRuns(chars []rune) string {
	var out strings.Builder
	var run []rune
	lineStart := true

	flush := func(newline bool) {
		if word := strings.TrimSpace(string(run)); len(run) >= minRunLength && word != "" {
			if !lineStart {
				out.WriteByte(' ')
			}
			out.WriteString(word)
			lineStart = false
		}
		run = run[:0]
		if newline && out.Len() > 0 {
			out.WriteByte('\n')
			lineStart = true
		}
	}

	for _, c := range chars {
		switch {
		case c == '\r' || c == '\n' || c == 0x0B:
			flush(true)
		case c == '\t':
			run = append(run, c)
		case c < 0x20 || c == 0x7F || c == utf8.RuneError:
			flush(false)
		case unicode.IsPrint(c):
			run = append(run, c)
		default:
			flush(false)
		}
	}
	flush(false)
	return NormalizeDocumentText(out.String())
}

func letterCount(s string) int {
	n := 0
	for _, c := range s {
		if unicode.IsLetter(c) {
			n++
		}
	}
	return n
}
