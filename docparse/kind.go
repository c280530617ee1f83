package docparse

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
)

// Kind identifies the container format of an uploaded document.
type Kind string

const (
	KindUnknown Kind = ""
	KindPDF     Kind = "pdf"
	KindDOCX    Kind = "docx"
	KindDOC     Kind = "doc"
	KindText    Kind = "text"
)

// Document MIME types accepted by the upload endpoint.
const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEDOC  = "application/msword"
	MIMEText = "text/plain"
)

// ErrUnsupportedType is returned when a document is not a PDF, Word or
// plain-text file.
var ErrUnsupportedType = errors.New("unsupported document type")

// sniffLen is how many leading bytes filetype needs for its matchers.
const sniffLen = 8192

var mimeKinds = map[string]Kind{
	MIMEPDF:  KindPDF,
	MIMEDOCX: KindDOCX,
	MIMEDOC:  KindDOC,
	MIMEText: KindText,
}

var extensionKinds = map[string]Kind{
	".pdf":  KindPDF,
	".docx": KindDOCX,
	".doc":  KindDOC,
	".txt":  KindText,
	".md":   KindText,
}

// MIMEType returns the canonical MIME type for k.
func (k Kind) MIMEType() string {
	for m, kind := range mimeKinds {
		if kind == k {
			return m
		}
	}
	return "application/octet-stream"
}

// ParseKind maps a kind name such as "pdf" to a Kind.
func ParseKind(name string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(name))); k {
	case KindPDF, KindDOCX, KindDOC, KindText:
		return k, nil
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
}

// DetectKind works out what data is. Magic bytes win; when they are
// inconclusive the declared MIME type is used, then the file extension,
// and finally valid UTF-8 without NUL bytes is treated as plain text.
//
// Example:
//
//	kind, err := DetectKind(data, "brief.docx", header.Get("Content-Type"))
func DetectKind(data []byte, filename, declaredMIME string) (Kind, error) {
	if len(data) == 0 {
		return KindUnknown, ErrEmptyDocument
	}

	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}

	sniffed, _ := filetype.Match(head)
	switch sniffed.Extension {
	case "pdf":
		return KindPDF, nil
	case "docx":
		return KindDOCX, nil
	case "doc":
		return KindDOC, nil
	case "zip", "unknown", "":
		// A zip may still be an OOXML file filetype could not classify.
	default:
		return KindUnknown, fmt.Errorf("%w: detected %s", ErrUnsupportedType, sniffed.Extension)
	}

	hinted := hintedKind(filename, declaredMIME)
	if sniffed.Extension == "zip" {
		if hinted == KindDOCX {
			return KindDOCX, nil
		}
		return KindUnknown, fmt.Errorf("%w: zip archive", ErrUnsupportedType)
	}
	if hinted != KindUnknown && hinted != KindText {
		return hinted, nil
	}

	if looksLikeText(data) {
		return KindText, nil
	}
	return KindUnknown, fmt.Errorf("%w: %s", ErrUnsupportedType, describe(filename, declaredMIME))
}

// hintedKind returns the kind suggested by the declared MIME type or, when
// that says nothing useful, by the filename extension.
func hintedKind(filename, declaredMIME string) Kind {
	if declaredMIME != "" {
		if mediaType, _, err := mime.ParseMediaType(declaredMIME); err == nil {
			if k, ok := mimeKinds[mediaType]; ok {
				return k
			}
		}
	}
	return extensionKinds[strings.ToLower(filepath.Ext(filename))]
}

func looksLikeText(data []byte) bool {
	return utf8.Valid(data) && !bytes.ContainsRune(data, 0)
}

func describe(filename, declaredMIME string) string {
	switch {
	case declaredMIME != "" && filename != "":
		return fmt.Sprintf("%s (%s)", filename, declaredMIME)
	case filename != "":
		return filename
	case declaredMIME != "":
		return declaredMIME
	}
	return "unrecognised content"
}
