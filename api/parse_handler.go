package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"aura_backend/core"
	"aura_backend/docparse"
	"aura_backend/export"
	"aura_backend/extraction"
	"aura_backend/shutdown"
)

// documentField is the multipart form field carrying the upload.
const documentField = "document"

// multipartOverhead is the allowance for multipart framing on top of the
// upload size limit.
const multipartOverhead = 64 << 10

var errNoDocument = errors.New("no document in request")

type parseMetadata struct {
	docparse.Metadata
	RunID      string            `json:"runId"`
	DurationMS int64             `json:"durationMs"`
	Sources    map[string]string `json:"sources,omitempty"`
}

// handleParse handles POST /api/v1/parse-business-brief. With ?explain=true
// the metadata names the strategy that produced each field.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	result, ok := s.parseRequest(w, r)
	if !ok {
		return
	}

	md := parseMetadata{
		Metadata:   result.Metadata,
		RunID:      result.RunID,
		DurationMS: result.Duration.Milliseconds(),
	}
	if explain, _ := parseBool(r.URL.Query().Get("explain")); explain {
		md.Sources = fieldSources(result.Trace)
	}
	writeData(w, result.Fields, md)
}

// handleExport handles POST /api/v1/parse-business-brief/export and returns
// the extracted fields as an XLSX workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	result, ok := s.parseRequest(w, r)
	if !ok {
		return
	}

	data, err := export.WriteWorkbook([]export.Row{{Filename: result.Metadata.Filename, Fields: result.Fields}})
	if err != nil {
		s.logger.Error("workbook export failed",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, MsgInternalError)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment",
		map[string]string{"filename": workbookName(result.Metadata.Filename)}))
	w.Header().Set("X-Run-ID", result.RunID)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// parseRequest reads the upload and runs the parser. On failure it writes
// the error response and returns false.
func (s *Server) parseRequest(w http.ResponseWriter, r *http.Request) (*docparse.ParseResult, bool) {
	upload, err := s.readUpload(w, r)
	if err == nil {
		var result *docparse.ParseResult
		result, err = s.deps.Parser.Parse(r.Context(), upload)
		if err == nil {
			return result, true
		}
	}

	status, message := s.errorStatus(err)
	log := s.logger.With(
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.Int("status", status),
	)
	if status >= http.StatusInternalServerError {
		log.Error("document request failed", zap.Error(err))
	} else {
		log.Warn("document request rejected", zap.Error(err))
	}
	writeError(w, status, message)
	return nil, false
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (docparse.Upload, error) {
	limit := s.config.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	file, header, err := r.FormFile(documentField)
	if err != nil {
		if isBodyTooLarge(err) {
			return docparse.Upload{}, docparse.ErrFileTooLarge
		}
		return docparse.Upload{}, fmt.Errorf("%w: %v", errNoDocument, err)
	}
	defer file.Close()

	if header.Size > limit {
		return docparse.Upload{}, fmt.Errorf("%w: %d bytes", docparse.ErrFileTooLarge, header.Size)
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return docparse.Upload{}, fmt.Errorf("read upload: %w", err)
	}

	return docparse.Upload{
		Filename:     filepath.Base(header.Filename),
		DeclaredType: header.Header.Get("Content-Type"),
		Data:         data,
	}, nil
}

// errorStatus maps a parse error to an HTTP status and client message.
func (s *Server) errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errNoDocument), errors.Is(err, docparse.ErrEmptyDocument):
		return http.StatusBadRequest, MsgNoDocument
	case errors.Is(err, docparse.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File size too large. Maximum size is %s.", sizeLabel(s.config.MaxUploadBytes))
	case errors.Is(err, docparse.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, MsgInvalidFileType
	case errors.Is(err, docparse.ErrCorruptDocument), errors.Is(err, docparse.ErrNoTextContent):
		return http.StatusUnprocessableEntity, MsgExtractFailed
	case errors.Is(err, shutdown.ErrShuttingDown):
		return http.StatusServiceUnavailable, MsgShuttingDown
	}
	return http.StatusInternalServerError, MsgInternalError
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

// sizeLabel renders whole mebibytes as "10MB" and anything else with
// core.FormatBytes.
func sizeLabel(n int64) string {
	if n > 0 && n%core.BytesPerMB == 0 {
		return fmt.Sprintf("%dMB", n/core.BytesPerMB)
	}
	return core.FormatBytes(n)
}

func workbookName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" || base == "." {
		base = "business-brief"
	}
	return base + "-fields.xlsx"
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true, nil
	case "", "0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

var _ Parser = (*docparse.Service)(nil)

// fieldSources names the strategy that produced each extracted field.
func fieldSources(trace extraction.Trace) map[string]string {
	out := make(map[string]string)
	for _, name := range trace.Result.Names() {
		out[string(name)] = trace.Source(name)
	}
	return out
}
