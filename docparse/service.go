package docparse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aura_backend/db"
	"aura_backend/extraction"
	"aura_backend/logging"
)

var (
	// ErrEmptyDocument is returned for a zero-length upload.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrFileTooLarge is returned when an upload exceeds Config.MaxBytes.
	ErrFileTooLarge = errors.New("document exceeds the upload size limit")

	// ErrNoTextContent is returned when a document decodes but holds no text.
	ErrNoTextContent = errors.New("no text content found in document")

	// ErrCorruptDocument is returned when a document cannot be decoded.
	ErrCorruptDocument = errors.New("document could not be decoded")
)

// DefaultMaxBytes is the upload size limit: 10 MiB.
const DefaultMaxBytes = 10 << 20

// Processing stage names reported to progress callbacks and metrics.
const (
	StageDecode  = "decode"
	StageExtract = "extract"
)

// Config holds configuration for the document service.
type Config struct {
	// MaxBytes is the largest accepted upload
	MaxBytes int64

	// AllowedKinds lists the document kinds Parse accepts
	AllowedKinds []Kind

	// PDF configures page extraction
	PDF PDFConfig

	// MaxDocxXMLBytes caps the decoded size of word/document.xml
	MaxDocxXMLBytes int64

	// PreviewLength is how much of the extracted text is logged at debug level
	PreviewLength int
}

// DefaultConfig returns the configuration used by the upload endpoint:
// PDF and Word documents up to 10 MiB.
func DefaultConfig() Config {
	return Config{
		MaxBytes:      DefaultMaxBytes,
		AllowedKinds:  []Kind{KindPDF, KindDOCX, KindDOC},
		PDF:           DefaultPDFConfig(),
		PreviewLength: 500,
	}
}

// Upload is a document received from a client.
type Upload struct {
	Filename     string
	DeclaredType string
	Data         []byte
}

// Metadata describes a parsed document. It is returned to API clients
// alongside the fields.
type Metadata struct {
	Filename            string `json:"filename"`
	FileSize            int64  `json:"fileSize"`
	ExtractedTextLength int    `json:"extractedTextLength"`
	FieldsExtracted     int    `json:"fieldsExtracted"`
	DocumentKind        Kind   `json:"documentKind"`
	EstimatedTokens     int    `json:"estimatedTokens"`
	Pages               int    `json:"pages,omitempty"`
}

// ProcessingStages contains timing information for each stage.
type ProcessingStages struct {
	DecodeTime     time.Duration
	ExtractionTime time.Duration
}

// ParseResult is the outcome of Service.Parse.
type ParseResult struct {
	// RunID identifies the history record for this parse
	RunID string

	// Fields are the extracted business-brief fields
	Fields extraction.FieldSet

	// Metadata describes the document
	Metadata Metadata

	// Text is the normalised document text the fields were extracted from
	Text string

	// Trace holds the output of each extraction strategy
	Trace extraction.Trace

	// Stages contains per-stage timings
	Stages ProcessingStages

	// Duration is the total time taken
	Duration time.Duration
}

// ProgressCallback is called to report processing progress.
// stage is the current stage name, progress is 0.0-1.0, message is a human-readable status.
type ProgressCallback func(stage string, progress float64, message string)

// Recorder receives processing measurements. metrics.Collector implements it.
type Recorder interface {
	ObserveUpload(size int64)
	ObserveDocument(kind, status string)
	ObserveStage(stage string, d time.Duration)
	ObserveFields(names []string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveUpload(int64)                {}
func (nopRecorder) ObserveDocument(string, string)     {}
func (nopRecorder) ObserveStage(string, time.Duration) {}
func (nopRecorder) ObserveFields([]string)             {}

// Service validates uploads, decodes them to text and extracts fields.
//
// It composes:
//   - DetectKind for format detection
//   - PDFExtractor, DocxExtractor and LegacyDocExtractor for decoding
//   - extraction.Pipeline for field extraction
//
// A Service is safe for concurrent use.
type Service struct {
	config   Config
	allowed  map[Kind]bool
	pipeline *extraction.Pipeline
	pdf      *PDFExtractor
	docx     *DocxExtractor
	doc      *LegacyDocExtractor
	logger   *logging.Logger
	recorder Recorder
	history  db.RunInserter
	progress ProgressCallback
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for stage timings and failures.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder Recorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

// WithHistory records every parse, successful or not, through history.
func WithHistory(history db.RunInserter) Option {
	return func(s *Service) {
		s.history = history
	}
}

// WithProgress sets a progress callback.
func WithProgress(progress ProgressCallback) Option {
	return func(s *Service) {
		s.progress = progress
	}
}

// NewService creates a Service. A nil pipeline uses the default catalog.
//
// Example:
//
//	svc := NewService(DefaultConfig(), extraction.NewDefaultPipeline(),
//	    WithLogger(logger),
//	    WithHistory(database.Repository()))
//	result, err := svc.Parse(ctx, Upload{Filename: "brief.pdf", Data: data})
func NewService(config Config, pipeline *extraction.Pipeline, opts ...Option) *Service {
	defaults := DefaultConfig()
	if config.MaxBytes <= 0 {
		config.MaxBytes = defaults.MaxBytes
	}
	if len(config.AllowedKinds) == 0 {
		config.AllowedKinds = defaults.AllowedKinds
	}
	if config.PreviewLength <= 0 {
		config.PreviewLength = defaults.PreviewLength
	}
	if pipeline == nil {
		pipeline = extraction.NewDefaultPipeline()
	}

	s := &Service{
		config:   config,
		allowed:  make(map[Kind]bool, len(config.AllowedKinds)),
		pipeline: pipeline,
		pdf:      NewPDFExtractor(config.PDF),
		docx:     NewDocxExtractor(config.MaxDocxXMLBytes),
		doc:      NewLegacyDocExtractor(),
		logger:   logging.NewNop(),
		recorder: nopRecorder{},
	}
	for _, k := range config.AllowedKinds {
		s.allowed[k] = true
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.config
}

// Pipeline returns the extraction pipeline.
func (s *Service) Pipeline() *extraction.Pipeline {
	return s.pipeline
}

// Parse decodes upload and extracts its fields. Errors wrap one of
// ErrEmptyDocument, ErrFileTooLarge, ErrUnsupportedType, ErrCorruptDocument
// or ErrNoTextContent, or are the context's error.
func (s *Service) Parse(ctx context.Context, upload Upload) (*ParseResult, error) {
	start := time.Now()
	result := &ParseResult{
		RunID: uuid.NewString(),
		Metadata: Metadata{
			Filename: upload.Filename,
			FileSize: int64(len(upload.Data)),
		},
	}
	log := s.logger.With(
		zap.String("run_id", result.RunID),
		zap.String("filename", upload.Filename),
		zap.Int64("size", result.Metadata.FileSize),
	)
	s.recorder.ObserveUpload(result.Metadata.FileSize)

	err := s.parse(ctx, upload, result)
	result.Duration = time.Since(start)

	status := runStatus(err)
	s.recorder.ObserveDocument(string(result.Metadata.DocumentKind), status)
	s.record(ctx, result, status, err, log)

	if err != nil {
		log.Warn("document parse failed", zap.String("status", status), zap.Error(err))
		return nil, err
	}

	s.recorder.ObserveFields(fieldNames(result.Fields))
	log.Info("document parsed",
		zap.String("kind", string(result.Metadata.DocumentKind)),
		zap.Int("text_length", result.Metadata.ExtractedTextLength),
		zap.Int("fields", result.Metadata.FieldsExtracted),
		zap.Duration("decode", result.Stages.DecodeTime),
		zap.Duration("extract", result.Stages.ExtractionTime),
		zap.Duration("total", result.Duration),
	)
	return result, nil
}

func (s *Service) parse(ctx context.Context, upload Upload, result *ParseResult) error {
	size := int64(len(upload.Data))
	if size == 0 {
		return ErrEmptyDocument
	}
	if size > s.config.MaxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, size, s.config.MaxBytes)
	}

	kind, err := DetectKind(upload.Data, upload.Filename, upload.DeclaredType)
	if err != nil {
		return err
	}
	result.Metadata.DocumentKind = kind
	if !s.allowed[kind] {
		return fmt.Errorf("%w: %s documents are not accepted", ErrUnsupportedType, kind)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Stage 1: decode the document to text
	s.reportProgress(StageDecode, 0.0, fmt.Sprintf("Decoding %s document...", kind))
	decodeStart := time.Now()

	text, pages, err := s.decode(kind, upload.Data)
	result.Stages.DecodeTime = time.Since(decodeStart)
	s.recorder.ObserveStage(StageDecode, result.Stages.DecodeTime)
	if err != nil {
		return err
	}
	text = NormalizeDocumentText(text)
	if text == "" {
		return ErrNoTextContent
	}
	result.Text = text
	result.Metadata.Pages = pages
	result.Metadata.ExtractedTextLength = len([]rune(text))
	result.Metadata.EstimatedTokens = EstimateTokenCount(text)

	s.reportProgress(StageDecode, 1.0, fmt.Sprintf("Extracted %d characters", result.Metadata.ExtractedTextLength))
	if preview := TruncateTextWithEllipsis(text, s.config.PreviewLength); logging.ContainsSensitiveData(preview) {
		s.logger.Debug("extracted text preview withheld", zap.Int("preview_length", len([]rune(preview))))
	} else {
		s.logger.Debug("extracted text preview", zap.String("preview", preview))
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Stage 2: extract fields
	s.reportProgress(StageExtract, 0.0, "Extracting fields...")
	extractStart := time.Now()

	result.Trace = s.pipeline.Explain(text)
	result.Fields = result.Trace.Result
	result.Metadata.FieldsExtracted = result.Fields.Len()

	result.Stages.ExtractionTime = time.Since(extractStart)
	s.recorder.ObserveStage(StageExtract, result.Stages.ExtractionTime)
	s.reportProgress(StageExtract, 1.0, fmt.Sprintf("Found %d fields", result.Metadata.FieldsExtracted))
	return nil
}

func (s *Service) decode(kind Kind, data []byte) (string, int, error) {
	switch kind {
	case KindPDF:
		res, err := s.pdf.Extract(data)
		if err != nil {
			return "", 0, err
		}
		return res.Text, res.TotalPages, nil
	case KindDOCX:
		text, err := s.docx.Extract(data)
		return text, 0, err
	case KindDOC:
		text, err := s.doc.Extract(data)
		return text, 0, err
	case KindText:
		return string(data), 0, nil
	}
	return "", 0, fmt.Errorf("%w: %s", ErrUnsupportedType, kind)
}

// record writes the run to history. History failures are logged and never
// fail the parse.
func (s *Service) record(ctx context.Context, result *ParseResult, status string, parseErr error, log *logging.Logger) {
	if s.history == nil {
		return
	}
	run := db.ExtractionRun{
		ID:              result.RunID,
		Filename:        result.Metadata.Filename,
		DocumentKind:    string(result.Metadata.DocumentKind),
		FileSize:        result.Metadata.FileSize,
		TextLength:      result.Metadata.ExtractedTextLength,
		FieldsExtracted: result.Metadata.FieldsExtracted,
		FieldNames:      fieldNames(result.Fields),
		DurationMS:      result.Duration.Milliseconds(),
		Status:          status,
		CreatedAt:       time.Now(),
	}
	if parseErr != nil {
		run.ErrorMessage = parseErr.Error()
	}
	if err := s.history.InsertRun(context.WithoutCancel(ctx), run); err != nil {
		log.Warn("failed to record extraction run", zap.Error(err))
	}
}

func (s *Service) reportProgress(stage string, progress float64, message string) {
	if s.progress != nil {
		s.progress(stage, progress, message)
	}
}

// runStatus maps a parse error to the history status.
func runStatus(err error) string {
	switch {
	case err == nil:
		return db.StatusSuccess
	case errors.Is(err, ErrEmptyDocument),
		errors.Is(err, ErrFileTooLarge),
		errors.Is(err, ErrUnsupportedType):
		return db.StatusRejected
	}
	return db.StatusFailed
}

func fieldNames(fields extraction.FieldSet) []string {
	names := fields.Names()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}
