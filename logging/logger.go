// Package logging provides the service logger: zap with a console and a
// rotating JSON file output, and redaction of credentials and personal
// contact details before any value reaches a sink.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures NewLogger.
type Config struct {
	// Development switches the console to coloured output at debug level
	Development bool

	// FilePath is the rotating JSON log file. Empty disables file output.
	FilePath string

	// Level overrides both the mode default and AURA_LOG_LEVEL when set
	Level string

	// File holds rotation settings
	File FileWriterConfig

	// Console replaces stdout, mainly for tests
	Console zapcore.WriteSyncer
}

// Logger wraps zap.Logger and redacts sensitive data from every field.
//
// This organism composes:
//   - FileWriter molecule (log file rotation via lumberjack)
//   - MultiCore molecule (tee output to console + file)
//   - SensitiveFilter atom (credential and contact redaction)
//
// Example:
//
//	logger, err := NewLogger(Config{Development: true, FilePath: "logs/aura.log"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("server started", zap.String("addr", ":8080"))
type Logger struct {
	zap           *zap.Logger
	sugar         *zap.SugaredLogger
	isDevelopment bool
	logFilePath   string
}

// NewLogger builds a Logger from config. The log directory is created if
// needed.
func NewLogger(config Config) (*Logger, error) {
	level := zapcore.InfoLevel
	if config.Development {
		level = zapcore.DebugLevel
	}
	level = ParseLogLevel(LevelEnvVar, level)
	if config.Level != "" {
		level = ParseLogLevelString(config.Level, level)
	}

	console := config.Console
	if console == nil {
		console = zapcore.Lock(os.Stdout)
	}

	var file zapcore.WriteSyncer
	if config.FilePath != "" {
		if dir := filepath.Dir(config.FilePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}
		file = NewFileWriter(config.FilePath, config.File)
	}

	core := NewMultiCore(level, console, file, config.Development)
	logger := newLogger(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)), config.Development)
	logger.logFilePath = config.FilePath
	return logger, nil
}

// NewFromCore wraps an existing core. Tests use it with zaptest/observer
// or an in-memory writer.
func NewFromCore(core zapcore.Core, isDevelopment bool) *Logger {
	return newLogger(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)), isDevelopment)
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return newLogger(zap.NewNop(), false)
}

func newLogger(z *zap.Logger, isDevelopment bool) *Logger {
	return &Logger{zap: z, sugar: z.Sugar(), isDevelopment: isDevelopment}
}

// Sync flushes any buffered log entries. Call it before exiting.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// Debug logs a message at DebugLevel with optional structured fields.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, redactFields(fields)...)
}

// Info logs a message at InfoLevel with optional structured fields.
//
// Example:
//
//	logger.Info("document parsed",
//	    zap.String("kind", "pdf"),
//	    zap.Int("fields", 12))
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, redactFields(fields)...)
}

// Warn logs a message at WarnLevel with optional structured fields.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, redactFields(fields)...)
}

// Error logs a message at ErrorLevel with optional structured fields.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, redactFields(fields)...)
}

// Fatal logs a message at FatalLevel then calls os.Exit(1).
func (l *Logger) Fatal(msg string, fields ...zap.Field) {
	l.zap.Fatal(msg, redactFields(fields)...)
}

// Infow logs a message with loosely-typed key-value pairs.
//
// Example:
//
//	logger.Infow("history pruned", "removed", 12, "retention_days", 90)
func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, redactKeysAndValues(keysAndValues)...)
}

// Warnw logs a message at WarnLevel with loosely-typed key-value pairs.
func (l *Logger) Warnw(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, redactKeysAndValues(keysAndValues)...)
}

// Errorw logs a message at ErrorLevel with loosely-typed key-value pairs.
func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, redactKeysAndValues(keysAndValues)...)
}

// With creates a child logger that adds fields to every entry.
//
// Example:
//
//	runLogger := logger.With(zap.String("run_id", id))
func (l *Logger) With(fields ...zap.Field) *Logger {
	child := newLogger(l.zap.With(redactFields(fields)...), l.isDevelopment)
	child.logFilePath = l.logFilePath
	return child
}

// Named adds a sub-logger name such as "http" or "history".
func (l *Logger) Named(name string) *Logger {
	child := newLogger(l.zap.Named(name), l.isDevelopment)
	child.logFilePath = l.logFilePath
	return child
}

// Zap returns the underlying zap.Logger.
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// IsDevelopment returns true if the logger is configured for development mode.
func (l *Logger) IsDevelopment() bool {
	return l.isDevelopment
}

// LogFilePath returns the log file path, or "" for console-only loggers.
func (l *Logger) LogFilePath() string {
	return l.logFilePath
}

// redactFields filters sensitive data from zap.Field values.
func redactFields(fields []zap.Field) []zap.Field {
	if len(fields) == 0 {
		return fields
	}
	result := make([]zap.Field, len(fields))
	for i, field := range fields {
		result[i] = redactField(field)
	}
	return result
}

func redactField(field zap.Field) zap.Field {
	if IsSensitiveField(field.Key) {
		return zap.String(field.Key, RedactedPlaceholder)
	}
	if field.Type == zapcore.StringType {
		if redacted := RedactSensitiveData(field.String); redacted != field.String {
			return zap.String(field.Key, redacted)
		}
	}
	return field
}

// redactKeysAndValues filters sensitive data from sugared key-value pairs.
func redactKeysAndValues(keysAndValues []interface{}) []interface{} {
	if len(keysAndValues) == 0 {
		return keysAndValues
	}
	result := make([]interface{}, len(keysAndValues))
	copy(result, keysAndValues)

	for i := 0; i < len(result)-1; i += 2 {
		key, ok := result[i].(string)
		if !ok {
			continue
		}
		if IsSensitiveField(key) {
			result[i+1] = RedactedPlaceholder
			continue
		}
		if value, ok := result[i+1].(string); ok {
			result[i+1] = RedactSensitiveData(value)
		}
	}
	return result
}
