package logging

import (
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation settings for the service log file.
const (
	DefaultMaxSizeMB  = 50
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 30
)

// FileWriterConfig holds rotation settings. Zero values use the defaults.
type FileWriterConfig struct {
	// MaxSizeMB is the size in megabytes at which the file is rotated
	MaxSizeMB int

	// MaxBackups is the number of rotated files to keep
	MaxBackups int

	// MaxAgeDays is how long rotated files are kept
	MaxAgeDays int

	// Compress gzips rotated files
	Compress bool
}

// DefaultFileWriterConfig returns the rotation settings used by the server.
func DefaultFileWriterConfig() FileWriterConfig {
	return FileWriterConfig{
		MaxSizeMB:  DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAgeDays: DefaultMaxAgeDays,
		Compress:   true,
	}
}

// NewFileWriter returns a rotating zapcore.WriteSyncer for path.
//
// Example:
//
//	writer := NewFileWriter("logs/aura.log", DefaultFileWriterConfig())
//	core := zapcore.NewCore(encoder, writer, level)
func NewFileWriter(path string, config FileWriterConfig) zapcore.WriteSyncer {
	if config.MaxSizeMB <= 0 {
		config.MaxSizeMB = DefaultMaxSizeMB
	}
	if config.MaxBackups <= 0 {
		config.MaxBackups = DefaultMaxBackups
	}
	if config.MaxAgeDays <= 0 {
		config.MaxAgeDays = DefaultMaxAgeDays
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    config.MaxSizeMB,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAgeDays,
		Compress:   config.Compress,
	})
}
