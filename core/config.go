// Package core holds service-wide configuration, error types and exit codes.
package core

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvHost                 = "AURA_HOST"
	EnvPort                 = "AURA_PORT"
	EnvMaxUploadBytes       = "AURA_MAX_UPLOAD_BYTES"
	EnvDatabasePath         = "AURA_DATABASE_PATH"
	EnvLogFile              = "AURA_LOG_FILE"
	EnvDevMode              = "AURA_DEV_MODE"
	EnvCatalogPath          = "AURA_CATALOG_PATH"
	EnvRegexTimeout         = "AURA_REGEX_TIMEOUT"
	EnvReadTimeout          = "AURA_READ_TIMEOUT"
	EnvWriteTimeout         = "AURA_WRITE_TIMEOUT"
	EnvShutdownTimeout      = "AURA_SHUTDOWN_TIMEOUT"
	EnvHistoryEnabled       = "AURA_HISTORY_ENABLED"
	EnvHistoryLimit         = "AURA_HISTORY_LIMIT"
	EnvHistoryRetentionDays = "AURA_HISTORY_RETENTION_DAYS"
	EnvUploadsPerMinute     = "AURA_UPLOADS_PER_MINUTE"
)

// Config holds all configuration values. Every value has a default so the
// service starts with no configuration at all.
type Config struct {
	// HTTP server
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Uploads
	MaxUploadBytes   int64
	UploadsPerMinute int // Per client address; 0 disables the limit

	// Extraction
	CatalogPath  string        // Optional YAML catalog replacing the embedded one
	RegexTimeout time.Duration // Per-pattern limit for long-range section patterns

	// History
	HistoryEnabled       bool
	DatabasePath         string
	HistoryLimit         int // Default page size for the history endpoint
	HistoryRetentionDays int // 0 keeps everything

	// Logging
	LogFilePath string
	DevMode     bool
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Host:                 "0.0.0.0",
		Port:                 8080,
		ReadTimeout:          30 * time.Second,
		WriteTimeout:         60 * time.Second,
		ShutdownTimeout:      10 * time.Second,
		MaxUploadBytes:       10 * BytesPerMB,
		UploadsPerMinute:     60,
		RegexTimeout:         250 * time.Millisecond,
		HistoryEnabled:       true,
		DatabasePath:         "data/aura.db",
		HistoryLimit:         50,
		HistoryRetentionDays: 90,
		LogFilePath:          "logs/aura.log",
	}
}

// LoadEnvFile loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is only an
// error when required is true.
func LoadEnvFile(path string, required bool) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		if required {
			return ErrEnvFileMissing(path)
		}
		return nil
	}
	return ErrEnvFileInvalid(path, err)
}

// LoadConfig reads the configuration from the environment and validates it.
//
// Example:
//
//	if err := LoadEnvFile(".env", false); err != nil {
//	    return err
//	}
//	cfg, err := LoadConfig()
func LoadConfig() (*Config, error) {
	d := DefaultConfig()
	cfg := &Config{
		Host:                 GetEnvOrDefault(EnvHost, d.Host),
		Port:                 ParseIntEnv(EnvPort, d.Port),
		ReadTimeout:          ParseDurationEnv(EnvReadTimeout, d.ReadTimeout),
		WriteTimeout:         ParseDurationEnv(EnvWriteTimeout, d.WriteTimeout),
		ShutdownTimeout:      ParseDurationEnv(EnvShutdownTimeout, d.ShutdownTimeout),
		MaxUploadBytes:       ParseBytesEnv(EnvMaxUploadBytes, d.MaxUploadBytes),
		UploadsPerMinute:     ParseIntEnv(EnvUploadsPerMinute, d.UploadsPerMinute),
		CatalogPath:          os.Getenv(EnvCatalogPath),
		RegexTimeout:         ParseDurationEnv(EnvRegexTimeout, d.RegexTimeout),
		HistoryEnabled:       ParseBoolEnv(EnvHistoryEnabled, d.HistoryEnabled),
		DatabasePath:         GetEnvOrDefault(EnvDatabasePath, d.DatabasePath),
		HistoryLimit:         ParseIntEnv(EnvHistoryLimit, d.HistoryLimit),
		HistoryRetentionDays: ParseIntEnv(EnvHistoryRetentionDays, d.HistoryRetentionDays),
		LogFilePath:          GetEnvOrDefault(EnvLogFile, d.LogFilePath),
		DevMode:              ParseBoolEnv(EnvDevMode, d.DevMode),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every value and returns the first problem as a *ConfigError.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort(c.Port)
	}
	if c.MaxUploadBytes <= 0 {
		return ErrInvalidValue(EnvMaxUploadBytes, "must be positive")
	}
	if c.UploadsPerMinute < 0 {
		return ErrInvalidValue(EnvUploadsPerMinute, "must not be negative")
	}
	if c.RegexTimeout <= 0 {
		return ErrInvalidValue(EnvRegexTimeout, "must be a positive duration")
	}
	for name, d := range map[string]time.Duration{
		EnvReadTimeout:     c.ReadTimeout,
		EnvWriteTimeout:    c.WriteTimeout,
		EnvShutdownTimeout: c.ShutdownTimeout,
	} {
		if d <= 0 {
			return ErrInvalidValue(name, "must be a positive duration")
		}
	}
	if c.HistoryEnabled && c.DatabasePath == "" {
		return ErrMissingConfig(EnvDatabasePath)
	}
	if c.HistoryLimit < 1 || c.HistoryLimit > 1000 {
		return ErrInvalidValue(EnvHistoryLimit, "must be between 1 and 1000")
	}
	if c.HistoryRetentionDays < 0 {
		return ErrInvalidValue(EnvHistoryRetentionDays, "must not be negative")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// String summarises the configuration for startup logs.
func (c *Config) String() string {
	return fmt.Sprintf("addr=%s max_upload=%s history=%t db=%s catalog=%q regex_timeout=%s",
		c.Addr(), FormatBytes(c.MaxUploadBytes), c.HistoryEnabled, c.DatabasePath, c.CatalogPath, c.RegexTimeout)
}
