package core

import (
	"errors"
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeEnvFileMissing = "ENV_FILE_MISSING"
	ErrCodeEnvFileInvalid = "ENV_FILE_INVALID"
	ErrCodeInvalidPort    = "INVALID_PORT"
	ErrCodeInvalidValue   = "INVALID_VALUE"
	ErrCodeMissingConfig  = "MISSING_CONFIG"
)

// ErrEnvFileMissing returns an error for a missing .env file.
func ErrEnvFileMissing(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileMissing,
		Message: fmt.Sprintf("Configuration file not found: %s", path),
		Action:  "Copy example.env to .env or pass the variables through the environment",
	}
}

// ErrEnvFileInvalid returns an error for a .env file that cannot be parsed.
func ErrEnvFileInvalid(path string, reason error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileInvalid,
		Message: fmt.Sprintf("Configuration file %s could not be read: %v", path, reason),
		Action:  "Check the file uses KEY=value lines",
	}
}

// ErrInvalidPort returns an error for a port outside 1-65535.
func ErrInvalidPort(port int) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidPort,
		Message: fmt.Sprintf("Invalid AURA_PORT %d", port),
		Action:  "Set AURA_PORT to a number between 1 and 65535",
	}
}

// ErrInvalidValue returns an error for an out-of-range setting.
func ErrInvalidValue(varName, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidValue,
		Message: fmt.Sprintf("Invalid %s: %s", varName, reason),
		Action:  fmt.Sprintf("Fix %s in your .env file or environment", varName),
	}
}

// ErrMissingConfig returns an error for missing required configuration.
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Set %s in your .env file", varName),
	}
}

// IsConfigError reports whether err is or wraps a ConfigError and returns it.
func IsConfigError(err error) (*ConfigError, bool) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
