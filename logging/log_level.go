package logging

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// LevelEnvVar overrides the log level chosen by the run mode.
const LevelEnvVar = "AURA_LOG_LEVEL"

// ParseLogLevel reads a level from the named environment variable, falling
// back to defaultLevel when it is unset or invalid.
//
// Example:
//
//	level := ParseLogLevel(LevelEnvVar, zapcore.InfoLevel)
func ParseLogLevel(envVarName string, defaultLevel zapcore.Level) zapcore.Level {
	value := os.Getenv(envVarName)
	if value == "" {
		return defaultLevel
	}
	return ParseLogLevelString(value, defaultLevel)
}

// ParseLogLevelString parses debug, info, warn (or warning), error or fatal,
// ignoring case and surrounding space.
func ParseLogLevelString(levelStr string, defaultLevel zapcore.Level) zapcore.Level {
	value := strings.ToLower(strings.TrimSpace(levelStr))
	if value == "warning" {
		value = "warn"
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(value)); err != nil || value == "" {
		return defaultLevel
	}
	switch level {
	case zapcore.DPanicLevel, zapcore.PanicLevel:
		return defaultLevel
	}
	return level
}
