package logging

import (
	"go.uber.org/zap/zapcore"
)

// NewMultiCore tees console output with an optional file output.
//
// The file, when fileWriter is non-nil, always receives JSON. The console
// receives coloured human-readable lines in development and JSON otherwise.
//
// Example:
//
//	var buf bytes.Buffer
//	core := NewMultiCore(zapcore.DebugLevel, zapcore.AddSync(os.Stdout), zapcore.AddSync(&buf), true)
//	logger := zap.New(core)
func NewMultiCore(level zapcore.LevelEnabler, consoleWriter, fileWriter zapcore.WriteSyncer, isDev bool) zapcore.Core {
	consoleEncoder := zapcore.NewJSONEncoder(NewEncoderConfig())
	if isDev {
		consoleEncoder = zapcore.NewConsoleEncoder(NewConsoleEncoderConfig())
	}

	cores := make([]zapcore.Core, 0, 2)
	if consoleWriter != nil {
		cores = append(cores, zapcore.NewCore(consoleEncoder, consoleWriter, level))
	}
	if fileWriter != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(NewEncoderConfig()), fileWriter, level))
	}
	return zapcore.NewTee(cores...)
}
