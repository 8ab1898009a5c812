package logging

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// TraceLevel sits below zap's debug level.
const TraceLevel = zapcore.DebugLevel - 1

// DisabledLevel suppresses every entry.
const DisabledLevel = zapcore.FatalLevel + 1

// ErrUnknownLevel is returned by ParseLevel for names it does not know.
var ErrUnknownLevel = errors.New("unknown log level")

// ParseLevel maps a level name such as "WARN" or "dbg" to a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DISABLE", "DISABLED", "OFF":
		return DisabledLevel, nil
	case "DIE", "FATAL":
		return zapcore.FatalLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	case "WARN", "WARNING":
		return zapcore.WarnLevel, nil
	case "INFO":
		return zapcore.InfoLevel, nil
	case "DBG", "DEBUG":
		return zapcore.DebugLevel, nil
	case "TRACE":
		return TraceLevel, nil
	default:
		return DisabledLevel, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
}

// LevelName is the inverse of ParseLevel.
func LevelName(l zapcore.Level) string {
	switch {
	case l >= DisabledLevel:
		return "DISABLE"
	case l >= zapcore.DPanicLevel:
		return "DIE"
	case l == zapcore.ErrorLevel:
		return "ERROR"
	case l == zapcore.WarnLevel:
		return "WARN"
	case l == zapcore.InfoLevel:
		return "INFO"
	case l == zapcore.DebugLevel:
		return "DBG"
	default:
		return "TRACE"
	}
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(LevelName(l))
}
