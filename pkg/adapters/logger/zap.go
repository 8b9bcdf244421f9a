package logger

import (
	"github.com/ideamans/go-l10n"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/user/hwenc/pkg/ports"
)

// ZapLogger writes JSON log lines through zap.
type ZapLogger struct {
	base *zap.Logger
}

// NewZap creates a JSON logger writing to stderr at the specified level.
func NewZap(level ports.LogLevel) (*ZapLogger, error) {
	if level == ports.LevelQuiet {
		return &ZapLogger{base: zap.NewNop()}, nil
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	cfg.DisableStacktrace = true
	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{base: base}, nil
}

// NewZapWith wraps an existing zap logger.
func NewZapWith(base *zap.Logger) *ZapLogger {
	return &ZapLogger{base: base}
}

func zapLevel(level ports.LogLevel) zapcore.Level {
	switch level {
	case ports.LevelDebug:
		return zapcore.DebugLevel
	case ports.LevelWarn:
		return zapcore.WarnLevel
	case ports.LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Debug logs a debug message.
func (l *ZapLogger) Debug(msg string, args ...interface{}) {
	if ce := l.base.Check(zapcore.DebugLevel, msg); ce != nil {
		ce.Message = l10n.F(msg, args...)
		ce.Write()
	}
}

// Info logs an informational message.
func (l *ZapLogger) Info(msg string, args ...interface{}) {
	l.base.Info(l10n.F(msg, args...))
}

// Warn logs a warning message.
func (l *ZapLogger) Warn(msg string, args ...interface{}) {
	l.base.Warn(l10n.F(msg, args...))
}

// Error logs an error message.
func (l *ZapLogger) Error(msg string, args ...interface{}) {
	l.base.Error(l10n.F(msg, args...))
}

// WithComponent returns a new logger tagging every line with component.
func (l *ZapLogger) WithComponent(component string) ports.Logger {
	return &ZapLogger{base: l.base.With(zap.String("component", component))}
}

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.base.Sync()
}

var _ ports.Logger = (*ZapLogger)(nil)
