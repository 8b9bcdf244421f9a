// Package logger provides logging implementations.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"

	"github.com/user/hwenc/pkg/ports"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// ConsoleLogger logs messages to the console with color support.
// Loggers derived with WithComponent share one output lock, so lines from
// the submission path and the completion worker never interleave.
type ConsoleLogger struct {
	level     ports.LogLevel
	component string
	color     bool
	out       *output
}

type output struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

// NewConsole creates a new console logger with the specified level.
// Color output is automatically enabled when stdout is a terminal.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return NewConsoleTo(level, os.Stdout, os.Stderr, color)
}

// NewConsoleTo creates a console logger writing info and below to stdout and
// warnings and errors to stderr.
func NewConsoleTo(level ports.LogLevel, stdout, stderr io.Writer, color bool) *ConsoleLogger {
	return &ConsoleLogger{
		level: level,
		color: color,
		out:   &output{stdout: stdout, stderr: stderr},
	}
}

// Debug logs a debug message.
func (l *ConsoleLogger) Debug(msg string, args ...interface{}) {
	l.log(ports.LevelDebug, msg, args...)
}

// Info logs an informational message.
func (l *ConsoleLogger) Info(msg string, args ...interface{}) {
	l.log(ports.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *ConsoleLogger) Warn(msg string, args ...interface{}) {
	l.log(ports.LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *ConsoleLogger) Error(msg string, args ...interface{}) {
	l.log(ports.LevelError, msg, args...)
}

// WithComponent returns a new logger with the specified component name.
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	return &ConsoleLogger{
		level:     l.level,
		component: component,
		color:     l.color,
		out:       l.out,
	}
}

func (l *ConsoleLogger) log(level ports.LogLevel, msg string, args ...interface{}) {
	if level < l.level {
		return
	}

	line := l10n.F(msg, args...)
	if l.component != "" {
		if l.color {
			line = fmt.Sprintf("%s[%s]%s %s", colorCyan, l.component, colorReset, line)
		} else {
			line = fmt.Sprintf("[%s] %s", l.component, line)
		}
	}

	if l.color {
		switch level {
		case ports.LevelDebug:
			line = colorGray + line + colorReset
		case ports.LevelWarn:
			line = colorYellow + line + colorReset
		case ports.LevelError:
			line = colorRed + line + colorReset
		}
	}

	w := l.out.stdout
	if level >= ports.LevelWarn {
		w = l.out.stderr
	}
	l.out.mu.Lock()
	fmt.Fprintln(w, line)
	l.out.mu.Unlock()
}

var _ ports.Logger = (*ConsoleLogger)(nil)
