package summarizer

import (
	"fmt"
	"io"

	"github.com/user/hwenc/pkg/ports"
)

// Formatter renders a Summary as text.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc lets a plain function serve as a Formatter.
type FormatFunc func(summary *Summary) string

// Format calls f.
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// Writer writes formatted summaries to files.
type Writer struct {
	formatter Formatter
	fs        ports.FileSystem
}

// NewWriter creates a new Writer with the given Formatter.
func NewWriter(formatter Formatter, fs ports.FileSystem) *Writer {
	return &Writer{
		formatter: formatter,
		fs:        fs,
	}
}

// Write formats the summary and writes it to the specified path.
// Creates parent directories if they don't exist.
func (w *Writer) Write(path string, summary *Summary) error {
	f, err := w.fs.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.WriteString(f, w.formatter.Format(summary)); err != nil {
		f.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
