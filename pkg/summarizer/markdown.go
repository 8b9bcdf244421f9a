package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator replaces the label translator.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// NewMarkdownFormatter creates a formatter translating labels with go-l10n.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{translate: func(s string) string { return l10n.T(s) }}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder
	t := f.translate

	fmt.Fprintf(&b, "# %s\n\n", t("Encode Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", t("Generated"), s.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	f.table(&b, [][2]string{
		{t("Codec"), s.Settings.Codec},
		{t("Input Format"), s.Settings.Format},
		{t("Bitrate"), fmt.Sprintf("%d kbps", s.Settings.BitrateKbps)},
		{t("GOP Size"), fmt.Sprintf("%d", s.Settings.GOPSize)},
		{t("Async Depth"), fmt.Sprintf("%d", s.Settings.AsyncDepth)},
		{t("Task Pool"), fmt.Sprintf("%d", s.Settings.PoolSize)},
		{t("Zero-Copy Input"), yesNo(t, s.Settings.InPlace)},
	})

	p := s.Pipeline
	fmt.Fprintf(&b, "## %s\n\n", t("Pipeline"))
	f.table(&b, [][2]string{
		{t("Frames"), fmt.Sprintf("%d (%d %s)", p.Frames, p.InPlaceFrames, t("in place"))},
		{t("Submitted"), fmt.Sprintf("%d", p.Submitted)},
		{t("Held Back"), fmt.Sprintf("%d", p.MoreData)},
		{t("Busy Retries"), fmt.Sprintf("%d", p.BusyRetries)},
		{t("Failed Units"), fmt.Sprintf("%d", p.FailedUnits)},
		{t("Copied Frames"), fmt.Sprintf("%d", p.Copied)},
		{t("Local Allocations"), fmt.Sprintf("%d", p.LocalAllocs)},
		{t("Elapsed"), formatDuration(p.Elapsed)},
	})

	v := s.Video
	fmt.Fprintf(&b, "## %s\n\n", t("Video"))
	f.table(&b, [][2]string{
		{t("File"), v.Path},
		{t("Units"), fmt.Sprintf("%d", v.Units)},
		{t("Skipped Units"), fmt.Sprintf("%d", v.SkippedUnits)},
		{t("Duration"), formatDuration(v.Duration)},
		{t("File Size"), formatBytes(v.FileSize)},
		{t("Bitrate"), formatBitrate(v.FileSize, v.Duration)},
	})

	return b.String()
}

func (f *MarkdownFormatter) table(b *strings.Builder, rows [][2]string) {
	fmt.Fprintf(b, "| %s | %s |\n", f.translate("Item"), f.translate("Value"))
	b.WriteString("|---|---|\n")
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", row[0], row[1])
	}
	b.WriteString("\n")
}

func yesNo(t func(string) string, v bool) string {
	if v {
		return t("Yes")
	}
	return t("No")
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%d ms", d.Milliseconds())
}

func formatBytes(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func formatBitrate(size int64, d time.Duration) string {
	if d <= 0 {
		return "N/A"
	}
	kbps := float64(size) * 8 / 1000 / d.Seconds()
	return fmt.Sprintf("%.1f kbps", kbps)
}
