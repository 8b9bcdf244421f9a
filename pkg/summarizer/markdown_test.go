package summarizer

import (
	"strings"
	"testing"
	"time"

	"github.com/user/hwenc/pkg/mocks"
)

func testSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Settings: Settings{
			Codec:       "h264",
			Format:      "640x360 nv12 30/1",
			BitrateKbps: 2000,
			GOPSize:     30,
			AsyncDepth:  4,
			PoolSize:    5,
			InPlace:     true,
		},
		Pipeline: PipelineInfo{
			Frames:        90,
			InPlaceFrames: 90,
			Submitted:     90,
			MoreData:      2,
			BusyRetries:   7,
			Elapsed:       1500 * time.Millisecond,
		},
		Video: VideoInfo{
			Path:     "out.mp4",
			Units:    90,
			Duration: 3 * time.Second,
			FileSize: 1024 * 1024,
		},
	}
}

func TestMarkdownFormatter_Format(t *testing.T) {
	passthrough := func(s string) string { return s }
	result := NewMarkdownFormatter(WithTranslator(passthrough)).Format(testSummary())

	checks := []string{
		"# Encode Summary",
		"2024-01-15T10:30:00Z",
		"| Codec | h264 |",
		"640x360 nv12 30/1",
		"| Bitrate | 2000 kbps |",
		"| Zero-Copy Input | Yes |",
		"90 (90 in place)",
		"| Busy Retries | 7 |",
		"1500 ms",
		"| File Size | 1.00 MB |",
		"| Bitrate | 2796.2 kbps |",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
}

func TestMarkdownFormatter_ZeroDuration(t *testing.T) {
	s := testSummary()
	s.Video.Duration = 0
	result := NewMarkdownFormatter(WithTranslator(func(s string) string { return s })).Format(s)

	if !strings.Contains(result, "N/A") {
		t.Error("expected N/A bitrate without a duration")
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Encode Summary": "エンコードサマリー",
			"Busy Retries":   "ビジー再試行",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	result := NewMarkdownFormatter(WithTranslator(translator)).Format(testSummary())

	if !strings.Contains(result, "# エンコードサマリー") {
		t.Error("expected translated title")
	}
	if !strings.Contains(result, "| ビジー再試行 | 7 |") {
		t.Error("expected translated label")
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	formatter := FormatFunc(func(s *Summary) string { return "units=90" })

	if err := NewWriter(formatter, fs).Write("reports/summary.md", testSummary()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, ok := fs.GetFile("reports/summary.md")
	if !ok {
		t.Fatal("expected summary file to be written")
	}
	if string(data) != "units=90" {
		t.Errorf("unexpected content %q", data)
	}
}
