package summarizer

import (
	"testing"
	"time"
)

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Error("GeneratedAt should be set to current time")
	}
}

func TestBuilder_FullChain(t *testing.T) {
	summary := NewBuilder().
		WithSettings(Settings{
			Codec:       "h264",
			BitrateKbps: 2000,
		}).
		WithPipeline(PipelineInfo{
			Frames:      90,
			BusyRetries: 3,
		}).
		WithVideo(VideoInfo{
			Units:    90,
			FileSize: 102400,
		}).
		Build()

	if summary.Settings.Codec != "h264" {
		t.Error("Settings.Codec not set correctly")
	}
	if summary.Pipeline.BusyRetries != 3 {
		t.Error("Pipeline.BusyRetries not set correctly")
	}
	if summary.Video.FileSize != 102400 {
		t.Errorf("expected FileSize 102400, got %d", summary.Video.FileSize)
	}
}
