// Package summarizer provides summary generation for encode runs.
package summarizer

import "time"

// Summary contains all data collected during an encode run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Encoding settings
	Settings Settings

	// Encoder element counters
	Pipeline PipelineInfo

	// Video output details
	Video VideoInfo
}

// Settings contains the encode configuration.
type Settings struct {
	Codec       string
	Format      string
	BitrateKbps int
	GOPSize     int
	AsyncDepth  int
	PoolSize    int
	InPlace     bool
}

// PipelineInfo contains what happened between the source and the sink.
type PipelineInfo struct {
	Frames        int
	InPlaceFrames int
	Submitted     int
	MoreData      int
	BusyRetries   int64
	FailedUnits   int64
	Copied        int64
	LocalAllocs   int64
	Elapsed       time.Duration
}

// VideoInfo contains information about the output video.
type VideoInfo struct {
	Path         string
	Units        int
	SkippedUnits int
	Duration     time.Duration
	FileSize     int64
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSettings sets encode settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithPipeline sets element counters.
func (b *Builder) WithPipeline(info PipelineInfo) *Builder {
	b.summary.Pipeline = info
	return b
}

// WithVideo sets video output information.
func (b *Builder) WithVideo(video VideoInfo) *Builder {
	b.summary.Video = video
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
