package pipeline

import (
	"time"

	"github.com/user/hwenc/pkg/ports"
	"github.com/user/hwenc/pkg/taskpool"
)

// =============================================================================
// Frames
// =============================================================================

// Frame is one raw input frame on its way to the encoder element.
type Frame struct {
	// Data holds the pixels laid out as the negotiated format, either padded
	// to the surface size or tightly packed.
	Data     []byte
	PTS      time.Duration
	Duration time.Duration

	// Task is the handle returned with a buffer from BufferSupplier when Data
	// was filled in place. Nil for foreign memory.
	Task *taskpool.Task
}

// BufferSupplier hands out input buffers that producers fill in place.
type BufferSupplier interface {
	// AcquireInputBuffer returns an empty frame backed by encoder memory.
	AcquireInputBuffer() (Frame, error)

	// ReleaseInputBuffer returns a frame from AcquireInputBuffer unused.
	ReleaseInputBuffer(frame Frame)
}

// =============================================================================
// Source Stage Types
// =============================================================================

// SourceInput contains parameters for test frame generation.
type SourceInput struct {
	Format ports.VideoFormat
	Frames int // Number of frames to produce
	// Buffers supplies in-place buffers; nil makes the source allocate its own.
	Buffers BufferSupplier
	// Out receives the frames and is closed when the stage returns.
	Out chan<- Frame
}

// SourceResult summarises a source run.
type SourceResult struct {
	Frames   int
	InPlace  int // Frames rendered straight into encoder memory
	Duration time.Duration
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeInput contains the frame stream to encode.
type EncodeInput struct {
	Frames <-chan Frame
}

// EncodeResult summarises an encode run.
type EncodeResult struct {
	Submitted int
	Queued    int // Frames whose unit is on its way downstream
	MoreData  int // Frames the session held back
}
