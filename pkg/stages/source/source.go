// Package source implements the test frame source stage.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/user/hwenc/pkg/adapters/testsrc"
	"github.com/user/hwenc/pkg/pipeline"
	"github.com/user/hwenc/pkg/ports"
)

// Stage renders test pattern frames onto a channel.
type Stage struct {
	logger ports.Logger
}

// NewStage creates a new source stage.
func NewStage(logger ports.Logger) *Stage {
	return &Stage{
		logger: logger.WithComponent("source"),
	}
}

// Execute renders input.Frames frames and sends them on input.Out, which is
// closed on return. Frames are rendered into buffers from input.Buffers when
// it is set, otherwise into packed buffers the stage allocates.
func (s *Stage) Execute(ctx context.Context, input pipeline.SourceInput) (pipeline.SourceResult, error) {
	defer close(input.Out)

	result := pipeline.SourceResult{}

	src, err := testsrc.New(input.Format)
	if err != nil {
		return result, fmt.Errorf("create test source: %w", err)
	}

	s.logger.Info("Rendering %d test frames at %s", input.Frames, input.Format)

	dur := input.Format.FrameDuration()
	for n := 0; n < input.Frames; n++ {
		frame, err := s.buffer(input)
		if err != nil {
			return result, fmt.Errorf("acquire buffer for frame %d: %w", n, err)
		}

		if err := src.Render(n, frame.Data); err != nil {
			s.release(input, frame)
			return result, fmt.Errorf("render frame %d: %w", n, err)
		}
		frame.PTS = time.Duration(n) * dur
		frame.Duration = dur

		select {
		case input.Out <- frame:
		case <-ctx.Done():
			s.release(input, frame)
			return result, ctx.Err()
		}

		result.Frames++
		if frame.Task != nil {
			result.InPlace++
		}
		result.Duration = frame.PTS + dur
	}

	s.logger.Info("Rendered %d frames (%d in place)", result.Frames, result.InPlace)
	return result, nil
}

func (s *Stage) buffer(input pipeline.SourceInput) (pipeline.Frame, error) {
	if input.Buffers == nil {
		return pipeline.Frame{Data: make([]byte, input.Format.PackedFrameSize())}, nil
	}
	return input.Buffers.AcquireInputBuffer()
}

func (s *Stage) release(input pipeline.SourceInput, frame pipeline.Frame) {
	if input.Buffers != nil && frame.Task != nil {
		input.Buffers.ReleaseInputBuffer(frame)
	}
}
