// Package encode implements the video encoding stage.
package encode

import (
	"context"
	"fmt"

	"github.com/user/hwenc/pkg/encoder"
	"github.com/user/hwenc/pkg/pipeline"
	"github.com/user/hwenc/pkg/ports"
)

// Submitter is the part of the encoder element the stage drives.
type Submitter interface {
	SubmitFrame(ctx context.Context, frame pipeline.Frame) (encoder.Result, error)
	Finish(ctx context.Context) error
}

// Stage feeds a frame stream into the encoder element.
type Stage struct {
	encoder Submitter
	logger  ports.Logger
}

// NewStage creates a new encode stage.
func NewStage(enc Submitter, logger ports.Logger) *Stage {
	return &Stage{
		encoder: enc,
		logger:  logger.WithComponent("encode"),
	}
}

// Execute submits every frame until input.Frames is closed, then flushes
// the units the session still holds back.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{}

	for {
		var (
			frame pipeline.Frame
			ok    bool
		)
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case frame, ok = <-input.Frames:
		}
		if !ok {
			break
		}

		res, err := s.encoder.SubmitFrame(ctx, frame)
		if err != nil {
			return result, fmt.Errorf("submit frame at %s (%s): %w", frame.PTS, res, err)
		}
		result.Submitted++
		switch res {
		case encoder.ResultQueued:
			result.Queued++
		case encoder.ResultMoreData:
			result.MoreData++
		}
	}

	if err := s.encoder.Finish(ctx); err != nil {
		return result, fmt.Errorf("finish encoding: %w", err)
	}
	return result, nil
}
