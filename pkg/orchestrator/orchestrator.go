// Package orchestrator coordinates all pipeline stages.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/user/hwenc/pkg/adapters/heappool"
	"github.com/user/hwenc/pkg/adapters/mp4sink"
	"github.com/user/hwenc/pkg/encoder"
	"github.com/user/hwenc/pkg/pipeline"
	"github.com/user/hwenc/pkg/ports"
	"github.com/user/hwenc/pkg/stages/encode"
	"github.com/user/hwenc/pkg/stages/source"
)

// Config contains all configuration for the orchestrator.
type Config struct {
	// Output
	OutputPath string

	// Source
	Format  ports.VideoFormat
	Frames  int
	InPlace bool // Render straight into encoder input buffers

	// Encoding
	Encoder encoder.Config

	// Downstream buffer pool
	OutputPool heappool.Options
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Format: ports.VideoFormat{
			Width:  640,
			Height: 360,
			Pixel:  ports.PixelNV12,
			FPSNum: 30,
			FPSDen: 1,
		},
		Frames:  90,
		InPlace: true,

		Encoder: encoder.DefaultConfig(),

		OutputPool: heappool.DefaultOptions(),
	}
}

// Orchestrator runs a test source through one encoder element into an MP4 file.
type Orchestrator struct {
	session ports.EncodeSession
	fs      ports.FileSystem
	logger  ports.Logger
}

// New creates a new Orchestrator.
func New(session ports.EncodeSession, fs ports.FileSystem, logger ports.Logger) *Orchestrator {
	return &Orchestrator{
		session: session,
		fs:      fs,
		logger:  logger,
	}
}

// Run executes the complete pipeline.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	o.logger.Info("Starting pipeline")
	started := time.Now()

	out, err := o.fs.Create(config.OutputPath)
	if err != nil {
		o.logger.Error("Failed to write output: %s", err)
		return RunResult{}, fmt.Errorf("create output: %w", err)
	}

	sink := mp4sink.New(out, config.Format, o.logger)

	pool, err := heappool.New(config.OutputPool)
	if err != nil {
		out.Close()
		return RunResult{}, fmt.Errorf("output pool: %w", err)
	}

	elem, err := encoder.New(config.Encoder, o.session, sink, pool, o.logger)
	if err != nil {
		out.Close()
		return RunResult{}, fmt.Errorf("create encoder: %w", err)
	}
	if err := elem.SetFormat(config.Format); err != nil {
		elem.Close()
		out.Close()
		return RunResult{}, fmt.Errorf("negotiate format: %w", err)
	}
	elem.Start()

	o.logger.Info("Encoding %d frames of %s to %s", config.Frames, config.Format, config.OutputPath)
	srcResult, encResult, runErr := o.runStages(ctx, config, elem)

	stats := elem.Stats()
	closeErr := elem.Close()
	sinkErr := sink.Close()
	outErr := out.Close()

	if runErr != nil {
		o.logger.Error("Failed to encode video: %s", runErr)
		return RunResult{}, runErr
	}
	if err := errors.Join(closeErr, sinkErr); err != nil {
		o.logger.Error("Failed to encode video: %s", err)
		return RunResult{}, fmt.Errorf("close encoder: %w", err)
	}
	if outErr != nil {
		o.logger.Error("Failed to write output: %s", outErr)
		return RunResult{}, fmt.Errorf("write output: %w", outErr)
	}

	o.logger.Info("Output saved to %s", config.OutputPath)
	o.logger.Info("Pipeline completed successfully")

	muxed := sink.Stats()
	result := RunResult{
		FrameCount:    srcResult.Frames,
		InPlaceFrames: srcResult.InPlace,

		Submitted:   encResult.Submitted,
		MoreData:    encResult.MoreData,
		BusyRetries: stats.BusyRetries,
		Failed:      stats.Failed,
		Copied:      stats.Copied,
		LocalAllocs: stats.LocalAllocs,
		PoolSize:    stats.PoolSize,

		Units:         muxed.Units,
		SkippedUnits:  muxed.Skipped,
		VideoDuration: muxed.Duration,
		VideoFileSize: muxed.Bytes,

		Elapsed: time.Since(started),
	}
	return result, nil
}

// runStages runs the source and encode stages concurrently.
func (o *Orchestrator) runStages(ctx context.Context, config Config, elem *encoder.Element) (pipeline.SourceResult, pipeline.EncodeResult, error) {
	var (
		srcResult pipeline.SourceResult
		encResult pipeline.EncodeResult
	)

	var buffers pipeline.BufferSupplier
	if config.InPlace {
		buffers = elem
	}
	frames := make(chan pipeline.Frame)

	var (
		srcStage pipeline.Stage[pipeline.SourceInput, pipeline.SourceResult] = source.NewStage(o.logger)
		encStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult] = encode.NewStage(elem, o.logger)
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := srcStage.Execute(gctx, pipeline.SourceInput{
			Format:  config.Format,
			Frames:  config.Frames,
			Buffers: buffers,
			Out:     frames,
		})
		srcResult = res
		if err != nil {
			return fmt.Errorf("source stage: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		res, err := encStage.Execute(gctx, pipeline.EncodeInput{Frames: frames})
		encResult = res
		if err != nil {
			// Wakes a source blocked on an input buffer.
			elem.Stop()
			return fmt.Errorf("encode stage: %w", err)
		}
		return nil
	})

	err := g.Wait()
	return srcResult, encResult, err
}

// RunResult contains the results of a pipeline run for summary generation.
type RunResult struct {
	// Source
	FrameCount    int
	InPlaceFrames int

	// Encoder element
	Submitted   int
	MoreData    int
	BusyRetries int64
	Failed      int64 // Units dropped because their completion failed
	Copied      int64
	LocalAllocs int64
	PoolSize    int

	// Output
	Units         int
	SkippedUnits  int
	VideoDuration time.Duration
	VideoFileSize int64

	Elapsed time.Duration
}
