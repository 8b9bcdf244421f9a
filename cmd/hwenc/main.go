// Package main provides the CLI entry point for hwenc.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/hwenc/pkg/adapters/logger"
	"github.com/user/hwenc/pkg/adapters/mp4sink"
	"github.com/user/hwenc/pkg/adapters/osfilesystem"
	"github.com/user/hwenc/pkg/adapters/simsession"
	"github.com/user/hwenc/pkg/config"
	"github.com/user/hwenc/pkg/orchestrator"
	"github.com/user/hwenc/pkg/ports"
	"github.com/user/hwenc/pkg/summarizer"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Encode  EncodeCmd  `cmd:"" help:"Encode a generated test pattern to fragmented MP4."`
	Probe   ProbeCmd   `cmd:"" help:"Inspect the video track of an MP4 file."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// EncodeCmd defines the encode subcommand.
type EncodeCmd struct {
	// Output
	Output string `short:"o" help:"Output MP4 file path (overrides the config file)."`
	Config string `short:"c" type:"existingfile" help:"YAML configuration file."`

	// Source options
	Width  *int    `short:"W" help:"Frame width (default: 640)."`
	Height *int    `short:"H" help:"Frame height (default: 360)."`
	Pixel  *string `help:"Pixel format (nv12, i420, bgra)."`
	FPS    *int    `help:"Frames per second."`
	Frames *int    `short:"n" help:"Number of frames to encode."`
	Copy   bool    `help:"Render into separate buffers so every frame is copied into the encoder."`

	// Encoding options
	Bitrate     *int           `short:"b" help:"Target bitrate in kbps."`
	TargetUsage *int           `help:"Target usage (1 = best quality, 7 = fastest)."`
	GOP         *int           `help:"Keyframe interval in frames."`
	AsyncDepth  *int           `help:"Operations the device may have in flight."`
	ExtraTasks  *int           `help:"Tasks added to the suggested pool size."`
	BusyRetry   *time.Duration `help:"Pause between submissions while the device is busy."`

	// Simulated device options
	Latency   *time.Duration `help:"Simulated completion latency."`
	Lookahead *int           `help:"Frames the simulated device holds back."`
	BusyEvery *int           `help:"Report a busy device on every Nth submission (0 = never)."`
	FailEvery *int           `help:"Fail every Mth encoded unit (0 = never)."`

	// Summary output
	Summary string `help:"Output execution summary to file (Markdown format)."`

	// Logging options
	LogLevel  *string `short:"l" help:"Log level (debug, info, warn, error)."`
	LogFormat *string `help:"Log format (console, json)."`
	Quiet     bool    `short:"Q" help:"Suppress all log output."`
}

// ProbeCmd defines the probe subcommand.
type ProbeCmd struct {
	Input string `arg:"" type:"existingfile" help:"MP4 file to inspect."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("hwenc"),
		kong.Description("Drive an asynchronous hardware H.264 encoder through its task pool."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the encode command.
func (cmd *EncodeCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, flush, err := newLogger(cfg, cmd.Quiet)
	if err != nil {
		return err
	}
	defer flush()

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Create adapters
	fs := osfilesystem.New()
	session, err := simsession.New(cfg.SimOptions(), log)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	orch := orchestrator.New(session, fs, log)
	orchConfig := cfg.ToOrchestratorConfig()

	result, err := orch.Run(ctx, orchConfig)
	if err != nil {
		return err
	}

	if cmd.Summary != "" {
		summary := buildSummary(cfg, result)
		writer := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), fs)
		if err := writer.Write(cmd.Summary, summary); err != nil {
			log.Warn("Failed to write summary: %s", err)
		} else {
			log.Info("Summary saved to %s", cmd.Summary)
		}
	}

	return nil
}

// buildConfig loads the config file and applies CLI overrides.
func (cmd *EncodeCmd) buildConfig() (config.Config, error) {
	cfg := config.Defaults()
	if cmd.Config != "" {
		loaded, err := config.LoadFromFile(cmd.Config)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Output != "" {
		cfg.OutputPath = cmd.Output
	}

	// Source
	setInt(&cfg.Width, cmd.Width)
	setInt(&cfg.Height, cmd.Height)
	if cmd.Pixel != nil {
		cfg.Pixel = *cmd.Pixel
	}
	if cmd.FPS != nil {
		cfg.FPSNum = *cmd.FPS
		cfg.FPSDen = 1
	}
	setInt(&cfg.Frames, cmd.Frames)
	if cmd.Copy {
		cfg.InPlace = false
	}

	// Encoding
	setInt(&cfg.Bitrate, cmd.Bitrate)
	setInt(&cfg.TargetUsage, cmd.TargetUsage)
	setInt(&cfg.GOPSize, cmd.GOP)
	setInt(&cfg.AsyncDepth, cmd.AsyncDepth)
	setInt(&cfg.ExtraTasks, cmd.ExtraTasks)
	if cmd.BusyRetry != nil {
		cfg.BusyRetryDelay = *cmd.BusyRetry
	}

	// Simulated device
	if cmd.Latency != nil {
		cfg.Device.Latency = *cmd.Latency
	}
	setInt(&cfg.Device.Lookahead, cmd.Lookahead)
	setInt(&cfg.Device.BusyEvery, cmd.BusyEvery)
	setInt(&cfg.Device.FailEvery, cmd.FailEvery)

	// Logging
	if cmd.LogLevel != nil {
		cfg.LogLevel = *cmd.LogLevel
	}
	if cmd.LogFormat != nil {
		cfg.LogFormat = *cmd.LogFormat
	}

	return cfg, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// newLogger creates the logger selected by the configuration. The returned
// function flushes buffered output.
func newLogger(cfg config.Config, quiet bool) (ports.Logger, func(), error) {
	if quiet {
		return logger.NewNoop(), func() {}, nil
	}
	if cfg.LogFormat == "json" {
		zl, err := logger.NewZap(cfg.Level())
		if err != nil {
			return nil, nil, fmt.Errorf("create logger: %w", err)
		}
		return zl, func() { _ = zl.Sync() }, nil
	}
	return logger.NewConsole(cfg.Level()), func() {}, nil
}

func buildSummary(cfg config.Config, result orchestrator.RunResult) *summarizer.Summary {
	return summarizer.NewBuilder().
		WithSettings(summarizer.Settings{
			Codec:       cfg.Codec,
			Format:      cfg.Format().String(),
			BitrateKbps: cfg.Bitrate,
			GOPSize:     cfg.GOPSize,
			AsyncDepth:  cfg.AsyncDepth,
			PoolSize:    result.PoolSize,
			InPlace:     cfg.InPlace,
		}).
		WithPipeline(summarizer.PipelineInfo{
			Frames:        result.FrameCount,
			InPlaceFrames: result.InPlaceFrames,
			Submitted:     result.Submitted,
			MoreData:      result.MoreData,
			BusyRetries:   result.BusyRetries,
			FailedUnits:   result.Failed,
			Copied:        result.Copied,
			LocalAllocs:   result.LocalAllocs,
			Elapsed:       result.Elapsed,
		}).
		WithVideo(summarizer.VideoInfo{
			Path:         cfg.OutputPath,
			Units:        result.Units,
			SkippedUnits: result.SkippedUnits,
			Duration:     result.VideoDuration,
			FileSize:     result.VideoFileSize,
		}).
		Build()
}

// Run executes the probe command.
func (cmd *ProbeCmd) Run() error {
	f, err := os.Open(cmd.Input)
	if err != nil {
		return err
	}
	defer f.Close()

	p, err := mp4sink.ProbeReader(f)
	if err != nil {
		return fmt.Errorf("probe %s: %w", cmd.Input, err)
	}

	fmt.Println(l10n.F("Codec: %s (profile %d, level %d)", p.Codec, p.Profile, p.Level))
	fmt.Println(l10n.F("Size: %dx%d", p.Width, p.Height))
	fmt.Println(l10n.F("Samples: %d in %d fragments, %d keyframes", p.Samples, p.Fragments, p.Keyframes))
	fmt.Println(l10n.F("Duration: %d ms", p.Duration.Milliseconds()))
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("hwenc version %s", version))
	return nil
}
