// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/user/hwenc/pkg/adapters/heappool"
	"github.com/user/hwenc/pkg/adapters/simsession"
	"github.com/user/hwenc/pkg/encoder"
	"github.com/user/hwenc/pkg/orchestrator"
	"github.com/user/hwenc/pkg/ports"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Config represents the full configuration for hwenc.
type Config struct {
	// Output
	OutputPath string `yaml:"output"`

	// Source
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Pixel   string `yaml:"pixel_format"`
	FPSNum  int    `yaml:"fps_num"`
	FPSDen  int    `yaml:"fps_den"`
	Frames  int    `yaml:"frames"`
	InPlace bool   `yaml:"in_place"`

	// Encoding
	Codec          string        `yaml:"codec"`
	Bitrate        int           `yaml:"bitrate"`
	TargetUsage    int           `yaml:"target_usage"`
	GOPSize        int           `yaml:"gop_size"`
	AsyncDepth     int           `yaml:"async_depth"`
	ExtraTasks     int           `yaml:"extra_tasks"`
	BusyRetryDelay time.Duration `yaml:"busy_retry_delay"`
	MaxSyncWait    time.Duration `yaml:"max_sync_wait"`

	// Simulated device
	Device DeviceConfig `yaml:"device"`

	// Downstream buffer pool
	OutputPool PoolConfig `yaml:"output_pool"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// DeviceConfig represents the simulated encoder knobs.
type DeviceConfig struct {
	Surfaces  int           `yaml:"surfaces"`
	Latency   time.Duration `yaml:"latency"`
	Lookahead int           `yaml:"lookahead"`
	BusyEvery int           `yaml:"busy_every"`
	FailEvery int           `yaml:"fail_every"`
}

// PoolConfig represents downstream buffer pool limits.
type PoolConfig struct {
	MaxPooled      int `yaml:"max_pooled"`
	MaxOutstanding int `yaml:"max_outstanding"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	enc := encoder.DefaultConfig()
	pool := heappool.DefaultOptions()

	return Config{
		// Source
		Width:   640,
		Height:  360,
		Pixel:   string(ports.PixelNV12),
		FPSNum:  30,
		FPSDen:  1,
		Frames:  90,
		InPlace: true,

		// Encoding
		Codec:          enc.Codec,
		Bitrate:        enc.BitrateKbps,
		TargetUsage:    enc.TargetUsage,
		GOPSize:        enc.GOPSize,
		AsyncDepth:     enc.AsyncDepth,
		ExtraTasks:     enc.ExtraTasks,
		BusyRetryDelay: enc.BusyRetryDelay,
		MaxSyncWait:    enc.MaxSyncWait,

		// Simulated device
		Device: DeviceConfig{
			Latency: 5 * time.Millisecond,
		},

		// Downstream buffer pool
		OutputPool: PoolConfig{
			MaxPooled: pool.MaxPooled,
		},

		// Logging
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration before any session is opened.
func (c Config) Validate() error {
	if c.OutputPath == "" {
		return fmt.Errorf("%w: output path is required", ErrInvalid)
	}
	if c.Frames < 1 {
		return fmt.Errorf("%w: frames %d", ErrInvalid, c.Frames)
	}
	if err := c.Format().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.EncoderConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.SimOptions().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.OutputPool.MaxPooled < 0 || c.OutputPool.MaxOutstanding < 0 {
		return fmt.Errorf("%w: output pool %+v", ErrInvalid, c.OutputPool)
	}
	if _, err := ports.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.LogFormat)
	}
	return nil
}

// Format returns the negotiated input format.
func (c Config) Format() ports.VideoFormat {
	return ports.VideoFormat{
		Width:  c.Width,
		Height: c.Height,
		Pixel:  ports.PixelFormat(c.Pixel),
		FPSNum: c.FPSNum,
		FPSDen: c.FPSDen,
	}
}

// EncoderConfig converts Config to encoder.Config.
func (c Config) EncoderConfig() encoder.Config {
	return encoder.Config{
		Codec:          c.Codec,
		BitrateKbps:    c.Bitrate,
		TargetUsage:    c.TargetUsage,
		GOPSize:        c.GOPSize,
		AsyncDepth:     c.AsyncDepth,
		ExtraTasks:     c.ExtraTasks,
		BusyRetryDelay: c.BusyRetryDelay,
		MaxSyncWait:    c.MaxSyncWait,
	}
}

// SessionParams returns the parameters the session is opened with.
func (c Config) SessionParams() ports.SessionParams {
	return c.EncoderConfig().SessionParams(c.Format())
}

// SimOptions converts the device section to simsession.Options.
func (c Config) SimOptions() simsession.Options {
	return simsession.Options{
		Surfaces:  c.Device.Surfaces,
		Latency:   c.Device.Latency,
		Lookahead: c.Device.Lookahead,
		BusyEvery: c.Device.BusyEvery,
		FailEvery: c.Device.FailEvery,
	}
}

// Level returns the parsed log level.
func (c Config) Level() ports.LogLevel {
	level, _ := ports.ParseLogLevel(c.LogLevel)
	return level
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		OutputPath: c.OutputPath,

		Format:  c.Format(),
		Frames:  c.Frames,
		InPlace: c.InPlace,

		Encoder: c.EncoderConfig(),

		OutputPool: heappool.Options{
			MaxPooled:      c.OutputPool.MaxPooled,
			MaxOutstanding: c.OutputPool.MaxOutstanding,
		},
	}
}
