package encoder

import (
	"fmt"
	"time"

	"github.com/user/hwenc/pkg/ports"
)

// Config configures an Element. It is validated before the session is opened.
type Config struct {
	Codec       string
	BitrateKbps int
	TargetUsage int // 1 (best quality) to 7 (fastest)
	GOPSize     int
	AsyncDepth  int

	// ExtraTasks is added to the session's suggested surface count.
	ExtraTasks int

	// BusyRetryDelay is the pause between submissions while the device is busy.
	BusyRetryDelay time.Duration

	// MaxSyncWait bounds a single completion wait call. Waits are repeated
	// until the operation finishes, so this is not a deadline.
	MaxSyncWait time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Codec:          "h264",
		BitrateKbps:    2000,
		TargetUsage:    4,
		GOPSize:        30,
		AsyncDepth:     4,
		ExtraTasks:     0,
		BusyRetryDelay: time.Millisecond,
		MaxSyncWait:    60 * time.Second,
	}
}

// Validate checks every field.
func (c Config) Validate() error {
	switch c.Codec {
	case "h264":
	default:
		return fmt.Errorf("%w: codec %q", ErrInvalidConfig, c.Codec)
	}
	if c.BitrateKbps <= 0 {
		return fmt.Errorf("%w: bitrate %d", ErrInvalidConfig, c.BitrateKbps)
	}
	if c.TargetUsage < 1 || c.TargetUsage > 7 {
		return fmt.Errorf("%w: target usage %d", ErrInvalidConfig, c.TargetUsage)
	}
	if c.GOPSize < 1 {
		return fmt.Errorf("%w: gop size %d", ErrInvalidConfig, c.GOPSize)
	}
	if c.AsyncDepth < 1 {
		return fmt.Errorf("%w: async depth %d", ErrInvalidConfig, c.AsyncDepth)
	}
	if c.ExtraTasks < 0 {
		return fmt.Errorf("%w: extra tasks %d", ErrInvalidConfig, c.ExtraTasks)
	}
	if c.BusyRetryDelay <= 0 {
		return fmt.Errorf("%w: busy retry delay %s", ErrInvalidConfig, c.BusyRetryDelay)
	}
	if c.MaxSyncWait <= 0 {
		return fmt.Errorf("%w: max sync wait %s", ErrInvalidConfig, c.MaxSyncWait)
	}
	return nil
}

// SessionParams builds the session parameters for format.
func (c Config) SessionParams(format ports.VideoFormat) ports.SessionParams {
	return ports.SessionParams{
		Codec:       c.Codec,
		Format:      format,
		BitrateKbps: c.BitrateKbps,
		TargetUsage: c.TargetUsage,
		GOPSize:     c.GOPSize,
		AsyncDepth:  c.AsyncDepth,
	}
}
