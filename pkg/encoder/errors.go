package encoder

import "errors"

var (
	// ErrNotNegotiated is returned when input arrives before a format was negotiated.
	ErrNotNegotiated = errors.New("encoder: format not negotiated")

	// ErrNotStarted is returned when input arrives while the output side is inactive.
	ErrNotStarted = errors.New("encoder: output side not started")

	// ErrFlushing is returned when shutdown interrupted a blocking wait.
	ErrFlushing = errors.New("encoder: flushing")

	// ErrSessionInit is returned when the hardware session cannot be opened.
	ErrSessionInit = errors.New("encoder: session init failed")

	// ErrPoolQuery is returned when the session cannot size the task pool.
	ErrPoolQuery = errors.New("encoder: pool size query failed")

	// ErrSubmitFailed is returned when the session rejects a submission outright.
	ErrSubmitFailed = errors.New("encoder: submission failed")

	// ErrFrameSize is returned when a frame does not match the negotiated format.
	ErrFrameSize = errors.New("encoder: frame size does not match format")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("encoder: invalid config")
)
