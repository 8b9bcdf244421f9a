package ports

import (
	"errors"
	"fmt"
	"time"
)

// ErrHardware matches every *StatusError via errors.Is.
var ErrHardware = errors.New("ports: hardware session error")

// Status is a status code reported by the hardware encode session.
// Positive values are warnings, negative values are errors, with the exception
// of StatusMoreData which is a normal streaming state.
type Status int

const (
	StatusOK             Status = 0
	StatusInExecution    Status = 1
	StatusDeviceBusy     Status = 2
	StatusUnknown        Status = -1
	StatusNotInitialized Status = -8
	StatusMoreData       Status = -10
	StatusAborted        Status = -12
	StatusDeviceLost     Status = -13
	StatusInvalidParam   Status = -15
	StatusDeviceFailed   Status = -17
)

// IsWarning reports whether the status is a positive warning.
func (s Status) IsWarning() bool {
	return s > 0
}

// IsError reports whether the status is a failure. StatusMoreData is not.
func (s Status) IsError() bool {
	return s < 0 && s != StatusMoreData
}

// Err returns a *StatusError for failing statuses and nil otherwise.
func (s Status) Err() error {
	if !s.IsError() {
		return nil
	}
	return &StatusError{Status: s}
}

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInExecution:
		return "in-execution"
	case StatusDeviceBusy:
		return "device-busy"
	case StatusUnknown:
		return "unknown"
	case StatusNotInitialized:
		return "not-initialized"
	case StatusMoreData:
		return "more-data"
	case StatusAborted:
		return "aborted"
	case StatusDeviceLost:
		return "device-lost"
	case StatusInvalidParam:
		return "invalid-param"
	case StatusDeviceFailed:
		return "device-failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// StatusError wraps a failing Status.
type StatusError struct {
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hardware status %s (%d)", e.Status, int(e.Status))
}

// Is makes errors.Is(err, ErrHardware) true for every StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrHardware
}

// SyncPoint is an opaque completion handle for one pending encode operation.
type SyncPoint uint64

// NoSyncPoint is the null completion handle.
const NoSyncPoint SyncPoint = 0

// FrameType classifies an encoded unit.
type FrameType int

const (
	FrameTypeUnknown FrameType = iota
	FrameTypeIDR
	FrameTypeI
	FrameTypeP
	FrameTypeB
)

// Keyframe reports whether a decoder can start at this unit.
func (t FrameType) Keyframe() bool {
	return t == FrameTypeIDR
}

// Surface is a raw input frame buffer handed to the session.
type Surface struct {
	Data      []byte
	Pitch     int
	Info      VideoFormat
	TimeStamp time.Duration
}

// TimeStampNone marks a Bitstream whose session reported no timestamp.
const TimeStampNone time.Duration = -1

// Bitstream is an output buffer the session writes one encoded unit into.
// Data has a fixed capacity; DataOffset and DataLength delimit the payload.
type Bitstream struct {
	Data       []byte
	DataOffset int
	DataLength int
	// TimeStamp is the presentation time of the frame the unit encodes.
	TimeStamp time.Duration
	// Offset is a session-reported stream offset; zero means none.
	Offset    uint64
	FrameType FrameType
}

// Bytes returns the encoded payload.
func (b *Bitstream) Bytes() []byte {
	return b.Data[b.DataOffset : b.DataOffset+b.DataLength]
}

// Reset clears every consumed-length counter and per-unit field.
func (b *Bitstream) Reset() {
	b.DataOffset = 0
	b.DataLength = 0
	b.TimeStamp = TimeStampNone
	b.Offset = 0
	b.FrameType = FrameTypeUnknown
}

// SessionParams configures a hardware encode session.
type SessionParams struct {
	Codec       string
	Format      VideoFormat
	BitrateKbps int
	TargetUsage int
	GOPSize     int
	AsyncDepth  int
}

// PoolRequest is the session's answer to a pool sizing query.
type PoolRequest struct {
	// SuggestedSurfaces is the number of input surfaces the session needs
	// to keep its pipeline full.
	SuggestedSurfaces int
	// BitstreamSize is the maximum size in bytes of one encoded unit.
	BitstreamSize int
}

// EncodeSession abstracts an asynchronous hardware encoder.
//
// Submit and Sync may be called concurrently from one submitting goroutine
// and one completing goroutine. Init, Close and QueryPoolSize are never called
// concurrently with anything else.
type EncodeSession interface {
	// Init opens the session with the given parameters.
	Init(params SessionParams) error

	// Close releases the session. It is valid to Init again afterwards.
	Close() error

	// QueryPoolSize reports how many surfaces and how large bitstream buffers
	// the session needs for params.
	QueryPoolSize(params SessionParams) (PoolRequest, error)

	// Submit queues one surface for encoding into out. A nil surface asks the
	// session to emit units it is still holding back.
	//
	// Returns a SyncPoint with StatusOK (or a warning) when a unit will be
	// written into out, NoSyncPoint with StatusDeviceBusy when the caller must
	// retry the same call, NoSyncPoint with StatusMoreData when the surface was
	// accepted but no unit is produced yet, or an error status.
	//
	// The session does not retain in.Data after returning StatusMoreData.
	Submit(in *Surface, out *Bitstream) (SyncPoint, Status)

	// Sync waits up to wait for the operation behind sp. It returns
	// StatusInExecution when the operation is still pending, StatusOK when
	// the unit is ready in its Bitstream, or an error status.
	Sync(sp SyncPoint, wait time.Duration) Status
}
