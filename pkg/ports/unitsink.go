package ports

import "time"

// OffsetNone marks an EncodedUnit without a stream offset.
const OffsetNone int64 = -1

// EncodedUnit is one compressed bitstream unit pushed to the output boundary.
type EncodedUnit struct {
	Data     []byte
	Offset   int64
	PTS      time.Duration
	Duration time.Duration
	Keyframe bool
}

// UnitSink is the output boundary of the encoder element.
// Units arrive in submission order. The sink must not retain Data after
// PushUnit returns.
type UnitSink interface {
	// PushUnit consumes one unit. An error is a downstream flow failure.
	PushUnit(unit EncodedUnit) error
}
