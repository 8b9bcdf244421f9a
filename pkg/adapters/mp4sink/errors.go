package mp4sink

import "errors"

var (
	// ErrNoParameterSets is returned when a keyframe carries no SPS or PPS.
	ErrNoParameterSets = errors.New("mp4sink: keyframe without SPS/PPS")

	// ErrClosed is returned when a unit is pushed after Close.
	ErrClosed = errors.New("mp4sink: sink closed")

	// ErrNoUnits is returned by Close when nothing was muxed.
	ErrNoUnits = errors.New("mp4sink: no units written")

	// ErrNoVideoTrack is returned by Probe for files without a video track.
	ErrNoVideoTrack = errors.New("mp4sink: no video track found")
)
