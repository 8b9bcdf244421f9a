// Package mp4sink streams encoded H.264 units as fragmented MP4.
//
// The init segment (ftyp and moov) is written once the first keyframe
// provides SPS and PPS. Every unit after that becomes one moof+mdat fragment.
package mp4sink

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/hwenc/pkg/ports"
)

const (
	trackID   = 1
	timescale = 90000
)

// Stats is a snapshot of sink counters.
type Stats struct {
	Units     int
	Skipped   int // units before the first keyframe
	Fragments int
	Bytes     int64
	Duration  time.Duration
}

// Sink implements ports.UnitSink on an io.Writer.
type Sink struct {
	format ports.VideoFormat
	log    ports.Logger

	mu         sync.Mutex
	w          *countingWriter
	started    bool
	closed     bool
	seq        uint32
	decodeTime uint64
	stats      Stats
}

// New creates a sink writing to w. format provides the display size and the
// fallback sample duration.
func New(w io.Writer, format ports.VideoFormat, log ports.Logger) *Sink {
	return &Sink{
		format: format,
		log:    log.WithComponent("mp4sink"),
		w:      &countingWriter{w: w},
	}
}

// PushUnit muxes one unit.
func (s *Sink) PushUnit(unit ports.EncodedUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	nalus := parseAnnexB(unit.Data)
	if !s.started {
		if !unit.Keyframe {
			s.stats.Skipped++
			return nil
		}
		sps, pps := parameterSets(nalus)
		if sps == nil || pps == nil {
			return ErrNoParameterSets
		}
		if err := s.writeInit(sps, pps); err != nil {
			return err
		}
		s.started = true
	}

	dur := s.sampleDuration(unit.Duration)
	flags := mp4.NonSyncSampleFlags
	if unit.Keyframe {
		flags = mp4.SyncSampleFlags
	}

	s.seq++
	frag, err := mp4.CreateFragment(s.seq, trackID)
	if err != nil {
		return fmt.Errorf("create fragment: %w", err)
	}
	data := toAVCC(nalus)
	frag.AddFullSample(mp4.FullSample{
		Sample: mp4.Sample{
			Flags: flags,
			Size:  uint32(len(data)),
			Dur:   dur,
		},
		DecodeTime: s.decodeTime,
		Data:       data,
	})
	if err := frag.Encode(s.w); err != nil {
		return fmt.Errorf("encode fragment: %w", err)
	}

	s.decodeTime += uint64(dur)
	s.stats.Units++
	s.stats.Fragments++
	s.stats.Duration = time.Duration(s.decodeTime * uint64(time.Second) / timescale)
	return nil
}

func (s *Sink) writeInit(sps, pps []byte) error {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "und")
	trak := init.Moov.Trak

	avcC, err := mp4.CreateAvcC([][]byte{sps}, [][]byte{pps}, true)
	if err != nil {
		return fmt.Errorf("create avcC: %w", err)
	}
	width, height := uint16(s.format.Width), uint16(s.format.Height)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(mp4.CreateVisualSampleEntryBox("avc1", width, height, avcC))
	trak.Tkhd.Width = mp4.Fixed32(s.format.Width << 16)
	trak.Tkhd.Height = mp4.Fixed32(s.format.Height << 16)

	ftyp := mp4.NewFtyp("iso6", 0, []string{"iso6", "avc1", "mp41", "dash"})
	if err := ftyp.Encode(s.w); err != nil {
		return fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(s.w); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}
	return nil
}

// sampleDuration converts d to timescale units, falling back to the nominal
// frame duration.
func (s *Sink) sampleDuration(d time.Duration) uint32 {
	if d <= 0 {
		d = s.format.FrameDuration()
	}
	if d <= 0 {
		d = time.Second / 30
	}
	return uint32((int64(d)*timescale + int64(time.Second)/2) / int64(time.Second))
}

// Close finishes the stream. The underlying writer is not closed.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.stats.Bytes = s.w.n

	s.log.Info("Muxed %d units in %d fragments", s.stats.Units, s.stats.Fragments)
	if s.stats.Units == 0 {
		return ErrNoUnits
	}
	return nil
}

// Stats returns the current counters.
func (s *Sink) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.Bytes = s.w.n
	return st
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

var _ ports.UnitSink = (*Sink)(nil)
