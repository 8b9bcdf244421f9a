// Package simsession provides a software stand-in for an asynchronous
// hardware H.264 encoder. It produces well-formed Annex B parameter sets and
// opaque slice payloads with configurable latency, lookahead and failures.
package simsession

import (
	"errors"
	"fmt"
	"hash/crc32"
	"sync"
	"time"

	"github.com/user/hwenc/pkg/ports"
)

var (
	// ErrAlreadyOpen is returned by Init on an open session.
	ErrAlreadyOpen = errors.New("simsession: session already open")

	// ErrUnsupportedCodec is returned for codecs other than h264.
	ErrUnsupportedCodec = errors.New("simsession: unsupported codec")
)

var startCode = []byte{0, 0, 0, 1}

// minBitstream holds the parameter sets and slice header of an IDR unit.
const minBitstream = 64

// Options configures the simulated device.
type Options struct {
	// Surfaces overrides the suggested pool size. Zero derives it from
	// the async depth and the lookahead.
	Surfaces int
	// Latency is the time from submission until a unit is ready.
	Latency time.Duration
	// Lookahead is the number of frames held back before the first unit.
	Lookahead int
	// BusyEvery makes every Nth submission report a busy device.
	BusyEvery int
	// FailEvery makes every Mth unit fail at completion.
	FailEvery int
}

// Validate checks every field.
func (o Options) Validate() error {
	if o.Surfaces < 0 || o.Latency < 0 || o.Lookahead < 0 || o.BusyEvery < 0 || o.FailEvery < 0 {
		return fmt.Errorf("simsession: negative option in %+v", o)
	}
	if o.BusyEvery == 1 {
		return errors.New("simsession: busy every submission never makes progress")
	}
	return nil
}

type heldFrame struct {
	ts   time.Duration
	seed uint32
}

type operation struct {
	done   chan struct{}
	timer  *time.Timer
	status ports.Status
}

// Session simulates one hardware encode session. One goroutine may submit
// while another syncs.
type Session struct {
	opts Options
	log  ports.Logger

	mu       sync.Mutex
	open     bool
	params   ports.SessionParams
	sps      []byte
	pps      []byte
	unitSize int
	units    int
	offset   uint64
	submits  int
	held     []heldFrame
	pending  map[ports.SyncPoint]*operation
	next     ports.SyncPoint
}

// New creates a closed session.
func New(opts Options, log ports.Logger) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		opts:    opts,
		log:     log.WithComponent("simsession"),
		pending: make(map[ports.SyncPoint]*operation),
	}, nil
}

func (s *Session) Init(params ports.SessionParams) error {
	if params.Codec != "h264" {
		return fmt.Errorf("%w: %q", ErrUnsupportedCodec, params.Codec)
	}
	if err := params.Format.Validate(); err != nil {
		return err
	}
	if params.GOPSize <= 0 || params.BitrateKbps <= 0 {
		return fmt.Errorf("simsession: invalid rate control %d kbps, gop %d", params.BitrateKbps, params.GOPSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return ErrAlreadyOpen
	}

	s.open = true
	s.params = params
	s.sps = buildSPS(params.Format)
	s.pps = buildPPS()
	s.unitSize = unitSize(params)
	s.units = 0
	s.offset = 0
	s.submits = 0
	s.held = nil
	s.log.Debug("Session opened for %s at %d kbps", params.Format, params.BitrateKbps)
	return nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil
	}
	for sp, op := range s.pending {
		if op.timer != nil && op.timer.Stop() {
			op.status = ports.StatusAborted
			close(op.done)
		}
		delete(s.pending, sp)
	}
	s.open = false
	s.held = nil
	return nil
}

func (s *Session) QueryPoolSize(params ports.SessionParams) (ports.PoolRequest, error) {
	if err := params.Format.Validate(); err != nil {
		return ports.PoolRequest{}, err
	}
	surfaces := s.opts.Surfaces
	if surfaces == 0 {
		surfaces = params.AsyncDepth + s.opts.Lookahead + 1
	}
	return ports.PoolRequest{
		SuggestedSurfaces: surfaces,
		BitstreamSize:     3*unitSize(params) + 1024,
	}, nil
}

func (s *Session) Submit(in *ports.Surface, out *ports.Bitstream) (ports.SyncPoint, ports.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return ports.NoSyncPoint, ports.StatusNotInitialized
	}
	if out == nil || len(out.Data) < minBitstream {
		return ports.NoSyncPoint, ports.StatusInvalidParam
	}

	s.submits++
	if s.opts.BusyEvery > 0 && s.submits%s.opts.BusyEvery == 0 {
		return ports.NoSyncPoint, ports.StatusDeviceBusy
	}

	if in != nil {
		if len(in.Data) < in.Info.FrameSize() {
			return ports.NoSyncPoint, ports.StatusInvalidParam
		}
		// The surface is not retained past this call.
		s.held = append(s.held, heldFrame{ts: in.TimeStamp, seed: crc32.ChecksumIEEE(in.Data)})
		if len(s.held) <= s.opts.Lookahead {
			return ports.NoSyncPoint, ports.StatusMoreData
		}
	}
	if len(s.held) == 0 {
		return ports.NoSyncPoint, ports.StatusMoreData
	}

	frame := s.held[0]
	s.held = s.held[1:]
	s.encode(frame, out)

	s.next++
	sp := s.next
	op := &operation{done: make(chan struct{}), status: ports.StatusOK}
	if s.opts.FailEvery > 0 && s.units%s.opts.FailEvery == 0 {
		op.status = ports.StatusDeviceFailed
	}
	if s.opts.Latency > 0 {
		op.timer = time.AfterFunc(s.opts.Latency, func() { close(op.done) })
	} else {
		close(op.done)
	}
	s.pending[sp] = op
	return sp, ports.StatusOK
}

// encode writes the unit for frame into out.
func (s *Session) encode(frame heldFrame, out *ports.Bitstream) {
	idr := s.units%s.params.GOPSize == 0
	s.units++

	data := out.Data[:0]
	size := s.unitSize
	if idr {
		data = append(data, startCode...)
		data = append(data, s.sps...)
		data = append(data, startCode...)
		data = append(data, s.pps...)
		data = append(data, startCode...)
		data = append(data, nalHeader(3, nalIDR))
		size *= 3
	} else {
		data = append(data, startCode...)
		data = append(data, nalHeader(2, nalP))
	}

	// Slice bytes are never zero, so no start code can appear.
	seed := frame.seed ^ uint32(s.units)
	for i := 0; i < size && len(data) < cap(out.Data); i++ {
		seed = seed*1664525 + 1013904223
		data = append(data, byte(seed>>24)|1)
	}

	out.DataOffset = 0
	out.DataLength = len(data)
	out.TimeStamp = frame.ts
	out.Offset = s.offset
	if idr {
		out.FrameType = ports.FrameTypeIDR
	} else {
		out.FrameType = ports.FrameTypeP
	}
	s.offset += uint64(len(data))
}

func (s *Session) Sync(sp ports.SyncPoint, wait time.Duration) ports.Status {
	s.mu.Lock()
	op, ok := s.pending[sp]
	s.mu.Unlock()
	if !ok {
		return ports.StatusInvalidParam
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-op.done:
	case <-timer.C:
		return ports.StatusInExecution
	}

	s.mu.Lock()
	delete(s.pending, sp)
	status := op.status
	s.mu.Unlock()
	return status
}

// unitSize returns the slice payload size of one non-IDR unit.
func unitSize(params ports.SessionParams) int {
	fps := 30.0
	if f := params.Format; f.FPSNum > 0 && f.FPSDen > 0 {
		fps = float64(f.FPSNum) / float64(f.FPSDen)
	}
	n := int(float64(params.BitrateKbps) * 1000 / 8 / fps)
	if n < 16 {
		n = 16
	}
	return n
}

var _ ports.EncodeSession = (*Session)(nil)
