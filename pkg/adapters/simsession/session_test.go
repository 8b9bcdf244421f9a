package simsession

import (
	"bytes"
	"testing"
	"time"

	"github.com/Eyevinn/mp4ff/avc"
	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/hwenc/pkg/adapters/logger"
	"github.com/user/hwenc/pkg/ports"
)

var testFormat = ports.VideoFormat{Width: 100, Height: 50, Pixel: ports.PixelNV12, FPSNum: 30, FPSDen: 1}

func testParams() ports.SessionParams {
	return ports.SessionParams{
		Codec:       "h264",
		Format:      testFormat,
		BitrateKbps: 500,
		TargetUsage: 4,
		GOPSize:     3,
		AsyncDepth:  2,
	}
}

func openSession(t *testing.T, opts Options) (*Session, ports.PoolRequest) {
	t.Helper()
	s, err := New(opts, logger.NewNoop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Init(testParams()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	req, err := s.QueryPoolSize(testParams())
	if err != nil {
		t.Fatalf("QueryPoolSize failed: %v", err)
	}
	return s, req
}

func surface(ts time.Duration) *ports.Surface {
	return &ports.Surface{
		Data:      make([]byte, testFormat.FrameSize()),
		Pitch:     testFormat.Pitch(),
		Info:      testFormat,
		TimeStamp: ts,
	}
}

func TestBitWriter_ExpGolomb(t *testing.T) {
	var w bitWriter
	w.ue(0)
	w.ue(1)
	w.ue(2)
	w.ue(3)
	got := w.trailing()
	if !bytes.Equal(got, []byte{0xA6, 0x48}) {
		t.Errorf("expected a6 48, got % x", got)
	}

	var s bitWriter
	s.se(1)
	s.se(-1)
	// 010 011 1 0
	if got := s.trailing(); !bytes.Equal(got, []byte{0x4E}) {
		t.Errorf("expected 4e, got % x", got)
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in, want []byte
	}{
		{[]byte{0, 0, 1}, []byte{0, 0, 3, 1}},
		{[]byte{0, 0, 0, 0}, []byte{0, 0, 3, 0, 0}},
		{[]byte{0, 0, 4}, []byte{0, 0, 4}},
		{[]byte{1, 0, 2}, []byte{1, 0, 2}},
	}
	for _, tt := range tests {
		if got := escape(tt.in); !bytes.Equal(got, tt.want) {
			t.Errorf("escape(% x) = % x, want % x", tt.in, got, tt.want)
		}
	}
}

func TestBuildSPS_DescribesFormat(t *testing.T) {
	formats := []ports.VideoFormat{
		{Width: 100, Height: 50, Pixel: ports.PixelNV12},
		{Width: 64, Height: 32, Pixel: ports.PixelNV12},
		{Width: 1920, Height: 1080, Pixel: ports.PixelI420},
	}

	for _, f := range formats {
		sps := buildSPS(f)
		parsed, err := avc.ParseSPSNALUnit(sps, true)
		if err != nil {
			t.Fatalf("%s: parse SPS: %v", f, err)
		}
		if int(parsed.Width) != f.Width || int(parsed.Height) != f.Height {
			t.Errorf("%s: SPS describes %dx%d", f, parsed.Width, parsed.Height)
		}
		if parsed.Profile != profileBaseline {
			t.Errorf("%s: expected baseline profile, got %d", f, parsed.Profile)
		}

		if _, err := mp4.CreateAvcC([][]byte{sps}, [][]byte{buildPPS()}, true); err != nil {
			t.Errorf("%s: create avcC: %v", f, err)
		}
	}
}

func TestSession_GOPStructure(t *testing.T) {
	s, req := openSession(t, Options{})
	out := &ports.Bitstream{Data: make([]byte, req.BitstreamSize)}

	want := []ports.FrameType{ports.FrameTypeIDR, ports.FrameTypeP, ports.FrameTypeP, ports.FrameTypeIDR}
	var offset uint64
	for i, ft := range want {
		sp, status := s.Submit(surface(time.Duration(i)*time.Millisecond), out)
		if sp == ports.NoSyncPoint || status != ports.StatusOK {
			t.Fatalf("frame %d: got %d/%s", i, sp, status)
		}
		if st := s.Sync(sp, time.Second); st != ports.StatusOK {
			t.Fatalf("frame %d: sync %s", i, st)
		}
		if out.FrameType != ft {
			t.Errorf("frame %d: expected %d, got %d", i, ft, out.FrameType)
		}
		if out.Offset != offset {
			t.Errorf("frame %d: expected offset %d, got %d", i, offset, out.Offset)
		}
		offset += uint64(out.DataLength)

		payload := out.Bytes()
		if ft == ports.FrameTypeIDR && payload[4] != nalHeader(3, nalSPS) {
			t.Errorf("frame %d: IDR unit does not start with SPS: % x", i, payload[:8])
		}
		if ft == ports.FrameTypeP && payload[4]&0x1f != nalP {
			t.Errorf("frame %d: expected non-IDR slice, got % x", i, payload[:8])
		}
	}
}

func TestSession_Lookahead(t *testing.T) {
	s, req := openSession(t, Options{Lookahead: 2})
	if req.SuggestedSurfaces != 2+2+1 {
		t.Errorf("expected 5 suggested surfaces, got %d", req.SuggestedSurfaces)
	}
	out := &ports.Bitstream{Data: make([]byte, req.BitstreamSize)}

	for i := 0; i < 2; i++ {
		if sp, status := s.Submit(surface(time.Duration(i)), out); sp != ports.NoSyncPoint || status != ports.StatusMoreData {
			t.Fatalf("frame %d: expected more data, got %d/%s", i, sp, status)
		}
	}

	var stamps []time.Duration
	next := []*ports.Surface{surface(2), nil, nil, nil}
	for _, in := range next {
		sp, status := s.Submit(in, out)
		if status == ports.StatusMoreData {
			break
		}
		s.Sync(sp, time.Second)
		stamps = append(stamps, out.TimeStamp)
	}

	if len(stamps) != 3 || stamps[0] != 0 || stamps[1] != 1 || stamps[2] != 2 {
		t.Errorf("unexpected unit order %v", stamps)
	}
}

func TestSession_BusyEvery(t *testing.T) {
	s, req := openSession(t, Options{BusyEvery: 3})
	out := &ports.Bitstream{Data: make([]byte, req.BitstreamSize)}

	var statuses []ports.Status
	for i := 0; i < 4; i++ {
		_, status := s.Submit(surface(0), out)
		statuses = append(statuses, status)
	}
	want := []ports.Status{ports.StatusOK, ports.StatusOK, ports.StatusDeviceBusy, ports.StatusOK}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("submit %d: expected %s, got %s", i, want[i], statuses[i])
		}
	}
}

func TestSession_FailEvery(t *testing.T) {
	s, req := openSession(t, Options{FailEvery: 2})
	out := &ports.Bitstream{Data: make([]byte, req.BitstreamSize)}

	for i, want := range []ports.Status{ports.StatusOK, ports.StatusDeviceFailed, ports.StatusOK, ports.StatusDeviceFailed} {
		sp, _ := s.Submit(surface(0), out)
		if got := s.Sync(sp, time.Second); got != want {
			t.Errorf("unit %d: expected %s, got %s", i, want, got)
		}
	}
}

func TestSession_Latency(t *testing.T) {
	s, req := openSession(t, Options{Latency: 50 * time.Millisecond})
	out := &ports.Bitstream{Data: make([]byte, req.BitstreamSize)}

	sp, _ := s.Submit(surface(0), out)
	if got := s.Sync(sp, time.Millisecond); got != ports.StatusInExecution {
		t.Errorf("expected in-execution, got %s", got)
	}
	if got := s.Sync(sp, time.Second); got != ports.StatusOK {
		t.Errorf("expected ok, got %s", got)
	}
	if got := s.Sync(sp, time.Second); got != ports.StatusInvalidParam {
		t.Errorf("expected a consumed sync point to be invalid, got %s", got)
	}
}

func TestSession_Lifecycle(t *testing.T) {
	s, err := New(Options{}, logger.NewNoop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	out := &ports.Bitstream{Data: make([]byte, 4096)}

	if _, status := s.Submit(surface(0), out); status != ports.StatusNotInitialized {
		t.Errorf("expected not-initialized, got %s", status)
	}

	bad := testParams()
	bad.Codec = "vp9"
	if err := s.Init(bad); err == nil {
		t.Error("expected error for unsupported codec")
	}

	if err := s.Init(testParams()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := s.Init(testParams()); err != ErrAlreadyOpen {
		t.Errorf("expected ErrAlreadyOpen, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Init(testParams()); err != nil {
		t.Errorf("reopen failed: %v", err)
	}
	s.Close()
}

func TestSession_CloseAbortsPending(t *testing.T) {
	s, req := openSession(t, Options{Latency: time.Hour})
	out := &ports.Bitstream{Data: make([]byte, req.BitstreamSize)}

	sp, _ := s.Submit(surface(0), out)
	s.Close()

	if got := s.Sync(sp, time.Millisecond); got != ports.StatusInvalidParam {
		t.Errorf("expected pending operation to be gone, got %s", got)
	}
}

func TestOptions_Validate(t *testing.T) {
	if err := (Options{BusyEvery: 1}).Validate(); err == nil {
		t.Error("expected error for busy every submission")
	}
	if err := (Options{Latency: -1}).Validate(); err == nil {
		t.Error("expected error for negative latency")
	}
}
