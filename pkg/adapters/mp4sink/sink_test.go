package mp4sink

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/user/hwenc/pkg/adapters/logger"
	"github.com/user/hwenc/pkg/adapters/simsession"
	"github.com/user/hwenc/pkg/ports"
)

var testFormat = ports.VideoFormat{Width: 100, Height: 50, Pixel: ports.PixelNV12, FPSNum: 30, FPSDen: 1}

// encodeUnits runs n frames through a simulated session.
func encodeUnits(t *testing.T, n int) []ports.EncodedUnit {
	t.Helper()
	params := ports.SessionParams{Codec: "h264", Format: testFormat, BitrateKbps: 200, GOPSize: 3, AsyncDepth: 1}
	s, err := simsession.New(simsession.Options{}, logger.NewNoop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Init(params); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer s.Close()
	req, _ := s.QueryPoolSize(params)

	var units []ports.EncodedUnit
	for i := 0; i < n; i++ {
		in := &ports.Surface{Data: make([]byte, testFormat.FrameSize()), Info: testFormat, TimeStamp: time.Duration(i) * testFormat.FrameDuration()}
		out := &ports.Bitstream{Data: make([]byte, req.BitstreamSize)}
		sp, status := s.Submit(in, out)
		if status != ports.StatusOK {
			t.Fatalf("submit %d: %s", i, status)
		}
		s.Sync(sp, time.Second)
		units = append(units, ports.EncodedUnit{
			Data:     append([]byte(nil), out.Bytes()...),
			Offset:   ports.OffsetNone,
			PTS:      in.TimeStamp,
			Duration: testFormat.FrameDuration(),
			Keyframe: out.FrameType.Keyframe(),
		})
	}
	return units
}

func TestSink_StreamsFragments(t *testing.T) {
	units := encodeUnits(t, 5)

	var buf bytes.Buffer
	sink := New(&buf, testFormat, logger.NewNoop())
	for i, u := range units {
		if err := sink.PushUnit(u); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	st := sink.Stats()
	if st.Units != 5 || st.Fragments != 5 || st.Skipped != 0 {
		t.Errorf("unexpected stats %+v", st)
	}
	if st.Bytes != int64(buf.Len()) {
		t.Errorf("stats report %d bytes, wrote %d", st.Bytes, buf.Len())
	}

	p, err := ProbeReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ProbeReader failed: %v", err)
	}
	if p.Codec != "avc1" || p.Width != 100 || p.Height != 50 {
		t.Errorf("unexpected track %s %dx%d", p.Codec, p.Width, p.Height)
	}
	if p.Profile != 66 {
		t.Errorf("expected baseline profile, got %d", p.Profile)
	}
	if p.Timescale != timescale || p.Fragments != 5 || p.Samples != 5 || p.Keyframes != 2 {
		t.Errorf("unexpected probe %+v", p)
	}
	if want := 5 * 3000; p.Duration != time.Duration(want)*time.Second/timescale {
		t.Errorf("unexpected duration %s", p.Duration)
	}
	// A P unit has one NAL: the start code becomes a length prefix.
	if p.SampleSizes[1] != len(units[1].Data) {
		t.Errorf("expected sample size %d, got %d", len(units[1].Data), p.SampleSizes[1])
	}
}

func TestSink_SkipsUntilKeyframe(t *testing.T) {
	units := encodeUnits(t, 2)

	var buf bytes.Buffer
	sink := New(&buf, testFormat, logger.NewNoop())
	if err := sink.PushUnit(units[1]); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if buf.Len() != 0 || sink.Stats().Skipped != 1 {
		t.Errorf("expected the leading P unit to be skipped, wrote %d bytes", buf.Len())
	}
	if err := sink.PushUnit(units[0]); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if sink.Stats().Units != 1 {
		t.Errorf("expected 1 unit, got %d", sink.Stats().Units)
	}
}

func TestSink_KeyframeWithoutParameterSets(t *testing.T) {
	sink := New(&bytes.Buffer{}, testFormat, logger.NewNoop())
	err := sink.PushUnit(ports.EncodedUnit{Data: []byte{0, 0, 0, 1, 0x65, 0x88}, Keyframe: true})
	if !errors.Is(err, ErrNoParameterSets) {
		t.Errorf("expected ErrNoParameterSets, got %v", err)
	}
}

func TestSink_Close(t *testing.T) {
	sink := New(&bytes.Buffer{}, testFormat, logger.NewNoop())
	if err := sink.Close(); !errors.Is(err, ErrNoUnits) {
		t.Errorf("expected ErrNoUnits, got %v", err)
	}
	if err := sink.PushUnit(ports.EncodedUnit{Keyframe: true}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestParseAnnexB(t *testing.T) {
	data := []byte{0, 0, 0, 1, 0x67, 1, 2, 0, 0, 1, 0x68, 3, 0, 0, 0, 1, 0x65, 4, 5}
	nalus := parseAnnexB(data)
	want := [][]byte{{0x67, 1, 2}, {0x68, 3}, {0x65, 4, 5}}
	if len(nalus) != len(want) {
		t.Fatalf("expected %d NAL units, got %d", len(want), len(nalus))
	}
	for i := range want {
		if !bytes.Equal(nalus[i], want[i]) {
			t.Errorf("NAL %d: expected % x, got % x", i, want[i], nalus[i])
		}
	}

	avcc := toAVCC(nalus)
	if !bytes.Equal(avcc, []byte{0, 0, 0, 3, 0x65, 4, 5}) {
		t.Errorf("unexpected AVCC % x", avcc)
	}
}

func TestProbeReader_Garbage(t *testing.T) {
	if _, err := ProbeReader(bytes.NewReader([]byte("not an mp4"))); err == nil {
		t.Error("expected error for garbage input")
	}
}
