package ports

import (
	"errors"
	"testing"
	"time"
)

func TestVideoFormat_Validate(t *testing.T) {
	tests := []struct {
		name    string
		format  VideoFormat
		wantErr bool
	}{
		{"nv12", VideoFormat{Width: 640, Height: 360, Pixel: PixelNV12, FPSNum: 30, FPSDen: 1}, false},
		{"unknown rate", VideoFormat{Width: 64, Height: 64, Pixel: PixelBGRA}, false},
		{"zero width", VideoFormat{Height: 64, Pixel: PixelNV12}, true},
		{"odd height", VideoFormat{Width: 64, Height: 63, Pixel: PixelI420}, true},
		{"bad pixel", VideoFormat{Width: 64, Height: 64, Pixel: "yuy2"}, true},
		{"zero denominator", VideoFormat{Width: 64, Height: 64, Pixel: PixelNV12, FPSNum: 30}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.format.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("expected ErrInvalidFormat, got %v", err)
			}
		})
	}
}

func TestVideoFormat_Sizes(t *testing.T) {
	f := VideoFormat{Width: 640, Height: 360, Pixel: PixelNV12, FPSNum: 30, FPSDen: 1}

	if f.AlignedWidth() != 640 || f.AlignedHeight() != 368 {
		t.Errorf("expected aligned 640x368, got %dx%d", f.AlignedWidth(), f.AlignedHeight())
	}
	if f.Pitch() != 640 {
		t.Errorf("expected pitch 640, got %d", f.Pitch())
	}
	if f.FrameSize() != 640*368*3/2 {
		t.Errorf("unexpected frame size %d", f.FrameSize())
	}
	if f.PackedFrameSize() != 640*360*3/2 {
		t.Errorf("unexpected packed size %d", f.PackedFrameSize())
	}
	if f.FrameDuration() != 33333333*time.Nanosecond {
		t.Errorf("unexpected frame duration %s", f.FrameDuration())
	}
	if f.String() != "640x360 nv12 30/1" {
		t.Errorf("unexpected string %q", f.String())
	}

	bgra := VideoFormat{Width: 100, Height: 50, Pixel: PixelBGRA}
	if bgra.Pitch() != 112*4 {
		t.Errorf("expected bgra pitch %d, got %d", 112*4, bgra.Pitch())
	}
	if bgra.FrameSize() != 112*64*4 {
		t.Errorf("unexpected bgra frame size %d", bgra.FrameSize())
	}
	if bgra.FrameDuration() != 0 {
		t.Errorf("expected zero duration without a rate, got %s", bgra.FrameDuration())
	}
}

func TestVideoFormat_Planes(t *testing.T) {
	f := VideoFormat{Width: 20, Height: 10, Pixel: PixelI420}

	packed := f.Planes(false)
	if len(packed) != 3 {
		t.Fatalf("expected 3 planes, got %d", len(packed))
	}
	want := []Plane{
		{Offset: 0, Stride: 20, RowBytes: 20, Rows: 10},
		{Offset: 200, Stride: 10, RowBytes: 10, Rows: 5},
		{Offset: 250, Stride: 10, RowBytes: 10, Rows: 5},
	}
	for i := range want {
		if packed[i] != want[i] {
			t.Errorf("packed plane %d: expected %+v, got %+v", i, want[i], packed[i])
		}
	}

	padded := f.Planes(true)
	// 32x16 surface
	want = []Plane{
		{Offset: 0, Stride: 32, RowBytes: 20, Rows: 10},
		{Offset: 512, Stride: 16, RowBytes: 10, Rows: 5},
		{Offset: 640, Stride: 16, RowBytes: 10, Rows: 5},
	}
	for i := range want {
		if padded[i] != want[i] {
			t.Errorf("padded plane %d: expected %+v, got %+v", i, want[i], padded[i])
		}
	}

	last := padded[len(padded)-1]
	if end := last.Offset + last.Stride*(f.AlignedHeight()/2); end != f.FrameSize() {
		t.Errorf("planes end at %d, frame size %d", end, f.FrameSize())
	}

	nv12 := VideoFormat{Width: 20, Height: 10, Pixel: PixelNV12}.Planes(true)
	if len(nv12) != 2 || nv12[1].Offset != 512 || nv12[1].RowBytes != 20 {
		t.Errorf("unexpected nv12 planes %+v", nv12)
	}
}

func TestStatus(t *testing.T) {
	if !StatusDeviceBusy.IsWarning() || StatusDeviceBusy.IsError() {
		t.Error("device busy should be a warning")
	}
	if StatusMoreData.IsError() || StatusMoreData.IsWarning() {
		t.Error("more data should be neither warning nor error")
	}
	if StatusMoreData.Err() != nil || StatusOK.Err() != nil {
		t.Error("expected nil error for non-failing statuses")
	}

	err := StatusDeviceFailed.Err()
	if !errors.Is(err, ErrHardware) {
		t.Errorf("expected ErrHardware, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Status != StatusDeviceFailed {
		t.Errorf("expected StatusError with device-failed, got %v", err)
	}
	if Status(-99).String() != "status(-99)" {
		t.Errorf("unexpected string %q", Status(-99).String())
	}
}

func TestBitstream_Reset(t *testing.T) {
	bs := &Bitstream{Data: []byte("xxpayload"), DataOffset: 2, DataLength: 7, Offset: 9, FrameType: FrameTypeIDR}
	if string(bs.Bytes()) != "payload" {
		t.Errorf("unexpected payload %q", bs.Bytes())
	}
	bs.Reset()
	if bs.DataLength != 0 || bs.DataOffset != 0 || bs.Offset != 0 || bs.FrameType != FrameTypeUnknown {
		t.Errorf("expected cleared bitstream, got %+v", bs)
	}
	if bs.TimeStamp != TimeStampNone {
		t.Errorf("expected no timestamp, got %s", bs.TimeStamp)
	}
	if len(bs.Data) != 9 {
		t.Error("Reset must keep the buffer")
	}
}

func TestBuffer_ReleaseOnce(t *testing.T) {
	calls := 0
	b := NewBuffer(make([]byte, 4), func(*Buffer) { calls++ })
	b.Release()
	b.Release()
	if calls != 1 {
		t.Errorf("expected one release, got %d", calls)
	}

	var nilBuf *Buffer
	nilBuf.Release()
}
