package testsrc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/user/hwenc/pkg/ports"
)

func TestSource_RenderLayouts(t *testing.T) {
	formats := []ports.VideoFormat{
		{Width: 100, Height: 50, Pixel: ports.PixelNV12},
		{Width: 100, Height: 50, Pixel: ports.PixelI420},
		{Width: 64, Height: 36, Pixel: ports.PixelBGRA},
	}

	for _, f := range formats {
		t.Run(string(f.Pixel), func(t *testing.T) {
			src, err := New(f)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			padded := make([]byte, f.FrameSize())
			packed := make([]byte, f.PackedFrameSize())
			if err := src.Render(3, padded); err != nil {
				t.Fatalf("Render padded failed: %v", err)
			}
			if err := src.Render(3, packed); err != nil {
				t.Fatalf("Render packed failed: %v", err)
			}

			// Both layouts carry the same rows.
			pp, kp := f.Planes(true), f.Planes(false)
			for i := range pp {
				last := pp[i].Rows - 1
				a := padded[pp[i].Offset+last*pp[i].Stride:][:pp[i].RowBytes]
				b := packed[kp[i].Offset+last*kp[i].Stride:][:kp[i].RowBytes]
				if !bytes.Equal(a, b) {
					t.Errorf("plane %d: last row differs between layouts", i)
				}
			}
		})
	}
}

func TestSource_FramesDiffer(t *testing.T) {
	f := ports.VideoFormat{Width: 64, Height: 32, Pixel: ports.PixelNV12}
	src, _ := New(f)

	a := make([]byte, f.FrameSize())
	b := make([]byte, f.FrameSize())
	src.Render(0, a)
	src.Render(1, b)
	if bytes.Equal(a, b) {
		t.Error("consecutive frames are identical")
	}
}

func TestSource_LumaRange(t *testing.T) {
	f := ports.VideoFormat{Width: 64, Height: 32, Pixel: ports.PixelI420}
	src, _ := New(f)

	dst := make([]byte, f.PackedFrameSize())
	src.Render(7, dst)
	for i, y := range dst[:64*32] {
		if y < 16 || y > 235 {
			t.Fatalf("luma %d out of studio range at %d", y, i)
		}
	}
}

func TestSource_BGRAAlpha(t *testing.T) {
	f := ports.VideoFormat{Width: 32, Height: 16, Pixel: ports.PixelBGRA}
	src, _ := New(f)

	dst := make([]byte, f.PackedFrameSize())
	src.Render(0, dst)
	for i := 3; i < len(dst); i += 4 {
		if dst[i] != 255 {
			t.Fatalf("alpha %d at pixel %d", dst[i], i/4)
		}
	}
}

func TestSource_BadBuffer(t *testing.T) {
	src, _ := New(ports.VideoFormat{Width: 32, Height: 16, Pixel: ports.PixelNV12})
	if err := src.Render(0, make([]byte, 5)); !errors.Is(err, ErrBufferSize) {
		t.Errorf("expected ErrBufferSize, got %v", err)
	}
}

func TestRGBToYUV(t *testing.T) {
	if y := rgbToY(255, 255, 255); y != 235 {
		t.Errorf("white luma %d, want 235", y)
	}
	if y := rgbToY(0, 0, 0); y != 16 {
		t.Errorf("black luma %d, want 16", y)
	}
	if u, v := rgbToUV(128, 128, 128); u != 128 || v != 128 {
		t.Errorf("gray chroma %d/%d, want 128/128", u, v)
	}
}
