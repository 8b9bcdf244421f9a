// Package ports defines interfaces for external collaborators of the encoder
// element: the hardware encode session, the downstream buffer pool, the output
// boundary, the filesystem and the logger.
package ports

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidFormat is returned when a VideoFormat cannot be negotiated.
var ErrInvalidFormat = errors.New("ports: invalid video format")

// PixelFormat names the raw memory layout of an input frame.
type PixelFormat string

const (
	PixelNV12 PixelFormat = "nv12"
	PixelI420 PixelFormat = "i420"
	PixelBGRA PixelFormat = "bgra"
)

// Surface dimensions are padded to whole macroblocks.
const surfaceAlignment = 16

// VideoFormat is the negotiated raw input format.
type VideoFormat struct {
	Width  int
	Height int
	Pixel  PixelFormat
	FPSNum int
	FPSDen int
}

// Validate checks that the format describes a frame the session can accept.
func (f VideoFormat) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidFormat, f.Width, f.Height)
	}
	if f.Width%2 != 0 || f.Height%2 != 0 {
		return fmt.Errorf("%w: odd size %dx%d", ErrInvalidFormat, f.Width, f.Height)
	}
	switch f.Pixel {
	case PixelNV12, PixelI420, PixelBGRA:
	default:
		return fmt.Errorf("%w: pixel format %q", ErrInvalidFormat, f.Pixel)
	}
	if f.FPSNum < 0 || f.FPSDen < 0 || (f.FPSNum > 0 && f.FPSDen == 0) {
		return fmt.Errorf("%w: frame rate %d/%d", ErrInvalidFormat, f.FPSNum, f.FPSDen)
	}
	return nil
}

// AlignedWidth returns the surface width padded to the macroblock size.
func (f VideoFormat) AlignedWidth() int {
	return align(f.Width, surfaceAlignment)
}

// AlignedHeight returns the surface height padded to the macroblock size.
func (f VideoFormat) AlignedHeight() int {
	return align(f.Height, surfaceAlignment)
}

// Pitch returns the stride in bytes of the first plane.
func (f VideoFormat) Pitch() int {
	if f.Pixel == PixelBGRA {
		return f.AlignedWidth() * 4
	}
	return f.AlignedWidth()
}

// FrameSize returns the number of bytes one surface of this format occupies.
func (f VideoFormat) FrameSize() int {
	w, h := f.AlignedWidth(), f.AlignedHeight()
	if f.Pixel == PixelBGRA {
		return w * h * 4
	}
	return w * h * 3 / 2
}

// PackedFrameSize returns the size of a frame whose planes carry no padding.
func (f VideoFormat) PackedFrameSize() int {
	if f.Pixel == PixelBGRA {
		return f.Width * f.Height * 4
	}
	return f.Width * f.Height * 3 / 2
}

// Plane locates one image plane inside a frame buffer.
type Plane struct {
	Offset   int
	Stride   int
	RowBytes int
	Rows     int
}

// Planes returns the planes of a frame. With padded set the layout is the
// surface layout (aligned strides and heights), otherwise the planes are
// tightly packed.
func (f VideoFormat) Planes(padded bool) []Plane {
	w, h := f.Width, f.Height
	sw, sh := w, h
	if padded {
		sw, sh = f.AlignedWidth(), f.AlignedHeight()
	}

	switch f.Pixel {
	case PixelBGRA:
		return []Plane{{Offset: 0, Stride: sw * 4, RowBytes: w * 4, Rows: h}}
	case PixelNV12:
		return []Plane{
			{Offset: 0, Stride: sw, RowBytes: w, Rows: h},
			{Offset: sw * sh, Stride: sw, RowBytes: w, Rows: h / 2},
		}
	default:
		luma := sw * sh
		chroma := (sw / 2) * (sh / 2)
		return []Plane{
			{Offset: 0, Stride: sw, RowBytes: w, Rows: h},
			{Offset: luma, Stride: sw / 2, RowBytes: w / 2, Rows: h / 2},
			{Offset: luma + chroma, Stride: sw / 2, RowBytes: w / 2, Rows: h / 2},
		}
	}
}

// FrameDuration returns the nominal duration of one frame, or zero when the
// frame rate is unknown.
func (f VideoFormat) FrameDuration() time.Duration {
	if f.FPSNum <= 0 || f.FPSDen <= 0 {
		return 0
	}
	return time.Duration(int64(time.Second) * int64(f.FPSDen) / int64(f.FPSNum))
}

// String implements fmt.Stringer.
func (f VideoFormat) String() string {
	return fmt.Sprintf("%dx%d %s %d/%d", f.Width, f.Height, f.Pixel, f.FPSNum, f.FPSDen)
}

func align(v, to int) int {
	return (v + to - 1) / to * to
}
