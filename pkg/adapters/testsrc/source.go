// Package testsrc renders synthetic test-pattern frames in the raw layouts
// the encoder element accepts.
package testsrc

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/hwenc/pkg/ports"
)

// ErrBufferSize is returned when a destination buffer fits neither layout.
var ErrBufferSize = errors.New("testsrc: buffer does not fit format")

// Patterns are drawn on a fixed canvas and scaled to the output size.
const (
	canvasWidth  = 320
	canvasHeight = 180
)

// Source renders frame n of a moving test pattern. It is not safe for
// concurrent use.
type Source struct {
	format ports.VideoFormat
	scaled *image.RGBA
}

// New creates a Source for format.
func New(format ports.VideoFormat) (*Source, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	return &Source{
		format: format,
		scaled: image.NewRGBA(image.Rect(0, 0, format.Width, format.Height)),
	}, nil
}

// Format returns the output format.
func (s *Source) Format() ports.VideoFormat {
	return s.format
}

// Image renders frame n at the output size.
func (s *Source) Image(n int) *image.RGBA {
	dc := gg.NewContext(canvasWidth, canvasHeight)
	hue := float64(n%120) / 120
	dc.SetColor(hsv(hue, 0.35, 0.9))
	dc.Clear()

	// Vertical bar sweeping left to right.
	x := float64((n * 8) % canvasWidth)
	dc.SetColor(color.White)
	dc.DrawRectangle(x, 0, 24, canvasHeight)
	dc.Fill()

	// Pulsing circle so consecutive frames always differ.
	r := 20 + 15*math.Sin(float64(n)/5)
	dc.SetColor(color.Black)
	dc.DrawCircle(canvasWidth/2, canvasHeight/2, r)
	dc.Fill()

	draw.ApproxBiLinear.Scale(s.scaled, s.scaled.Bounds(), dc.Image(), dc.Image().Bounds(), draw.Src, nil)
	return s.scaled
}

// Render draws frame n into dst. dst has either the padded surface size or
// the packed size of the format.
func (s *Source) Render(n int, dst []byte) error {
	var planes []ports.Plane
	switch len(dst) {
	case s.format.FrameSize():
		planes = s.format.Planes(true)
	case s.format.PackedFrameSize():
		planes = s.format.Planes(false)
	default:
		return fmt.Errorf("%w: %d bytes for %s", ErrBufferSize, len(dst), s.format)
	}

	img := s.Image(n)
	switch s.format.Pixel {
	case ports.PixelBGRA:
		toBGRA(img, dst, planes[0])
	case ports.PixelNV12:
		toNV12(img, dst, planes[0], planes[1])
	default:
		toI420(img, dst, planes[0], planes[1], planes[2])
	}
	return nil
}

func hsv(h, s, v float64) color.Color {
	i := math.Floor(h * 6)
	f := h*6 - i
	p, q, t := v*(1-s), v*(1-f*s), v*(1-(1-f)*s)
	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}
