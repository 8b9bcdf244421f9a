package encoder

import (
	"fmt"

	"github.com/user/hwenc/pkg/ports"
)

// copyFrame copies src into the surface dst. src is either laid out like the
// surface or tightly packed.
func copyFrame(format ports.VideoFormat, dst, src []byte) error {
	if len(src) == len(dst) {
		copy(dst, src)
		return nil
	}
	if len(src) != format.PackedFrameSize() {
		return fmt.Errorf("%w: got %d bytes, want %d or %d", ErrFrameSize, len(src), len(dst), format.PackedFrameSize())
	}

	from := format.Planes(false)
	to := format.Planes(true)
	for i := range from {
		s, d := from[i], to[i]
		for row := 0; row < s.Rows; row++ {
			so := s.Offset + row*s.Stride
			do := d.Offset + row*d.Stride
			copy(dst[do:do+d.RowBytes], src[so:so+s.RowBytes])
		}
	}
	return nil
}
