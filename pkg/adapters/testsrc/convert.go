package testsrc

import (
	"image"

	"github.com/user/hwenc/pkg/ports"
)

// BT.601 studio swing.
func rgbToY(r, g, b int) byte {
	return byte((66*r+129*g+25*b+128)>>8 + 16)
}

func rgbToUV(r, g, b int) (byte, byte) {
	u := (-38*r-74*g+112*b+128)>>8 + 128
	v := (112*r-94*g-18*b+128)>>8 + 128
	return byte(u), byte(v)
}

func pixel(img *image.RGBA, x, y int) (int, int, int) {
	o := img.PixOffset(x, y)
	return int(img.Pix[o]), int(img.Pix[o+1]), int(img.Pix[o+2])
}

func toLuma(img *image.RGBA, dst []byte, y ports.Plane) {
	for row := 0; row < y.Rows; row++ {
		line := dst[y.Offset+row*y.Stride:]
		for col := 0; col < y.RowBytes; col++ {
			line[col] = rgbToY(pixel(img, col, row))
		}
	}
}

func toNV12(img *image.RGBA, dst []byte, y, uv ports.Plane) {
	toLuma(img, dst, y)
	for row := 0; row < uv.Rows; row++ {
		line := dst[uv.Offset+row*uv.Stride:]
		for col := 0; col < uv.RowBytes/2; col++ {
			u, v := rgbToUV(pixel(img, col*2, row*2))
			line[col*2] = u
			line[col*2+1] = v
		}
	}
}

func toI420(img *image.RGBA, dst []byte, y, u, v ports.Plane) {
	toLuma(img, dst, y)
	for row := 0; row < u.Rows; row++ {
		uline := dst[u.Offset+row*u.Stride:]
		vline := dst[v.Offset+row*v.Stride:]
		for col := 0; col < u.RowBytes; col++ {
			uline[col], vline[col] = rgbToUV(pixel(img, col*2, row*2))
		}
	}
}

func toBGRA(img *image.RGBA, dst []byte, p ports.Plane) {
	for row := 0; row < p.Rows; row++ {
		line := dst[p.Offset+row*p.Stride:]
		for col := 0; col < p.RowBytes/4; col++ {
			r, g, b := pixel(img, col, row)
			line[col*4] = byte(b)
			line[col*4+1] = byte(g)
			line[col*4+2] = byte(r)
			line[col*4+3] = 255
		}
	}
}
