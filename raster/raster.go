// Package raster resamples a source image region onto a terminal
// region and maps luminance to glyphs from a density ramp. Both entry
// points append cursor-move and glyph bytes into a caller-owned
// append buffer; neither owns state.
package raster

import (
	"strconv"

	"github.com/danielfalbo/picturephone/densityramp"
)

// Ramp is the subset of *densityramp.Ramp the rasterizer needs,
// expressed as an interface so tests can supply a fixed stand-in.
type Ramp interface {
	Len() int
	Glyph(idx int) []byte
}

var _ Ramp = (*densityramp.Ramp)(nil)

// RenderLuma resamples a single-channel luminance buffer (one byte per
// pixel, row-major, sw*sh bytes) onto a dw x dh destination region at
// (dstX, dstY) (1-based terminal origin handled internally), appending
// the result to buf and returning the grown buffer.
func RenderLuma(buf []byte, src []byte, sw, sh, dstX, dstY, dw, dh int, mirror bool, ramp Ramp) []byte {
	if dw <= 0 || dh <= 0 {
		return buf
	}

	sample := func(ix, iy int) byte {
		return src[iy*sw+ix]
	}
	return render(buf, sw, sh, dstX, dstY, dw, dh, mirror, ramp, sample)
}

// RenderBGRA resamples a BGRA buffer (4 bytes per pixel: B,G,R,A;
// sw*sh*4 bytes) the same way RenderLuma does, converting each sampled
// pixel to luminance via (r*77 + g*150 + b*29) >> 8.
func RenderBGRA(buf []byte, src []byte, sw, sh, dstX, dstY, dw, dh int, mirror bool, ramp Ramp) []byte {
	if dw <= 0 || dh <= 0 {
		return buf
	}

	sample := func(ix, iy int) byte {
		off := (iy*sw + ix) * 4
		b := src[off+0]
		g := src[off+1]
		r := src[off+2]
		return byte((int(r)*77 + int(g)*150 + int(b)*29) >> 8)
	}
	return render(buf, sw, sh, dstX, dstY, dw, dh, mirror, ramp, sample)
}

// Luminance converts a single BGRA pixel (given as its B, G and R
// bytes; alpha is not used) to single-byte luminance, exposed for the peer
// protocol's send path which resamples without mirroring.
func Luminance(b, g, r byte) byte {
	return byte((int(r)*77 + int(g)*150 + int(b)*29) >> 8)
}

func render(buf []byte, sw, sh, dstX, dstY, dw, dh int, mirror bool, ramp Ramp, sample func(ix, iy int) byte) []byte {
	srcX := func(x int) int {
		var ix int
		if mirror {
			ix = ((dw - 1 - x) * sw) / dw
		} else {
			ix = (x * sw) / dw
		}
		if ix >= sw {
			ix = sw - 1
		}
		if ix < 0 {
			ix = 0
		}
		return ix
	}
	srcY := func(y int) int {
		iy := (y * sh) / dh
		if iy >= sh {
			iy = sh - 1
		}
		if iy < 0 {
			iy = 0
		}
		return iy
	}

	min, max := 255, 0
	for y := 0; y < dh; y++ {
		iy := srcY(y)
		for x := 0; x < dw; x++ {
			v := int(sample(srcX(x), iy))
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	rng := max - min
	if rng == 0 {
		rng = 1
	}

	dmax := ramp.Len() - 1

	for y := 0; y < dh; y++ {
		buf = appendCursorMove(buf, dstY+y+1, dstX+1)
		iy := srcY(y)
		for x := 0; x < dw; x++ {
			v := int(sample(srcX(x), iy))
			idx := (v - min) * dmax / rng
			if idx < 0 {
				idx = 0
			}
			if idx > dmax {
				idx = dmax
			}
			buf = append(buf, ramp.Glyph(idx)...)
		}
	}
	return buf
}

// appendCursorMove appends "ESC [ row ; col H" to buf.
func appendCursorMove(buf []byte, row, col int) []byte {
	buf = append(buf, 0x1b, '[')
	buf = strconv.AppendInt(buf, int64(row), 10)
	buf = append(buf, ';')
	buf = strconv.AppendInt(buf, int64(col), 10)
	buf = append(buf, 'H')
	return buf
}
