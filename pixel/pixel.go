// Package pixel implements the packed 16-bit color used by RLE resource files.
//
// Every pixel in a resource is stored as two bytes, low byte first, holding a
// 5/6/5 bit red, green and blue triplet. Nothing in this package keeps state;
// the decoder never converts colors itself and leaves that to callers of this
// package.
package pixel

import (
	"image/color"
)

// R5G6B5 is a packed pixel: bits 11-15 are red, 5-10 green and 0-4 blue.
type R5G6B5 uint16

// FromBytes assembles a packed pixel from its on-disk representation.
func FromBytes(lo, hi byte) R5G6B5 {
	return R5G6B5(uint16(lo) | uint16(hi)<<8)
}

// Bytes returns the on-disk representation of the pixel, low byte first.
func (p R5G6B5) Bytes() (lo, hi byte) {
	return byte(p), byte(p >> 8)
}

// RGBA implements color.Color. Packed pixels carry no alpha and are always
// opaque.
func (p R5G6B5) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := Normalize(uint16(p))
	r = uint32(r8)
	r |= r << 8
	g = uint32(g8)
	g |= g << 8
	b = uint32(b8)
	b |= b << 8
	return r, g, b, 0xffff
}

// Normalize expands a packed pixel into 8-bit channels.
//
// Each channel is scaled against its own maximum (31 or 63) and truncated, so
// full intensity maps to 255 and zero to zero.
func Normalize(d uint16) (r, g, b uint8) {
	bf := (float32(d&0x1F) / 31.0) * 255.0
	gf := (float32((d>>5)&0x3F) / 63.0) * 255.0
	rf := (float32((d>>11)&0x1F) / 31.0) * 255.0
	return uint8(rf), uint8(gf), uint8(bf)
}

// Pack is the inverse of Normalize, rounding each channel to the nearest
// representable value.
func Pack(r, g, b uint8) R5G6B5 {
	r5 := (uint16(r)*31 + 127) / 255
	g6 := (uint16(g)*63 + 127) / 255
	b5 := (uint16(b)*31 + 127) / 255
	return R5G6B5(r5<<11 | g6<<5 | b5)
}

// Model converts arbitrary colors to packed pixels. Alpha is discarded.
var Model color.Model = color.ModelFunc(model)

func model(c color.Color) color.Color {
	if p, ok := c.(R5G6B5); ok {
		return p
	}
	r, g, b, _ := c.RGBA()
	return Pack(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// IsBlank reports whether a pixel was never painted. The decoder zero-fills
// its canvas, so an all-zero pixel is treated as background by image views.
func IsBlank(lo, hi byte) bool {
	return lo == 0 && hi == 0
}

// Magenta is the packed value sometimes used as a color key by the game's
// artwork instead of leaving pixels unpainted.
const Magenta R5G6B5 = 0xF81F
