// Package rle decodes RLE resource files: the sprite sheet containers used by
// Redmoon Online.
//
// A resource file starts with the identifier "Resource File" followed by a
// zero byte, an unknown 32-bit value, the resource count and a table of
// absolute offsets. Each non-zero offset points to a resource header (nine
// 32-bit values) followed by a small opcode stream which paints the
// resource's pixels into a zeroed canvas.
//
// Offsets equal to zero are placeholders. They produce no Resource, but the
// index of every following resource is still its position in the offset
// table; callers must use Resource.Index rather than the position in
// ResourceFile.Resources.
//
// Pixels are kept in their packed 16-bit form; see package pixel for
// conversion to RGB.
//
// Decoding is all-or-nothing: any malformed resource fails the whole file.
// Nothing in this package holds global mutable state, so distinct files may
// be decoded concurrently.
package rle
