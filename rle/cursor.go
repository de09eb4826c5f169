package rle

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// cursor reads little-endian values from an immutable byte slice, advancing
// as it goes. Reads past the end fail with ErrTruncated; seeking past the end
// is allowed, as with io.Seeker, and fails on the next read.
type cursor struct {
	data []byte
	pos  int64
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

// seek moves the cursor to an absolute position.
func (c *cursor) seek(pos int64) {
	c.pos = pos
}

func (c *cursor) position() int64 {
	return c.pos
}

// next returns the following n bytes and advances past them.
func (c *cursor) next(n int64, what string) ([]byte, error) {
	if c.pos < 0 || c.pos+n > int64(len(c.data)) {
		return nil, errors.Wrapf(ErrTruncated, "reading %s (%d bytes) at offset %d of %d", what, n, c.pos, len(c.data))
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) u8(what string) (uint8, error) {
	b, err := c.next(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) u32(what string) (uint32, error) {
	b, err := c.next(4, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) i32(what string) (int32, error) {
	v, err := c.u32(what)
	return int32(v), err
}
