package rle

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-redmoon/pixel"
)

const resourceHeaderSize = 9 * 4

// Encode writes f as a resource file that Decode reads back to the same
// resources.
//
// The offset table is sized to the highest Index plus one; slots without a
// resource are written as zero. Blank (all-zero) pixels are skipped with
// move opcodes rather than painted. Length and the unknown fields are written
// unchanged. Sentinel resources get a header and no opcode stream.
func Encode(w io.Writer, f *ResourceFile) error {
	count := 0
	slots := map[uint32]int{}
	for i := range f.Resources {
		idx := f.Resources[i].Index
		if _, dup := slots[idx]; dup {
			return errors.Errorf("rle: encode: duplicate resource index %d", idx)
		}
		slots[idx] = i
		if int(idx)+1 > count {
			count = int(idx) + 1
		}
	}

	records := make([][]byte, len(f.Resources))
	for i := range f.Resources {
		rec, err := encodeResource(&f.Resources[i])
		if err != nil {
			return errors.Wrapf(err, "rle: encode: resource %d", f.Resources[i].Index)
		}
		records[i] = rec
	}

	offsets := make([]uint32, count)
	pos := uint32(len(Identifier) + 4 + 4 + 4*count)
	for idx := 0; idx < count; idx++ {
		i, ok := slots[uint32(idx)]
		if !ok {
			continue
		}
		offsets[idx] = pos
		pos += uint32(len(records[i]))
	}

	buf := &bytes.Buffer{}
	buf.WriteString(Identifier)
	binary.Write(buf, binary.LittleEndian, f.Unknown)
	binary.Write(buf, binary.LittleEndian, uint32(count))
	binary.Write(buf, binary.LittleEndian, offsets)
	for idx := 0; idx < count; idx++ {
		if i, ok := slots[uint32(idx)]; ok {
			buf.Write(records[i])
		}
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "rle: encode: writing resource file")
	}
	return nil
}

func encodeResource(r *Resource) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, resourceHeaderSize))
	binary.Write(buf, binary.LittleEndian, [9]uint32{
		r.Length, r.OffsetX, r.OffsetY, r.Width, r.Height,
		r.Unknown[0], r.Unknown[1], r.Unknown[2], r.Unknown[3],
	})
	if r.IsSentinel() {
		return buf.Bytes(), nil
	}

	w, h := int(r.Width), int(r.Height)
	if len(r.Pixels) != w*h*2 {
		return nil, errors.Errorf("pixel buffer is %d bytes, want %d for %dx%d", len(r.Pixels), w*h*2, w, h)
	}
	blank := func(row, col int) bool {
		i := (row*w + col) * 2
		return pixel.IsBlank(r.Pixels[i], r.Pixels[i+1])
	}

	x := 0
	for row := 0; row < h; row++ {
		if row > 0 {
			buf.WriteByte(opNextLine)
		}
		for col := 0; col < w; {
			if blank(row, col) {
				col++
				continue
			}
			start := col
			for col < w && !blank(row, col) {
				col++
			}
			if dx := start - x; dx != 0 {
				buf.WriteByte(opMoveX)
				binary.Write(buf, binary.LittleEndian, int32(dx*2))
			}
			buf.WriteByte(opPaint)
			binary.Write(buf, binary.LittleEndian, uint32(col-start))
			i := (row*w + start) * 2
			buf.Write(r.Pixels[i : i+(col-start)*2])
			x = col
		}
	}
	buf.WriteByte(opEnd)
	return buf.Bytes(), nil
}
