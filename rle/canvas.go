package rle

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Opcodes of a resource's pixel stream.
const (
	opEnd      = 0x00 // End of the resource.
	opPaint    = 0x01 // u32 count, then count packed pixels.
	opMoveX    = 0x02 // i32 delta in bytes; x moves by delta/2 pixels.
	opNextLine = 0x03 // y advances by one; x is left alone.
)

// canvas is the flat pixel buffer a resource is painted into.
type canvas struct {
	pix           []byte
	width, height int64
	strict        bool
	sentinel      bool
}

func newCanvas(width, height uint32, strict bool) *canvas {
	if width >= SentinelDimension || height >= SentinelDimension {
		return &canvas{pix: make([]byte, 2), sentinel: true}
	}
	return &canvas{
		pix:    make([]byte, int(width)*int(height)*2),
		width:  int64(width),
		height: int64(height),
		strict: strict,
	}
}

// paint stores one packed pixel at (x, y).
//
// The address is y*2*width + x*2 without clipping x to the row, so a run
// that passes the end of a row lands at the start of the next one. Only
// addresses outside the whole buffer are rejected, unless strict is set.
func (cv *canvas) paint(x, y int64, lo, hi byte) error {
	if cv.strict && (x < 0 || x >= cv.width || y < 0 || y >= cv.height) {
		return errors.Wrapf(ErrCanvasOverflow, "pixel (%d, %d) outside %dx%d", x, y, cv.width, cv.height)
	}
	addr := y*2*cv.width + x*2
	if addr < 0 || addr+1 >= int64(len(cv.pix)) {
		return errors.Wrapf(ErrCanvasOverflow, "pixel (%d, %d) at byte %d outside %d byte canvas", x, y, addr, len(cv.pix))
	}
	cv.pix[addr] = lo
	cv.pix[addr+1] = hi
	return nil
}

// interpret runs the opcode stream at the cursor until the end opcode.
func (d *decoder) interpret(cv *canvas) error {
	var x, y int64
	for ops := 0; ; ops++ {
		if d.opts.MaxOpcodes > 0 && ops >= d.opts.MaxOpcodes {
			return errors.Wrapf(ErrLimitExceeded, "more than %d opcodes", d.opts.MaxOpcodes)
		}

		at := d.c.position()
		op, err := d.c.u8("opcode")
		if err != nil {
			return err
		}
		if glog.V(4) {
			glog.Infof("rle: opcode 0x%02x at offset %d, x=%d y=%d", op, at, x, y)
		}

		switch op {
		case opEnd:
			return nil
		case opPaint:
			count, err := d.c.u32("paint count")
			if err != nil {
				return err
			}
			for i := uint32(0); i < count; i++ {
				px, err := d.c.next(2, "pixel")
				if err != nil {
					return err
				}
				if err := cv.paint(x, y, px[0], px[1]); err != nil {
					return err
				}
				x++
			}
		case opMoveX:
			delta, err := d.c.i32("move delta")
			if err != nil {
				return err
			}
			x += int64(delta / 2)
		case opNextLine:
			y++
		default:
			return &UnknownOpcodeError{Opcode: op, Offset: at}
		}
	}
}
