package rle

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMissingIdentifier is returned when the data is shorter than the
	// identifier or does not start with it.
	ErrMissingIdentifier = errors.New("rle: missing resource file identifier")

	// ErrInvalidIdentifierEncoding is returned when the identifier bytes are
	// not valid text.
	ErrInvalidIdentifierEncoding = errors.New("rle: identifier is not valid utf-8")

	// ErrTruncated is returned when any read runs past the end of the data.
	ErrTruncated = errors.New("rle: unexpected end of data")

	// ErrCanvasOverflow is returned when a paint opcode addresses a pixel
	// outside the resource's canvas.
	ErrCanvasOverflow = errors.New("rle: paint outside of canvas")

	// ErrLimitExceeded is returned when a decode exceeds one of the limits set
	// in Options.
	ErrLimitExceeded = errors.New("rle: decode limit exceeded")

	// ErrNoResource is returned by DecodeOne for placeholder slots and indices
	// outside the offset table.
	ErrNoResource = errors.New("rle: no resource at index")
)

// UnknownOpcodeError reports an opcode byte the decoder does not understand.
type UnknownOpcodeError struct {
	Opcode byte
	Offset int64 // Position of the opcode byte from the start of the data.
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("rle: unknown opcode 0x%02x at offset %d", e.Opcode, e.Offset)
}
