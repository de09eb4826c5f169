package rle

import (
	"io"
	"unicode/utf8"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Identifier is the literal every resource file starts with.
//
// NOTE(redmoon): older notes on the format describe the identifier as ending
// in a newline; the files seen so far end it with a zero byte, which is what
// is checked here.
const Identifier = "Resource File\x00"

// SentinelDimension is the width or height at which a resource is considered
// a placeholder. Such resources get a 2-byte pixel buffer and their opcode
// stream is not read.
const SentinelDimension = 8000

// ResourceFile is a decoded resource file.
type ResourceFile struct {
	// Unknown is the value stored right after the identifier. Its meaning is
	// not known; it may be the next free offset.
	Unknown uint32

	// Resources are in offset table order. Placeholder slots are absent, so
	// positions in this slice do not match Resource.Index.
	Resources []Resource
}

// Resource is a single decoded sprite.
type Resource struct {
	FileNumber uint32 // Supplied by the caller of Decode.
	Index      uint32 // Slot in the offset table.
	Offset     uint32 // Absolute position of the header in the file.

	Length  uint32
	OffsetX uint32
	OffsetY uint32
	Width   uint32
	Height  uint32
	Unknown [4]uint32

	// Pixels holds Width*Height packed pixels, two bytes each (low byte
	// first), row by row. Sentinel resources hold exactly two zero bytes.
	Pixels []byte
}

// IsSentinel reports whether the resource declared dimensions too large to be
// decoded.
func (r *Resource) IsSentinel() bool {
	return r.Width >= SentinelDimension || r.Height >= SentinelDimension
}

// Header is the part of a resource file preceding the resources themselves.
type Header struct {
	Unknown uint32
	Offsets []uint32 // Absolute offsets; zero marks an empty slot.
}

// Options tunes a decode. The zero value, and a nil *Options, decode exactly
// like the original game data requires.
type Options struct {
	// StrictBounds rejects paint operations whose x or y fall outside the
	// resource's width and height. Without it, a run past the end of a row
	// continues into the next row, which is how the format has always been
	// read.
	StrictBounds bool

	// MaxResources limits the size of the offset table. Zero is unlimited.
	MaxResources uint32

	// MaxOpcodes limits the number of opcodes interpreted per resource. Zero
	// is unlimited; a stream without an end opcode is then only stopped by
	// the end of the data.
	MaxOpcodes int
}

// Decode decodes all resources in data, tagging them with fileNumber.
func Decode(fileNumber uint32, data []byte) (*ResourceFile, error) {
	return DecodeWithOptions(fileNumber, data, nil)
}

// DecodeReader reads r to its end and decodes the result.
func DecodeReader(fileNumber uint32, r io.Reader, opts *Options) (*ResourceFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "rle: reading resource file")
	}
	return DecodeWithOptions(fileNumber, data, opts)
}

// DecodeWithOptions decodes all resources in data. Any error discards the
// whole file; no partially decoded ResourceFile is ever returned.
func DecodeWithOptions(fileNumber uint32, data []byte, opts *Options) (*ResourceFile, error) {
	d := newDecoder(fileNumber, data, opts)
	h, err := d.readHeader()
	if err != nil {
		return nil, err
	}

	glog.V(2).Infof("rle: file %d: %d offset table entries", fileNumber, len(h.Offsets))

	rf := &ResourceFile{Unknown: h.Unknown}
	for idx, offset := range h.Offsets {
		if offset == 0 {
			// Placeholder; the index stays reserved.
			continue
		}
		res, err := d.decodeResource(uint32(idx), offset)
		if err != nil {
			return nil, errors.Wrapf(err, "rle: file %d: resource %d at offset %d", fileNumber, idx, offset)
		}
		rf.Resources = append(rf.Resources, *res)
	}
	return rf, nil
}

// ReadHeader validates the identifier and reads the offset table without
// decoding any resource.
func ReadHeader(data []byte) (*Header, error) {
	return newDecoder(0, data, nil).readHeader()
}

// DecodeOne decodes only the resource in offset table slot index.
func DecodeOne(fileNumber uint32, data []byte, index int, opts *Options) (*Resource, error) {
	d := newDecoder(fileNumber, data, opts)
	h, err := d.readHeader()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(h.Offsets) {
		return nil, errors.Wrapf(ErrNoResource, "rle: index %d outside table of %d", index, len(h.Offsets))
	}
	offset := h.Offsets[index]
	if offset == 0 {
		return nil, errors.Wrapf(ErrNoResource, "rle: index %d is a placeholder", index)
	}
	res, err := d.decodeResource(uint32(index), offset)
	if err != nil {
		return nil, errors.Wrapf(err, "rle: file %d: resource %d at offset %d", fileNumber, index, offset)
	}
	return res, nil
}

type decoder struct {
	c          *cursor
	fileNumber uint32
	opts       Options
}

func newDecoder(fileNumber uint32, data []byte, opts *Options) *decoder {
	d := &decoder{
		c:          newCursor(data),
		fileNumber: fileNumber,
	}
	if opts != nil {
		d.opts = *opts
	}
	return d
}

func (d *decoder) readHeader() (*Header, error) {
	data := d.c.data
	if len(data) < len(Identifier) {
		return nil, ErrMissingIdentifier
	}
	ident := data[:len(Identifier)]
	if !utf8.Valid(ident) {
		return nil, ErrInvalidIdentifierEncoding
	}
	if string(ident) != Identifier {
		return nil, ErrMissingIdentifier
	}
	d.c.seek(int64(len(Identifier)))

	var h Header
	var err error
	if h.Unknown, err = d.c.u32("unknown header value"); err != nil {
		return nil, err
	}
	count, err := d.c.u32("resource count")
	if err != nil {
		return nil, err
	}
	if d.opts.MaxResources > 0 && count > d.opts.MaxResources {
		return nil, errors.Wrapf(ErrLimitExceeded, "rle: %d resources, limit is %d", count, d.opts.MaxResources)
	}
	// Refuse to allocate a table the data cannot possibly hold.
	if remaining := int64(len(data)) - d.c.position(); int64(count)*4 > remaining {
		return nil, errors.Wrapf(ErrTruncated, "rle: offset table of %d entries needs %d bytes, %d left", count, int64(count)*4, remaining)
	}

	h.Offsets = make([]uint32, count)
	for i := range h.Offsets {
		if h.Offsets[i], err = d.c.u32("offset table"); err != nil {
			return nil, err
		}
	}
	return &h, nil
}

// decodeResource reads the header at the absolute offset and paints the
// resource's canvas.
func (d *decoder) decodeResource(index, offset uint32) (*Resource, error) {
	d.c.seek(int64(offset))

	res := &Resource{
		FileNumber: d.fileNumber,
		Index:      index,
		Offset:     offset,
	}
	fields := []*uint32{
		&res.Length, &res.OffsetX, &res.OffsetY, &res.Width, &res.Height,
		&res.Unknown[0], &res.Unknown[1], &res.Unknown[2], &res.Unknown[3],
	}
	for _, f := range fields {
		v, err := d.c.u32("resource header")
		if err != nil {
			return nil, err
		}
		*f = v
	}

	cv := newCanvas(res.Width, res.Height, d.opts.StrictBounds)
	res.Pixels = cv.pix
	if cv.sentinel {
		glog.V(1).Infof("rle: file %d: oversized resource %d: W: %d, H: %d", d.fileNumber, index, res.Width, res.Height)
		return res, nil
	}

	if err := d.interpret(cv); err != nil {
		return nil, err
	}
	glog.V(3).Infof("rle: file %d: resource %d: %dx%d", d.fileNumber, index, res.Width, res.Height)
	return res, nil
}
