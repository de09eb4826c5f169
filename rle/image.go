package rle

// This file contains the image.Image view of a decoded resource and the
// registration of the format with the image package.

import (
	"image"
	"image/color"
	"io"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-redmoon/pixel"
)

func init() {
	image.RegisterFormat("rle", Identifier, decodeFirst, decodeFirstConfig)
}

// Image is a read-only image.Image over a resource's packed pixels. With
// Transparent set, colors are color.NRGBA and blank pixels are transparent;
// otherwise colors are pixel.R5G6B5.
type Image struct {
	Pix         []byte
	Stride      int
	Rect        image.Rectangle
	Transparent bool
}

// Image returns a view of the resource's pixels. Blank pixels are
// transparent. Sentinel resources have an empty image.
func (r *Resource) Image() *Image {
	if r.IsSentinel() {
		return &Image{}
	}
	return &Image{
		Pix:         r.Pixels,
		Stride:      int(r.Width) * 2,
		Rect:        r.Bounds(),
		Transparent: true,
	}
}

// Bounds is the resource's rectangle, placed at the origin.
func (r *Resource) Bounds() image.Rectangle {
	if r.IsSentinel() {
		return image.Rectangle{}
	}
	return image.Rect(0, 0, int(r.Width), int(r.Height))
}

func (m *Image) ColorModel() color.Model {
	if m.Transparent {
		return color.NRGBAModel
	}
	return pixel.Model
}

func (m *Image) Bounds() image.Rectangle { return m.Rect }

func (m *Image) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.Rect)) {
		if m.Transparent {
			return color.NRGBA{}
		}
		return pixel.R5G6B5(0)
	}
	i := (y-m.Rect.Min.Y)*m.Stride + (x-m.Rect.Min.X)*2
	lo, hi := m.Pix[i], m.Pix[i+1]
	if !m.Transparent {
		return pixel.FromBytes(lo, hi)
	}
	if pixel.IsBlank(lo, hi) {
		return color.NRGBA{}
	}
	return color.NRGBAModel.Convert(pixel.FromBytes(lo, hi))
}

// NRGBA converts the image, e.g. for encoders which are faster on concrete
// image types.
func (m *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(m.Rect)
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
			out.Set(x, y, m.At(x, y))
		}
	}
	return out
}

// first returns the first resource which has pixels.
func first(rf *ResourceFile) (*Resource, error) {
	for i := range rf.Resources {
		if !rf.Resources[i].IsSentinel() {
			return &rf.Resources[i], nil
		}
	}
	return nil, errors.Wrap(ErrNoResource, "rle: no decodable resource in file")
}

// decodeFirst is the image.Decode hook: it returns the first resource which
// has pixels.
func decodeFirst(r io.Reader) (image.Image, error) {
	rf, err := DecodeReader(0, r, nil)
	if err != nil {
		return nil, err
	}
	res, err := first(rf)
	if err != nil {
		return nil, err
	}
	return res.Image(), nil
}

func decodeFirstConfig(r io.Reader) (image.Config, error) {
	rf, err := DecodeReader(0, r, nil)
	if err != nil {
		return image.Config{}, err
	}
	res, err := first(rf)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(res.Width),
		Height:     int(res.Height),
	}, nil
}
