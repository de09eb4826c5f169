// Package export writes decoded resources to common image file formats.
package export

import (
	"fmt"
	"image"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/anthonynsimon/bild/transform"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/ftrvxmtrx/tga"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"

	"badc0de.net/pkg/go-redmoon/rle"
)

// Format is an output image format. Its value doubles as the file extension.
type Format string

const (
	PNG  = Format("png")
	GIF  = Format("gif")
	WebP = Format("webp")
	TGA  = Format("tga")
	BMP  = Format("bmp")
)

// Formats lists every supported format.
var Formats = []Format{PNG, GIF, WebP, TGA, BMP}

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.Errorf("export: unknown format %q", s)
}

// Encode writes img in the given format. GIF output is quantized to 256
// colors; the other formats are lossless.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case PNG:
		err = png.Encode(w, img)
	case GIF:
		err = gif.Encode(w, img, &gif.Options{NumColors: 256, Quantizer: quantize.MedianCutQuantizer{}})
	case WebP:
		err = nativewebp.Encode(w, img, nil)
	case TGA:
		err = tga.Encode(w, img)
	case BMP:
		err = bmp.Encode(w, img)
	default:
		return errors.Errorf("export: unknown format %q", f)
	}
	return errors.Wrapf(err, "export: encoding %s", f)
}

// Scale enlarges img by an integer factor without smoothing, which keeps
// pixel art crisp. Factors below 2 return img unchanged.
func Scale(img image.Image, factor int) image.Image {
	if factor < 2 {
		return img
	}
	b := img.Bounds()
	return transform.Resize(img, b.Dx()*factor, b.Dy()*factor, transform.NearestNeighbor)
}

// Options controls WriteResourceFile.
type Options struct {
	Format Format // PNG when empty.
	Scale  int
}

// FileName is the name WriteResourceFile gives a resource.
func FileName(r *rle.Resource, f Format) string {
	return fmt.Sprintf("%05d_%04d.%s", r.FileNumber, r.Index, f)
}

// WriteResourceFile writes every resource with pixels to its own file in dir
// and returns the paths written. Sentinel resources are skipped.
func WriteResourceFile(dir string, rf *rle.ResourceFile, opts Options) ([]string, error) {
	if opts.Format == "" {
		opts.Format = PNG
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "export: creating %s", dir)
	}

	var written []string
	for i := range rf.Resources {
		r := &rf.Resources[i]
		if r.IsSentinel() {
			glog.V(1).Infof("export: skipping sentinel resource %d/%d", r.FileNumber, r.Index)
			continue
		}
		path := filepath.Join(dir, FileName(r, opts.Format))
		if err := writeImage(path, Scale(r.Image().NRGBA(), opts.Scale), opts.Format); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeImage(path string, img image.Image, f Format) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "export")
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(out.Close(), "closing %s", path)
}
