package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"badc0de.net/pkg/go-redmoon/rle"
)

func testFile() *rle.ResourceFile {
	return &rle.ResourceFile{Resources: []rle.Resource{
		{FileNumber: 3, Index: 0, Width: 2, Height: 2, Pixels: []byte{0x00, 0xF8, 0, 0, 0, 0, 0x1F, 0x00}},
		{FileNumber: 3, Index: 1, Width: 8000, Height: 8000, Pixels: []byte{0, 0}},
	}}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".WebP")
	require.NoError(t, err)
	require.Equal(t, WebP, f)

	_, err = ParseFormat("jpeg2000")
	require.Error(t, err)
}

func TestEncodeAllFormats(t *testing.T) {
	img := testFile().Resources[0].Image().NRGBA()
	for _, f := range Formats {
		buf := &bytes.Buffer{}
		require.NoError(t, Encode(buf, img, f), "format %s", f)
		require.NotZero(t, buf.Len(), "format %s", f)
	}
	require.Error(t, Encode(&bytes.Buffer{}, img, Format("xyz")))
}

func TestScale(t *testing.T) {
	img := testFile().Resources[0].Image().NRGBA()
	scaled := Scale(img, 3)
	require.Equal(t, image.Rect(0, 0, 6, 6), scaled.Bounds())

	r, _, _, a := scaled.At(2, 2).RGBA()
	require.Equal(t, uint32(0xffff), r)
	require.Equal(t, uint32(0xffff), a)

	require.Equal(t, img, Scale(img, 1))
}

func TestWriteResourceFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	written, err := WriteResourceFile(dir, testFile(), Options{})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "00003_0000.png")}, written)

	f, err := os.Open(written[0])
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	require.Equal(t, color.NRGBA{B: 255, A: 255}, color.NRGBAModel.Convert(img.At(1, 1)))
	_, _, _, a := img.At(1, 0).RGBA()
	require.Zero(t, a)
}
