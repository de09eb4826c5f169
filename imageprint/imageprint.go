// Package imageprint prints sprites on a terminal.
//
// This package has an API with no stability guarantees.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"

	"github.com/gookit/color"
)

// Mode selects how pixels are drawn.
type Mode int

const (
	TrueColor Mode = iota // 24-bit background escapes.
	Color256              // Approximated through gookit/color.
	NoColor               // Shading characters only.
	ITerm                 // iTerm2 inline image protocol.
	RasTerm               // Kitty, iTerm or sixel, whichever the terminal supports.
)

// Printer draws images to W.
type Printer struct {
	W io.Writer

	// Blanks draws every pixel as two colored spaces instead of shading
	// characters.
	Blanks bool
}

// Print draws img in the given mode.
func (p *Printer) Print(img image.Image, mode Mode) error {
	switch mode {
	case ITerm:
		return p.printITerm(img, "sprite.png")
	case RasTerm:
		return p.printRasTerm(img)
	}
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			p.shade(img.At(x, y), mode)
		}
		if mode != NoColor {
			fmt.Fprint(p.W, "\x1b[0m")
		}
		fmt.Fprint(p.W, "\n")
	}
	return nil
}

// shade draws one pixel as two character cells. Transparent pixels are left
// empty.
func (p *Printer) shade(col ic.Color, mode Mode) {
	cR, cG, cB, cA := col.RGBA()
	if cA == 0 {
		if mode == NoColor {
			fmt.Fprint(p.W, "  ")
		} else {
			fmt.Fprint(p.W, "\x1b[0m  ")
		}
		return
	}

	cell := "  "
	if !p.Blanks {
		a := ((cR + cG + cB) / 3) >> 8
		switch {
		case a < 32:
			cell = ".."
		case a < 64:
			cell = "--"
		case a < 128:
			cell = "=="
		default:
			cell = "##"
		}
	}

	r8, g8, b8 := uint8(cR>>8), uint8(cG>>8), uint8(cB>>8)
	switch mode {
	case NoColor:
		fmt.Fprint(p.W, cell)
	case Color256:
		fmt.Fprint(p.W, color.RGB(r8, g8, b8, true).Sprint(cell))
	default:
		fmt.Fprintf(p.W, "\x1b[48;2;%d;%d;%dm%s\x1b[0m", r8, g8, b8, cell)
	}
}

// printITerm draws an image using iTerm2's escape sequences.
//
// https://www.iterm2.com/documentation-images.html
func (p *Printer) printITerm(i image.Image, fn string) error {
	name := base64.StdEncoding.EncodeToString([]byte(fn))
	b := &bytes.Buffer{}
	bEnc := base64.NewEncoder(base64.StdEncoding, b)
	if err := png.Encode(bEnc, i); err != nil {
		return err
	}
	bEnc.Close()
	_, err := fmt.Fprintf(p.W, "\n\033]1337;File=name=%s;inline=1;size=%d;width=%dpx;height=%dpx:%s\a\n", name, b.Len(), i.Bounds().Dx(), i.Bounds().Dy(), b.String())
	return err
}
