package main

import (
	"image"
	"os"

	"github.com/nfnt/resize"

	"badc0de.net/pkg/go-redmoon/imageprint"
)

func out(img image.Image) error {
	if *downsize {
		termSize, err := GetTermSize()
		if err == nil {
			if (termSize.WSXPixel != 0 && termSize.WSYPixel != 0) && (*rasterm || *iterm) {
				// Native pixels are available when printing an actual image.
				img = resize.Thumbnail(termSize.WSXPixel/2, termSize.WSYPixel/2, img, resize.NearestNeighbor)
			} else {
				img = resize.Thumbnail(termSize.WSCol/2, termSize.WSRow, img, resize.NearestNeighbor)
			}
		}
	}

	p := &imageprint.Printer{W: os.Stdout, Blanks: *blanks}
	switch {
	case *rasterm:
		return p.Print(img, imageprint.RasTerm)
	case !*col:
		return p.Print(img, imageprint.NoColor)
	case *iterm:
		return p.Print(img, imageprint.ITerm)
	case *col256:
		return p.Print(img, imageprint.Color256)
	default:
		return p.Print(img, imageprint.TrueColor)
	}
}
