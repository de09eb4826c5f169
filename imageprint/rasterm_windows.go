package imageprint

import (
	"image"
)

func (p *Printer) printRasTerm(i image.Image) error {
	return p.Print(i, TrueColor)
}
