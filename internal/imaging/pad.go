package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// PadColor fills the border added by Pad.
var PadColor = color.White

// Pad surrounds img with padding pixels of PadColor on every side. It returns
// the padded image and the rectangle the original occupies inside it.
func Pad(img image.Image, padding int) (*image.NRGBA, image.Rectangle) {
	if padding < 0 {
		padding = 0
	}
	b := img.Bounds()

	padded := imaging.New(b.Dx()+2*padding, b.Dy()+2*padding, PadColor)
	padded = imaging.Paste(padded, img, image.Pt(padding, padding))

	return padded, image.Rect(padding, padding, padding+b.Dx(), padding+b.Dy())
}
