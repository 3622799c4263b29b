package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/ocrlite-mcp/internal/geometry"
)

// Cropper cuts text regions out of an image. It implements pipeline.Cropper.
type Cropper struct{}

// NewCropper returns a Cropper.
func NewCropper() *Cropper {
	return &Cropper{}
}

// CropAndDeskew warps the quad region of img onto an upright rectangle.
//
// The output is as wide as the P0→P1 edge and as tall as the P0→P3 edge.
// Corners map to corners and interior pixels are sampled bilinearly. Crops
// at least 1.5 times taller than wide are rotated 90° counter-clockwise so
// vertical text reads left to right.
func (c *Cropper) CropAndDeskew(img image.Image, quad geometry.Quad) (image.Image, error) {
	if err := quad.Validate(); err != nil {
		return nil, err
	}

	width := int(math.Round(dist(quad[0], quad[1])))
	height := int(math.Round(dist(quad[0], quad[3])))
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("region %v is too small to crop (%dx%d)", quad, width, height)
	}

	src := toNRGBA(img)
	shift := img.Bounds().Min.Sub(src.Bounds().Min)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		t := 0.0
		if height > 1 {
			t = float64(y) / float64(height-1)
		}
		for x := 0; x < width; x++ {
			s := 0.0
			if width > 1 {
				s = float64(x) / float64(width-1)
			}
			sx, sy := quadPoint(quad, s, t)
			dst.SetNRGBA(x, y, sample(src, sx-float64(shift.X), sy-float64(shift.Y)))
		}
	}

	if float64(height) >= float64(width)*1.5 {
		return imaging.Rotate90(dst), nil
	}
	return dst, nil
}

// Rotate180 turns an upside-down crop upright.
func (c *Cropper) Rotate180(img image.Image) image.Image {
	return imaging.Rotate180(img)
}

// CropRect extracts rect from img. The rectangle must lie inside the image
// and be non-empty.
func CropRect(img image.Image, rect image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if !rect.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", rect, bounds)
	}
	if rect.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: x1 must be < x2, y1 must be < y2", rect)
	}
	return imaging.Crop(img, rect), nil
}

// quadPoint maps unit square coordinates (s, t) onto q by bilinear
// interpolation of its corners.
func quadPoint(q geometry.Quad, s, t float64) (float64, float64) {
	w0 := (1 - s) * (1 - t)
	w1 := s * (1 - t)
	w2 := s * t
	w3 := (1 - s) * t
	x := w0*float64(q[0].X) + w1*float64(q[1].X) + w2*float64(q[2].X) + w3*float64(q[3].X)
	y := w0*float64(q[0].Y) + w1*float64(q[1].Y) + w2*float64(q[2].Y) + w3*float64(q[3].Y)
	return x, y
}

// sample reads src at a fractional position, clamping to the edges.
func sample(src *image.NRGBA, x, y float64) color.NRGBA {
	b := src.Bounds()
	if b.Empty() {
		return color.NRGBA{}
	}

	x = clamp(x, float64(b.Min.X), float64(b.Max.X-1))
	y = clamp(y, float64(b.Min.Y), float64(b.Max.Y-1))

	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	x1, y1 := minInt(x0+1, b.Max.X-1), minInt(y0+1, b.Max.Y-1)
	fx, fy := x-float64(x0), y-float64(y0)

	c00 := src.NRGBAAt(x0, y0)
	c10 := src.NRGBAAt(x1, y0)
	c01 := src.NRGBAAt(x0, y1)
	c11 := src.NRGBAAt(x1, y1)

	mix := func(a, b, c, d uint8) uint8 {
		top := float64(a)*(1-fx) + float64(b)*fx
		bottom := float64(c)*(1-fx) + float64(d)*fx
		return uint8(math.Round(top*(1-fy) + bottom*fy))
	}

	return color.NRGBA{
		R: mix(c00.R, c10.R, c01.R, c11.R),
		G: mix(c00.G, c10.G, c01.G, c11.G),
		B: mix(c00.B, c10.B, c01.B, c11.B),
		A: mix(c00.A, c10.A, c01.A, c11.A),
	}
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	return imaging.Clone(img)
}

func dist(a, b geometry.Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
