package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/vector"

	"github.com/ironsheep/ocrlite-mcp/internal/geometry"
)

// Overlay draws detection results onto an image. It implements
// pipeline.OverlayDrawer.
type Overlay struct {
	// MarkerColor is used for character centre crosses.
	MarkerColor color.Color

	// MarkerSize is the arm-to-arm length of a cross in pixels.
	MarkerSize int
}

// NewOverlay returns an overlay with red 8px character markers.
func NewOverlay() *Overlay {
	return &Overlay{
		MarkerColor: color.NRGBA{R: 255, A: 255},
		MarkerSize:  8,
	}
}

// Palette returns n visually distinct colours with evenly spaced hues.
func Palette(n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		hue := 360 * float64(i) / float64(n)
		c := colorful.Hsv(hue, 0.85, 0.9).Clamped()
		r, g, b := c.RGB255()
		out[i] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}

// DrawOverlay outlines every region on dst with strokes thickness pixels
// wide, one palette colour per region.
func (o *Overlay) DrawOverlay(dst draw.Image, regions []geometry.DetectedRegion, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	colors := Palette(len(regions))
	for i, r := range regions {
		for k := 0; k < 4; k++ {
			stroke(dst, r.Quad[k], r.Quad[(k+1)%4], float64(thickness), colors[i])
		}
	}
}

// DrawCharMarker draws a cross centred on p.
func (o *Overlay) DrawCharMarker(dst draw.Image, p geometry.Point) {
	half := o.MarkerSize / 2
	if half < 1 {
		half = 1
	}
	col := o.MarkerColor
	if col == nil {
		col = color.NRGBA{R: 255, A: 255}
	}
	stroke(dst, geometry.Point{X: p.X - half, Y: p.Y}, geometry.Point{X: p.X + half, Y: p.Y}, 1, col)
	stroke(dst, geometry.Point{X: p.X, Y: p.Y - half}, geometry.Point{X: p.X, Y: p.Y + half}, 1, col)
}

// stroke fills the rectangle of the given width centred on segment a→b,
// extended by half the width at both ends so adjoining strokes meet.
func stroke(dst draw.Image, a, b geometry.Point, width float64, col color.Color) {
	bounds := dst.Bounds()
	if bounds.Empty() {
		return
	}

	ax, ay := float64(a.X)+0.5, float64(a.Y)+0.5
	bx, by := float64(b.X)+0.5, float64(b.Y)+0.5
	dx, dy := bx-ax, by-ay
	l := math.Hypot(dx, dy)
	half := width / 2

	var ux, uy float64
	if l == 0 {
		ux, uy = 1, 0
	} else {
		ux, uy = dx/l, dy/l
	}
	nx, ny := -uy*half, ux*half
	ex, ey := ux*half, uy*half

	poly := clipPolygon([]fpoint{
		{ax - ex + nx, ay - ey + ny},
		{bx + ex + nx, by + ey + ny},
		{bx + ex - nx, by + ey - ny},
		{ax - ex - nx, ay - ey - ny},
	}, bounds)
	if len(poly) < 3 {
		return
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range poly {
		minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
		minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
	}
	clip := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY))).Intersect(bounds)
	if clip.Empty() {
		return
	}

	ox, oy := float64(clip.Min.X), float64(clip.Min.Y)
	z := vector.NewRasterizer(clip.Dx(), clip.Dy())
	z.DrawOp = draw.Over
	z.MoveTo(float32(poly[0].x-ox), float32(poly[0].y-oy))
	for _, p := range poly[1:] {
		z.LineTo(float32(p.x-ox), float32(p.y-oy))
	}
	z.ClosePath()
	z.Draw(dst, clip, image.NewUniform(col), image.Point{})
}

type fpoint struct{ x, y float64 }

// clipPolygon clips a convex polygon to r (Sutherland-Hodgman).
func clipPolygon(poly []fpoint, r image.Rectangle) []fpoint {
	minX, minY := float64(r.Min.X), float64(r.Min.Y)
	maxX, maxY := float64(r.Max.X), float64(r.Max.Y)

	edges := []struct {
		inside func(p fpoint) bool
		cross  func(a, b fpoint) fpoint
	}{
		{func(p fpoint) bool { return p.x >= minX }, func(a, b fpoint) fpoint { return atX(a, b, minX) }},
		{func(p fpoint) bool { return p.x <= maxX }, func(a, b fpoint) fpoint { return atX(a, b, maxX) }},
		{func(p fpoint) bool { return p.y >= minY }, func(a, b fpoint) fpoint { return atY(a, b, minY) }},
		{func(p fpoint) bool { return p.y <= maxY }, func(a, b fpoint) fpoint { return atY(a, b, maxY) }},
	}

	for _, e := range edges {
		if len(poly) == 0 {
			break
		}
		in := poly
		poly = make([]fpoint, 0, len(in)+2)
		prev := in[len(in)-1]
		for _, cur := range in {
			switch {
			case e.inside(cur) && e.inside(prev):
				poly = append(poly, cur)
			case e.inside(cur):
				poly = append(poly, e.cross(prev, cur), cur)
			case e.inside(prev):
				poly = append(poly, e.cross(prev, cur))
			}
			prev = cur
		}
	}
	return poly
}

func atX(a, b fpoint, x float64) fpoint {
	t := (x - a.x) / (b.x - a.x)
	return fpoint{x, a.y + t*(b.y-a.y)}
}

func atY(a, b fpoint, y float64) fpoint {
	t := (y - a.y) / (b.y - a.y)
	return fpoint{a.x + t*(b.x-a.x), y}
}
