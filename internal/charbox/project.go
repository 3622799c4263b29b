// Package charbox maps decoded characters back onto the source image as
// quadrilaterals that follow the rotation of their text region.
package charbox

import (
	"math"
	"unicode/utf8"

	"github.com/ironsheep/ocrlite-mcp/internal/ctc"
	"github.com/ironsheep/ocrlite-mcp/internal/geometry"
	"github.com/ironsheep/ocrlite-mcp/internal/ocrerr"
)

// Projection holds the per-region trigonometry used to place characters.
type Projection struct {
	Origin     geometry.Point // P0, start of the top edge
	Lower      geometry.Point // P3, start of the bottom edge
	LongSide   float64        // length of P0→P1 in pixels
	AngleCos   float64
	AngleSin   float64
	CellWidth  float64 // pixels per decoder column
	Factor     float64 // +1 when P1 is level with or below P0, else -1
	NumColumns int
}

// NewProjection derives the projection of quad for a line of totalColumns
// decoder columns.
//
// The sign of the y component comes from comparing P1.y with P0.y only, which
// is an approximation for near-square or steeply rotated regions.
func NewProjection(quad geometry.Quad, totalColumns int) (Projection, error) {
	if err := quad.Validate(); err != nil {
		return Projection{}, err
	}
	if totalColumns < 1 {
		return Projection{}, ocrerr.InvalidInput("charbox.NewProjection", "totalColumns must be at least 1, got %d", totalColumns)
	}

	dx, dy, long := quad.LongSide()

	factor := 1.0
	if quad[1].Y < quad[0].Y {
		factor = -1.0
	}

	return Projection{
		Origin:     quad[0],
		Lower:      quad[3],
		LongSide:   long,
		AngleCos:   math.Abs(dx) / long,
		AngleSin:   math.Abs(dy) / long,
		CellWidth:  long / float64(totalColumns),
		Factor:     factor,
		NumColumns: totalColumns,
	}, nil
}

// At returns the point offset columns cells along the edge starting at from.
func (p Projection) At(from geometry.Point, columns float64) (float64, float64) {
	d := columns * p.CellWidth
	return float64(from.X) + d*p.AngleCos, float64(from.Y) + p.Factor*d*p.AngleSin
}

// Char returns the quad covering a character centred on column index with
// the given column width.
func (p Projection) Char(index, width int) geometry.Quad {
	start := float64(index) - float64(width)/2
	end := float64(index) + float64(width)/2

	x0, y0 := p.At(p.Origin, start)
	x1, y1 := p.At(p.Origin, end)
	x2, y2 := p.At(p.Lower, end)
	x3, y3 := p.At(p.Lower, start)

	return geometry.Quad{pt(x0, y0), pt(x1, y1), pt(x2, y2), pt(x3, y3)}
}

// Center returns the centre of the character at column index, halfway
// between the top and bottom edges.
func (p Projection) Center(index int) geometry.Point {
	tx, ty := p.At(p.Origin, float64(index))
	bx, by := p.At(p.Lower, float64(index))
	return pt((tx+bx)/2, (ty+by)/2)
}

// ProjectChars returns one quad per character of line, following quad's
// rotation, translated by (-offsetX, -offsetY) into the unpadded image frame.
func ProjectChars(quad geometry.Quad, line ctc.DecodedLine, offsetX, offsetY int) ([]geometry.Quad, error) {
	if len(line.CharColumnIndex) != len(line.CharColumnWidth) {
		return nil, ocrerr.InvalidInput("charbox.ProjectChars", "%d column indices but %d widths",
			len(line.CharColumnIndex), len(line.CharColumnWidth))
	}
	if n := utf8.RuneCountInString(line.Text); n != len(line.CharColumnIndex) {
		return nil, ocrerr.InvalidInput("charbox.ProjectChars", "text has %d characters but %d column indices",
			n, len(line.CharColumnIndex))
	}

	proj, err := NewProjection(quad, line.TotalColumns)
	if err != nil {
		return nil, err
	}

	out := make([]geometry.Quad, len(line.CharColumnIndex))
	for k, col := range line.CharColumnIndex {
		out[k] = proj.Char(col, line.CharColumnWidth[k]).Translate(offsetX, offsetY)
	}
	return out, nil
}

func pt(x, y float64) geometry.Point {
	return geometry.Point{X: int(math.Round(x)), Y: int(math.Round(y))}
}
