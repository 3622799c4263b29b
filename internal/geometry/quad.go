package geometry

import (
	"image"
	"math"

	"github.com/ironsheep/ocrlite-mcp/internal/ocrerr"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Sub returns p translated by (-dx, -dy).
func (p Point) Sub(dx, dy int) Point {
	return Point{X: p.X - dx, Y: p.Y - dy}
}

// Quad is a possibly rotated quadrilateral with four ordered corners.
//
// Conventionally P[0] is top-left, P[1] top-right, P[2] bottom-right and
// P[3] bottom-left when the region is not rotated.
type Quad [4]Point

// NewQuad builds a quad from four (x, y) pairs in corner order.
func NewQuad(x0, y0, x1, y1, x2, y2, x3, y3 int) Quad {
	return Quad{{x0, y0}, {x1, y1}, {x2, y2}, {x3, y3}}
}

// RectQuad returns the axis-aligned quad covering x in [x1, x2] and y in [y1, y2].
func RectQuad(x1, y1, x2, y2 int) Quad {
	return NewQuad(x1, y1, x2, y1, x2, y2, x1, y2)
}

// Validate rejects quads with co-located corners or zero enclosed area.
func (q Quad) Validate() error {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if q[i] == q[j] {
				return ocrerr.InvalidInput("geometry.Quad", "corners %d and %d coincide at (%d,%d)",
					i, j, q[i].X, q[i].Y)
			}
		}
	}
	if q.doubleArea() == 0 {
		return ocrerr.InvalidInput("geometry.Quad", "corners %v enclose no area", q.Flatten())
	}
	return nil
}

// doubleArea is twice the signed shoelace area of the corner polygon.
func (q Quad) doubleArea() int {
	a := 0
	for i := 0; i < 4; i++ {
		p, n := q[i], q[(i+1)%4]
		a += p.X*n.Y - n.X*p.Y
	}
	return a
}

// BoundingRect returns the axis-aligned bounding rectangle of the corners.
// Max is exclusive, matching image.Rectangle.
func (q Quad) BoundingRect() image.Rectangle {
	minX, minY := q[0].X, q[0].Y
	maxX, maxY := q[0].X, q[0].Y
	for _, p := range q[1:] {
		minX = minInt(minX, p.X)
		minY = minInt(minY, p.Y)
		maxX = maxInt(maxX, p.X)
		maxY = maxInt(maxY, p.Y)
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// MinX returns the smallest x coordinate among the corners.
func (q Quad) MinX() int {
	m := q[0].X
	for _, p := range q[1:] {
		m = minInt(m, p.X)
	}
	return m
}

// Translate returns q shifted by (-dx, -dy).
func (q Quad) Translate(dx, dy int) Quad {
	var out Quad
	for i, p := range q {
		out[i] = p.Sub(dx, dy)
	}
	return out
}

// LongSide returns the vector and Euclidean length of the P0→P1 edge.
func (q Quad) LongSide() (dx, dy, length float64) {
	dx = float64(q[1].X - q[0].X)
	dy = float64(q[1].Y - q[0].Y)
	return dx, dy, math.Hypot(dx, dy)
}

// Flatten returns the corners as [x0, y0, x1, y1, ...].
func (q Quad) Flatten() []float64 {
	out := make([]float64, 0, 8)
	for _, p := range q {
		out = append(out, float64(p.X), float64(p.Y))
	}
	return out
}

// DetectedRegion is a quad believed to contain one line of text, with the
// detector's confidence score.
type DetectedRegion struct {
	Quad       Quad    `json:"quad"`
	Confidence float64 `json:"confidence"`
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
