package geometry

import (
	"math"
	"sort"
)

type vec struct{ x, y float64 }

// MinAreaQuad returns the minimum-area rectangle enclosing q, with corners
// ordered top-left, top-right, bottom-right, bottom-left.
//
// # Algorithm
//
//  1. Convex hull of the four corners (monotone chain)
//  2. For each hull edge, project all hull points onto the edge direction
//     and its normal; the extents give a rectangle aligned with that edge
//  3. Keep the smallest rectangle and round its corners to pixels
//  4. Order corners: the two leftmost become top-left/bottom-left by y,
//     the two rightmost become top-right/bottom-right by y
//
// Collinear inputs fall back to the axis-aligned bounding rectangle.
func MinAreaQuad(q Quad) Quad {
	pts := make([]vec, 0, 4)
	for _, p := range q {
		pts = append(pts, vec{float64(p.X), float64(p.Y)})
	}

	boundingQuad := func() Quad {
		r := q.BoundingRect()
		return RectQuad(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1)
	}

	hull := convexHull(pts)
	if len(hull) < 3 {
		return boundingQuad()
	}

	bestArea := math.Inf(1)
	var best [4]vec
	for i := range hull {
		a := hull[i]
		b := hull[(i+1)%len(hull)]
		ex, ey := b.x-a.x, b.y-a.y
		l := math.Hypot(ex, ey)
		if l == 0 {
			continue
		}
		ux, uy := ex/l, ey/l // edge direction
		nx, ny := -uy, ux    // edge normal

		minU, maxU := math.Inf(1), math.Inf(-1)
		minN, maxN := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			u := p.x*ux + p.y*uy
			n := p.x*nx + p.y*ny
			minU, maxU = math.Min(minU, u), math.Max(maxU, u)
			minN, maxN = math.Min(minN, n), math.Max(maxN, n)
		}

		area := (maxU - minU) * (maxN - minN)
		if area < bestArea {
			bestArea = area
			corner := func(u, n float64) vec {
				return vec{u*ux + n*nx, u*uy + n*ny}
			}
			best = [4]vec{
				corner(minU, minN),
				corner(maxU, minN),
				corner(maxU, maxN),
				corner(minU, maxN),
			}
		}
	}

	if math.IsInf(bestArea, 1) {
		return boundingQuad()
	}

	sorted := best[:]
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].x < sorted[j].x
	})

	tl, bl := sorted[0], sorted[1]
	if sorted[1].y <= sorted[0].y {
		tl, bl = sorted[1], sorted[0]
	}
	tr, br := sorted[2], sorted[3]
	if sorted[3].y <= sorted[2].y {
		tr, br = sorted[3], sorted[2]
	}

	return Quad{round(tl), round(tr), round(br), round(bl)}
}

func round(v vec) Point {
	return Point{X: int(math.Round(v.x)), Y: int(math.Round(v.y))}
}

func cross(o, a, b vec) float64 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

// convexHull returns the hull in counter-clockwise order without collinear points.
func convexHull(pts []vec) []vec {
	p := make([]vec, len(pts))
	copy(p, pts)
	sort.Slice(p, func(i, j int) bool {
		if p[i].x == p[j].x {
			return p[i].y < p[j].y
		}
		return p[i].x < p[j].x
	})

	hull := make([]vec, 0, 2*len(p))
	for _, pt := range p {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	lower := len(hull) + 1
	for i := len(p) - 2; i >= 0; i-- {
		pt := p[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	return hull[:len(hull)-1]
}
