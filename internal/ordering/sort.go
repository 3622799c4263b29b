// Package ordering arranges detected text regions into natural reading order:
// top-to-bottom lines, left-to-right within a line.
//
// Regions are clustered into lines before sorting because rotated or skewed
// regions defeat plain row binning. A region joins the first existing line
// whose seed region starts within half the seed's height of it, unless its
// bounding box overlaps a region already in that line; overlapping regions
// belong to different lines even when they are vertically close.
package ordering

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/ocrlite-mcp/internal/geometry"
)

// line is a transient cluster of regions sharing one visual text line.
type line struct {
	members   []geometry.DetectedRegion
	boxes     []image.Rectangle
	threshold float64 // half the seed region's bounding-box height
}

func newLine(r geometry.DetectedRegion, box image.Rectangle) *line {
	return &line{
		members:   []geometry.DetectedRegion{r},
		boxes:     []image.Rectangle{box},
		threshold: float64(box.Dy()) / 2,
	}
}

// accepts reports whether a region with bounding box box belongs on l.
func (l *line) accepts(box image.Rectangle) bool {
	for _, b := range l.boxes {
		if b.Overlaps(box) {
			return false
		}
	}
	dist := math.Abs(float64(box.Min.Y - l.boxes[0].Min.Y))
	return dist <= l.threshold
}

func (l *line) add(r geometry.DetectedRegion, box image.Rectangle) {
	l.members = append(l.members, r)
	l.boxes = append(l.boxes, box)
}

// SortRegions returns regions in reading order. The input slice is not
// modified, and regions that compare equal keep their input order.
func SortRegions(regions []geometry.DetectedRegion) []geometry.DetectedRegion {
	if len(regions) == 0 {
		return []geometry.DetectedRegion{}
	}

	lines := []*line{newLine(regions[0], regions[0].Quad.BoundingRect())}

	for _, r := range regions[1:] {
		box := r.Quad.BoundingRect()

		placed := false
		for _, l := range lines {
			if l.accepts(box) {
				l.add(r, box)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, newLine(r, box))
		}
	}

	for _, l := range lines {
		sort.Stable(byMinX(l.members))
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return CompareTop(lines[i].members[0], lines[j].members[0]) < 0
	})

	out := make([]geometry.DetectedRegion, 0, len(regions))
	for _, l := range lines {
		out = append(out, l.members...)
	}
	return out
}

// CompareMinX orders two regions by the smallest x of their corners,
// returning -1, 0 or +1.
func CompareMinX(a, b geometry.DetectedRegion) int {
	return compareInts(a.Quad.MinX(), b.Quad.MinX())
}

// CompareTop orders two regions by the top of their bounding boxes,
// returning -1, 0 or +1.
func CompareTop(a, b geometry.DetectedRegion) int {
	return compareInts(a.Quad.BoundingRect().Min.Y, b.Quad.BoundingRect().Min.Y)
}

type byMinX []geometry.DetectedRegion

func (s byMinX) Len() int           { return len(s) }
func (s byMinX) Less(i, j int) bool { return CompareMinX(s[i], s[j]) < 0 }
func (s byMinX) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
