package detection

import (
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/ocrlite-mcp/internal/geometry"
	"github.com/ironsheep/ocrlite-mcp/internal/ocrerr"
	"github.com/ironsheep/ocrlite-mcp/internal/pipeline"
)

// Window is a sliding-window size in detector pixels.
type Window struct {
	W, H int
}

// DefaultWindows covers small to large text at typical screen resolutions.
var DefaultWindows = []Window{
	{100, 30}, // Small text
	{150, 40}, // Medium text
	{200, 50}, // Large text
	{80, 25},  // Very small text
}

// TextRegion is a candidate text area in detector coordinates.
type TextRegion struct {
	Bounds     image.Rectangle `json:"bounds"`
	Confidence float64         `json:"confidence"`
}

// TextDetector finds text by edge density. It implements pipeline.Detector.
type TextDetector struct {
	// Windows are the sliding-window sizes scanned over the edge map.
	Windows []Window

	// MinDensity and MaxDensity bound the fraction of edge pixels a window
	// may contain. Text is neither sparse nor solid.
	MinDensity float64
	MaxDensity float64
}

// NewTextDetector returns a detector using DefaultWindows and a 5%-40%
// density band.
func NewTextDetector() *TextDetector {
	return &TextDetector{
		Windows:    DefaultWindows,
		MinDensity: 0.05,
		MaxDensity: 0.4,
	}
}

// DetectRegions resizes img to the scale's destination size, scores windows of
// the Sobel edge map, merges overlapping hits and returns them as
// axis-aligned quads in img coordinates.
//
// boxThresh is the edge magnitude (0-1) a pixel needs to count as an edge,
// boxScoreThresh the confidence a window needs to be kept. Each merged box is
// shrunk to the edges it contains and then grown by area*unClipRatio/perimeter
// on every side. A non-positive unClipRatio disables the growth.
func (d *TextDetector) DetectRegions(img image.Image, scale pipeline.ScaleParam, boxScoreThresh, boxThresh, unClipRatio float64) ([]geometry.DetectedRegion, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, ocrerr.InvalidInput("detection.DetectRegions", "image is empty")
	}

	work := img
	ratioW, ratioH := 1.0, 1.0
	if scale.DstWidth > 0 && scale.DstHeight > 0 &&
		(scale.DstWidth != bounds.Dx() || scale.DstHeight != bounds.Dy()) {
		work = imaging.Resize(img, scale.DstWidth, scale.DstHeight, imaging.Linear)
		ratioW = float64(scale.DstWidth) / float64(bounds.Dx())
		ratioH = float64(scale.DstHeight) / float64(bounds.Dy())
	}

	edges := EdgeMap(work, boxThresh)
	candidates := d.scan(edges, boxScoreThresh)
	merged := mergeOverlappingRegions(candidates)

	frame := image.Rect(0, 0, len(edges[0]), len(edges))
	regions := make([]geometry.DetectedRegion, 0, len(merged))
	for _, m := range merged {
		r, ok := trimToEdges(edges, m.Bounds)
		if !ok {
			continue
		}
		r = unclip(r, unClipRatio).Intersect(frame)

		src := toSource(r, ratioW, ratioH).Intersect(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		if src.Dx() < 2 || src.Dy() < 2 {
			continue
		}
		src = src.Add(bounds.Min)
		regions = append(regions, geometry.DetectedRegion{
			Quad:       geometry.RectQuad(src.Min.X, src.Min.Y, src.Max.X-1, src.Max.Y-1),
			Confidence: m.Confidence,
		})
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Confidence > regions[j].Confidence
	})
	return regions, nil
}

// EdgeMap returns a [y][x] grid marking pixels whose Sobel magnitude reaches
// level (0-1). The grid is indexed from the image's top-left corner.
func EdgeMap(img image.Image, level float64) [][]bool {
	threshold := uint8(math.Round(clamp01(level) * 255))
	if threshold == 0 {
		threshold = 1
	}
	mask := segment.Threshold(effect.Sobel(effect.Grayscale(img)), threshold)

	b := mask.Bounds()
	edges := make([][]bool, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		edges[y] = make([]bool, b.Dx())
		for x := 0; x < b.Dx(); x++ {
			edges[y][x] = mask.GrayAt(b.Min.X+x, b.Min.Y+y).Y > 0
		}
	}
	return edges
}

func (d *TextDetector) scan(edges [][]bool, minConfidence float64) []TextRegion {
	height := len(edges)
	if height == 0 {
		return nil
	}
	width := len(edges[0])

	windows := d.Windows
	if len(windows) == 0 {
		windows = DefaultWindows
	}

	candidates := make([]TextRegion, 0)
	for _, ws := range windows {
		stepX := maxInt(ws.W/2, 1)
		stepY := maxInt(ws.H/2, 1)

		for y := 0; y <= height-ws.H; y += stepY {
			for x := 0; x <= width-ws.W; x += stepX {
				edgeCount := 0
				for wy := 0; wy < ws.H; wy++ {
					for wx := 0; wx < ws.W; wx++ {
						if edges[y+wy][x+wx] {
							edgeCount++
						}
					}
				}

				density := float64(edgeCount) / float64(ws.W*ws.H)
				if density < d.MinDensity || density > d.MaxDensity {
					continue
				}

				confidence := calculateHorizontalScore(edges, x, y, ws.W, ws.H) * (1.0 - math.Abs(density-0.2)/0.2)
				if confidence >= minConfidence {
					candidates = append(candidates, TextRegion{
						Bounds:     image.Rect(x, y, x+ws.W, y+ws.H),
						Confidence: math.Round(confidence*1000) / 1000,
					})
				}
			}
		}
	}
	return candidates
}

// calculateHorizontalScore is the share of edge runs that run along rows.
// Glyph strokes cut each row into many short runs.
func calculateHorizontalScore(edges [][]bool, x, y, w, h int) float64 {
	horizontalRuns := 0
	verticalRuns := 0

	for row := y; row < y+h; row++ {
		inRun := false
		for col := x; col < x+w; col++ {
			if edges[row][col] {
				if !inRun {
					horizontalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	for col := x; col < x+w; col++ {
		inRun := false
		for row := y; row < y+h; row++ {
			if edges[row][col] {
				if !inRun {
					verticalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	if horizontalRuns+verticalRuns == 0 {
		return 0
	}
	return float64(horizontalRuns) / float64(horizontalRuns+verticalRuns)
}

// mergeOverlappingRegions unions overlapping regions until no two overlap.
// A merged region keeps the highest confidence of its parts.
func mergeOverlappingRegions(regions []TextRegion) []TextRegion {
	merged := make([]TextRegion, 0, len(regions))
	for _, r := range regions {
		merged = append(merged, r)
		for absorbed := true; absorbed; {
			absorbed = false
			last := len(merged) - 1
			for i := 0; i < last; i++ {
				if merged[i].Bounds.Overlaps(merged[last].Bounds) {
					merged[i].Bounds = merged[i].Bounds.Union(merged[last].Bounds)
					merged[i].Confidence = math.Max(merged[i].Confidence, merged[last].Confidence)
					merged[last] = merged[i]
					merged = append(merged[:i], merged[i+1:]...)
					absorbed = true
					break
				}
			}
		}
	}
	return merged
}

// trimToEdges shrinks r to the bounding box of the edge pixels inside it.
func trimToEdges(edges [][]bool, r image.Rectangle) (image.Rectangle, bool) {
	minX, minY := r.Max.X, r.Max.Y
	maxX, maxY := r.Min.X-1, r.Min.Y-1
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if edges[y][x] {
				minX, maxX = minInt(minX, x), maxInt(maxX, x)
				minY, maxY = minInt(minY, y), maxInt(maxY, y)
			}
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// unclip grows r on every side by area*ratio/perimeter.
func unclip(r image.Rectangle, ratio float64) image.Rectangle {
	if ratio <= 0 || r.Empty() {
		return r
	}
	area := float64(r.Dx() * r.Dy())
	perimeter := float64(2 * (r.Dx() + r.Dy()))
	d := int(math.Round(area * ratio / perimeter))
	return r.Inset(-d)
}

// toSource maps a detector rectangle back to source pixels, rounding outward.
func toSource(r image.Rectangle, ratioW, ratioH float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(float64(r.Min.X)/ratioW)),
		int(math.Floor(float64(r.Min.Y)/ratioH)),
		int(math.Ceil(float64(r.Max.X)/ratioW)),
		int(math.Ceil(float64(r.Max.Y)/ratioH)),
	)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
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
