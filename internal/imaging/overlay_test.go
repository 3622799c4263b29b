package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/ocrlite-mcp/internal/geometry"
)

func whiteCanvas(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	return img
}

func isWhite(img image.Image, x, y int) bool {
	r, g, b := rgbAt(img, x, y)
	return r == 255 && g == 255 && b == 255
}

func TestDrawOverlay(t *testing.T) {
	dst := whiteCanvas(50, 50)
	regions := []geometry.DetectedRegion{{Quad: geometry.RectQuad(10, 10, 40, 40), Confidence: 0.9}}

	NewOverlay().DrawOverlay(dst, regions, 2)

	for _, p := range []image.Point{{10, 25}, {40, 25}, {25, 10}, {25, 40}} {
		if isWhite(dst, p.X, p.Y) {
			t.Errorf("edge pixel %v should be painted", p)
		}
	}
	if !isWhite(dst, 25, 25) {
		t.Error("interior should stay untouched")
	}
	if !isWhite(dst, 2, 2) {
		t.Error("pixels far from the outline should stay untouched")
	}
}

func TestDrawOverlay_PartlyOutside(t *testing.T) {
	dst := whiteCanvas(20, 20)
	regions := []geometry.DetectedRegion{{Quad: geometry.RectQuad(-10, 5, 30, 15)}}

	NewOverlay().DrawOverlay(dst, regions, 3)

	if isWhite(dst, 10, 5) {
		t.Error("visible part of the outline should be painted")
	}
}

func TestDrawCharMarker(t *testing.T) {
	dst := whiteCanvas(50, 50)
	NewOverlay().DrawCharMarker(dst, geometry.Point{X: 25, Y: 25})

	r, g, b := rgbAt(dst, 25, 25)
	if r < 200 || g > 50 || b > 50 {
		t.Errorf("marker centre should be red, got (%d,%d,%d)", r, g, b)
	}
	if isWhite(dst, 22, 25) || isWhite(dst, 25, 28) {
		t.Error("cross arms should be painted")
	}
	if !isWhite(dst, 22, 22) {
		t.Error("diagonal should stay untouched")
	}
}

func TestPalette(t *testing.T) {
	if got := Palette(0); len(got) != 0 {
		t.Errorf("Palette(0) should be empty, got %d", len(got))
	}

	colors := Palette(4)
	if len(colors) != 4 {
		t.Fatalf("Palette(4): got %d colours", len(colors))
	}
	seen := make(map[color.Color]bool)
	for _, c := range colors {
		if seen[c] {
			t.Errorf("duplicate colour %v", c)
		}
		seen[c] = true
	}
}
