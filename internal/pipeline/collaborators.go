package pipeline

import (
	"image"
	"image/draw"

	"github.com/ironsheep/ocrlite-mcp/internal/ctc"
	"github.com/ironsheep/ocrlite-mcp/internal/geometry"
)

// Detector finds candidate text regions in the padded image.
type Detector interface {
	DetectRegions(img image.Image, scale ScaleParam, boxScoreThresh, boxThresh, unClipRatio float64) ([]geometry.DetectedRegion, error)
}

// AngleClassifier decides, per crop, whether the crop is upside down. The
// result must be index-aligned with crops. regions[i] is the region crops[i]
// was cut from.
type AngleClassifier interface {
	ClassifyAngles(crops []image.Image, regions []geometry.DetectedRegion, doAngle, mostAngle bool) ([]AngleResult, error)
}

// Recognizer produces the class score matrix for one upright crop.
type Recognizer interface {
	Recognize(crop image.Image, region geometry.DetectedRegion) (ctc.ScoreMatrix, error)
}

// Cropper cuts regions out of the padded image.
type Cropper interface {
	CropAndDeskew(img image.Image, quad geometry.Quad) (image.Image, error)
	Rotate180(img image.Image) image.Image
}

// OverlayDrawer annotates a copy of the padded image. Drawing is best effort.
type OverlayDrawer interface {
	DrawOverlay(dst draw.Image, regions []geometry.DetectedRegion, thickness int)
	DrawCharMarker(dst draw.Image, p geometry.Point)
}

// VoteAngles applies the doAngle and mostAngle policies to raw per-crop
// verdicts. With doAngle false every region is upright. With mostAngle true
// every region takes the majority index; a tie keeps them upright.
// The returned slice is always a new slice.
func VoteAngles(angles []AngleResult, doAngle, mostAngle bool) []AngleResult {
	out := make([]AngleResult, len(angles))
	copy(out, angles)

	if !doAngle {
		for i := range out {
			out[i].Index = 0
		}
		return out
	}
	if !mostAngle || len(out) == 0 {
		return out
	}

	flipped := 0
	for _, a := range out {
		if a.Index == 1 {
			flipped++
		}
	}
	majority := 0
	if flipped*2 > len(out) {
		majority = 1
	}
	for i := range out {
		out[i].Index = majority
	}
	return out
}
