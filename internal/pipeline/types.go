package pipeline

import (
	"image"

	"github.com/ironsheep/ocrlite-mcp/internal/geometry"
	"github.com/ironsheep/ocrlite-mcp/internal/ocrerr"
)

// ScaleParam describes how the detector input is resized from the padded
// source image.
type ScaleParam struct {
	SrcWidth    int     `json:"src_width"`
	SrcHeight   int     `json:"src_height"`
	DstWidth    int     `json:"dst_width"`
	DstHeight   int     `json:"dst_height"`
	RatioWidth  float64 `json:"ratio_width"`
	RatioHeight float64 `json:"ratio_height"`
}

// NewScaleParam scales the longer side of a srcWidth x srcHeight image to
// maxSideLen and rounds both destination sides down to a multiple of 32,
// never below 32. A maxSideLen of zero uses the longer source side.
func NewScaleParam(srcWidth, srcHeight, maxSideLen int) (ScaleParam, error) {
	if srcWidth <= 0 || srcHeight <= 0 {
		return ScaleParam{}, ocrerr.InvalidInput("pipeline.NewScaleParam", "image size %dx%d is empty", srcWidth, srcHeight)
	}
	if maxSideLen < 0 {
		return ScaleParam{}, ocrerr.InvalidInput("pipeline.NewScaleParam", "negative maxSideLen %d", maxSideLen)
	}

	longSide := srcWidth
	if srcHeight > longSide {
		longSide = srcHeight
	}
	if maxSideLen == 0 {
		maxSideLen = longSide
	}

	dstWidth := align32(srcWidth * maxSideLen / longSide)
	dstHeight := align32(srcHeight * maxSideLen / longSide)

	return ScaleParam{
		SrcWidth:    srcWidth,
		SrcHeight:   srcHeight,
		DstWidth:    dstWidth,
		DstHeight:   dstHeight,
		RatioWidth:  float64(dstWidth) / float64(srcWidth),
		RatioHeight: float64(dstHeight) / float64(srcHeight),
	}, nil
}

func align32(n int) int {
	n -= n % 32
	if n < 32 {
		n = 32
	}
	return n
}

// Params are the per-call tuning knobs passed through to the collaborators.
type Params struct {
	BoxScoreThresh float64 `json:"box_score_thresh"`
	BoxThresh      float64 `json:"box_thresh"`
	UnClipRatio    float64 `json:"unclip_ratio"`
	DoAngle        bool    `json:"do_angle"`
	MostAngle      bool    `json:"most_angle"`
}

// DefaultParams matches the tuning used for interactive detection.
func DefaultParams() Params {
	return Params{
		BoxScoreThresh: 0.5,
		BoxThresh:      0.3,
		UnClipRatio:    1.6,
		DoAngle:        true,
		MostAngle:      true,
	}
}

// QuickSettings returns the padding, maxSideLen and tuning used for one-shot
// request/response detection: no padding, and large images shrunk to 60% of
// their longer side.
func QuickSettings(width, height int) (padding, maxSideLen int, p Params) {
	maxSideLen = width
	if height > maxSideLen {
		maxSideLen = height
	}
	if maxSideLen >= 960 {
		maxSideLen = maxSideLen * 3 / 5
	}
	return 0, maxSideLen, Params{
		BoxScoreThresh: 0.35,
		BoxThresh:      0.85,
		UnClipRatio:    1.5,
		DoAngle:        true,
		MostAngle:      true,
	}
}

// AngleResult is the orientation verdict for one cropped region. Index 1
// means the crop is upside down.
type AngleResult struct {
	Index      int     `json:"index"`
	Confidence float64 `json:"confidence"`
	ElapsedMs  float64 `json:"elapsed_ms"`
}

// TextBlock is one recognized region in reading order. Coordinates are in
// the unpadded source frame.
type TextBlock struct {
	Quad                 geometry.Quad   `json:"quad"`
	DetectionConfidence  float64         `json:"detection_confidence"`
	AngleIndex           int             `json:"angle_index"`
	AngleConfidence      float64         `json:"angle_confidence"`
	AngleElapsedMs       float64         `json:"angle_elapsed_ms"`
	Text                 string          `json:"text"`
	CharScores           []float64       `json:"char_scores"`
	RecognitionElapsedMs float64         `json:"recognition_elapsed_ms"`
	TotalElapsedMs       float64         `json:"total_elapsed_ms"`
	CharQuads            []geometry.Quad `json:"char_quads"`
	BoundingQuad         geometry.Quad   `json:"bounding_quad"`
}

// OcrResult is the terminal output of Engine.Detect.
type OcrResult struct {
	DetectionElapsedMs float64     `json:"detection_elapsed_ms"`
	TextBlocks         []TextBlock `json:"text_blocks"`
	TotalElapsedMs     float64     `json:"total_elapsed_ms"`
	JoinedText         string      `json:"joined_text"`

	// AnnotatedImage is the overlay, cropped back to the unpadded frame.
	AnnotatedImage image.Image `json:"-"`
}
