package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/ocrlite-mcp/internal/charbox"
	"github.com/ironsheep/ocrlite-mcp/internal/ctc"
	"github.com/ironsheep/ocrlite-mcp/internal/geometry"
	imgutil "github.com/ironsheep/ocrlite-mcp/internal/imaging"
	"github.com/ironsheep/ocrlite-mcp/internal/ocrerr"
	"github.com/ironsheep/ocrlite-mcp/internal/ordering"
)

// Collaborators bundles the external stages the engine drives. Overlay may
// be nil, in which case no annotated image is produced.
type Collaborators struct {
	Detector   Detector
	Classifier AngleClassifier
	Recognizer Recognizer
	Cropper    Cropper
	Overlay    OverlayDrawer
}

// Engine runs detection, ordering, orientation, recognition and character
// placement for one image at a time.
//
// An Engine holds no per-call state and may be shared, but each Detect call
// writes to its own overlay buffer.
type Engine struct {
	c       Collaborators
	decoder *ctc.Decoder
	logger  *slog.Logger
}

// NewEngine validates the collaborators and builds an engine. A nil logger
// uses slog.Default().
func NewEngine(c Collaborators, decoder *ctc.Decoder, logger *slog.Logger) (*Engine, error) {
	switch {
	case c.Detector == nil:
		return nil, fmt.Errorf("pipeline: detector is required")
	case c.Classifier == nil:
		return nil, fmt.Errorf("pipeline: angle classifier is required")
	case c.Recognizer == nil:
		return nil, fmt.Errorf("pipeline: recognizer is required")
	case c.Cropper == nil:
		return nil, fmt.Errorf("pipeline: cropper is required")
	case decoder == nil:
		return nil, fmt.Errorf("pipeline: decoder is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{c: c, decoder: decoder, logger: logger}, nil
}

// Detect recognizes all text in img, which must already be padded so that
// paddingRect locates the original image inside it.
//
// On any error no partial result is returned. A cancelled ctx is observed
// between regions and its error is returned unchanged.
func (e *Engine) Detect(ctx context.Context, img image.Image, paddingRect image.Rectangle, scale ScaleParam, p Params) (*OcrResult, error) {
	start := time.Now()
	e.logger.Debug("detect started",
		"src_width", scale.SrcWidth, "src_height", scale.SrcHeight,
		"dst_width", scale.DstWidth, "dst_height", scale.DstHeight,
		"ratio_width", scale.RatioWidth, "ratio_height", scale.RatioHeight)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detStart := time.Now()
	detected, err := e.c.Detector.DetectRegions(img, scale, p.BoxScoreThresh, p.BoxThresh, p.UnClipRatio)
	if err != nil {
		return nil, fmt.Errorf("failed to detect text regions: %w", err)
	}
	detMs := elapsedMs(detStart)
	e.logger.Debug("regions detected", "count", len(detected), "duration_ms", detMs)

	for i, r := range detected {
		if err := r.Quad.Validate(); err != nil {
			return nil, ocrerr.Wrap(ocrerr.CodeInvalidInput, "pipeline.Detect", err, "detected region %d", i)
		}
	}

	regions := ordering.SortRegions(detected)

	var overlay draw.Image
	if e.c.Overlay != nil {
		overlay = imaging.Clone(img)
		e.c.Overlay.DrawOverlay(overlay, regions, Thickness(img.Bounds()))
	}

	crops := make([]image.Image, len(regions))
	for i, r := range regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		crop, err := e.c.Cropper.CropAndDeskew(img, r.Quad)
		if err != nil {
			return nil, fmt.Errorf("failed to crop region %d: %w", i, err)
		}
		crops[i] = crop
	}

	angles, err := e.c.Classifier.ClassifyAngles(crops, regions, p.DoAngle, p.MostAngle)
	if err != nil {
		return nil, fmt.Errorf("failed to classify angles: %w", err)
	}
	if len(angles) != len(regions) {
		return nil, ocrerr.Desync("pipeline.Detect", "%d angle results for %d regions", len(angles), len(regions))
	}
	for i, a := range angles {
		e.logger.Debug("angle classified", "region", i, "index", a.Index, "score", a.Confidence, "duration_ms", a.ElapsedMs)
		if a.Index == 1 {
			crops[i] = e.c.Cropper.Rotate180(crops[i])
		}
	}

	lines := make([]ctc.DecodedLine, 0, len(crops))
	for i, crop := range crops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recStart := time.Now()
		scores, err := e.c.Recognizer.Recognize(crop, regions[i])
		if err != nil {
			return nil, fmt.Errorf("failed to recognize region %d: %w", i, err)
		}
		line, err := e.decoder.Decode(scores)
		if err != nil {
			return nil, fmt.Errorf("failed to decode region %d: %w", i, err)
		}
		line.ElapsedMs = elapsedMs(recStart)
		e.logger.Debug("text line decoded", "region", i, "text", line.Text, "scores", line.CharScores, "duration_ms", line.ElapsedMs)
		lines = append(lines, line)
	}

	blocks, err := assemble(regions, angles, lines, paddingRect.Min, e.c.Overlay, overlay)
	if err != nil {
		return nil, err
	}

	totalMs := elapsedMs(start)
	e.logger.Debug("detect finished", "blocks", len(blocks), "duration_ms", totalMs)

	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = b.Text
	}

	result := &OcrResult{
		DetectionElapsedMs: detMs,
		TextBlocks:         blocks,
		TotalElapsedMs:     totalMs,
		JoinedText:         strings.Join(texts, "\n"),
	}
	if overlay != nil {
		annotated, err := cropToOrigin(overlay, paddingRect)
		if err != nil {
			return nil, err
		}
		result.AnnotatedImage = annotated
	}
	return result, nil
}

// assemble builds one TextBlock per region. Region quads are in the padded
// frame; origin is subtracted from every output coordinate. When drawer and
// dst are both set, a marker is drawn on dst at each character centre in the
// padded frame.
func assemble(regions []geometry.DetectedRegion, angles []AngleResult, lines []ctc.DecodedLine,
	origin image.Point, drawer OverlayDrawer, dst draw.Image) ([]TextBlock, error) {
	if len(angles) != len(regions) || len(lines) != len(regions) {
		return nil, ocrerr.Desync("pipeline.assemble", "%d regions, %d angles, %d text lines",
			len(regions), len(angles), len(lines))
	}

	blocks := make([]TextBlock, len(regions))
	for i, r := range regions {
		line := lines[i]
		quad := r.Quad.Translate(origin.X, origin.Y)

		charQuads := []geometry.Quad{}
		if len(line.CharColumnIndex) > 0 {
			proj, err := charbox.NewProjection(r.Quad, line.TotalColumns)
			if err != nil {
				return nil, fmt.Errorf("region %d: %w", i, err)
			}
			charQuads, err = charbox.ProjectChars(r.Quad, line, origin.X, origin.Y)
			if err != nil {
				return nil, fmt.Errorf("region %d: %w", i, err)
			}
			if drawer != nil && dst != nil {
				for _, col := range line.CharColumnIndex {
					drawer.DrawCharMarker(dst, proj.Center(col))
				}
			}
		}

		blocks[i] = TextBlock{
			Quad:                 quad,
			DetectionConfidence:  r.Confidence,
			AngleIndex:           angles[i].Index,
			AngleConfidence:      angles[i].Confidence,
			AngleElapsedMs:       angles[i].ElapsedMs,
			Text:                 line.Text,
			CharScores:           line.CharScores,
			RecognitionElapsedMs: line.ElapsedMs,
			TotalElapsedMs:       angles[i].ElapsedMs + line.ElapsedMs,
			CharQuads:            charQuads,
			BoundingQuad:         geometry.MinAreaQuad(quad),
		}
	}
	return blocks, nil
}

// Thickness is the overlay stroke width for an image of the given bounds.
func Thickness(b image.Rectangle) int {
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	return side/1000 + 2
}

// cropToOrigin cuts the padding back off the overlay when the original image
// does not start at the origin.
func cropToOrigin(img image.Image, paddingRect image.Rectangle) (image.Image, error) {
	if paddingRect.Min.X <= 0 && paddingRect.Min.Y <= 0 {
		return img, nil
	}
	cropped, err := imgutil.CropRect(img, paddingRect)
	if err != nil {
		return nil, ocrerr.Wrap(ocrerr.CodeInvalidInput, "pipeline.Detect", err, "padding rect %v", paddingRect)
	}
	return cropped, nil
}

func elapsedMs(since time.Time) float64 {
	return float64(time.Since(since).Microseconds()) / 1000
}
