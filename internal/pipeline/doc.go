// Package pipeline assembles the OCR result for one image from its external
// stages: region detection, orientation classification and recognition.
//
// # Stages
//
// Engine.Detect runs, strictly in order:
//  1. Detector.DetectRegions on the padded image
//  2. ordering.SortRegions into reading order
//  3. OverlayDrawer.DrawOverlay on a copy of the padded image (optional)
//  4. Cropper.CropAndDeskew for every region
//  5. AngleClassifier.ClassifyAngles, rotating crops with index 1 by 180°
//  6. Recognizer.Recognize and CTC decoding for every crop
//  7. charbox.ProjectChars and TextBlock assembly in the unpadded frame
//
// Regions, angle results and decoded lines stay index-aligned throughout.
// A collaborator that returns the wrong number of results aborts the call
// with ocrerr.ErrPipelineDesync and nothing is returned.
//
// # Padding
//
// Callers pad the source image (see imaging.Pad) and pass the rectangle the
// original occupies inside the padded image. Every output coordinate has the
// rectangle's origin subtracted, and the annotated image is cropped back to
// it when the origin is not (0, 0).
//
// # Fixtures
//
// Fixture replays precomputed detector, angle and recognizer output from
// JSON, so the assembly stages can run without inference models.
package pipeline
