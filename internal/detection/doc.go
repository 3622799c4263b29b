// Package detection provides a model-free text region detector.
//
// TextDetector stands in for a neural detection network when none is
// available. It looks for areas whose edges have the density and structure
// of a line of glyphs and reports them as axis-aligned quads, so its output
// can feed the same sorting, cropping and recognition stages as a real
// detector.
//
// # Algorithm Overview
//
//  1. Resize: scale the input to the ScaleParam destination size
//  2. Edge Detection: grayscale + Sobel magnitude, thresholded at boxThresh
//  3. Windowing: slide windows of several sizes over the edge map and score
//     each by edge density and the share of row-wise edge runs
//  4. Merging: union overlapping windows scoring at least boxScoreThresh
//  5. Boxing: trim each union to its edges, grow it by unClipRatio and map
//     it back to source coordinates
//
// # Coordinate System
//
// Returned quads use the input image's own coordinates, with corners in
// top-left, top-right, bottom-right, bottom-left order. Corners are
// inclusive pixel positions.
//
// # Confidence Scores
//
// Confidence is a heuristic in [0, 1]: the horizontal run share weighted by
// how close the window's edge density is to 20%. It is comparable between
// windows of one image, not a calibrated probability.
//
// # Limitations
//
// The detector works best on clean, high-contrast, horizontal text such as
// screenshots and scanned documents. It never reports rotated quads, and
// photographs or dense textures produce false positives.
package detection
