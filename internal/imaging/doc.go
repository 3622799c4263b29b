// Package imaging provides the pixel-level collaborators of the OCR pipeline:
// image loading and caching, padding, region cropping and deskewing,
// orientation correction, overlay drawing and PNG encoding.
//
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Padding
//
// Detection runs on a padded copy of the source so regions touching the
// border are still found. Pad returns that copy together with the rectangle
// the source occupies inside it; the pipeline subtracts the rectangle's
// origin from every reported coordinate.
//
// # Cropping
//
// Cropper.CropAndDeskew maps a possibly rotated quad onto an upright
// rectangle as wide as the quad's P0→P1 edge and as tall as its P0→P3 edge.
// Tall, narrow crops are turned on their side so vertical text reaches the
// recognizer horizontally. Cropper.Rotate180 puts upside-down crops upright.
//
// # Overlay
//
// Overlay outlines each region in its own colour (see Palette) and marks
// the centre of every recognized character with a small cross. Strokes are
// rasterized with anti-aliasing and clipped to the image.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Cropper and Overlay hold no mutable
// state; Overlay writes only to the image it is given.
package imaging
