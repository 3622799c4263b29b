// Package geometry provides the integer geometry shared by the OCR assembly
// stages: points, four-corner text quads and detected regions.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Quads
//
// A Quad holds four ordered corners. For an unrotated region the order is
// top-left, top-right, bottom-right, bottom-left; rotated regions keep the
// same winding, so P0→P1 is always the reading direction edge and P3 sits
// below P0.
//
// Axis-aligned bounding rectangles are returned as image.Rectangle with an
// exclusive Max, so a quad whose corners span x in [10, 20] has a bounding
// rectangle of width 11.
package geometry
