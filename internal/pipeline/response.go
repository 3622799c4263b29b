package pipeline

import (
	"github.com/ironsheep/ocrlite-mcp/internal/geometry"
)

// Response is the compact, client-facing form of an OcrResult.
type Response struct {
	RequestID string       `json:"request_id"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Results   []Recognized `json:"results"`
}

// Recognized is one non-empty line of text in a Response.
type Recognized struct {
	Text        string      `json:"text"`
	BoundingBox BoundingBox `json:"bounding_box"`
	Box         []float64   `json:"box"` // region corners as x0,y0,...,x3,y3
	Chars       []CharInfo  `json:"chars"`
}

// BoundingBox is measured from the region's minimum-area bounding quad.
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CharInfo places one character of a Recognized line.
type CharInfo struct {
	Points []float64 `json:"points"`
	Char   string    `json:"char"`
}

// NewResponse converts result for an image of width x height. Blocks with
// empty text are dropped.
func NewResponse(result *OcrResult, width, height int, requestID string) *Response {
	resp := &Response{
		RequestID: requestID,
		Width:     width,
		Height:    height,
		Results:   []Recognized{},
	}
	if result == nil {
		return resp
	}

	for _, b := range result.TextBlocks {
		if b.Text == "" {
			continue
		}
		resp.Results = append(resp.Results, Recognized{
			Text:        b.Text,
			BoundingBox: boundingBox(b.BoundingQuad),
			Box:         b.Quad.Flatten(),
			Chars:       charInfos(b),
		})
	}
	return resp
}

func boundingBox(q geometry.Quad) BoundingBox {
	return BoundingBox{
		Left:   float64(q[0].X),
		Top:    float64(q[0].Y),
		Width:  float64(q[1].X - q[0].X),
		Height: float64(q[3].Y - q[0].Y),
	}
}

func charInfos(b TextBlock) []CharInfo {
	chars := []rune(b.Text)
	out := make([]CharInfo, 0, len(b.CharQuads))
	for i, q := range b.CharQuads {
		if i >= len(chars) {
			break
		}
		out = append(out, CharInfo{Points: q.Flatten(), Char: string(chars[i])})
	}
	return out
}
