package charbox

import (
	"errors"
	"math"
	"testing"

	"github.com/ironsheep/ocrlite-mcp/internal/ctc"
	"github.com/ironsheep/ocrlite-mcp/internal/geometry"
	"github.com/ironsheep/ocrlite-mcp/internal/ocrerr"
)

func TestProjectChars_SingleCharFullWidth(t *testing.T) {
	quad := geometry.RectQuad(20, 30, 220, 70)
	// one character centred at column 2 with width 4 over 4 columns
	line := ctc.DecodedLine{
		Text:            "W",
		CharScores:      []float64{0.9},
		CharColumnIndex: []int{2},
		CharColumnWidth: []int{4},
		TotalColumns:    4,
	}

	got, err := ProjectChars(quad, line, 0, 0)
	if err != nil {
		t.Fatalf("ProjectChars failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d quads, want 1", len(got))
	}
	if got[0] != quad {
		t.Errorf("char quad %v should coincide with region %v", got[0], quad)
	}
}

func TestProjectChars_SplitsEvenly(t *testing.T) {
	quad := geometry.RectQuad(0, 0, 100, 20)
	line := ctc.DecodedLine{
		Text:            "ab",
		CharScores:      []float64{0.9, 0.8},
		CharColumnIndex: []int{1, 3},
		CharColumnWidth: []int{2, 2},
		TotalColumns:    4,
	}

	got, err := ProjectChars(quad, line, 0, 0)
	if err != nil {
		t.Fatalf("ProjectChars failed: %v", err)
	}

	want := []geometry.Quad{
		geometry.RectQuad(0, 0, 50, 20),
		geometry.RectQuad(50, 0, 100, 20),
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("char %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestProjectChars_PaddingOffset(t *testing.T) {
	quad := geometry.RectQuad(50, 60, 150, 80)
	line := ctc.DecodedLine{
		Text:            "x",
		CharColumnIndex: []int{1},
		CharColumnWidth: []int{2},
		CharScores:      []float64{1},
		TotalColumns:    2,
	}

	got, err := ProjectChars(quad, line, 50, 50)
	if err != nil {
		t.Fatalf("ProjectChars failed: %v", err)
	}
	want := geometry.RectQuad(0, 10, 100, 30)
	if got[0] != want {
		t.Errorf("got %v, want %v", got[0], want)
	}
}

func TestProjectChars_Rotated(t *testing.T) {
	tests := []struct {
		name string
		quad geometry.Quad
	}{
		// 3-4-5 slope so the corners land on whole pixels
		{"clockwise", geometry.NewQuad(0, 0, 80, 60, 68, 76, -12, 16)},
		{"counter-clockwise", geometry.NewQuad(0, 60, 80, 0, 92, 16, 12, 76)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := ctc.DecodedLine{
				Text:            "ab",
				CharColumnIndex: []int{1, 3},
				CharColumnWidth: []int{2, 2},
				CharScores:      []float64{1, 1},
				TotalColumns:    4,
			}
			got, err := ProjectChars(tt.quad, line, 0, 0)
			if err != nil {
				t.Fatalf("ProjectChars failed: %v", err)
			}

			// first char starts at P0/P3, last char ends at P1/P2
			if got[0][0] != tt.quad[0] || got[0][3] != tt.quad[3] {
				t.Errorf("first char %v should start at region corners %v, %v", got[0], tt.quad[0], tt.quad[3])
			}
			if got[1][1] != tt.quad[1] || got[1][2] != tt.quad[2] {
				t.Errorf("last char %v should end at region corners %v, %v", got[1], tt.quad[1], tt.quad[2])
			}
			// characters share their boundary
			if got[0][1] != got[1][0] || got[0][2] != got[1][3] {
				t.Errorf("adjacent chars should share an edge: %v %v", got[0], got[1])
			}
		})
	}
}

func TestNewProjection_UnitCircle(t *testing.T) {
	quads := []geometry.Quad{
		geometry.RectQuad(0, 0, 100, 20),
		geometry.NewQuad(0, 0, 80, 60, 68, 76, -12, 16),
		geometry.NewQuad(0, 60, 80, 0, 92, 16, 12, 76),
		geometry.NewQuad(5, 5, 17, 9, 15, 30, 3, 26),
		geometry.NewQuad(10, 100, 10, 0, 40, 0, 40, 100),
	}

	for _, q := range quads {
		p, err := NewProjection(q, 10)
		if err != nil {
			t.Fatalf("NewProjection(%v) failed: %v", q, err)
		}
		sum := p.AngleCos*p.AngleCos + p.AngleSin*p.AngleSin
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("quad %v: cos²+sin² = %v, want 1", q, sum)
		}
	}
}

func TestNewProjection_Factor(t *testing.T) {
	down, err := NewProjection(geometry.NewQuad(0, 0, 80, 60, 68, 76, -12, 16), 4)
	if err != nil {
		t.Fatalf("NewProjection failed: %v", err)
	}
	if down.Factor != 1 {
		t.Errorf("descending edge: factor got %v, want 1", down.Factor)
	}

	up, err := NewProjection(geometry.NewQuad(0, 60, 80, 0, 92, 16, 12, 76), 4)
	if err != nil {
		t.Fatalf("NewProjection failed: %v", err)
	}
	if up.Factor != -1 {
		t.Errorf("ascending edge: factor got %v, want -1", up.Factor)
	}
}

func TestProjection_Center(t *testing.T) {
	p, err := NewProjection(geometry.RectQuad(0, 0, 100, 20), 10)
	if err != nil {
		t.Fatalf("NewProjection failed: %v", err)
	}
	got := p.Center(5)
	if got != (geometry.Point{X: 50, Y: 10}) {
		t.Errorf("Center(5) = %v, want (50,10)", got)
	}
}

func TestProjectChars_InvalidInput(t *testing.T) {
	good := geometry.RectQuad(0, 0, 100, 20)
	line := ctc.DecodedLine{
		Text:            "a",
		CharColumnIndex: []int{1},
		CharColumnWidth: []int{1},
		CharScores:      []float64{1},
		TotalColumns:    1,
	}

	tests := []struct {
		name string
		quad geometry.Quad
		line ctc.DecodedLine
	}{
		{"degenerate quad", geometry.NewQuad(0, 0, 0, 0, 10, 10, 0, 10), line},
		{"zero columns", good, ctc.DecodedLine{TotalColumns: 0}},
		{"misaligned columns", good, ctc.DecodedLine{
			CharColumnIndex: []int{1, 2},
			CharColumnWidth: []int{1},
			TotalColumns:    2,
		}},
		{"text longer than columns", good, ctc.DecodedLine{
			Text:            "ab",
			CharColumnIndex: []int{1},
			CharColumnWidth: []int{2},
			TotalColumns:    2,
		}},
		{"columns without text", good, ctc.DecodedLine{
			CharColumnIndex: []int{1},
			CharColumnWidth: []int{1},
			TotalColumns:    1,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ProjectChars(tt.quad, tt.line, 0, 0)
			if !errors.Is(err, ocrerr.ErrInvalidInput) {
				t.Errorf("expected InvalidInput, got %v", err)
			}
		})
	}
}

func TestProjectChars_DecoderOutput(t *testing.T) {
	// blank, a, blank, blank, b, blank over 6 columns
	const classes = 4
	argmax := []int{0, 1, 0, 0, 2, 0}
	data := make([]float32, len(argmax)*classes)
	for i, c := range argmax {
		data[i*classes+c] = 1
	}
	line, err := ctc.Decode(data, []string{"a", "b"}, len(argmax), classes)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	quad := geometry.RectQuad(0, 0, 120, 30)
	got, err := ProjectChars(quad, line, 0, 0)
	if err != nil {
		t.Fatalf("ProjectChars failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d quads, want 2", len(got))
	}
	if got[0][1].X > got[1][0].X {
		t.Errorf("first char should lie left of second: %v %v", got[0], got[1])
	}
	for i, q := range got {
		if q[0].Y != 0 || q[3].Y != 30 {
			t.Errorf("char %d should span the region height, got %v", i, q)
		}
	}
}
