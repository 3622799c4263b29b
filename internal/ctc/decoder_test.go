package ctc

import (
	"errors"
	"reflect"
	"testing"
	"unicode/utf8"

	"github.com/ironsheep/ocrlite-mcp/internal/ocrerr"
)

// winScore is the score of the winning class at timestep t, distinct per
// timestep so confidences can be told apart.
func winScore(t int) float32 {
	return 0.5 + 0.01*float32(t)
}

// matrixFromArgMax builds a score matrix whose per-row maximum sits at the
// given class index.
func matrixFromArgMax(argmax []int, numClasses int) ScoreMatrix {
	data := make([]float32, len(argmax)*numClasses)
	for t, c := range argmax {
		for k := 0; k < numClasses; k++ {
			data[t*numClasses+k] = 0.01
		}
		data[t*numClasses+c] = winScore(t)
	}
	return ScoreMatrix{Data: data, Timesteps: len(argmax), NumClasses: numClasses}
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func TestDecode_ConcreteCase(t *testing.T) {
	m := matrixFromArgMax([]int{0, 1, 1, 2}, 4)

	line, err := Decode(m.Data, []string{"A", "B"}, m.Timesteps, m.NumClasses)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if line.Text != "AB" {
		t.Errorf("Text: got %q, want %q", line.Text, "AB")
	}
	if len(line.CharColumnIndex) != 2 {
		t.Errorf("CharColumnIndex length: got %d, want 2", len(line.CharColumnIndex))
	}
	if line.TotalColumns != 4 {
		t.Errorf("TotalColumns: got %d, want 4", line.TotalColumns)
	}
	if !reflect.DeepEqual(line.CharColumnIndex, []int{2, 4}) {
		t.Errorf("CharColumnIndex: got %v, want [2 4]", line.CharColumnIndex)
	}
	if !reflect.DeepEqual(line.CharColumnWidth, []int{2, 2}) {
		t.Errorf("CharColumnWidth: got %v, want [2 2]", line.CharColumnWidth)
	}

	wantScores := []float64{float64(winScore(1)), float64(winScore(3))}
	if !reflect.DeepEqual(line.CharScores, wantScores) {
		t.Errorf("CharScores: got %v, want %v", line.CharScores, wantScores)
	}
}

func TestDecode_AllBlank(t *testing.T) {
	for _, steps := range []int{1, 5, 40} {
		argmax := make([]int, steps)
		m := matrixFromArgMax(argmax, 5)

		line, err := Decode(m.Data, []string{"x", "y", "z"}, m.Timesteps, m.NumClasses)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if line.Text != "" {
			t.Errorf("steps=%d: Text should be empty, got %q", steps, line.Text)
		}
		if len(line.CharScores) != 0 || len(line.CharColumnIndex) != 0 || len(line.CharColumnWidth) != 0 {
			t.Errorf("steps=%d: per-char sequences should be empty", steps)
		}
		if line.TotalColumns != steps {
			t.Errorf("steps=%d: TotalColumns got %d", steps, line.TotalColumns)
		}
	}
}

func TestDecode_EmptyMatrix(t *testing.T) {
	line, err := Decode(nil, []string{"a"}, 0, 3)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if line.Text != "" || line.TotalColumns != 0 {
		t.Errorf("got %+v, want empty line with 0 columns", line)
	}
}

func TestDecode_RepeatCollapsing(t *testing.T) {
	// classes: 0 blank, 1 "a", 2 "b", 3 " "
	tests := []struct {
		name   string
		argmax []int
		want   string
	}{
		{"repeats merge", []int{1, 1, 1, 2, 2}, "ab"},
		{"blank separates repeats", []int{1, 0, 1}, "aa"},
		{"space class", []int{1, 3, 2}, "a b"},
		{"leading and trailing blanks", []int{0, 0, 2, 0, 0}, "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := matrixFromArgMax(tt.argmax, 4)
			line, err := Decode(m.Data, []string{"a", "b"}, m.Timesteps, m.NumClasses)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if line.Text != tt.want {
				t.Errorf("Text: got %q, want %q", line.Text, tt.want)
			}
		})
	}
}

func TestDecode_ColumnConservation(t *testing.T) {
	sequences := [][]int{
		{0, 1, 1, 2},
		{1, 0, 0, 0, 2, 0, 0, 0},
		{0, 0, 0, 1, 0, 2, 2, 2, 0, 3, 0},
		{2},
		{0, 1, 0, 0, 0, 0, 0, 1, 1, 0, 0, 0, 0},
	}

	for _, seq := range sequences {
		m := matrixFromArgMax(seq, 4)
		line, err := Decode(m.Data, []string{"a", "b"}, m.Timesteps, m.NumClasses)
		if err != nil {
			t.Fatalf("Decode(%v) failed: %v", seq, err)
		}
		if got := sum(line.CharColumnWidth); got != len(seq) {
			t.Errorf("Decode(%v): widths %v sum to %d, want %d", seq, line.CharColumnWidth, got, len(seq))
		}
	}
}

func TestDecode_GapSplit(t *testing.T) {
	// 3 blanks between "a" and "b": 1 goes to "a", 2 (+1 for b itself) to "b"
	m := matrixFromArgMax([]int{1, 0, 0, 0, 2}, 4)
	line, err := Decode(m.Data, []string{"a", "b"}, m.Timesteps, m.NumClasses)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(line.CharColumnWidth, []int{2, 3}) {
		t.Errorf("CharColumnWidth: got %v, want [2 3]", line.CharColumnWidth)
	}
	if !reflect.DeepEqual(line.CharColumnIndex, []int{1, 5}) {
		t.Errorf("CharColumnIndex: got %v, want [1 5]", line.CharColumnIndex)
	}
}

func TestDecode_LengthInvariant(t *testing.T) {
	m := matrixFromArgMax([]int{1, 2, 0, 3, 1, 0}, 4)
	line, err := Decode(m.Data, []string{"日", "本"}, m.Timesteps, m.NumClasses)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	n := utf8.RuneCountInString(line.Text)
	if n != 4 {
		t.Errorf("rune count: got %d, want 4 (%q)", n, line.Text)
	}
	if len(line.CharScores) != n || len(line.CharColumnIndex) != n || len(line.CharColumnWidth) != n {
		t.Errorf("sequence lengths %d/%d/%d, want %d",
			len(line.CharScores), len(line.CharColumnIndex), len(line.CharColumnWidth), n)
	}
	if len(line.Chars()) != n {
		t.Errorf("Chars(): got %d entries, want %d", len(line.Chars()), n)
	}
}

func TestDecode_Deterministic(t *testing.T) {
	m := matrixFromArgMax([]int{0, 1, 1, 0, 2, 3, 2, 0}, 4)
	d, err := NewDecoder([]string{"a", "b"})
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}

	first, err := d.Decode(m)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := d.Decode(m)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestDecode_OutOfRangeClassCountsAsBlank(t *testing.T) {
	// numClasses 6 but the prepared alphabet only has 4 classes
	m := matrixFromArgMax([]int{1, 5, 2}, 6)
	line, err := Decode(m.Data, []string{"a", "b"}, m.Timesteps, m.NumClasses)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if line.Text != "ab" {
		t.Errorf("Text: got %q, want %q", line.Text, "ab")
	}
	if got := sum(line.CharColumnWidth); got != line.TotalColumns || got != 3 {
		t.Errorf("widths %v sum to %d, want TotalColumns %d", line.CharColumnWidth, got, line.TotalColumns)
	}
	if want := []int{1, 2}; !reflect.DeepEqual(line.CharColumnWidth, want) {
		t.Errorf("CharColumnWidth: got %v, want %v", line.CharColumnWidth, want)
	}
}

func TestDecode_InvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		scores     []float32
		alphabet   []string
		timesteps  int
		numClasses int
	}{
		{"short buffer", make([]float32, 7), []string{"a"}, 2, 4},
		{"long buffer", make([]float32, 9), []string{"a"}, 2, 4},
		{"empty alphabet", make([]float32, 8), nil, 2, 4},
		{"negative timesteps", nil, []string{"a"}, -1, 4},
		{"zero classes", nil, []string{"a"}, 3, 0},
		{"multi-rune key", make([]float32, 8), []string{"ab"}, 2, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.scores, tt.alphabet, tt.timesteps, tt.numClasses)
			if err == nil {
				t.Fatal("Decode should fail")
			}
			if !errors.Is(err, ocrerr.ErrInvalidInput) {
				t.Errorf("error should be InvalidInput, got %v", err)
			}
		})
	}
}

func TestNewDecoder_Augmentation(t *testing.T) {
	d, err := NewDecoder([]string{"A", "B"})
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}
	if d.NumClasses() != 4 {
		t.Errorf("NumClasses: got %d, want 4", d.NumClasses())
	}

	want := []string{BlankSymbol, "A", "B", SpaceSymbol}
	for i, w := range want {
		if got := d.Symbol(i); got != w {
			t.Errorf("Symbol(%d): got %q, want %q", i, got, w)
		}
	}
	if d.Symbol(4) != "" || d.Symbol(-1) != "" {
		t.Error("Symbol should return empty string out of range")
	}
}

func TestArgMax(t *testing.T) {
	tests := []struct {
		name    string
		row     []float32
		wantIdx int
		wantVal float32
	}{
		{"first wins ties", []float32{0.3, 0.3, 0.1}, 0, 0.3},
		{"last", []float32{-1, -2, 4}, 2, 4},
		{"negative scores", []float32{-5, -1, -3}, 1, -1},
		{"empty", nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, val := argMax(tt.row)
			if idx != tt.wantIdx || val != tt.wantVal {
				t.Errorf("argMax = (%d, %v), want (%d, %v)", idx, val, tt.wantIdx, tt.wantVal)
			}
		})
	}
}
