package ctc

import (
	"unicode/utf8"

	"github.com/ironsheep/ocrlite-mcp/internal/ocrerr"
)

const (
	// BlankSymbol is the placeholder stored at class index 0.
	BlankSymbol = "#"

	// SpaceSymbol is appended as the last class.
	SpaceSymbol = " "
)

// ScoreMatrix is a dense row-major [Timesteps, NumClasses] buffer of class
// scores for one recognized region. Scores need not be normalized.
type ScoreMatrix struct {
	Data       []float32 `json:"data"`
	Timesteps  int       `json:"timesteps"`
	NumClasses int       `json:"num_classes"`
}

// Validate checks that Data holds exactly Timesteps*NumClasses values.
func (m ScoreMatrix) Validate() error {
	if m.Timesteps < 0 {
		return ocrerr.InvalidInput("ctc.ScoreMatrix", "negative timesteps %d", m.Timesteps)
	}
	if m.NumClasses <= 0 && m.Timesteps > 0 {
		return ocrerr.InvalidInput("ctc.ScoreMatrix", "numClasses must be positive, got %d", m.NumClasses)
	}
	if len(m.Data) != m.Timesteps*m.NumClasses {
		return ocrerr.InvalidInput("ctc.ScoreMatrix", "got %d scores, want %d (%d timesteps x %d classes)",
			len(m.Data), m.Timesteps*m.NumClasses, m.Timesteps, m.NumClasses)
	}
	return nil
}

// DecodedLine is the text recognized in one region together with the
// per-character confidence and column geometry.
//
// len([]rune(Text)) == len(CharScores) == len(CharColumnIndex) == len(CharColumnWidth).
type DecodedLine struct {
	Text            string    `json:"text"`
	CharScores      []float64 `json:"char_scores"`
	CharColumnIndex []int     `json:"char_column_index"`
	CharColumnWidth []int     `json:"char_column_width"`
	TotalColumns    int       `json:"total_columns"`
	ElapsedMs       float64   `json:"elapsed_ms"`
}

// Chars returns the decoded characters, one entry per column slot.
func (l DecodedLine) Chars() []string {
	out := make([]string, 0, utf8.RuneCountInString(l.Text))
	for _, r := range l.Text {
		out = append(out, string(r))
	}
	return out
}

// Decoder holds a prepared alphabet. It is immutable and safe for concurrent use.
type Decoder struct {
	keys []string
}

// NewDecoder wraps alphabet with the blank and space classes.
//
// Every alphabet entry must be a single character so the text stays
// index-aligned with the per-character sequences.
func NewDecoder(alphabet []string) (*Decoder, error) {
	if len(alphabet) == 0 {
		return nil, ocrerr.InvalidInput("ctc.NewDecoder", "alphabet is empty")
	}
	for i, k := range alphabet {
		if utf8.RuneCountInString(k) != 1 {
			return nil, ocrerr.InvalidInput("ctc.NewDecoder", "alphabet entry %d (%q) is not a single character", i, k)
		}
	}

	keys := make([]string, 0, len(alphabet)+2)
	keys = append(keys, BlankSymbol)
	keys = append(keys, alphabet...)
	keys = append(keys, SpaceSymbol)
	return &Decoder{keys: keys}, nil
}

// NumClasses returns the number of classes including blank and space.
func (d *Decoder) NumClasses() int {
	return len(d.keys)
}

// Symbol returns the symbol for class index i, or "" when out of range.
func (d *Decoder) Symbol(i int) string {
	if i < 0 || i >= len(d.keys) {
		return ""
	}
	return d.keys[i]
}

// Decode runs greedy CTC decoding over m.
func (d *Decoder) Decode(m ScoreMatrix) (DecodedLine, error) {
	if err := m.Validate(); err != nil {
		return DecodedLine{}, err
	}

	line := DecodedLine{
		CharScores:      []float64{},
		CharColumnIndex: []int{},
		CharColumnWidth: []int{},
		TotalColumns:    m.Timesteps,
	}

	var text []byte
	lastIndex := 0
	run := 0

	for i := 0; i < m.Timesteps; i++ {
		row := m.Data[i*m.NumClasses : (i+1)*m.NumClasses]
		maxIndex, maxValue := argMax(row)
		repeat := maxIndex > 0 && maxIndex == lastIndex
		// Classes past the prepared alphabet emit nothing and count like blanks.
		unknown := maxIndex >= len(d.keys)

		if maxIndex == 0 || repeat || unknown {
			run++
		}

		if maxIndex > 0 && !unknown && !(i > 0 && repeat) {
			n := len(line.CharColumnWidth)
			if n == 0 {
				line.CharColumnWidth = append(line.CharColumnWidth, run+1)
			} else {
				half := run / 2
				line.CharColumnWidth[n-1] += half
				line.CharColumnWidth = append(line.CharColumnWidth, run-half+1)
			}
			line.CharScores = append(line.CharScores, float64(maxValue))
			line.CharColumnIndex = append(line.CharColumnIndex, i+1)
			text = append(text, d.keys[maxIndex]...)
			run = 0
		}

		lastIndex = maxIndex
	}

	if n := len(line.CharColumnWidth); n > 0 {
		line.CharColumnWidth[n-1] += run
	}

	line.Text = string(text)
	return line, nil
}

// Decode prepares alphabet and decodes one row-major score buffer of the
// given shape in a single call.
func Decode(scores []float32, alphabet []string, timesteps, numClasses int) (DecodedLine, error) {
	d, err := NewDecoder(alphabet)
	if err != nil {
		return DecodedLine{}, err
	}
	return d.Decode(ScoreMatrix{Data: scores, Timesteps: timesteps, NumClasses: numClasses})
}

// argMax returns the index and value of the first maximum in row.
func argMax(row []float32) (int, float32) {
	if len(row) == 0 {
		return 0, 0
	}

	maxIdx := 0
	maxValue := row[0]
	for i, v := range row {
		if v > maxValue {
			maxValue = v
			maxIdx = i
		}
	}
	return maxIdx, maxValue
}
