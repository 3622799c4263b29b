package pipeline

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/ironsheep/ocrlite-mcp/internal/ctc"
	"github.com/ironsheep/ocrlite-mcp/internal/geometry"
	"github.com/ironsheep/ocrlite-mcp/internal/ocrerr"
)

// FixtureRegion is one precomputed region. Either Scores or Text must be
// set; Text is expanded into a one-hot score matrix over the alphabet.
type FixtureRegion struct {
	Quad       geometry.Quad    `json:"quad"`
	Confidence float64          `json:"confidence"`
	Angle      AngleResult      `json:"angle"`
	Scores     *ctc.ScoreMatrix `json:"scores,omitempty"`
	Text       string           `json:"text,omitempty"`
}

// Fixture replays precomputed detector, angle classifier and recognizer
// output. It implements Detector, AngleClassifier and Recognizer.
//
// Quads are given in the unpadded frame and shifted by Offset when detected.
// Later stages look entries up by quad, so reading-order sorting never
// misaligns them; entries with identical quads resolve to the first one.
type Fixture struct {
	Alphabet []string        `json:"alphabet"`
	Regions  []FixtureRegion `json:"regions"`

	// Offset is the padding origin added to every quad.
	Offset image.Point `json:"-"`

	decoder *ctc.Decoder
	classes map[string]int
}

// LoadFixture decodes and validates a JSON fixture.
func LoadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if err := f.Prepare(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFixtureFile reads a JSON fixture from path.
func LoadFixtureFile(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer file.Close()
	return LoadFixture(file)
}

// Prepare validates the fixture and builds its alphabet. It must be called
// before use on a Fixture built in code.
func (f *Fixture) Prepare() error {
	d, err := ctc.NewDecoder(f.Alphabet)
	if err != nil {
		return err
	}
	f.decoder = d
	f.classes = make(map[string]int, d.NumClasses())
	for i := d.NumClasses() - 1; i > 0; i-- {
		f.classes[d.Symbol(i)] = i
	}

	for i, r := range f.Regions {
		if err := r.Quad.Validate(); err != nil {
			return fmt.Errorf("fixture region %d: %w", i, err)
		}
		if r.Scores == nil && r.Text == "" {
			continue
		}
		if r.Scores != nil {
			if err := r.Scores.Validate(); err != nil {
				return fmt.Errorf("fixture region %d: %w", i, err)
			}
			continue
		}
		for _, ch := range r.Text {
			if _, ok := f.classes[string(ch)]; !ok {
				return ocrerr.InvalidInput("pipeline.Fixture", "region %d: %q is not in the alphabet", i, ch)
			}
		}
	}
	return nil
}

// Decoder returns the decoder for the fixture's alphabet.
func (f *Fixture) Decoder() *ctc.Decoder {
	return f.decoder
}

// DetectRegions returns the fixture regions shifted into the padded frame.
func (f *Fixture) DetectRegions(_ image.Image, _ ScaleParam, boxScoreThresh, _, _ float64) ([]geometry.DetectedRegion, error) {
	out := make([]geometry.DetectedRegion, 0, len(f.Regions))
	for _, r := range f.Regions {
		if r.Confidence < boxScoreThresh {
			continue
		}
		out = append(out, geometry.DetectedRegion{
			Quad:       r.Quad.Translate(-f.Offset.X, -f.Offset.Y),
			Confidence: r.Confidence,
		})
	}
	return out, nil
}

// ClassifyAngles returns each region's recorded angle, with the doAngle and
// mostAngle policies applied.
func (f *Fixture) ClassifyAngles(crops []image.Image, regions []geometry.DetectedRegion, doAngle, mostAngle bool) ([]AngleResult, error) {
	if len(crops) != len(regions) {
		return nil, ocrerr.Desync("pipeline.Fixture", "%d crops for %d regions", len(crops), len(regions))
	}
	raw := make([]AngleResult, len(regions))
	for i, r := range regions {
		entry, err := f.lookup(r.Quad)
		if err != nil {
			return nil, err
		}
		raw[i] = entry.Angle
	}
	return VoteAngles(raw, doAngle, mostAngle), nil
}

// Recognize returns the recorded score matrix for region.
func (f *Fixture) Recognize(_ image.Image, region geometry.DetectedRegion) (ctc.ScoreMatrix, error) {
	entry, err := f.lookup(region.Quad)
	if err != nil {
		return ctc.ScoreMatrix{}, err
	}
	if entry.Scores != nil {
		return *entry.Scores, nil
	}
	return f.encode(entry.Text), nil
}

func (f *Fixture) lookup(q geometry.Quad) (FixtureRegion, error) {
	for _, r := range f.Regions {
		if r.Quad.Translate(-f.Offset.X, -f.Offset.Y) == q {
			return r, nil
		}
	}
	return FixtureRegion{}, ocrerr.Desync("pipeline.Fixture", "no fixture region at %v", q)
}

// encode builds a matrix that decodes back to text: each character gets one
// timestep followed by a blank, so repeated characters survive collapsing.
func (f *Fixture) encode(text string) ctc.ScoreMatrix {
	n := f.decoder.NumClasses()
	runes := []rune(text)
	steps := 2 * len(runes)

	data := make([]float32, steps*n)
	for i, ch := range runes {
		data[(2*i)*n+f.classes[string(ch)]] = 1
		data[(2*i+1)*n] = 1
	}
	return ctc.ScoreMatrix{Data: data, Timesteps: steps, NumClasses: n}
}
