package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/ocrlite-mcp/internal/charbox"
	"github.com/ironsheep/ocrlite-mcp/internal/ctc"
	"github.com/ironsheep/ocrlite-mcp/internal/geometry"
	"github.com/ironsheep/ocrlite-mcp/internal/imaging"
	"github.com/ironsheep/ocrlite-mcp/internal/ordering"
	"github.com/ironsheep/ocrlite-mcp/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "ocr_decode_scores").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Info("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies configured defaults for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the appropriate ctc/ordering/charbox/pipeline function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Core algorithms
	case "ocr_decode_scores":
		return s.handleDecodeScores(args)
	case "ocr_sort_regions":
		return s.handleSortRegions(args)
	case "ocr_project_chars":
		return s.handleProjectChars(args)
	case "ocr_min_area_quad":
		return s.handleMinAreaQuad(args)

	// Image operations
	case "ocr_detect_regions":
		return s.handleDetectRegions(args)
	case "ocr_run_pipeline":
		return s.handleRunPipeline(ctx, args)
	case "ocr_release_image":
		return s.handleReleaseImage(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Core Algorithm Handlers ===

type decodeScoresArgs struct {
	Alphabet   []string  `json:"alphabet"`
	Scores     []float32 `json:"scores"`
	Timesteps  int       `json:"timesteps"`
	NumClasses int       `json:"num_classes"`
}

func (s *Server) handleDecodeScores(args json.RawMessage) (interface{}, error) {
	var a decodeScoresArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return ctc.Decode(a.Scores, a.Alphabet, a.Timesteps, a.NumClasses)
}

type sortRegionsArgs struct {
	Regions []geometry.DetectedRegion `json:"regions"`
}

type regionsResult struct {
	Regions []geometry.DetectedRegion `json:"regions"`
	Count   int                       `json:"count"`
}

func (s *Server) handleSortRegions(args json.RawMessage) (interface{}, error) {
	var a sortRegionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	for i, r := range a.Regions {
		if err := r.Quad.Validate(); err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}
	}
	sorted := ordering.SortRegions(a.Regions)
	return &regionsResult{Regions: sorted, Count: len(sorted)}, nil
}

type projectCharsArgs struct {
	Quad    geometry.Quad   `json:"quad"`
	Line    ctc.DecodedLine `json:"line"`
	OffsetX int             `json:"offset_x"`
	OffsetY int             `json:"offset_y"`
}

type projectCharsResult struct {
	Chars     []string        `json:"chars"`
	CharQuads []geometry.Quad `json:"char_quads"`
}

func (s *Server) handleProjectChars(args json.RawMessage) (interface{}, error) {
	var a projectCharsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	quads, err := charbox.ProjectChars(a.Quad, a.Line, a.OffsetX, a.OffsetY)
	if err != nil {
		return nil, err
	}
	return &projectCharsResult{Chars: a.Line.Chars(), CharQuads: quads}, nil
}

type quadArgs struct {
	Quad geometry.Quad `json:"quad"`
}

type quadResult struct {
	Quad geometry.Quad `json:"quad"`
}

func (s *Server) handleMinAreaQuad(args json.RawMessage) (interface{}, error) {
	var a quadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.Quad.Validate(); err != nil {
		return nil, err
	}
	return &quadResult{Quad: geometry.MinAreaQuad(a.Quad)}, nil
}

// === Image Handlers ===

// imageSource names an image by path or carries it inline.
type imageSource struct {
	Path        string `json:"path"`
	ImageBase64 string `json:"image_base64"`
}

func (s *Server) loadImage(src imageSource) (image.Image, error) {
	switch {
	case src.Path != "":
		return s.cache.Load(src.Path)
	case src.ImageBase64 != "":
		return imaging.DecodeBase64(src.ImageBase64)
	default:
		return nil, fmt.Errorf("either path or image_base64 is required")
	}
}

type detectRegionsArgs struct {
	imageSource
	MaxSideLen     int      `json:"max_side_len"`
	BoxScoreThresh *float64 `json:"box_score_thresh"`
	BoxThresh      *float64 `json:"box_thresh"`
	UnClipRatio    *float64 `json:"unclip_ratio"`
}

type detectRegionsResult struct {
	Regions []geometry.DetectedRegion `json:"regions"`
	Count   int                       `json:"count"`
	Scale   pipeline.ScaleParam       `json:"scale"`
}

func (s *Server) handleDetectRegions(args json.RawMessage) (interface{}, error) {
	var a detectRegionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MaxSideLen == 0 {
		a.MaxSideLen = s.cfg.MaxSideLen
	}
	boxScoreThresh := floatOr(a.BoxScoreThresh, s.cfg.BoxScoreThresh)
	boxThresh := floatOr(a.BoxThresh, s.cfg.BoxThresh)
	unClipRatio := floatOr(a.UnClipRatio, s.cfg.UnClipRatio)
	if boxScoreThresh < 0 || boxScoreThresh > 1 {
		return nil, fmt.Errorf("box_score_thresh must be between 0 and 1, got %v", boxScoreThresh)
	}
	if boxThresh < 0 || boxThresh > 1 {
		return nil, fmt.Errorf("box_thresh must be between 0 and 1, got %v", boxThresh)
	}
	if unClipRatio < 0 {
		return nil, fmt.Errorf("unclip_ratio must not be negative, got %v", unClipRatio)
	}

	img, err := s.loadImage(a.imageSource)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	scale, err := pipeline.NewScaleParam(b.Dx(), b.Dy(), a.MaxSideLen)
	if err != nil {
		return nil, err
	}

	regions, err := s.detector.DetectRegions(img, scale, boxScoreThresh, boxThresh, unClipRatio)
	if err != nil {
		return nil, err
	}
	sorted := ordering.SortRegions(regions)
	return &detectRegionsResult{Regions: sorted, Count: len(sorted), Scale: scale}, nil
}

// floatOr returns *p, or def when the argument was omitted.
func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

type runPipelineArgs struct {
	imageSource

	// FixturePath or Fixture supply the recorded detector, angle and
	// recognizer output.
	FixturePath string          `json:"fixture_path"`
	Fixture     json.RawMessage `json:"fixture"`

	Padding      *int `json:"padding"`
	MaxSideLen   int  `json:"max_side_len"`
	Quick        bool `json:"quick"`
	IncludeImage bool `json:"include_image"`
}

type runPipelineResult struct {
	Result         *pipeline.OcrResult   `json:"result"`
	Response       *pipeline.Response    `json:"response"`
	AnnotatedImage *imaging.EncodedImage `json:"annotated_image,omitempty"`
}

func (s *Server) handleRunPipeline(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a runPipelineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	img, err := s.loadImage(a.imageSource)
	if err != nil {
		return nil, err
	}
	fx, err := s.loadFixture(a)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	padding, maxSideLen, params := s.cfg.Padding, s.cfg.MaxSideLen, s.cfg.Params()
	if a.Quick {
		padding, maxSideLen, params = pipeline.QuickSettings(b.Dx(), b.Dy())
	}
	if a.Padding != nil {
		padding = *a.Padding
	}
	if a.MaxSideLen > 0 {
		maxSideLen = a.MaxSideLen
	}
	if padding < 0 {
		return nil, fmt.Errorf("padding must not be negative, got %d", padding)
	}

	padded, paddingRect := imaging.Pad(img, padding)
	fx.Offset = paddingRect.Min

	scale, err := pipeline.NewScaleParam(padded.Bounds().Dx(), padded.Bounds().Dy(), maxSideLen)
	if err != nil {
		return nil, err
	}

	engine, err := pipeline.NewEngine(pipeline.Collaborators{
		Detector:   fx,
		Classifier: fx,
		Recognizer: fx,
		Cropper:    s.cropper,
		Overlay:    s.overlay,
	}, fx.Decoder(), s.logger)
	if err != nil {
		return nil, err
	}

	result, err := engine.Detect(ctx, padded, paddingRect, scale, params)
	if err != nil {
		return nil, err
	}

	requestID := s.newID()
	s.logger.Info("pipeline finished", "request_id", requestID,
		"blocks", len(result.TextBlocks), "total_ms", result.TotalElapsedMs)

	out := &runPipelineResult{
		Result:   result,
		Response: pipeline.NewResponse(result, b.Dx(), b.Dy(), requestID),
	}
	if a.IncludeImage && result.AnnotatedImage != nil {
		enc, err := imaging.EncodePNG(result.AnnotatedImage)
		if err != nil {
			return nil, err
		}
		out.AnnotatedImage = enc
	}
	return out, nil
}

func (s *Server) loadFixture(a runPipelineArgs) (*pipeline.Fixture, error) {
	switch {
	case a.FixturePath != "":
		return pipeline.LoadFixtureFile(a.FixturePath)
	case len(a.Fixture) > 0:
		return pipeline.LoadFixture(bytes.NewReader(a.Fixture))
	default:
		return nil, fmt.Errorf("either fixture_path or fixture is required")
	}
}

type releaseImageArgs struct {
	Path string `json:"path"`
}

type releaseImageResult struct {
	Released int `json:"released"`
	Cached   int `json:"cached"`
}

func (s *Server) handleReleaseImage(args json.RawMessage) (interface{}, error) {
	var a releaseImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	before := s.cache.Len()
	if a.Path == "" {
		s.cache.Clear()
	} else {
		s.cache.Evict(a.Path)
	}
	after := s.cache.Len()
	s.logger.Debug("image cache released", "path", a.Path, "released", before-after, "cached", after)
	return &releaseImageResult{Released: before - after, Cached: after}, nil
}
