package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pointSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"x": map[string]interface{}{"type": "integer"},
		"y": map[string]interface{}{"type": "integer"},
	},
	"required": []string{"x", "y"},
}

var quadSchema = map[string]interface{}{
	"type":        "array",
	"items":       pointSchema,
	"minItems":    4,
	"maxItems":    4,
	"description": "Four corners in order top-left, top-right, bottom-right, bottom-left (for an unrotated region)",
}

var regionSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"quad":       quadSchema,
		"confidence": map[string]interface{}{"type": "number"},
	},
	"required": []string{"quad"},
}

var imageProperties = map[string]interface{}{
	"path": map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	},
	"image_base64": map[string]interface{}{
		"type":        "string",
		"description": "Base64-encoded image (optionally a data: URI). Used when path is empty",
	},
}

// withImage returns props plus the path and image_base64 properties.
func withImage(props map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props)+len(imageProperties))
	for k, v := range imageProperties {
		out[k] = v
	}
	for k, v := range props {
		out[k] = v
	}
	return out
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Core algorithms
		{
			Name:        "ocr_decode_scores",
			Description: "Greedy CTC decode of a recognition score matrix into text with per-character confidence, column index and column width. Class 0 is the blank; the last class is a space.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"alphabet": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Visible symbols in class order, without the blank and trailing space",
					},
					"scores": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "number"},
						"description": "Row-major [timesteps x num_classes] class scores",
					},
					"timesteps":   map[string]interface{}{"type": "integer", "description": "Number of rows"},
					"num_classes": map[string]interface{}{"type": "integer", "description": "Scores per row"},
				},
				"required": []string{"alphabet", "scores", "timesteps", "num_classes"},
			},
		},
		{
			Name:        "ocr_sort_regions",
			Description: "Order detected text regions into reading order: group them into lines, sort lines top to bottom and regions left to right.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"regions": map[string]interface{}{
						"type":        "array",
						"items":       regionSchema,
						"description": "Detected regions in any order",
					},
				},
				"required": []string{"regions"},
			},
		},
		{
			Name:        "ocr_project_chars",
			Description: "Back-project each decoded character onto the image as a quad, using the region's corners and the decoded column positions.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"quad": quadSchema,
					"line": map[string]interface{}{
						"type":        "object",
						"description": "Output of ocr_decode_scores for this region",
					},
					"offset_x": map[string]interface{}{"type": "integer", "description": "Subtracted from every X (padding origin)"},
					"offset_y": map[string]interface{}{"type": "integer", "description": "Subtracted from every Y (padding origin)"},
				},
				"required": []string{"quad", "line"},
			},
		},
		{
			Name:        "ocr_min_area_quad",
			Description: "Minimum-area enclosing rectangle of a quad, corners ordered top-left, top-right, bottom-right, bottom-left.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"quad": quadSchema,
				},
				"required": []string{"quad"},
			},
		},

		// Image operations
		{
			Name:        "ocr_detect_regions",
			Description: "Find text-like regions in an image by edge density and return them in reading order. A heuristic detector for clean screenshots and scans.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withImage(map[string]interface{}{
					"max_side_len": map[string]interface{}{
						"type":        "integer",
						"description": "Longer side of the detector input (default from config)",
					},
					"box_score_thresh": map[string]interface{}{
						"type":        "number",
						"description": "Minimum region confidence, 0-1 (default from config)",
					},
					"box_thresh": map[string]interface{}{
						"type":        "number",
						"description": "Edge magnitude threshold, 0-1 (default from config)",
					},
					"unclip_ratio": map[string]interface{}{
						"type":        "number",
						"description": "Box growth factor, 0 keeps detected boxes unchanged (default from config)",
					},
				}),
			},
		},
		{
			Name:        "ocr_run_pipeline",
			Description: "Run the full OCR pipeline on an image using recorded detector, angle and recognizer output from a fixture. Returns text blocks in reading order with character quads, a flattened response, and optionally the annotated image as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withImage(map[string]interface{}{
					"fixture_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to a JSON fixture",
					},
					"fixture": map[string]interface{}{
						"type":        "object",
						"description": "Inline fixture: {alphabet, regions: [{quad, confidence, angle, scores | text}]}",
					},
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "White border added before detection (default from config)",
					},
					"max_side_len": map[string]interface{}{
						"type":        "integer",
						"description": "Longer side of the detector input (default from config)",
					},
					"quick": map[string]interface{}{
						"type":        "boolean",
						"description": "Use one-shot settings: no padding, large images shrunk to 60%",
						"default":     false,
					},
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the annotated image as base64 PNG",
						"default":     false,
					},
				}),
			},
		},
		{
			Name:        "ocr_release_image",
			Description: "Drop a cached image, or every cached image when path is omitted. Images loaded by path otherwise stay cached for the life of the server.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path of the image to release (omit to release all)",
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
