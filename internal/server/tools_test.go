package server

import (
	"context"
	"encoding/json"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"ocr_decode_scores",
		"ocr_sort_regions",
		"ocr_project_chars",
		"ocr_min_area_quad",
		"ocr_detect_regions",
		"ocr_run_pipeline",
		"ocr_release_image",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || len(props) == 0 {
				t.Fatal("InputSchema should have properties")
			}

			// Every required argument must be described.
			if required, ok := tool.InputSchema["required"].([]string); ok {
				for _, r := range required {
					if _, ok := props[r]; !ok {
						t.Errorf("required argument %q has no property", r)
					}
				}
			}

			if _, err := json.Marshal(tool); err != nil {
				t.Errorf("tool should marshal: %v", err)
			}
		})
	}
}

func TestToolDefinitions_ImageSource(t *testing.T) {
	for _, name := range []string{"ocr_detect_regions", "ocr_run_pipeline"} {
		t.Run(name, func(t *testing.T) {
			var tool Tool
			for _, tt := range GetToolDefinitions() {
				if tt.Name == name {
					tool = tt
				}
			}
			props, _ := tool.InputSchema["properties"].(map[string]interface{})
			for _, key := range []string{"path", "image_base64"} {
				if _, ok := props[key]; !ok {
					t.Errorf("missing %q property", key)
				}
			}
		})
	}
}

func TestToolDefinitions_AllDispatched(t *testing.T) {
	s := newTestServer(t)

	// Empty arguments must reach each handler rather than the unknown-tool branch.
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			_, err := s.executeTool(context.Background(), tool.Name, json.RawMessage(`{}`))
			if err != nil && err.Error() == "unknown tool: "+tool.Name {
				t.Errorf("tool %s is listed but not dispatched", tool.Name)
			}
		})
	}
}
