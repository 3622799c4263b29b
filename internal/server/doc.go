// Package server implements the MCP (Model Context Protocol) server for the
// OCR pipeline.
//
// This package provides a JSON-RPC 2.0 server that exposes CTC decoding,
// reading-order sorting, character back-projection and the full pipeline
// through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Core algorithms:
//   - ocr_decode_scores: Greedy CTC decode of a score matrix
//   - ocr_sort_regions: Reading order for detected regions
//   - ocr_project_chars: Per-character quads for a decoded line
//   - ocr_min_area_quad: Minimum-area rectangle around a quad
//
// Image operations:
//   - ocr_detect_regions: Edge-density text region detection
//   - ocr_run_pipeline: Detection to text blocks, driven by a fixture
//   - ocr_release_image: Drop one or all cached images
//
// ocr_run_pipeline replays detector, angle classifier and recognizer output
// recorded in a fixture (see pipeline.Fixture). Padding, cropping, ordering,
// decoding, back-projection and overlay drawing run for real.
//
// # Image Caching
//
// Images named by path are cached and reused across tool calls for the
// lifetime of the server process, or until ocr_release_image drops them.
// Inline base64 images are never cached.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
