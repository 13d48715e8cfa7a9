package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/BillDuke13/mnemosyne/pkg/memory"
)

var (
	identifyToolName    = "identify"
	identifyDescription = "Identify a person from the on-chain memory book. Given a face hint such as a name or label, returns the matching entry with its relationship and a hash-verified summary of the most recent interaction."

	countToolName    = "count_entries"
	countDescription = "Count the entries currently stored in the on-chain memory table."
)

// IdentifyInput represents the input arguments for the identify tool.
type IdentifyInput struct {
	FaceHint string `json:"face_hint,omitempty" jsonschema:"label of the person to identify, case-insensitive; empty selects the default entry"`
}

// CountInput is the (empty) input of the count tool.
type CountInput struct{}

// CountOutput represents the output of the count tool.
type CountOutput struct {
	EntryCount int `json:"entry_count"`
}

func (s *Server) handleIdentify(ctx context.Context, _ *mcp.CallToolRequest, input IdentifyInput) (*mcp.CallToolResult, memory.Entry, error) {
	logger := s.config.Logger
	logger.Debug("MCP identify request", "face_hint", input.FaceHint)

	entry, err := s.config.Identifier.Identify(ctx, input.FaceHint)
	if err != nil {
		return toolError("Failed to identify: %v", err), memory.Entry{}, nil
	}

	// Structured output is mirrored as JSON text for clients without
	// structured content support.
	result, err := textResult(entry)
	if err != nil {
		logger.Error("failed to marshal identify output", "error", err)
		return toolError("Failed to serialize entry: %v", err), memory.Entry{}, nil
	}

	return result, *entry, nil
}

func (s *Server) handleCount(ctx context.Context, _ *mcp.CallToolRequest, _ CountInput) (*mcp.CallToolResult, CountOutput, error) {
	count, err := s.config.Identifier.EntryCount(ctx)
	if err != nil {
		s.config.Logger.Error("failed to count entries", "error", err)
		return toolError("Failed to count entries: %v", err), CountOutput{}, nil
	}

	output := CountOutput{EntryCount: count}
	result, err := textResult(output)
	if err != nil {
		return toolError("Failed to serialize count: %v", err), CountOutput{}, nil
	}

	return result, output, nil
}

func textResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, nil
}

func toolError(format string, err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, err)},
		},
	}
}
