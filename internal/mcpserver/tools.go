package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "pool_stats",
		Description: "Report a pool's aggregate counters: total size, bytes allocated, live allocation count, gap count, and policy.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"pool": {Type: "string", Description: "Configured pool/preset name"},
			},
			Required: []string{"pool"},
		},
	}, s.handlePoolStats)

	s.server.AddTool(&mcp.Tool{
		Name:        "pool_inspect",
		Description: "List a pool's segments in address order, each tagged allocated or gap with its size.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"pool": {Type: "string", Description: "Configured pool/preset name"},
			},
			Required: []string{"pool"},
		},
	}, s.handlePoolInspect)
}

type poolNameParams struct {
	Pool string `json:"pool"`
}

func (s *Server) handlePoolStats(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params poolNameParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResponse("pool_stats", fmt.Errorf("invalid parameters: %w", err))
	}

	h, err := s.lookupPool(params.Pool)
	if err != nil {
		return errorResponse("pool_stats", err)
	}

	stats, err := s.registry.Stats(h)
	if err != nil {
		return errorResponse("pool_stats", err)
	}

	return jsonResponse(map[string]interface{}{
		"success":    true,
		"pool":       params.Pool,
		"total_size": stats.TotalSize,
		"alloc_size": stats.AllocSize,
		"num_allocs": stats.NumAllocs,
		"num_gaps":   stats.NumGaps,
		"policy":     stats.Policy.String(),
	})
}

func (s *Server) handlePoolInspect(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params poolNameParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResponse("pool_inspect", fmt.Errorf("invalid parameters: %w", err))
	}

	h, err := s.lookupPool(params.Pool)
	if err != nil {
		return errorResponse("pool_inspect", err)
	}

	segments, err := s.registry.Inspect(h)
	if err != nil {
		return errorResponse("pool_inspect", err)
	}

	return jsonResponse(map[string]interface{}{
		"success":  true,
		"pool":     params.Pool,
		"segments": segments,
	})
}
