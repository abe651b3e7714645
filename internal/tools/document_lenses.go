package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleDocumentLenses(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	workspace := getStringArg(args, "workspace")
	if workspace == "" {
		return errResult("workspace is required"), nil
	}
	path := getStringArg(args, "path")
	if path == "" {
		return errResult("path is required"), nil
	}

	// an explicitly empty source is an empty document, not "read from disk",
	// so keep the slice non-nil
	var source []byte
	if v, ok := args["source"]; ok {
		if src, ok := v.(string); ok {
			source = append([]byte{}, src...)
		}
	}

	lenses, err := s.lens.ForDocument(ctx, workspace, path, source)
	if err != nil {
		return errResult(fmt.Sprintf("document lenses: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"path":   path,
		"count":  len(lenses),
		"lenses": lenses,
	}), nil
}
