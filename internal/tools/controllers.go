package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/railslens/rails-lens-mcp/internal/discover"
)

func (s *Server) handleListControllers(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	workspace := getStringArg(args, "workspace")
	if workspace == "" {
		return errResult("workspace is required"), nil
	}

	files, err := discover.Controllers(ctx, workspace)
	if err != nil {
		return errResult(fmt.Sprintf("list controllers: %v", err)), nil
	}

	type controllerInfo struct {
		Controller string `json:"controller"`
		Path       string `json:"path"`
	}

	result := make([]controllerInfo, 0, len(files))
	for _, cf := range files {
		result = append(result, controllerInfo{
			Controller: cf.Controller,
			Path:       cf.RelPath,
		})
	}

	return jsonResult(result), nil
}
