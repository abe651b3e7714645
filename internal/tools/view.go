package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/railslens/rails-lens-mcp/internal/config"
	"github.com/railslens/rails-lens-mcp/internal/views"
)

func (s *Server) handleResolveView(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	workspace := getStringArg(args, "workspace")
	if workspace == "" {
		return errResult("workspace is required"), nil
	}
	controller := getStringArg(args, "controller")
	if controller == "" {
		return errResult("controller is required"), nil
	}
	action := getStringArg(args, "action")
	if action == "" {
		return errResult("action is required"), nil
	}

	cfg := config.Load(workspace)
	view := views.Resolve(workspace, controller, action, cfg.EffectiveViewExtensions())

	return jsonResult(map[string]any{
		"controller": controller,
		"action":     action,
		"view":       view,
		"found":      view != "",
	}), nil
}
