package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/railslens/rails-lens-mcp/internal/lens"
)

func (s *Server) handleListRoutes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	rts, err := s.lens.RoutesFor(ctx, workspace, controller)
	if err != nil {
		return errResult(fmt.Sprintf("list routes: %v", err)), nil
	}

	type routeInfo struct {
		Verb           string `json:"verb"`
		URL            string `json:"url"`
		Pattern        string `json:"pattern"`
		RefinedPattern string `json:"refined_pattern"`
		Action         string `json:"action"`
	}

	result := make([]routeInfo, 0, len(rts))
	for _, r := range rts {
		result = append(result, routeInfo{
			Verb:           r.Verb,
			URL:            r.URL,
			Pattern:        r.Pattern,
			RefinedPattern: r.RefinedPattern,
			Action:         r.Action,
		})
	}

	return jsonResult(map[string]any{
		"controller": controller,
		"routes":     result,
	}), nil
}

func (s *Server) handleRefreshRoutes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	workspace := getStringArg(args, "workspace")
	if workspace == "" {
		return errResult("workspace is required"), nil
	}
	controller := getStringArg(args, "controller")

	if err := s.lens.Refresh(ctx, workspace, controller); err != nil {
		return errResult(fmt.Sprintf("refresh routes: %v", err)), nil
	}

	project := lens.ProjectName(workspace)
	n, _ := s.store.CountRoutes(project)

	return jsonResult(map[string]any{
		"project": project,
		"routes":  n,
		"status":  "ok",
	}), nil
}
