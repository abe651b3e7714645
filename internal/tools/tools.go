package tools

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/railslens/rails-lens-mcp/internal/lens"
	"github.com/railslens/rails-lens-mcp/internal/store"
)

// Server wraps the MCP server with tool handlers.
type Server struct {
	mcp   *mcp.Server
	store *store.Store
	lens  *lens.Service
}

// NewServer creates a new MCP server with all tools registered. s may be
// nil to run without the route cache.
func NewServer(s *store.Store) *Server {
	srv := &Server{
		store: s,
		lens:  lens.NewService(s),
		mcp: mcp.NewServer(
			&mcp.Implementation{
				Name:    "rails-lens-mcp",
				Version: "0.1.0",
			},
			nil,
		),
	}
	srv.registerTools()
	return srv
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Lens returns the lens service, for wiring the watcher refresh callback.
func (s *Server) Lens() *lens.Service {
	return s.lens
}

func (s *Server) registerTools() {
	// 1. document_lenses
	s.mcp.AddTool(&mcp.Tool{
		Name:        "document_lenses",
		Description: "Compute route lenses for a Rails controller document. Each action that matches a route gets line-anchored annotations: URL helper with an HTTP verb emoji, the verb, the route pattern, and a 'Jump to view' command when a template exists. Non-controller documents yield no lenses.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"workspace": {
					"type": "string",
					"description": "Absolute path to the Rails workspace root"
				},
				"path": {
					"type": "string",
					"description": "Path to the controller file (e.g. 'app/controllers/users_controller.rb')"
				},
				"source": {
					"type": "string",
					"description": "Document content. If omitted, the file is read from disk."
				}
			},
			"required": ["workspace", "path"]
		}`),
	}, s.handleDocumentLenses)

	// 2. list_routes
	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_routes",
		Description: "List the parsed routes for one controller from the workspace route listing. Returns verb, URL helper, pattern, refined pattern (format suffix stripped), and action for each route, in listing order. Served from the route cache when the listing is unchanged.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"workspace": {
					"type": "string",
					"description": "Absolute path to the Rails workspace root"
				},
				"controller": {
					"type": "string",
					"description": "Controller name as it appears in routes (e.g. 'users', 'admin/users')"
				}
			},
			"required": ["workspace", "controller"]
		}`),
	}, s.handleListRoutes)

	// 3. resolve_view
	s.mcp.AddTool(&mcp.Tool{
		Name:        "resolve_view",
		Description: "Resolve the view template for a controller action. Probes app/views/<controller>/<action>.<ext> for each configured extension in order and returns the first existing path, or none.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"workspace": {
					"type": "string",
					"description": "Absolute path to the Rails workspace root"
				},
				"controller": {
					"type": "string",
					"description": "Controller name (e.g. 'users', 'admin/users')"
				},
				"action": {
					"type": "string",
					"description": "Action name (e.g. 'index')"
				}
			},
			"required": ["workspace", "controller", "action"]
		}`),
	}, s.handleResolveView)

	// 4. list_controllers
	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_controllers",
		Description: "Discover controller files under app/controllers. Returns the controller name and file path for each, skipping concerns. Use to enumerate what document_lenses and list_routes can be called with.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"workspace": {
					"type": "string",
					"description": "Absolute path to the Rails workspace root"
				}
			},
			"required": ["workspace"]
		}`),
	}, s.handleListControllers)

	// 5. refresh_routes
	s.mcp.AddTool(&mcp.Tool{
		Name:        "refresh_routes",
		Description: "Drop and repopulate cached route sets for a workspace from the current route listing. Refreshes one controller when given, otherwise every discovered controller. Requires the route cache.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"workspace": {
					"type": "string",
					"description": "Absolute path to the Rails workspace root"
				},
				"controller": {
					"type": "string",
					"description": "Controller to refresh. Omit to refresh all discovered controllers."
				}
			},
			"required": ["workspace"]
		}`),
	}, s.handleRefreshRoutes)
}

// jsonResult marshals data to JSON and returns as tool result.
func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errResult("json marshal err=" + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

// errResult returns a tool result indicating an error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// parseArgs unmarshals the raw JSON arguments into a map.
func parseArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	if len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &m); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return m, nil
}

// getStringArg extracts a string argument from parsed args.
func getStringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
