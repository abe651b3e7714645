package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/railslens/rails-lens-mcp/internal/store"
)

const usersControllerSrc = `class UsersController < ApplicationController
  def index
    @users = User.all
  end

  def show
  end
end
`

const usersListing = `   Name Verb  URL          Pattern               Controller#Action
   GET  users_path         /users(.:format)      users#index
   GET  user_path          /users/:id(.:format)  users#show
   POST sessions_path      /sessions(.:format)   sessions#create
`

func newWorkspace(t *testing.T) string {
	t.Helper()
	ws := t.TempDir()

	ctrl := filepath.Join(ws, "app", "controllers", "users_controller.rb")
	if err := os.MkdirAll(filepath.Dir(ctrl), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ctrl, []byte(usersControllerSrc), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Join(ws, "tmp"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(ws, "tmp", "routes_file.txt"), []byte(usersListing), 0o644); err != nil {
		t.Fatal(err)
	}

	viewDir := filepath.Join(ws, "app", "views", "users")
	if err := os.MkdirAll(viewDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(viewDir, "index.html.haml"), []byte("%h1 Users"), 0o644); err != nil {
		t.Fatal(err)
	}
	return ws
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return NewServer(st)
}

func callReq(t *testing.T, args map[string]any) *mcp.CallToolRequest {
	t.Helper()
	b, err := json.Marshal(args)
	if err != nil {
		t.Fatal(err)
	}
	return &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: b}}
}

// decodeResult unmarshals the first text content block into out.
func decodeResult(t *testing.T, res *mcp.CallToolResult, out any) {
	t.Helper()
	if res.IsError {
		t.Fatalf("tool returned error: %v", res.Content)
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	if err := json.Unmarshal([]byte(tc.Text), out); err != nil {
		t.Fatalf("decode result: %v\n%s", err, tc.Text)
	}
}

func TestHandleDocumentLenses(t *testing.T) {
	ws := newWorkspace(t)
	srv := newTestServer(t)

	res, err := srv.handleDocumentLenses(context.Background(), callReq(t, map[string]any{
		"workspace": ws,
		"path":      filepath.Join(ws, "app", "controllers", "users_controller.rb"),
	}))
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		Count  int `json:"count"`
		Lenses []struct {
			Line    int    `json:"line"`
			Title   string `json:"title"`
			Command string `json:"command"`
		} `json:"lenses"`
	}
	decodeResult(t, res, &out)

	// index: url+verb+pattern+view, show: url+verb+pattern
	if out.Count != 7 {
		t.Fatalf("count = %d, want 7\n%+v", out.Count, out.Lenses)
	}
	if out.Lenses[0].Line != 1 || out.Lenses[0].Title != "📥 users_path" {
		t.Errorf("first lens = %+v", out.Lenses[0])
	}
}

func TestHandleDocumentLensesInlineEmptySource(t *testing.T) {
	ws := newWorkspace(t)
	srv := newTestServer(t)

	// the host sent an empty document; the on-disk file must not be read
	res, err := srv.handleDocumentLenses(context.Background(), callReq(t, map[string]any{
		"workspace": ws,
		"path":      filepath.Join(ws, "app", "controllers", "users_controller.rb"),
		"source":    "",
	}))
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		Count int `json:"count"`
	}
	decodeResult(t, res, &out)
	if out.Count != 0 {
		t.Errorf("count = %d, want 0 for an empty inline document", out.Count)
	}
}

func TestNilStoreRunsUncached(t *testing.T) {
	ws := newWorkspace(t)
	srv := NewServer(nil)

	res, err := srv.handleDocumentLenses(context.Background(), callReq(t, map[string]any{
		"workspace": ws,
		"path":      filepath.Join(ws, "app", "controllers", "users_controller.rb"),
	}))
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Count int `json:"count"`
	}
	decodeResult(t, res, &out)
	if out.Count != 7 {
		t.Errorf("count = %d, want 7 without a cache store", out.Count)
	}

	// the cache-only tool reports an error result instead of panicking
	res, err = srv.handleRefreshRoutes(context.Background(), callReq(t, map[string]any{
		"workspace": ws,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("refresh without a store should return an error result")
	}
}

func TestHandleDocumentLensesMissingArgs(t *testing.T) {
	srv := newTestServer(t)
	res, err := srv.handleDocumentLenses(context.Background(), callReq(t, map[string]any{
		"workspace": "/tmp",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected an error result for a missing path")
	}
}

func TestHandleListRoutes(t *testing.T) {
	ws := newWorkspace(t)
	srv := newTestServer(t)

	res, err := srv.handleListRoutes(context.Background(), callReq(t, map[string]any{
		"workspace":  ws,
		"controller": "users",
	}))
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		Controller string `json:"controller"`
		Routes     []struct {
			Verb           string `json:"verb"`
			URL            string `json:"url"`
			RefinedPattern string `json:"refined_pattern"`
			Action         string `json:"action"`
		} `json:"routes"`
	}
	decodeResult(t, res, &out)

	if len(out.Routes) != 2 {
		t.Fatalf("routes = %+v, want 2", out.Routes)
	}
	if out.Routes[0].Verb != "GET" || out.Routes[0].Action != "index" || out.Routes[0].RefinedPattern != "/users" {
		t.Errorf("route 0 = %+v", out.Routes[0])
	}
}

func TestHandleResolveView(t *testing.T) {
	ws := newWorkspace(t)
	srv := newTestServer(t)

	res, err := srv.handleResolveView(context.Background(), callReq(t, map[string]any{
		"workspace":  ws,
		"controller": "users",
		"action":     "index",
	}))
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		View  string `json:"view"`
		Found bool   `json:"found"`
	}
	decodeResult(t, res, &out)
	if !out.Found || out.View != filepath.Join(ws, "app", "views", "users", "index.html.haml") {
		t.Errorf("resolve view = %+v", out)
	}

	res, err = srv.handleResolveView(context.Background(), callReq(t, map[string]any{
		"workspace":  ws,
		"controller": "users",
		"action":     "show",
	}))
	if err != nil {
		t.Fatal(err)
	}
	decodeResult(t, res, &out)
	if out.Found || out.View != "" {
		t.Errorf("expected no view for show, got %+v", out)
	}
}

func TestHandleListControllers(t *testing.T) {
	ws := newWorkspace(t)
	srv := newTestServer(t)

	res, err := srv.handleListControllers(context.Background(), callReq(t, map[string]any{
		"workspace": ws,
	}))
	if err != nil {
		t.Fatal(err)
	}

	var out []struct {
		Controller string `json:"controller"`
		Path       string `json:"path"`
	}
	decodeResult(t, res, &out)
	if len(out) != 1 || out[0].Controller != "users" {
		t.Fatalf("controllers = %+v, want just users", out)
	}
}

func TestHandleRefreshRoutes(t *testing.T) {
	ws := newWorkspace(t)
	srv := newTestServer(t)

	res, err := srv.handleRefreshRoutes(context.Background(), callReq(t, map[string]any{
		"workspace": ws,
	}))
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		Routes int    `json:"routes"`
		Status string `json:"status"`
	}
	decodeResult(t, res, &out)
	if out.Status != "ok" || out.Routes != 2 {
		t.Errorf("refresh = %+v, want 2 cached users routes", out)
	}
}

func TestHandleRefreshRoutesMissingWorkspace(t *testing.T) {
	srv := newTestServer(t)
	res, err := srv.handleRefreshRoutes(context.Background(), callReq(t, map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected an error result for a missing workspace")
	}
}
