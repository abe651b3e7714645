package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/railslens/rails-lens-mcp/internal/store"
	"github.com/railslens/rails-lens-mcp/internal/tools"
	"github.com/railslens/rails-lens-mcp/internal/watcher"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Println("rails-lens-mcp", version)
		os.Exit(0)
	}
	// a broken cache store is not fatal: every read path works uncached
	s, err := store.Open("rails-lens")
	if err != nil {
		slog.Warn("store.open.err", "err", err)
		s = nil
	}

	srv := tools.NewServer(s)

	ctx, cancel := context.WithCancel(context.Background())
	if s != nil {
		w := watcher.New(s, func(ctx context.Context, _, rootPath string) error {
			return srv.Lens().Refresh(ctx, rootPath, "")
		})
		go w.Run(ctx)
	}

	runErr := srv.MCPServer().Run(ctx, &mcp.StdioTransport{})
	cancel()
	if s != nil {
		s.Close()
	}
	if runErr != nil {
		log.Fatalf("server err=%v", runErr)
	}
}
