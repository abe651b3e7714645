// Package lens computes line-anchored route annotations for Rails
// controller documents.
package lens

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/railslens/rails-lens-mcp/internal/config"
	"github.com/railslens/rails-lens-mcp/internal/controller"
	"github.com/railslens/rails-lens-mcp/internal/discover"
	"github.com/railslens/rails-lens-mcp/internal/routes"
	"github.com/railslens/rails-lens-mcp/internal/store"
	"github.com/railslens/rails-lens-mcp/internal/views"
)

// Lens is one annotation anchored to a source line. Label lenses carry an
// empty Command; the view lens carries OpenViewCommand and the resolved
// template path as its single argument.
type Lens struct {
	Line      int      `json:"line"`
	Title     string   `json:"title"`
	Command   string   `json:"command,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
}

// OpenViewCommand is the host-side command invoked by the view lens.
const OpenViewCommand = "rails-lens.open_view"

var verbEmoji = map[string]string{
	"GET":    "📥",
	"POST":   "📤",
	"PATCH":  "🩹",
	"PUT":    "♻️",
	"DELETE": "🗑️",
}

func emojiFor(verb string) string {
	if e, ok := verbEmoji[strings.ToUpper(verb)]; ok {
		return e
	}
	return "❓"
}

// Service computes lenses, consulting the route cache when available.
type Service struct {
	store *store.Store // nil disables the cache
}

// NewService creates a Service. st may be nil to run uncached.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// ProjectName derives the cache project key for a workspace path.
func ProjectName(workspace string) string {
	abs, err := filepath.Abs(workspace)
	if err != nil {
		return filepath.Base(workspace)
	}
	return filepath.Base(abs)
}

// ForDocument produces the lenses for one controller document, sorted by
// line. Non-controller documents yield no lenses. Every failure mode
// degrades to an empty (or partial) result; only cancellation is returned
// as an error.
func (s *Service) ForDocument(ctx context.Context, workspace, docPath string, source []byte) ([]Lens, error) {
	if !controller.IsControllerPath(docPath) {
		return nil, nil
	}
	name, ok := controller.NameFromPath(docPath)
	if !ok {
		// passed the suffix check but not the conventional layout
		slog.Warn("lens.controller_name.err", "path", docPath)
		return nil, nil
	}

	cfg := config.Load(workspace)

	rts, err := s.RoutesFor(ctx, workspace, name)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// treated as zero routes, not a failed request
		slog.Warn("lens.routes.err", "controller", name, "err", err)
		rts = nil
	}

	if source == nil {
		source, err = os.ReadFile(docPath)
		if err != nil {
			slog.Warn("lens.read.err", "path", docPath, "err", err)
			return nil, nil
		}
	}
	actions := controller.ScanActions(source)
	if len(actions) == 0 {
		return nil, nil
	}

	exts := cfg.EffectiveViewExtensions()
	results := make([][]Lens, len(actions))

	limit := runtime.NumCPU()
	if limit > len(actions) {
		limit = len(actions)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, a := range actions {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			results[i] = actionLenses(workspace, name, a, rts, exts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Lens
	for _, r := range results {
		all = append(all, r...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Line < all[j].Line })
	return all, nil
}

// actionLenses builds up to four lenses for one action. An action without
// a matching route contributes nothing.
func actionLenses(workspace, controllerName string, a controller.Action, rts []routes.Route, exts []string) []Lens {
	r, ok := routes.Match(rts, controllerName, a.Name)
	if !ok {
		return nil
	}

	lenses := []Lens{{Line: a.Line, Title: emojiFor(r.Verb) + " " + r.URL}}
	if r.Verb != "" {
		lenses = append(lenses, Lens{Line: a.Line, Title: r.Verb})
	}
	lenses = append(lenses, Lens{Line: a.Line, Title: r.RefinedPattern})

	if view := views.Resolve(workspace, controllerName, a.Name, exts); view != "" {
		lenses = append(lenses, Lens{
			Line:      a.Line,
			Title:     "Jump to view",
			Command:   OpenViewCommand,
			Arguments: []string{view},
		})
	}
	return lenses
}

// RoutesFor returns the parsed routes for a controller, serving from the
// cache when the listing hash matches and repopulating it on a miss.
// Any cache failure falls back to a direct fetch.
func (s *Service) RoutesFor(ctx context.Context, workspace, controllerName string) ([]routes.Route, error) {
	cfg := config.Load(workspace)
	f := &routes.Fetcher{Workspace: workspace, RoutesFile: cfg.EffectiveRoutesFile()}

	if s.store == nil || !cfg.EffectiveCacheEnabled() {
		return f.FetchParsed(ctx, controllerName)
	}

	hash, err := f.ListingHash()
	if err != nil {
		// unhashable listing — skip the cache entirely
		return f.FetchParsed(ctx, controllerName)
	}

	project := ProjectName(workspace)
	if cached, ok := s.store.CachedRoutes(project, controllerName, hash, cfg.EffectiveCacheMaxAge()); ok {
		return cached, nil
	}

	rts, err := f.FetchParsed(ctx, controllerName)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpsertProject(project, workspace); err == nil {
		if err := s.store.ReplaceRoutes(project, controllerName, hash, rts); err != nil {
			slog.Warn("lens.cache.store.err", "controller", controllerName, "err", err)
		}
	}
	return rts, nil
}

// Refresh drops and repopulates cached route sets for a workspace.
// An empty controllerName refreshes every discovered controller.
func (s *Service) Refresh(ctx context.Context, workspace, controllerName string) error {
	if s.store == nil {
		return fmt.Errorf("route cache is disabled")
	}
	cfg := config.Load(workspace)
	f := &routes.Fetcher{Workspace: workspace, RoutesFile: cfg.EffectiveRoutesFile()}

	names := []string{controllerName}
	if controllerName == "" {
		files, err := discover.Controllers(ctx, workspace)
		if err != nil {
			return fmt.Errorf("discover controllers: %w", err)
		}
		names = names[:0]
		for _, cf := range files {
			names = append(names, cf.Controller)
		}
	}

	hash, err := f.ListingHash()
	if err != nil {
		return fmt.Errorf("hash listing: %w", err)
	}

	project := ProjectName(workspace)
	if err := s.store.UpsertProject(project, workspace); err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	for _, name := range names {
		rts, err := f.FetchParsed(ctx, name)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", name, err)
		}
		if err := s.store.ReplaceRoutes(project, name, hash, rts); err != nil {
			return fmt.Errorf("cache %s: %w", name, err)
		}
	}
	slog.Info("lens.refresh", "project", project, "controllers", len(names))
	return nil
}
