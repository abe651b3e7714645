// Package discover walks a Rails workspace for controller files.
package discover

import (
	"context"
	"os"
	"path/filepath"

	"github.com/railslens/rails-lens-mcp/internal/controller"
)

// ControllerFile represents a discovered controller source file.
type ControllerFile struct {
	Path       string // absolute path
	RelPath    string // relative to the workspace root
	Controller string // extracted controller name, e.g. "admin/users"
}

// Controllers walks <workspace>/app/controllers and returns all controller
// files in walk order. The concerns/ subtree is skipped — concern modules
// are not routable controllers.
func Controllers(ctx context.Context, workspace string) ([]ControllerFile, error) {
	workspace, err := filepath.Abs(workspace)
	if err != nil {
		return nil, err
	}
	root := filepath.Join(workspace, "app", "controllers")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(root); err != nil {
		return nil, nil // no app/controllers — not a Rails workspace yet
	}

	var files []ControllerFile
	err = filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return filepath.SkipDir
		}
		if info.IsDir() {
			if info.Name() == "concerns" {
				return filepath.SkipDir
			}
			return nil
		}
		if !controller.IsControllerPath(path) {
			return nil
		}
		name, ok := controller.NameFromPath(path)
		if !ok {
			return nil
		}
		rel, _ := filepath.Rel(workspace, path)
		files = append(files, ControllerFile{
			Path:       path,
			RelPath:    filepath.ToSlash(rel),
			Controller: name,
		})
		return nil
	})
	return files, err
}
