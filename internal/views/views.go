// Package views resolves the template file rendered by a controller action.
package views

import (
	"os"
	"path/filepath"
)

// DefaultExtensions is the probe order for view templates.
var DefaultExtensions = []string{"html.haml", "json.jbuilder"}

// Resolve returns the path of the first existing view template for
// controller#action, probing extensions strictly in order and
// short-circuiting on the first hit. An empty string means no view to link.
func Resolve(workspace, controller, action string, extensions []string) string {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	dir := filepath.Join(workspace, "app", "views", filepath.FromSlash(controller))
	for _, ext := range extensions {
		path := filepath.Join(dir, action+"."+ext)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
