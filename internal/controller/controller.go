// Package controller extracts controller names from Rails file paths and
// scans controller sources for action method definitions.
package controller

import (
	"path/filepath"
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/railslens/rails-lens-mcp/internal/parser"
)

// pathPattern captures the controller name from the conventional Rails
// layout, including namespaced controllers (admin/users).
var pathPattern = regexp.MustCompile(`app/controllers/(.+)_controller\.rb$`)

// IsControllerPath reports whether a document path names a controller file.
func IsControllerPath(path string) bool {
	return strings.HasSuffix(path, "_controller.rb")
}

// NameFromPath extracts the controller name from a path like
// app/controllers/admin/users_controller.rb ("admin/users").
// A path that ends in _controller.rb but does not match the conventional
// layout returns ok=false; callers produce no lenses for it.
func NameFromPath(path string) (string, bool) {
	m := pathPattern.FindStringSubmatch(filepath.ToSlash(path))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Action is one action method definition in a controller source.
type Action struct {
	Name string
	Line int // 0-based line of the def
}

// ScanActions returns the routable action methods of a controller source
// in definition order. Methods below a bare `private` or `protected` are
// excluded; `def self.` singleton methods are never actions.
//
// The primary path parses the source with tree-sitter; sources that fail
// to parse fall back to a per-line `def <name>` scan.
func ScanActions(source []byte) []Action {
	tree, err := parser.Parse(source)
	if err != nil {
		return scanActionLines(source)
	}
	defer tree.Close()

	var actions []Action
	sawClass := false
	parser.Walk(tree.RootNode(), func(node *tree_sitter.Node) bool {
		if node.Kind() != "class" {
			return true
		}
		sawClass = true
		actions = append(actions, classActions(node, source)...)
		return false
	})

	// No class definition at all — likely a fragment; scan lines instead.
	if !sawClass {
		return scanActionLines(source)
	}
	return actions
}

// classActions walks one class body in statement order, tracking visibility.
func classActions(classNode *tree_sitter.Node, source []byte) []Action {
	body := classBody(classNode)
	if body == nil {
		return nil
	}

	visible := true
	var actions []Action
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			// bare visibility call: everything below is non-routable
			switch parser.NodeText(child, source) {
			case "private", "protected":
				visible = false
			case "public":
				visible = true
			}
		case "method":
			if !visible {
				continue
			}
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			actions = append(actions, Action{
				Name: parser.NodeText(nameNode, source),
				Line: int(child.StartPosition().Row),
			})
		}
	}
	return actions
}

// classBody returns the statement container of a class node.
func classBody(classNode *tree_sitter.Node) *tree_sitter.Node {
	if body := classNode.ChildByFieldName("body"); body != nil {
		return body
	}
	for i := uint(0); i < classNode.ChildCount(); i++ {
		child := classNode.Child(i)
		if child != nil && child.Kind() == "body_statement" {
			return child
		}
	}
	return classNode
}

var defPattern = regexp.MustCompile(`^\s*def\s+([A-Za-z_][A-Za-z0-9_.]*[?!=]?)`)

// scanActionLines is the regex fallback for unparseable sources.
func scanActionLines(source []byte) []Action {
	var actions []Action
	visible := true
	for i, line := range strings.Split(string(source), "\n") {
		switch strings.TrimSpace(line) {
		case "private", "protected":
			visible = false
			continue
		case "public":
			visible = true
			continue
		}
		m := defPattern.FindStringSubmatch(line)
		if m == nil || !visible {
			continue
		}
		if strings.Contains(m[1], ".") { // def self.x — not an action
			continue
		}
		actions = append(actions, Action{Name: m[1], Line: i})
	}
	return actions
}
