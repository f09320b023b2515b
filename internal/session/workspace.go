package session

import (
	"path/filepath"
	"strings"
)

// Workspace decides which files are timed and how they are keyed in the log.
type Workspace struct {
	roots   []string
	project string
}

// NewWorkspace cleans roots to absolute paths. project is the default project
// name for events that carry none.
func NewWorkspace(project string, roots ...string) Workspace {
	ws := Workspace{project: project}
	for _, r := range roots {
		if r == "" {
			continue
		}
		if abs, err := filepath.Abs(r); err == nil {
			r = abs
		}
		ws.roots = append(ws.roots, filepath.Clean(r))
	}
	return ws
}

// Roots returns the cleaned workspace roots.
func (w Workspace) Roots() []string {
	return append([]string(nil), w.roots...)
}

// Project returns the default project name.
func (w Workspace) Project() string {
	return w.project
}

// Empty reports whether no root is known.
func (w Workspace) Empty() bool {
	return len(w.roots) == 0
}

// Key maps path to its log key: the slash separated path relative to the
// containing root. Relative paths are taken relative to the first root. ok is
// false for files outside every root.
func (w Workspace) Key(path string) (key string, ok bool) {
	if path == "" || w.Empty() {
		return "", false
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.roots[0], path)
	}
	path = filepath.Clean(path)
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}
