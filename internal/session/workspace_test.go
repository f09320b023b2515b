package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkspaceKey(t *testing.T) {
	root := t.TempDir()
	second := t.TempDir()
	ws := NewWorkspace("Demo", root, second)

	tests := []struct {
		name string
		path string
		want string
		ok   bool
	}{
		{"top level", filepath.Join(root, "a.ts"), "a.ts", true},
		{"nested", filepath.Join(root, "src", "b.ts"), "src/b.ts", true},
		{"second root", filepath.Join(second, "c.go"), "c.go", true},
		{"relative to first root", filepath.Join("src", "d.ts"), "src/d.ts", true},
		{"root itself", root, "", false},
		{"sibling sharing prefix", root + "-other" + string(filepath.Separator) + "x.ts", "", false},
		{"escapes root", filepath.Join(root, "..", "x.ts"), "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ws.Key(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorkspaceEmpty(t *testing.T) {
	ws := NewWorkspace("Demo", "")
	assert.True(t, ws.Empty())
	_, ok := ws.Key("/tmp/a.ts")
	assert.False(t, ok)
}
