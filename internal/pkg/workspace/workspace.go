// Package workspace provides per-invocation scratch directories.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

type Workspace struct {
	dir  string
	next int
}

// Factory creates an isolated workspace below its root.
type Factory interface {
	New() (*Workspace, error)
}

type tempFactory struct {
	root string
}

// NewFactory returns a factory creating directories below root, or below the
// system temp directory when root is empty.
func NewFactory(root string) Factory {
	return &tempFactory{root: root}
}

func (f *tempFactory) New() (*Workspace, error) {
	if f.root != "" {
		if err := os.MkdirAll(f.root, 0755); err != nil {
			return nil, fmt.Errorf("failed to create workspace root: %w", err)
		}
	}
	dir, err := os.MkdirTemp(f.root, "caption-")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns a fresh file path inside the workspace.
func (w *Workspace) Path(name, ext string) string {
	p := filepath.Join(w.dir, fmt.Sprintf("%s-%d%s", name, w.next, ext))
	w.next++
	return p
}

// Release removes the workspace and everything in it. It is safe to call more than once.
func (w *Workspace) Release() error {
	if w.dir == "" {
		return nil
	}
	err := os.RemoveAll(w.dir)
	w.dir = ""
	return err
}
