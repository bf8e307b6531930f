package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceLifecycle(t *testing.T) {
	root := filepath.Join(t.TempDir(), "scratch")
	ws, err := NewFactory(root).New()
	require.NoError(t, err)

	dir := ws.Dir()
	assert.DirExists(t, dir)
	assert.Equal(t, root, filepath.Dir(dir))

	p := ws.Path("textimage", ".png")
	assert.Equal(t, dir, filepath.Dir(p))
	require.NoError(t, os.WriteFile(p, []byte("x"), 0644))

	require.NoError(t, ws.Release())
	assert.NoDirExists(t, dir)
	assert.NoError(t, ws.Release())
}

func TestWorkspacePathsAreUnique(t *testing.T) {
	ws, err := NewFactory(t.TempDir()).New()
	require.NoError(t, err)
	defer ws.Release()

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		p := ws.Path("column", ".png")
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
	}
}

func TestWorkspacesAreIsolated(t *testing.T) {
	factory := NewFactory(t.TempDir())

	a, err := factory.New()
	require.NoError(t, err)
	defer a.Release()
	b, err := factory.New()
	require.NoError(t, err)
	defer b.Release()

	assert.NotEqual(t, a.Dir(), b.Dir())
	assert.NotEqual(t, a.Path("text", ".png"), b.Path("text", ".png"))
}
