package physics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScene = `
gravity: {x: 0, y: 0, z: -9.8}
iters: 6
bodies:
  - kind: static
    pos: {x: 0, y: 0, z: -1}
    shape: {kind: box, half_size: {x: 10, y: 10, z: 1}}
  - kind: dynamic
    pos: {x: 0, y: 0, z: 5}
    density: 2
    restitution: 0.1
    shape: {kind: sphere, radius: 1}
`

func writeTestScene(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScene), 0o644))
	return path
}

func TestLoadSceneConfig(t *testing.T) {
	path := writeTestScene(t)
	w, err := LoadSceneConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 6, w.Iters)
	assert.InDelta(t, -9.8, w.Gravity.Z, 1e-9)
	assert.Len(t, w.StaticBodies, 1)
	assert.Len(t, w.DynamicBodies, 1)
	assert.InDelta(t, 2.0, w.DynamicBodies[0].density, 1e-9)
}

func TestLoadSceneConfigRejectsUnknownShape(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	bad := "bodies:\n  - kind: dynamic\n    shape: {kind: torus}\n"
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	_, err := LoadSceneConfig(path)
	assert.Error(t, err)
}
