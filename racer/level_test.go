package racer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLevelJSON(t *testing.T) {
	level, err := LoadLevel("../configs/level.json")
	require.NoError(t, err)

	assert.Equal(t, Pose{X: 200, Y: 150, Angle: 0}, level.Start)
	require.Len(t, level.Goals, 1)
	assert.Equal(t, Region{Left: 1100, Top: 550, Width: 200, Height: 150}, level.Goals[0])
	assert.Len(t, level.Obstacles, 2)
}

func TestLoadLevelYAML(t *testing.T) {
	level, err := LoadLevel("../configs/straight.yaml")
	require.NoError(t, err)

	assert.Equal(t, Pose{X: 700, Y: 100}, level.Start)
	assert.Equal(t, []Region{{Left: 600, Top: 400, Width: 200, Height: 100}}, level.Goals)
	assert.Empty(t, level.Obstacles)
}

func TestParseLevelWithoutRegions(t *testing.T) {
	level, err := ParseLevel([]byte(`{"start": {"x": 10, "y": 20, "angle": 90}}`), true)
	require.NoError(t, err)
	assert.Equal(t, 90.0, level.Start.Angle)
	assert.Empty(t, level.Goals)

	arena := DefaultConfig().Arena.NewArena(level)
	assert.Len(t, arena.Hazards(), 4)
}

func TestParseLevelRejectsEmptyRegions(t *testing.T) {
	_, err := ParseLevel([]byte("goals:\n  - {left: 1, top: 1, width: 0, height: 5}\n"), false)
	assert.Error(t, err)

	_, err = ParseLevel([]byte(`{"obstacles": [{"left": 1, "top": 1, "width": 5, "height": -2}]}`), true)
	assert.Error(t, err)
}

func TestLoadLevelErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadLevel(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = LoadLevel(bad)
	assert.Error(t, err)
}
