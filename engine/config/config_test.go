package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-voxel/engine/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	v, err := cfg.Variant()
	require.NoError(t, err)
	assert.Equal(t, program.VariantVoxel, v)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesFields(t *testing.T) {
	doc := `
window:
  title: hills
  width: 640
render:
  variant: voxel_bands
  msaa: 1
  frame_limit: 120
world:
  seed: 42
  load_radius: 2
  amplitude: 12
log_level: debug
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "hills", cfg.Window.Title)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "absent keys keep their default")
	assert.Equal(t, uint32(1), cfg.Render.MSAA)
	assert.True(t, cfg.Render.VSync)
	assert.Equal(t, 120.0, cfg.Render.FrameLimit)

	v, err := cfg.Variant()
	require.NoError(t, err)
	assert.Equal(t, program.VariantVoxelBands, v)

	noise := cfg.NoiseSettings()
	assert.Equal(t, int64(42), noise.Seed)
	assert.Equal(t, 12.0, noise.Amplitude)
	assert.Equal(t, 32, noise.BaseHeight)
	assert.Equal(t, 4, noise.Octaves)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		invalid bool
	}{
		{name: "unknown key", doc: "render:\n  shadows: true\n"},
		{name: "malformed", doc: "window: [1, 2\n"},
		{name: "unknown variant", doc: "render:\n  variant: phong\n", invalid: true},
		{name: "msaa", doc: "render:\n  msaa: 2\n", invalid: true},
		{name: "window size", doc: "window:\n  width: 0\n", invalid: true},
		{name: "negative radius", doc: "world:\n  load_radius: -1\n", invalid: true},
		{name: "terrain too tall", doc: "world:\n  base_height: 200\n  amplitude: 100\n", invalid: true},
		{name: "tick rate", doc: "engine:\n  tick_rate: 0\n", invalid: true},
		{name: "log level", doc: "log_level: loud\n", invalid: true},
		{name: "texture size", doc: "render:\n  texture_size: 0\n", invalid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalid)
			} else {
				assert.NotErrorIs(t, err, ErrInvalid)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Render.Variant = "phong"
	cfg.Engine.TickRate = -1

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, err, program.ErrUnknownVariant)
	assert.Contains(t, err.Error(), "engine.tick_rate")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render:\n  variant: mesh\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	v, err := cfg.Variant()
	require.NoError(t, err)
	assert.Equal(t, program.VariantMesh, v)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
