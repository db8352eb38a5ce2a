package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesThreshold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pcdlod.toml")
	require.NoError(t, os.WriteFile(path, []byte("threshold = 4096\nquad_alpha_as_color = true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.Threshold)
	assert.True(t, cfg.QuadAlphaAsColor)
	assert.Equal(t, 1.0, cfg.RadiusConstant)
}
