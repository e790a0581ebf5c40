package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for config:
// - Defaults target TensorFlow on the public index
// - Values load from an explicit YAML file
// - Unset keys in the file keep their defaults
// - An explicitly named missing file is an error
// - Environment variables override file values

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "tensorflow", cfg.Package)
	assert.Equal(t, "https://pypi.org/pypi", cfg.IndexURL)
	assert.Equal(t, "data", cfg.OutputDir)
	assert.Equal(t, "**/*.py", cfg.SourcePattern)
	assert.Equal(t, "tensorflow/_api", cfg.APIDir)
	assert.Equal(t, "manylinux", cfg.PlatformTag)
}

func TestLoad_FromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "package: torch\noutput_dir: out\nplatform_tag: macosx\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "torch", cfg.Package)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "macosx", cfg.PlatformTag)
	// Unset keys keep their defaults.
	assert.Equal(t, "https://pypi.org/pypi", cfg.IndexURL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PYSYMBOLS_OUTPUT_DIR", "env-data")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-data", cfg.OutputDir)
}
