package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "loam.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FillsUnsetFields(t *testing.T) {
	path := writeConfig(t, "sources: [codemeta]\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"codemeta"}, cfg.Sources)
	assert.Equal(t, Default().Cache, cfg.Cache, "unset cache should fall back to default")
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `sources:
  - cff
  - codemeta
cache: /tmp/loam-cache.db
vocabularies:
  ex: https://example.org/terms/
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cff", "codemeta"}, cfg.Sources)
	assert.Equal(t, "/tmp/loam-cache.db", cfg.Cache)
	assert.Equal(t, "https://example.org/terms/", cfg.Vocabularies["ex"])
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "nope: true\n")

	_, err := Load(path)
	assert.Error(t, err, "unknown fields should be rejected")
}

func TestLoad_EmptyFileYieldsDefaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loam.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
