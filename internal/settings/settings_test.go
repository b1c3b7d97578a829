package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bianoble/protovend/internal/cache"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, cache.DefaultDir(), s.CacheDir)
	assert.Equal(t, FormatConsole, s.LogFormat)
	assert.False(t, s.NoColor)
}

func TestLoadFile(t *testing.T) {
	path := writeSettings(t, `
cache_dir = "/var/cache/protovend"
log_format = "json"
no_color = true
`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/protovend", s.CacheDir)
	assert.Equal(t, FormatJSON, s.LogFormat)
	assert.True(t, s.NoColor)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeSettings(t, `cache_dir = "/from/file"`)
	t.Setenv("PROTOVEND_CACHE_DIR", "/from/env")
	t.Setenv("PROTOVEND_NO_COLOR", "true")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", s.CacheDir)
	assert.True(t, s.NoColor)
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	path := writeSettings(t, `log_format = "xml"`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_format")
}

func TestLoadInvalidTOML(t *testing.T) {
	path := writeSettings(t, `cache_dir = `)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}
