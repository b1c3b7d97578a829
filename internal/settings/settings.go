// Package settings loads per-user tool settings. They tune how protovend runs
// on a machine and never change what a project vendors.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/bianoble/protovend/internal/cache"
)

// EnvPrefix prefixes environment overrides, e.g. PROTOVEND_CACHE_DIR.
const EnvPrefix = "PROTOVEND_"

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Settings are the resolved user settings.
type Settings struct {
	CacheDir  string
	LogFormat string
	NoColor   bool
}

// DefaultPath returns the settings file location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "protovend", "settings.toml")
}

func defaults() map[string]any {
	return map[string]any{
		"cache_dir":  cache.DefaultDir(),
		"log_format": FormatConsole,
		"no_color":   false,
	}
}

// Load layers built-in defaults, the TOML file at path (if it exists) and
// PROTOVEND_* environment variables, later layers winning. An empty path
// means DefaultPath.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = DefaultPath()
	}
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load settings from %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	s := &Settings{
		CacheDir:  k.String("cache_dir"),
		LogFormat: strings.ToLower(k.String("log_format")),
		NoColor:   k.Bool("no_color"),
	}
	if s.CacheDir == "" {
		s.CacheDir = cache.DefaultDir()
	}
	switch s.LogFormat {
	case FormatConsole, FormatJSON:
	default:
		return nil, fmt.Errorf("log_format %q: must be %q or %q", s.LogFormat, FormatConsole, FormatJSON)
	}
	return s, nil
}
