package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/bianoble/protovend/internal/repourl"
)

// shape is one historical layout of the configuration file. Shapes are tried
// in priority order, most specific first; the first that decodes strictly
// and passes its own required-field check wins.
type shape interface {
	canonical() (*Config, error)
}

var shapes = []struct {
	name string
	new  func() shape
}{
	{name: "current", new: func() shape { return &currentConfig{} }},
	{name: "legacy", new: func() shape { return &legacyConfig{} }},
	{name: "hosted legacy", new: func() shape { return &hostedConfig{} }},
	{name: "empty", new: func() shape { return &emptyConfig{} }},
}

// currentConfig is the layout written by this version.
type currentConfig struct {
	MinVersion string               `yaml:"min_protovend_version"`
	Vendor     *[]currentDependency `yaml:"vendor"`
}

type currentDependency struct {
	URL               repourl.URL `yaml:"url"`
	Branch            string      `yaml:"branch"`
	ProtoDir          string      `yaml:"proto_dir"`
	ProtoPaths        []string    `yaml:"proto_paths"`
	FilenameRegex     string      `yaml:"filename_regex"`
	ResolveDependency bool        `yaml:"resolve_dependency"`
}

func (c *currentConfig) canonical() (*Config, error) {
	if c.Vendor == nil {
		return nil, fmt.Errorf("'vendor' is not a list")
	}
	cfg := New(c.MinVersion)
	for i, d := range *c.Vendor {
		if d.URL.IsZero() || d.ProtoDir == "" || len(d.ProtoPaths) == 0 {
			return nil, fmt.Errorf("vendor[%d]: 'url', 'proto_dir' and 'proto_paths' are required", i)
		}
		regex := d.FilenameRegex
		if regex == "" {
			regex = DefaultFilenameRegex
		}
		cfg.Vendor = append(cfg.Vendor, Dependency{
			URL:               d.URL,
			Branch:            d.Branch,
			ProtoDir:          d.ProtoDir,
			ProtoPaths:        d.ProtoPaths,
			FilenameRegex:     regex,
			ResolveDependency: d.ResolveDependency,
		})
	}
	return cfg, nil
}

// legacyConfig predates proto_dir and proto_paths.
type legacyConfig struct {
	MinVersion string              `yaml:"min_protovend_version"`
	Vendor     *[]legacyDependency `yaml:"vendor"`
}

type legacyDependency struct {
	URL    repourl.URL `yaml:"url"`
	Branch string      `yaml:"branch"`
}

func (c *legacyConfig) canonical() (*Config, error) {
	if c.Vendor == nil {
		return nil, fmt.Errorf("'vendor' is not a list")
	}
	cfg := New(c.MinVersion)
	for i, d := range *c.Vendor {
		if d.URL.IsZero() {
			return nil, fmt.Errorf("vendor[%d]: 'url' is required", i)
		}
		cfg.Vendor = append(cfg.Vendor, fromLegacy(d.URL, d.Branch))
	}
	return cfg, nil
}

// hostedConfig is the oldest layout, naming a repository by host and
// owner/name instead of a URL. Such entries were always cloned over ssh.
type hostedConfig struct {
	MinVersion string              `yaml:"min_protovend_version"`
	Vendor     *[]hostedDependency `yaml:"vendor"`
}

type hostedDependency struct {
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`
	Host   string `yaml:"host"`
}

func (c *hostedConfig) canonical() (*Config, error) {
	if c.Vendor == nil {
		return nil, fmt.Errorf("'vendor' is not a list")
	}
	cfg := New(c.MinVersion)
	for i, d := range *c.Vendor {
		if d.Repo == "" || d.Host == "" {
			return nil, fmt.Errorf("vendor[%d]: 'repo' and 'host' are required", i)
		}
		url, err := repourl.Parse(fmt.Sprintf("git@%s:%s.git", d.Host, d.Repo))
		if err != nil {
			return nil, fmt.Errorf("vendor[%d]: %w", i, err)
		}
		cfg.Vendor = append(cfg.Vendor, fromLegacy(url, d.Branch))
	}
	return cfg, nil
}

// emptyConfig is a freshly initialised file whose vendor key holds nothing.
type emptyConfig struct {
	MinVersion string `yaml:"min_protovend_version"`
	Vendor     any    `yaml:"vendor"`
}

func (c *emptyConfig) canonical() (*Config, error) {
	if c.Vendor != nil {
		return nil, fmt.Errorf("'vendor' must be empty")
	}
	return New(c.MinVersion), nil
}

func fromLegacy(url repourl.URL, branch string) Dependency {
	return Dependency{
		URL:           url,
		Branch:        branch,
		ProtoDir:      DefaultProtoDir,
		ProtoPaths:    []string{url.SanitisedPath()},
		FilenameRegex: DefaultFilenameRegex,
	}
}

// decode converts raw file content into the canonical Config. When no shape
// matches, the error from the current shape is reported since that is the
// layout users are expected to write.
func decode(data []byte) (*Config, error) {
	var firstErr error
	for _, s := range shapes {
		v := s.new()
		err := decodeStrict(data, v)
		if err == nil {
			var cfg *Config
			cfg, err = v.canonical()
			if err == nil {
				if cfg.MinVersion == "" {
					return nil, fmt.Errorf("'min_protovend_version' is required")
				}
				return cfg, nil
			}
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("%s layout: %w", s.name, err)
		}
	}
	return nil, firstErr
}

func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("file is empty")
		}
		return err
	}
	return nil
}
