package config

import (
	"github.com/bianoble/protovend/internal/repourl"
)

// FileName is the declared configuration file in the project root.
const FileName = ".protovend.yml"

// Defaults applied when a dependency omits a field.
const (
	DefaultBranch        = "master"
	DefaultProtoDir      = "proto"
	DefaultFilenameRegex = ".*"
)

// Config is the canonical declared configuration. Every historical file
// shape is converted to this type before anything else sees it.
type Config struct {
	MinVersion string       `yaml:"min_protovend_version"`
	Vendor     []Dependency `yaml:"vendor"`
}

// Dependency declares files to vendor from one remote repository.
type Dependency struct {
	URL               repourl.URL `yaml:"url"`
	Branch            string      `yaml:"branch"`
	ProtoDir          string      `yaml:"proto_dir"`
	ProtoPaths        []string    `yaml:"proto_paths"`
	FilenameRegex     string      `yaml:"filename_regex"`
	ResolveDependency bool        `yaml:"resolve_dependency"`
}

// New returns an empty configuration stamped with minVersion.
func New(minVersion string) *Config {
	return &Config{MinVersion: minVersion, Vendor: []Dependency{}}
}

// Find returns the dependency for url, or nil.
func (c *Config) Find(url repourl.URL) *Dependency {
	for i := range c.Vendor {
		if c.Vendor[i].URL.Equal(url) {
			return &c.Vendor[i]
		}
	}
	return nil
}
