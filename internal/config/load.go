package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bianoble/protovend/internal/repourl"
	"github.com/bianoble/protovend/internal/version"
)

// ErrNotInitialized is returned when the project has no configuration file.
var ErrNotInitialized = errors.New("project not initialised — run 'protovend init'")

// Load reads, normalizes and validates a configuration file, then checks
// that the running tool satisfies its minimum version.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if errs := Validate(cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	if err := version.Check(FileName, cfg.MinVersion); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration atomically, with dependencies sorted by
// repository identity.
func Save(path string, cfg *Config) error {
	out := *cfg
	out.Vendor = slices.Clone(cfg.Vendor)
	if out.Vendor == nil {
		out.Vendor = []Dependency{}
	}
	slices.SortStableFunc(out.Vendor, func(a, b Dependency) int {
		return repourl.Compare(a.URL, b.URL)
	})

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp config %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp config to %s: %w", path, err)
	}

	return nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if !version.Valid(cfg.MinVersion) {
		errs = append(errs, fmt.Sprintf("'min_protovend_version' %q is not a semantic version", cfg.MinVersion))
	}

	seen := make(map[string]bool)
	for i, dep := range cfg.Vendor {
		prefix := fmt.Sprintf("vendor[%d]", i)
		if !dep.URL.IsZero() {
			prefix = fmt.Sprintf("dependency '%s'", dep.URL)
		}

		if dep.URL.IsZero() {
			errs = append(errs, fmt.Sprintf("%s: 'url' is required", prefix))
		} else if seen[dep.URL.Identity()] {
			errs = append(errs, fmt.Sprintf("%s: duplicate repository — list every proto_path under a single entry", prefix))
		} else {
			seen[dep.URL.Identity()] = true
		}

		if dep.Branch == "" {
			errs = append(errs, fmt.Sprintf("%s: 'branch' is required", prefix))
		}
		if dep.ProtoDir == "" {
			errs = append(errs, fmt.Sprintf("%s: 'proto_dir' is required — use '.' for the repository root", prefix))
		}
		if len(dep.ProtoPaths) == 0 {
			errs = append(errs, fmt.Sprintf("%s: at least one entry in 'proto_paths' is required", prefix))
		}
		for _, p := range dep.ProtoPaths {
			if strings.TrimSpace(p) == "" {
				errs = append(errs, fmt.Sprintf("%s: 'proto_paths' must not contain empty entries", prefix))
			}
		}
		if _, err := regexp.Compile(dep.FilenameRegex); err != nil {
			errs = append(errs, fmt.Sprintf("%s: invalid 'filename_regex' %q: %v", prefix, dep.FilenameRegex, err))
		}
	}

	return errs
}
