package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bianoble/protovend/internal/repourl"
	"github.com/bianoble/protovend/internal/version"
)

// ErrNotInitialized is returned when the project has no lock file.
var ErrNotInitialized = errors.New("project not initialised — run 'protovend init'")

// Load reads and validates a lock file. A missing file is an error: only
// initialisation may start from an empty lock, see LoadOrEmpty.
func Load(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("reading lockfile %s: %w", path, err)
	}

	var lf Lockfile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing lockfile %s: %w", path, err)
	}
	if lf.Imports == nil {
		lf.Imports = []Import{}
	}

	if errs := Validate(&lf); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	if err := version.Check(FileName, lf.MinVersion); err != nil {
		return nil, err
	}

	return &lf, nil
}

// LoadOrEmpty is Load, except that a missing file yields an empty lockfile
// stamped with minVersion.
func LoadOrEmpty(path, minVersion string) (*Lockfile, error) {
	lf, err := Load(path)
	if errors.Is(err, ErrNotInitialized) {
		return New(minVersion), nil
	}
	return lf, err
}

// Save writes a lockfile atomically using a temp file and rename. Imports are
// written sorted by repository identity so identical content always produces
// identical bytes.
func Save(path string, lf *Lockfile) error {
	out := *lf
	out.Imports = slices.Clone(lf.Imports)
	if out.Imports == nil {
		out.Imports = []Import{}
	}
	slices.SortStableFunc(out.Imports, func(a, b Import) int {
		return repourl.Compare(a.URL, b.URL)
	})

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshaling lockfile: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp lockfile %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp lockfile to %s: %w", path, err)
	}

	return nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lockfile validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Lockfile for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(lf *Lockfile) []string {
	var errs []string

	if !version.Valid(lf.MinVersion) {
		errs = append(errs, fmt.Sprintf("'min_protovend_version' %q is not a semantic version", lf.MinVersion))
	}

	seen := make(map[string]bool)
	for i, imp := range lf.Imports {
		prefix := fmt.Sprintf("import[%d]", i)
		if !imp.URL.IsZero() {
			prefix = fmt.Sprintf("import '%s'", imp.URL)
		}

		if imp.URL.IsZero() {
			errs = append(errs, fmt.Sprintf("%s: 'url' is required", prefix))
		} else if seen[imp.URL.Identity()] {
			errs = append(errs, fmt.Sprintf("%s: duplicate repository", prefix))
		} else {
			seen[imp.URL.Identity()] = true
		}

		if imp.Branch == "" {
			errs = append(errs, fmt.Sprintf("%s: 'branch' is required", prefix))
		}
		if imp.ProtoDir == "" {
			errs = append(errs, fmt.Sprintf("%s: 'proto_dir' is required", prefix))
		}
		if len(imp.ProtoPaths) == 0 {
			errs = append(errs, fmt.Sprintf("%s: 'proto_paths' is required", prefix))
		}
	}

	return errs
}
