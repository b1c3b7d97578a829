package lock

import (
	"github.com/bianoble/protovend/internal/repourl"
)

// FileName is the lock file in the project root.
const FileName = ".protovend.lock"

// Lockfile records what was last successfully resolved. It holds at most one
// Import per repository identity.
type Lockfile struct {
	MinVersion string   `yaml:"min_protovend_version"`
	Imports    []Import `yaml:"imports"`
}

// Import is a declared dependency pinned to a commit. An empty Commit means
// the import must be resolved again on the next reconciliation.
type Import struct {
	URL               repourl.URL `yaml:"url"`
	Branch            string      `yaml:"branch"`
	Commit            string      `yaml:"commit,omitempty"`
	ProtoDir          string      `yaml:"proto_dir"`
	ProtoPaths        []string    `yaml:"proto_paths"`
	FilenameRegex     string      `yaml:"filename_regex"`
	ResolveDependency bool        `yaml:"resolve_dependency"`
}

// New returns an empty lockfile stamped with minVersion.
func New(minVersion string) *Lockfile {
	return &Lockfile{MinVersion: minVersion, Imports: []Import{}}
}

// Find returns the import for url, or nil.
func (lf *Lockfile) Find(url repourl.URL) *Import {
	if lf == nil {
		return nil
	}
	for i := range lf.Imports {
		if lf.Imports[i].URL.Equal(url) {
			return &lf.Imports[i]
		}
	}
	return nil
}

// Pinned reports whether the import has a resolved commit.
func (i Import) Pinned() bool {
	return i.Commit != ""
}

// ShortCommit returns the first eight characters of the pinned commit.
func (i Import) ShortCommit() string {
	if len(i.Commit) > 8 {
		return i.Commit[:8]
	}
	return i.Commit
}
