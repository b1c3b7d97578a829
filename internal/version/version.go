// Package version holds the running tool version and the minimum-version
// checks applied to project files.
package version

import (
	"fmt"

	"github.com/Masterminds/semver"
)

// Build-time variables set via -ldflags.
var (
	Version = "1.0.0"
	Commit  = "none"
	Date    = "unknown"
)

// TooOldError reports a project file that requires a newer tool.
type TooOldError struct {
	File     string
	Running  string
	Required string
}

func (e *TooOldError) Error() string {
	return fmt.Sprintf("protovend %s is too old for %s — minimum version must be %s", e.Running, e.File, e.Required)
}

// Check verifies that the running version is at least minVersion.
// file names the project file that declared minVersion and is used in errors.
// A running version that is not valid semver (a development build) satisfies
// any requirement.
func Check(file, minVersion string) error {
	return check(Version, file, minVersion)
}

func check(running, file, minVersion string) error {
	required, err := semver.NewVersion(minVersion)
	if err != nil {
		return fmt.Errorf("%s: invalid min_protovend_version %q: %w", file, minVersion, err)
	}
	current, err := semver.NewVersion(running)
	if err != nil {
		return nil
	}
	if current.LessThan(required) {
		return &TooOldError{File: file, Running: running, Required: minVersion}
	}
	return nil
}

// Valid reports whether v parses as a semantic version.
func Valid(v string) bool {
	_, err := semver.NewVersion(v)
	return err == nil
}
