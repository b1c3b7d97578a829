// Package check enforces house rules on a repository layout before any of
// its files are vendored.
package check

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bianoble/protovend/internal/sandbox"
)

// Checker validates the layout of protoDir/protoPath inside workDir.
type Checker interface {
	Check(workDir, protoDir, protoPath string) error
}

// Violation is a broken house rule.
type Violation struct {
	Path   string
	Rule   string
	Detail string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: violates %s: %s", v.Path, v.Rule, v.Detail)
}

// Rule names reported in Violation.Rule.
const (
	RuleRelativePath   = "relative-path"
	RuleContained      = "contained"
	RulePackageLayout  = "package-matches-directory"
	RuleReadableSource = "readable-source"
)

var packageStatement = regexp.MustCompile(`(?m)^\s*package\s+([\w.]+)\s*;`)

// HouseRules is the default Checker.
//
// Both paths must be relative and resolve inside the working directory,
// following symlinks. When PackageLayout is set, every .proto file under the
// path that declares a package must declare the one matching its directory
// relative to protoDir (proto/acme/billing/x.proto -> package acme.billing).
type HouseRules struct {
	PackageLayout bool
}

func (h HouseRules) Check(workDir, protoDir, protoPath string) error {
	for _, p := range []string{protoDir, protoPath} {
		if filepath.IsAbs(p) {
			return &Violation{Path: p, Rule: RuleRelativePath, Detail: "path must be relative to the repository"}
		}
	}

	joined := filepath.Join(protoDir, protoPath)
	if rel, err := filepath.Rel(filepath.Clean(protoDir), joined); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return &Violation{Path: protoPath, Rule: RuleContained, Detail: fmt.Sprintf("escapes proto_dir %q", protoDir)}
	}

	protoRoot, err := sandbox.ValidatePath(workDir, protoDir)
	if err != nil {
		return &Violation{Path: protoDir, Rule: RuleContained, Detail: err.Error()}
	}
	target, err := sandbox.ValidatePath(workDir, joined)
	if err != nil {
		return &Violation{Path: joined, Rule: RuleContained, Detail: err.Error()}
	}

	if !h.PackageLayout {
		return nil
	}
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		// A missing directory is reported by the vendoring pipeline.
		return nil
	}
	return checkPackages(protoRoot, target)
}

func checkPackages(protoRoot, target string) error {
	return filepath.WalkDir(target, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &Violation{Path: path, Rule: RuleReadableSource, Detail: walkErr.Error()}
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".proto") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return &Violation{Path: path, Rule: RuleReadableSource, Detail: err.Error()}
		}
		m := packageStatement.FindSubmatch(content)
		if m == nil {
			return nil
		}

		relDir, err := filepath.Rel(protoRoot, filepath.Dir(path))
		if err != nil || relDir == "." {
			return nil
		}
		want := strings.ReplaceAll(filepath.ToSlash(relDir), "/", ".")
		if got := string(m[1]); got != want {
			rel, _ := filepath.Rel(protoRoot, path)
			return &Violation{
				Path:   rel,
				Rule:   RulePackageLayout,
				Detail: fmt.Sprintf("declares package %q, expected %q", got, want),
			}
		}
		return nil
	})
}

// IsViolation reports whether err is a house-rule violation.
func IsViolation(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}
