package engine

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bianoble/protovend/internal/sandbox"
)

var (
	// importStatement matches a proto import anywhere in the text. Only the
	// quoted path is captured.
	importStatement = regexp.MustCompile(`\bimport\s+(?:(?:public|weak)\s+)?"([\w./\-]+)"\s*;`)

	comment = regexp.MustCompile(`(?s)/\*.*?\*/|//[^\n]*`)
)

// ParseReferences returns the distinct import paths in content, in order of
// first appearance. Imports inside comments are ignored.
func ParseReferences(content []byte) []string {
	var refs []string
	seen := make(map[string]bool)
	stripped := comment.ReplaceAll(content, []byte(" "))
	for _, m := range importStatement.FindAllSubmatch(stripped, -1) {
		ref := string(m[1])
		if seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	return refs
}

// resolveReference locates ref inside a checkout. It looks under protoRoot
// first and then under workDir. It returns the file, the base it was found
// under, and false when ref is external to the checkout.
func resolveReference(workDir, protoRoot, ref string) (string, string, bool) {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", "", false
	}
	for _, base := range []string{protoRoot, workDir} {
		candidate := filepath.Join(base, clean)
		rel, err := filepath.Rel(workDir, candidate)
		if err != nil {
			continue
		}
		if _, err := sandbox.ValidatePath(workDir, rel); err != nil {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, base, true
		}
	}
	return "", "", false
}
