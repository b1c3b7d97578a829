// Package sandbox keeps filesystem writes inside a root directory.
package sandbox

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ValidatePath resolves rel against root, following symlinks in whatever
// part of the path already exists, and fails if the result leaves root.
func ValidatePath(root, rel string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving root symlinks: %w", err)
	}

	resolved, err := resolveExisting(filepath.Clean(filepath.Join(realRoot, rel)))
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", rel, err)
	}

	if !within(realRoot, resolved) {
		return "", fmt.Errorf("path '%s' resolves to '%s' which is outside '%s'", rel, resolved, realRoot)
	}
	return resolved, nil
}

func within(root, path string) bool {
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

// resolveExisting evaluates symlinks for the longest existing prefix of path
// and re-attaches the missing remainder.
func resolveExisting(path string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved, nil
	}

	parent := filepath.Dir(path)
	if parent == path {
		return path, nil
	}
	resolvedParent, err := resolveExisting(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(path)), nil
}

// SafeCopy copies the file at src to rel inside root, creating parent
// directories. The destination is replaced atomically.
func SafeCopy(root, rel, src string) error {
	dest, err := ValidatePath(root, rel)
	if err != nil {
		return err
	}
	if filepath.Clean(rel) == "." {
		return fmt.Errorf("refusing to copy over root %s", root)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, ".protovend-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", dest, err)
	}

	success = true
	return nil
}

// SafeRemoveAll recursively removes rel inside root. Removing root itself
// is refused.
func SafeRemoveAll(root, rel string) error {
	resolved, err := ValidatePath(root, rel)
	if err != nil {
		return err
	}
	realRoot, err := ValidatePath(root, ".")
	if err != nil {
		return err
	}
	if resolved == realRoot {
		return fmt.Errorf("refusing to remove root %s", root)
	}
	return os.RemoveAll(resolved)
}

// SafeMkdirAll creates directories within root.
func SafeMkdirAll(root, rel string, perm os.FileMode) error {
	resolved, err := ValidatePath(root, rel)
	if err != nil {
		return err
	}
	return os.MkdirAll(resolved, perm)
}
