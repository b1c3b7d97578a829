// Package output owns the vendored proto tree inside a project.
package output

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/bianoble/protovend/internal/sandbox"
)

// Dir is the output tree location relative to the project root.
const Dir = "third_party/protovend"

// WriteError is a failure to modify the output tree. It is always fatal:
// a tree that could not be written completely cannot be trusted.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing output tree %s: %s", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Tree is the output directory of one project. It is rebuilt from nothing
// on every vendoring run.
type Tree struct {
	ProjectRoot string
}

// New returns the output tree of projectRoot.
func New(projectRoot string) *Tree {
	return &Tree{ProjectRoot: projectRoot}
}

// Root returns the absolute path of the tree.
func (t *Tree) Root() string {
	return filepath.Join(t.ProjectRoot, Dir)
}

// Prepare removes the tree if present and recreates it empty.
func (t *Tree) Prepare() error {
	if err := sandbox.SafeRemoveAll(t.ProjectRoot, Dir); err != nil {
		return &WriteError{Path: Dir, Err: err}
	}
	if err := sandbox.SafeMkdirAll(t.ProjectRoot, Dir, 0755); err != nil {
		return &WriteError{Path: Dir, Err: err}
	}
	return nil
}

// Write copies the file at src to dest, a path relative to the tree root.
// dest may not leave the tree.
func (t *Tree) Write(dest, src string) error {
	if err := sandbox.SafeCopy(t.Root(), dest, src); err != nil {
		return &WriteError{Path: filepath.Join(Dir, dest), Err: err}
	}
	return nil
}

// Files lists every file in the tree, relative to its root, sorted.
func (t *Tree) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(t.Root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(t.Root(), path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing output tree: %w", err)
	}
	slices.Sort(files)
	return files, nil
}
