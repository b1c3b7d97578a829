package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/rs/zerolog"

	"github.com/bianoble/protovend/internal/check"
	"github.com/bianoble/protovend/internal/lock"
	"github.com/bianoble/protovend/internal/logging"
	"github.com/bianoble/protovend/internal/output"
	"github.com/bianoble/protovend/internal/source"
)

// ErrMissingDirectory is reported for a proto path that does not exist in
// the checked out repository.
var ErrMissingDirectory = errors.New("directory does not exist in repository")

// VendorEngine materializes a lockfile into the output tree.
type VendorEngine struct {
	Provider source.Provider
	Checker  check.Checker
	Output   *output.Tree
}

// Vendor rebuilds the output tree from lf. The tree is emptied first, so
// files from a previous run never survive.
//
// Failures confined to one dependency or proto path are collected and
// returned as a *BatchError after every other path was vendored. Failing to
// write the tree is fatal and returned immediately.
func (e *VendorEngine) Vendor(ctx context.Context, lf lock.Lockfile) (*VendorResult, error) {
	log := logging.Get("vendor")
	result := &VendorResult{}

	if err := e.Output.Prepare(); err != nil {
		return result, err
	}

	checkouts := make(map[string]*source.Checkout)
	for _, imp := range lf.Imports {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		repo := imp.URL.String()
		if !imp.Pinned() {
			result.Errors = append(result.Errors, DependencyError{Repo: repo, Err: errors.New("not pinned to a commit, run install first")})
			continue
		}

		co, err := e.checkout(ctx, checkouts, imp)
		if err != nil {
			result.Errors = append(result.Errors, DependencyError{Repo: repo, Err: err})
			continue
		}

		filter, err := regexp.Compile(imp.FilenameRegex)
		if err != nil {
			result.Errors = append(result.Errors, DependencyError{Repo: repo, Err: fmt.Errorf("invalid filename_regex: %w", err)})
			continue
		}

		v := &importVendorer{
			tree:    e.Output,
			imp:     imp,
			workDir: co.Dir,
			srcDir:  filepath.Join(co.Dir, imp.ProtoDir),
			filter:  filter,
			visited: make(map[string]bool),
			result:  result,
			log:     log.With().Str("repo", repo).Logger(),
		}
		for _, p := range imp.ProtoPaths {
			err := e.Checker.Check(co.Dir, imp.ProtoDir, p)
			if err == nil {
				err = v.vendorPath(p)
			}
			if err == nil {
				continue
			}
			var we *output.WriteError
			if errors.As(err, &we) {
				return result, err
			}
			log.Error().Err(err).Str("repo", repo).Str("path", p).Msg("Proto path failed")
			result.Errors = append(result.Errors, DependencyError{Repo: repo, Path: p, Err: err})
		}
		log.Info().Str("repo", repo).Str("commit", imp.ShortCommit()).Msg("Vendored")
	}

	if len(result.Errors) > 0 {
		return result, &BatchError{Stage: "vendor", Errors: result.Errors}
	}
	return result, nil
}

// checkout resolves imp at its pinned commit, at most once per repository
// and commit.
func (e *VendorEngine) checkout(ctx context.Context, memo map[string]*source.Checkout, imp lock.Import) (*source.Checkout, error) {
	key := imp.URL.Identity() + "@" + imp.Commit
	if co, ok := memo[key]; ok {
		return co, nil
	}
	co, err := e.Provider.Resolve(ctx, imp.URL, imp.Branch, imp.Commit)
	if err != nil {
		return nil, err
	}
	memo[key] = co
	return co, nil
}

// importVendorer copies the files of one import. visited holds output paths
// and spans all of its proto paths, so shared and cyclic references are
// written once per destination.
type importVendorer struct {
	tree    *output.Tree
	imp     lock.Import
	workDir string
	srcDir  string
	filter  *regexp.Regexp
	visited map[string]bool
	result  *VendorResult
	log     zerolog.Logger
}

func (v *importVendorer) vendorPath(protoPath string) error {
	root := filepath.Join(v.srcDir, protoPath)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrMissingDirectory, filepath.ToSlash(filepath.Join(v.imp.ProtoDir, protoPath)))
	}

	files, err := SelectFiles(root, v.filter)
	if err != nil {
		return fmt.Errorf("listing %s: %w", protoPath, err)
	}
	if len(files) == 0 {
		v.log.Warn().Str("path", protoPath).Str("filter", v.imp.FilenameRegex).Msg("No files selected")
	}
	for _, f := range files {
		if err := v.copy(v.srcDir, protoPath, f, false); err != nil {
			return err
		}
	}
	return nil
}

// copy writes file to destRoot/<file relative to base/destRoot> and follows
// its references when the import asks for it.
func (v *importVendorer) copy(base, destRoot, file string, reference bool) error {
	rel, err := filepath.Rel(filepath.Join(base, destRoot), file)
	if err != nil {
		return err
	}
	dest := filepath.Join(destRoot, rel)
	if v.visited[dest] {
		return nil
	}
	v.visited[dest] = true

	if err := v.tree.Write(dest, file); err != nil {
		return err
	}
	v.result.Written = append(v.result.Written, FileAction{
		Path:      filepath.ToSlash(dest),
		Repo:      v.imp.URL.String(),
		Reference: reference,
	})
	v.log.Debug().Str("file", filepath.ToSlash(dest)).Bool("reference", reference).Msg("Copied")

	if !v.imp.ResolveDependency {
		return nil
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.ToSlash(dest), err)
	}
	for _, ref := range ParseReferences(content) {
		target, refBase, ok := resolveReference(v.workDir, v.srcDir, ref)
		if !ok {
			if !slices.Contains(v.result.External, ref) {
				v.result.External = append(v.result.External, ref)
			}
			v.log.Debug().Str("reference", ref).Msg("Reference is not in repository, skipping")
			continue
		}
		dir := filepath.Dir(filepath.Clean(filepath.FromSlash(ref)))
		if err := v.copy(refBase, dir, target, true); err != nil {
			return err
		}
	}
	return nil
}
