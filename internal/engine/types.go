package engine

import (
	"fmt"
	"strings"

	"github.com/bianoble/protovend/internal/lock"
	"github.com/bianoble/protovend/internal/repourl"
)

// ForceScope selects dependencies that are re-resolved even when the lock
// already pins them.
type ForceScope struct {
	all  bool
	repo *repourl.URL
}

// ForceNone re-resolves only what changed (install).
func ForceNone() ForceScope { return ForceScope{} }

// ForceAll re-resolves every dependency (update).
func ForceAll() ForceScope { return ForceScope{all: true} }

// ForceRepo re-resolves a single repository (update <url>).
func ForceRepo(url repourl.URL) ForceScope { return ForceScope{repo: &url} }

// Selects reports whether url is forced.
func (f ForceScope) Selects(url repourl.URL) bool {
	if f.all {
		return true
	}
	return f.repo != nil && f.repo.Equal(url)
}

// Repo returns the repository of a scope made by ForceRepo.
func (f ForceScope) Repo() (repourl.URL, bool) {
	if f.repo == nil {
		return repourl.URL{}, false
	}
	return *f.repo, true
}

func (f ForceScope) String() string {
	switch {
	case f.all:
		return "all"
	case f.repo != nil:
		return f.repo.String()
	default:
		return "none"
	}
}

// Reconciliation actions.
const (
	ActionReused   = "reused"
	ActionResolved = "resolved"
	ActionFailed   = "failed"
)

// Reasons a dependency is resolved again.
const (
	ReasonNew      = "new"
	ReasonForced   = "forced"
	ReasonUnpinned = "unpinned"
	ReasonChanged  = "changed"
)

// DependencyOutcome records what reconciliation did with one dependency.
type DependencyOutcome struct {
	URL    repourl.URL
	Action string
	Reason string
	Before string
	After  string
	Err    error
}

// DependencyError is a failure confined to one dependency, or to one of its
// proto paths when Path is set.
type DependencyError struct {
	Repo string
	Path string
	Err  error
}

func (e DependencyError) Error() string {
	if e.Path != "" {
		return e.Repo + " (" + e.Path + "): " + e.Err.Error()
	}
	return e.Repo + ": " + e.Err.Error()
}

func (e DependencyError) Unwrap() error {
	return e.Err
}

// BatchError is returned once a batch has done all the work it could while
// some dependencies failed.
type BatchError struct {
	Stage  string
	Errors []DependencyError
}

func (e *BatchError) Error() string {
	noun := "dependencies"
	if len(e.Errors) == 1 {
		noun = "dependency"
	}
	msgs := make([]string, len(e.Errors))
	for i, de := range e.Errors {
		msgs[i] = de.Error()
	}
	return fmt.Sprintf("%d %s failed to %s:\n  - %s", len(e.Errors), noun, e.Stage, strings.Join(msgs, "\n  - "))
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, de := range e.Errors {
		errs[i] = de
	}
	return errs
}

// ReconcileResult holds the outcome of a reconciliation.
type ReconcileResult struct {
	Lockfile *lock.Lockfile
	Outcomes []DependencyOutcome
}

// Failed returns the dependencies that could not be resolved.
func (r *ReconcileResult) Failed() []DependencyError {
	var errs []DependencyError
	for _, o := range r.Outcomes {
		if o.Action == ActionFailed {
			errs = append(errs, DependencyError{Repo: o.URL.String(), Err: o.Err})
		}
	}
	return errs
}

// Resolved counts dependencies that went to the source provider.
func (r *ReconcileResult) Resolved() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == ActionResolved {
			n++
		}
	}
	return n
}

// FileAction records one file written to the output tree.
type FileAction struct {
	Path      string
	Repo      string
	Reference bool
}

// VendorResult holds the outcome of a vendoring run.
type VendorResult struct {
	Written  []FileAction
	External []string
	Errors   []DependencyError
}
