package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/bianoble/protovend/internal/config"
	"github.com/bianoble/protovend/internal/lock"
	"github.com/bianoble/protovend/internal/logging"
	"github.com/bianoble/protovend/internal/repourl"
	"github.com/bianoble/protovend/internal/source"
)

// LockEngine pins declared dependencies to commits and persists the lock.
type LockEngine struct {
	Provider source.Provider
	LockPath string
}

// Reconcile decides, per declared dependency, whether the pin in previous
// can be reused or must be resolved again, then writes the new lock.
//
// Failed dependencies are left out of the new lock. The lock is written
// even when some dependencies fail; a *BatchError is returned afterwards.
// An error writing the lock is returned as is and is fatal.
func (e *LockEngine) Reconcile(ctx context.Context, cfg config.Config, previous *lock.Lockfile, force ForceScope) (*ReconcileResult, error) {
	log := logging.Get("reconcile")
	result := &ReconcileResult{}
	next := lock.New(cfg.MinVersion)

	for _, dep := range mergeDeclared(cfg.Vendor) {
		prev := previous.Find(dep.URL)
		outcome := DependencyOutcome{URL: dep.URL}
		if prev != nil {
			outcome.Before = prev.Commit
		}

		reason := resolutionReason(dep, prev, force)
		if reason == "" {
			imp := *prev
			imp.URL = dep.URL
			next.Imports = append(next.Imports, imp)

			outcome.Action = ActionReused
			outcome.After = prev.Commit
			result.Outcomes = append(result.Outcomes, outcome)
			log.Debug().Str("repo", dep.URL.String()).Str("commit", prev.ShortCommit()).Msg("Reusing pinned commit")
			continue
		}

		outcome.Reason = reason
		if err := ctx.Err(); err != nil {
			outcome.Action = ActionFailed
			outcome.Err = err
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}

		log.Info().Str("repo", dep.URL.String()).Str("branch", dep.Branch).Str("reason", reason).Msg("Resolving")
		co, err := e.Provider.Resolve(ctx, dep.URL, dep.Branch, "")
		if err != nil {
			log.Error().Err(err).Str("repo", dep.URL.String()).Msg("Resolution failed")
			outcome.Action = ActionFailed
			outcome.Err = err
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}

		next.Imports = append(next.Imports, importFrom(dep, co.Commit))
		outcome.Action = ActionResolved
		outcome.After = co.Commit
		result.Outcomes = append(result.Outcomes, outcome)
	}

	result.Lockfile = next
	if err := lock.Save(e.LockPath, next); err != nil {
		return result, fmt.Errorf("saving lockfile: %w", err)
	}

	if failed := result.Failed(); len(failed) > 0 {
		return result, &BatchError{Stage: "resolve", Errors: failed}
	}
	return result, nil
}

// resolutionReason returns why dep must be resolved again, or "" when the
// pin in prev can be reused.
func resolutionReason(dep config.Dependency, prev *lock.Import, force ForceScope) string {
	switch {
	case prev == nil:
		return ReasonNew
	case force.Selects(dep.URL):
		return ReasonForced
	case !prev.Pinned():
		return ReasonUnpinned
	case prev.Branch != dep.Branch,
		prev.ProtoDir != dep.ProtoDir,
		!slices.Equal(prev.ProtoPaths, dep.ProtoPaths),
		prev.FilenameRegex != dep.FilenameRegex,
		prev.ResolveDependency != dep.ResolveDependency:
		return ReasonChanged
	default:
		return ""
	}
}

func importFrom(dep config.Dependency, commit string) lock.Import {
	return lock.Import{
		URL:               dep.URL,
		Branch:            dep.Branch,
		Commit:            commit,
		ProtoDir:          dep.ProtoDir,
		ProtoPaths:        slices.Clone(dep.ProtoPaths),
		FilenameRegex:     dep.FilenameRegex,
		ResolveDependency: dep.ResolveDependency,
	}
}

// mergeDeclared folds dependencies sharing a repository identity into the
// first of them, appending the proto paths of the others.
func mergeDeclared(deps []config.Dependency) []config.Dependency {
	merged := make([]config.Dependency, 0, len(deps))
	index := make(map[string]int)
	for _, dep := range deps {
		if i, ok := index[dep.URL.Identity()]; ok {
			for _, p := range dep.ProtoPaths {
				if !slices.Contains(merged[i].ProtoPaths, p) {
					merged[i].ProtoPaths = append(merged[i].ProtoPaths, p)
				}
			}
			continue
		}
		dep.ProtoPaths = slices.Clone(dep.ProtoPaths)
		index[dep.URL.Identity()] = len(merged)
		merged = append(merged, dep)
	}
	return merged
}

// Status describes a declared dependency against the lock without touching
// the network.
type Status struct {
	URL    repourl.URL
	Commit string
	State  string
}

// Status states.
const (
	StateLocked     = "locked"
	StateUnresolved = "unresolved"
	StateChanged    = "changed"
	StateOrphaned   = "orphaned"
)

// Statuses reports, for every declared dependency, whether the lock pins it
// as declared, and lists lock entries no longer declared.
func Statuses(cfg config.Config, lf *lock.Lockfile) []Status {
	var out []Status
	declared := make(map[string]bool)
	for _, dep := range mergeDeclared(cfg.Vendor) {
		declared[dep.URL.Identity()] = true
		prev := lf.Find(dep.URL)
		switch resolutionReason(dep, prev, ForceNone()) {
		case "":
			out = append(out, Status{URL: dep.URL, Commit: prev.Commit, State: StateLocked})
		case ReasonChanged:
			out = append(out, Status{URL: dep.URL, Commit: prev.Commit, State: StateChanged})
		default:
			out = append(out, Status{URL: dep.URL, State: StateUnresolved})
		}
	}
	if lf != nil {
		for _, imp := range lf.Imports {
			if !declared[imp.URL.Identity()] {
				out = append(out, Status{URL: imp.URL, Commit: imp.Commit, State: StateOrphaned})
			}
		}
	}
	slices.SortStableFunc(out, func(a, b Status) int { return repourl.Compare(a.URL, b.URL) })
	return out
}
