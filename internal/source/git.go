package source

import (
	"context"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/pkg/errors"

	"github.com/bianoble/protovend/internal/cache"
	"github.com/bianoble/protovend/internal/logging"
	"github.com/bianoble/protovend/internal/repourl"
)

const remoteName = "origin"

// GitProvider resolves repositories into clones kept in a Cache. The network
// is only used when the wanted commit or branch tip is not already present.
type GitProvider struct {
	Cache *cache.Cache
	Auth  transport.AuthMethod
}

func (g *GitProvider) Resolve(ctx context.Context, url repourl.URL, branch, commit string) (*Checkout, error) {
	if branch == "" && commit == "" {
		return nil, &SourceError{Repo: url.String(), Operation: "resolve", Err: errors.New("a branch or commit is required")}
	}

	unlock := g.Cache.Lock(url)
	defer unlock()

	dir := g.Cache.Dir(url)
	repo, fresh, err := g.open(ctx, url, dir)
	if err != nil {
		return nil, &SourceError{Repo: url.String(), Operation: "clone", Err: err, Hint: "check the repository url and your access to it"}
	}

	hash, err := g.target(ctx, repo, fresh, branch, commit)
	if err != nil {
		return nil, &SourceError{Repo: url.String(), Operation: "resolve", Err: err, Hint: "check the branch name or pinned commit"}
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, &SourceError{Repo: url.String(), Operation: "checkout", Err: err}
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return nil, &SourceError{Repo: url.String(), Operation: "checkout", Err: errors.Wrapf(err, "checkout %s", hash)}
	}

	return &Checkout{Dir: dir, Commit: hash.String()}, nil
}

// open returns the cached clone for url, cloning it first when missing or
// unreadable. fresh reports whether a clone was just made.
func (g *GitProvider) open(ctx context.Context, url repourl.URL, dir string) (*git.Repository, bool, error) {
	log := logging.Get("source")

	if g.Cache.Has(url) {
		repo, err := git.PlainOpen(dir)
		if err == nil {
			return repo, false, nil
		}
		log.Warn().Err(err).Str("dir", dir).Msg("Discarding unreadable cache entry")
	}
	if err := g.Cache.Remove(url); err != nil {
		return nil, false, err
	}

	log.Info().Str("repo", url.String()).Msg("Cloning repository")
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:        url.String(),
		RemoteName: remoteName,
		Auth:       g.Auth,
		NoCheckout: true,
	})
	if err != nil {
		_ = g.Cache.Remove(url)
		return nil, false, errors.Wrapf(err, "cloning %s", url)
	}
	return repo, true, nil
}

// target picks the commit to check out. A pinned commit that is already in
// the clone needs no fetch.
func (g *GitProvider) target(ctx context.Context, repo *git.Repository, fresh bool, branch, commit string) (plumbing.Hash, error) {
	if commit != "" {
		hash := plumbing.NewHash(commit)
		if _, err := repo.CommitObject(hash); err == nil {
			return hash, nil
		}
		if !fresh {
			if err := g.fetch(ctx, repo); err != nil {
				return plumbing.ZeroHash, err
			}
		}
		if _, err := repo.CommitObject(hash); err != nil {
			return plumbing.ZeroHash, errors.Wrapf(err, "commit %s not found", commit)
		}
		return hash, nil
	}

	if !fresh {
		if err := g.fetch(ctx, repo); err != nil {
			return plumbing.ZeroHash, err
		}
	}
	ref, err := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, branch), true)
	if err != nil {
		return plumbing.ZeroHash, errors.Wrapf(err, "branch %s not found", branch)
	}
	return ref.Hash(), nil
}

func (g *GitProvider) fetch(ctx context.Context, repo *git.Repository) error {
	log := logging.Get("source")
	log.Debug().Msg("Fetching remote branches")
	err := repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteName,
		RefSpecs:   []gitconfig.RefSpec{"+refs/heads/*:refs/remotes/" + remoteName + "/*"},
		Auth:       g.Auth,
		Force:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return errors.Wrap(err, "fetching")
	}
	return nil
}
