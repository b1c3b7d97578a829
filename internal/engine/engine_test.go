package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bianoble/protovend/internal/config"
	"github.com/bianoble/protovend/internal/repourl"
	"github.com/bianoble/protovend/internal/source"
)

// fakeRepo is an in-memory remote: branch tips and one directory per commit.
type fakeRepo struct {
	tips  map[string]string
	trees map[string]string
}

// fakeProvider serves fakeRepos by repository identity and records calls.
type fakeProvider struct {
	mu    sync.Mutex
	repos map[string]*fakeRepo
	fail  map[string]error
	calls []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{repos: make(map[string]*fakeRepo), fail: make(map[string]error)}
}

func (p *fakeProvider) add(url, branch, commit, dir string) {
	id := repourl.MustParse(url).Identity()
	repo := p.repos[id]
	if repo == nil {
		repo = &fakeRepo{tips: make(map[string]string), trees: make(map[string]string)}
		p.repos[id] = repo
	}
	repo.tips[branch] = commit
	repo.trees[commit] = dir
}

func (p *fakeProvider) Resolve(ctx context.Context, url repourl.URL, branch, commit string) (*source.Checkout, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf("%s#%s@%s", url, branch, commit))

	if err := p.fail[url.Identity()]; err != nil {
		return nil, err
	}
	repo := p.repos[url.Identity()]
	if repo == nil {
		return nil, fmt.Errorf("repository %s not found", url)
	}
	if commit == "" {
		commit = repo.tips[branch]
		if commit == "" {
			return nil, fmt.Errorf("branch %s not found", branch)
		}
	}
	dir, ok := repo.trees[commit]
	if !ok {
		return nil, fmt.Errorf("commit %s not found", commit)
	}
	return &source.Checkout{Dir: dir, Commit: commit}, nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// writeTree creates files (slash paths to content) in a fresh directory.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func dependency(url string, paths ...string) config.Dependency {
	return config.Dependency{
		URL:           repourl.MustParse(url),
		Branch:        config.DefaultBranch,
		ProtoDir:      config.DefaultProtoDir,
		ProtoPaths:    paths,
		FilenameRegex: config.DefaultFilenameRegex,
	}
}
