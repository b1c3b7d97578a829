package source

import (
	"context"
	"fmt"

	"github.com/bianoble/protovend/internal/repourl"
)

// Provider pins a repository to a commit and materializes it on disk.
type Provider interface {
	// Resolve checks out url at commit when commit is non-empty, otherwise
	// at the tip of branch, and reports the commit actually checked out.
	Resolve(ctx context.Context, url repourl.URL, branch, commit string) (*Checkout, error)
}

// Checkout is a local working directory at a known commit.
type Checkout struct {
	Dir    string
	Commit string
}

// SourceError represents an error associated with a specific repository operation.
type SourceError struct {
	Repo      string
	Operation string
	Err       error
	Hint      string
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("%s: %s failed: %s", e.Repo, e.Operation, e.Err)
	if e.Hint != "" {
		msg += " — " + e.Hint
	}
	return msg
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
