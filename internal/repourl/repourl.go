// Package repourl parses git remote addresses into a protocol-independent
// repository identity.
package repourl

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// scpLike matches the scp-style ssh form, e.g. git@github.com:owner/repo.git.
var scpLike = regexp.MustCompile(`^(?:[^@/]+@)?([^:/]+):(.+)$`)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// URL is a parsed repository address. The raw form is kept for cloning and
// serialization; comparisons go through Identity.
type URL struct {
	raw   string
	host  string
	path  string
	local bool
}

// Parse parses a repository address. Accepted forms are scp-style ssh,
// ssh://, git://, http(s)://, file:// and local filesystem paths.
func Parse(raw string) (URL, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return URL{}, fmt.Errorf("repository url is empty")
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return URL{}, fmt.Errorf("parsing repository url %q: %w", s, err)
		}
		switch strings.ToLower(u.Scheme) {
		case "file":
			if u.Path == "" {
				return URL{}, fmt.Errorf("repository url %q has no path", s)
			}
			return URL{raw: s, path: filepath.Clean(u.Path), local: true}, nil
		case "ssh", "git+ssh", "git", "http", "https":
			return remote(s, u.Hostname(), u.Path)
		default:
			return URL{}, fmt.Errorf("unsupported scheme %q in repository url %q", u.Scheme, s)
		}
	}

	if filepath.IsAbs(s) || strings.HasPrefix(s, ".") {
		return URL{raw: s, path: filepath.Clean(s), local: true}, nil
	}

	if m := scpLike.FindStringSubmatch(s); m != nil {
		return remote(s, m[1], m[2])
	}

	return URL{}, fmt.Errorf("unrecognised repository url %q — expected git@host:owner/repo.git or https://host/owner/repo.git", s)
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(raw string) URL {
	u, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

func remote(raw, host, p string) (URL, error) {
	p = strings.Trim(p, "/")
	p = strings.TrimSuffix(p, ".git")
	if host == "" || p == "" {
		return URL{}, fmt.Errorf("repository url %q must name a host and a path", raw)
	}
	return URL{raw: raw, host: strings.ToLower(host), path: p}, nil
}

// String returns the address as it was written.
func (u URL) String() string { return u.raw }

// IsZero reports whether u is the zero URL.
func (u URL) IsZero() bool { return u.raw == "" }

// IsLocal reports whether u points at a repository on the local filesystem.
func (u URL) IsLocal() bool { return u.local }

// Identity returns the protocol-independent key of the repository.
func (u URL) Identity() string {
	if u.local {
		return "file://" + filepath.ToSlash(u.path)
	}
	return u.host + "/" + strings.ToLower(u.path)
}

// Equal reports whether u and other name the same repository.
func (u URL) Equal(other URL) bool {
	return u.Identity() == other.Identity()
}

// SanitisedPath returns the default vendoring path for the repository:
// the last two path segments, lowercased, with non-alphanumerics removed.
func (u URL) SanitisedPath() string {
	segments := strings.Split(filepath.ToSlash(u.path), "/")
	var kept []string
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		kept = append(kept, seg)
	}
	if len(kept) > 2 {
		kept = kept[len(kept)-2:]
	}
	for i, seg := range kept {
		kept[i] = nonAlphanumeric.ReplaceAllString(strings.ToLower(strings.TrimSuffix(seg, ".git")), "")
	}
	return path.Join(kept...)
}

// Compare orders URLs by identity.
func Compare(a, b URL) int {
	return strings.Compare(a.Identity(), b.Identity())
}

// MarshalYAML writes the URL as its raw string.
func (u URL) MarshalYAML() (any, error) {
	return u.raw, nil
}

// UnmarshalYAML parses a scalar node into a URL.
func (u *URL) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
