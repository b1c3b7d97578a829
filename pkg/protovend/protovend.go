// Package protovend provides the public Go library API for protovend.
//
// protovend vendors .proto files from remote git repositories into a
// project. Declared dependencies live in .protovend.yml, the commits they
// were resolved to in .protovend.lock, and the copied files under
// third_party/protovend.
//
// # Basic Usage
//
//	client, err := protovend.New(protovend.Options{ProjectRoot: "/path/to/project"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Declare a dependency
//	_, err = client.Add(protovend.AddOptions{URL: "git@github.com:acme/protos.git"})
//
//	// Pin and vendor
//	result, err := client.Install(ctx)
package protovend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bianoble/protovend/internal/cache"
	"github.com/bianoble/protovend/internal/check"
	"github.com/bianoble/protovend/internal/config"
	"github.com/bianoble/protovend/internal/engine"
	"github.com/bianoble/protovend/internal/lock"
	"github.com/bianoble/protovend/internal/output"
	"github.com/bianoble/protovend/internal/repourl"
	"github.com/bianoble/protovend/internal/source"
	"github.com/bianoble/protovend/internal/version"
)

// OutputDir is the vendored tree relative to the project root.
const OutputDir = output.Dir

// Options configures a protovend client.
type Options struct {
	// ProjectRoot is the directory holding .protovend.yml. Default: ".".
	ProjectRoot string

	// CacheDir is the repository cache. If empty, uses the default
	// (~/.cache/protovend/repos).
	CacheDir string

	// PackageLayout rejects proto paths whose files declare a package that
	// does not match their directory.
	PackageLayout bool
}

// Client is the main entry point for the protovend library.
type Client struct {
	projectRoot string
	configPath  string
	lockPath    string
	cache       *cache.Cache
	provider    source.Provider
	checker     check.Checker
}

// New creates a new protovend Client.
func New(opts Options) (*Client, error) {
	root := opts.ProjectRoot
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		cacheDir = cache.DefaultDir()
	}
	c, err := cache.New(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("initializing cache: %w", err)
	}

	return &Client{
		projectRoot: root,
		configPath:  filepath.Join(root, config.FileName),
		lockPath:    filepath.Join(root, lock.FileName),
		cache:       c,
		provider:    &source.GitProvider{Cache: c},
		checker:     check.HouseRules{PackageLayout: opts.PackageLayout},
	}, nil
}

// ProjectRoot returns the absolute project directory.
func (c *Client) ProjectRoot() string { return c.projectRoot }

// ConfigPath returns the path of the declared configuration file.
func (c *Client) ConfigPath() string { return c.configPath }

// LockPath returns the path of the lock file.
func (c *Client) LockPath() string { return c.lockPath }

// InitResult reports which project files Init created.
type InitResult struct {
	ConfigCreated bool
	LockCreated   bool
}

// Init creates an empty configuration and lock stamped with the running
// version. Existing files are left untouched.
func (c *Client) Init() (*InitResult, error) {
	result := &InitResult{}

	if _, err := os.Stat(c.configPath); errors.Is(err, os.ErrNotExist) {
		if err := config.Save(c.configPath, config.New(version.Version)); err != nil {
			return nil, err
		}
		result.ConfigCreated = true
	} else if err != nil {
		return nil, fmt.Errorf("checking %s: %w", config.FileName, err)
	}

	if _, err := os.Stat(c.lockPath); errors.Is(err, os.ErrNotExist) {
		lf, err := lock.LoadOrEmpty(c.lockPath, version.Version)
		if err != nil {
			return nil, err
		}
		if err := lock.Save(c.lockPath, lf); err != nil {
			return nil, err
		}
		result.LockCreated = true
	} else if err != nil {
		return nil, fmt.Errorf("checking %s: %w", lock.FileName, err)
	}

	return result, nil
}

// AddOptions declares one dependency. Empty fields take their defaults.
type AddOptions struct {
	URL               string
	Branch            string
	ProtoDir          string
	ProtoPaths        []string
	FilenameRegex     string
	ResolveDependency bool
}

// AddResult reports how Add changed the configuration.
type AddResult struct {
	Dependency config.Dependency
	Outcome    AddOutcome
}

// Add declares a dependency, merging it into an existing entry for the same
// repository. When no proto path is given, the repository's sanitised path
// is used. Nothing is resolved; run Install afterwards.
func (c *Client) Add(opts AddOptions) (*AddResult, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}

	url, err := repourl.Parse(opts.URL)
	if err != nil {
		return nil, err
	}

	dep := config.Dependency{
		URL:               url,
		Branch:            orDefault(opts.Branch, config.DefaultBranch),
		ProtoDir:          orDefault(opts.ProtoDir, config.DefaultProtoDir),
		ProtoPaths:        opts.ProtoPaths,
		FilenameRegex:     orDefault(opts.FilenameRegex, config.DefaultFilenameRegex),
		ResolveDependency: opts.ResolveDependency,
	}
	if len(dep.ProtoPaths) == 0 {
		dep.ProtoPaths = []string{url.SanitisedPath()}
	}

	outcome := cfg.AddDependency(dep)
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, &config.ValidationError{Errors: errs}
	}
	if outcome.Changed() {
		if err := config.Save(c.configPath, cfg); err != nil {
			return nil, err
		}
	}

	return &AddResult{Dependency: *cfg.Find(url), Outcome: outcome}, nil
}

// SyncResult holds the outcome of Install or Update.
type SyncResult struct {
	Reconcile *ReconcileResult
	Vendor    *VendorResult
}

// Install pins every declared dependency that is new, changed or unpinned,
// reusing existing pins for the rest, then rebuilds the vendored tree from
// the lock.
func (c *Client) Install(ctx context.Context) (*SyncResult, error) {
	return c.sync(ctx, engine.ForceNone())
}

// Update re-resolves dependencies to their branch tips and rebuilds the
// vendored tree. An empty url updates every dependency; otherwise only the
// named repository is re-resolved, and it must be declared.
func (c *Client) Update(ctx context.Context, url string) (*SyncResult, error) {
	if url == "" {
		return c.sync(ctx, engine.ForceAll())
	}
	u, err := repourl.Parse(url)
	if err != nil {
		return nil, err
	}
	return c.sync(ctx, engine.ForceRepo(u))
}

// sync loads the project, reconciles the lock and vendors it. Per-dependency
// failures from either stage are reported together after both ran.
func (c *Client) sync(ctx context.Context, force engine.ForceScope) (*SyncResult, error) {
	cfg, lf, err := c.load()
	if err != nil {
		return nil, err
	}
	if url, ok := force.Repo(); ok && cfg.Find(url) == nil {
		return nil, fmt.Errorf("repository %s is not declared in %s", url, config.FileName)
	}

	result := &SyncResult{}
	locker := &engine.LockEngine{Provider: c.provider, LockPath: c.lockPath}
	rec, recErr := locker.Reconcile(ctx, *cfg, lf, force)
	result.Reconcile = rec
	var batch *engine.BatchError
	if recErr != nil && !errors.As(recErr, &batch) {
		return result, recErr
	}

	vendorer := &engine.VendorEngine{Provider: c.provider, Checker: c.checker, Output: output.New(c.projectRoot)}
	vres, vendErr := vendorer.Vendor(ctx, *rec.Lockfile)
	result.Vendor = vres
	if vendErr != nil && !errors.As(vendErr, &batch) {
		return result, vendErr
	}

	return result, errors.Join(recErr, vendErr)
}

// Status reports every declared dependency against the lock, and lock
// entries no longer declared. It never touches the network.
func (c *Client) Status() ([]Status, error) {
	cfg, lf, err := c.load()
	if err != nil {
		return nil, err
	}
	return engine.Statuses(*cfg, lf), nil
}

// Cleanup deletes the repository cache.
func (c *Client) Cleanup() error {
	return c.cache.Clean()
}

// CacheSize returns the size of the repository cache in bytes.
func (c *Client) CacheSize() (int64, error) {
	return c.cache.Size()
}

// CachePath returns the repository cache directory.
func (c *Client) CachePath() string {
	return c.cache.Path()
}

// load reads the configuration and the lock. Both must exist and accept the
// running version before anything is resolved.
func (c *Client) load() (*config.Config, *lock.Lockfile, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, nil, err
	}
	lf, err := lock.Load(c.lockPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, lf, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
