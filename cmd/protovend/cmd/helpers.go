package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/bianoble/protovend/internal/config"
	"github.com/bianoble/protovend/internal/lock"
	"github.com/bianoble/protovend/pkg/protovend"
)

// newClient opens the project in projectDir. The cache directory comes from
// --cache-dir, then settings, then the default.
func newClient() (*protovend.Client, error) {
	dir := cacheDir
	if dir == "" && appSettings != nil {
		dir = appSettings.CacheDir
	}
	return protovend.New(protovend.Options{
		ProjectRoot:   projectDir,
		CacheDir:      dir,
		PackageLayout: packageLayout,
	})
}

// reportSync prints what install or update did.
func reportSync(result *protovend.SyncResult) {
	if result == nil || result.Reconcile == nil {
		return
	}
	for _, o := range result.Reconcile.Outcomes {
		switch o.Action {
		case protovend.ActionResolved:
			before := "(new)"
			if o.Before != "" {
				before = shortCommit(o.Before)
			}
			info("  %-50s  %s → %s", o.URL, before, shortCommit(o.After))
		case protovend.ActionReused:
			detail("%-50s  %s (locked)", o.URL, shortCommit(o.After))
		}
	}
	info("Locked %d dependencies (%d resolved)", len(result.Reconcile.Lockfile.Imports), result.Reconcile.Resolved())
	if result.Vendor == nil {
		return
	}
	for _, f := range result.Vendor.Written {
		if f.Reference {
			detail("%s (referenced)", f.Path)
		} else {
			detail("%s", f.Path)
		}
	}
	for _, ref := range result.Vendor.External {
		detail("skipped external reference %s", ref)
	}
	info("Vendored %d file(s) into %s", len(result.Vendor.Written), protovend.OutputDir)
}

// nextSteps reminds the user which files belong in version control.
func nextSteps() {
	info("")
	info("Commit the following to version control:")
	info("  %s", config.FileName)
	info("  %s", lock.FileName)
	info("  %s/", protovend.OutputDir)
}

// syncFailed reports a run that persisted partial progress.
func syncFailed(err error) error {
	var batch *protovend.BatchError
	if errors.As(err, &batch) {
		info("Completed with errors; successful dependencies were locked and vendored.")
	}
	return err
}

func shortCommit(c string) string {
	if len(c) > 8 {
		return c[:8]
	}
	return c
}

func humanSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbosity > 0 && !quiet {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
