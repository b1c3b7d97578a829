package config

import (
	"slices"
)

// AddOutcome describes how AddDependency changed the configuration.
type AddOutcome struct {
	New             bool
	PathAdded       bool
	BranchChanged   bool
	ProtoDirChanged bool
	FilterChanged   bool
	ResolveChanged  bool
}

// Changed reports whether the configuration needs to be written back.
func (o AddOutcome) Changed() bool {
	return o.New || o.PathAdded || o.BranchChanged || o.ProtoDirChanged || o.FilterChanged || o.ResolveChanged
}

// AddDependency merges dep into the configuration. A repository that is
// already declared keeps a single entry: its branch, proto_dir, filter and
// resolve flag are replaced, and dep's proto paths are appended when new.
func (c *Config) AddDependency(dep Dependency) AddOutcome {
	if dep.FilenameRegex == "" {
		dep.FilenameRegex = DefaultFilenameRegex
	}

	existing := c.Find(dep.URL)
	if existing == nil {
		dep.ProtoPaths = slices.Clone(dep.ProtoPaths)
		c.Vendor = append(c.Vendor, dep)
		return AddOutcome{New: true}
	}

	var out AddOutcome
	if existing.Branch != dep.Branch {
		existing.Branch = dep.Branch
		out.BranchChanged = true
	}
	if existing.ProtoDir != dep.ProtoDir {
		existing.ProtoDir = dep.ProtoDir
		out.ProtoDirChanged = true
	}
	if existing.FilenameRegex != dep.FilenameRegex {
		existing.FilenameRegex = dep.FilenameRegex
		out.FilterChanged = true
	}
	if existing.ResolveDependency != dep.ResolveDependency {
		existing.ResolveDependency = dep.ResolveDependency
		out.ResolveChanged = true
	}
	for _, p := range dep.ProtoPaths {
		if !slices.Contains(existing.ProtoPaths, p) {
			existing.ProtoPaths = append(existing.ProtoPaths, p)
			out.PathAdded = true
		}
	}
	return out
}
