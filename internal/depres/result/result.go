// Package result holds the per-target and per-batch output of a solve:
// BinaryDependenciesResult(+List) from spec.md section 4.8, plus the
// derived helpers callers use to decide what to install.
package result

import (
	"github.com/distr1/distri-deploy/internal/depres/platform"
	"github.com/distr1/distri-deploy/internal/depres/rpath"
)

// StatusKind discriminates the three ways a dependency can resolve.
type StatusKind int

const (
	Found StatusKind = iota
	NotFound
	Excluded
)

func (k StatusKind) String() string {
	switch k {
	case Found:
		return "found"
	case NotFound:
		return "not found"
	case Excluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// Status is the outcome recorded for one dependency name. Path and RPath
// are only meaningful when Kind == Found.
type Status struct {
	Kind  StatusKind
	Path  string
	RPath rpath.RPath
}

// Entry is one resolved dependency, in BFS discovery order from the
// target.
type Entry struct {
	LibraryName string
	Status      Status
}

// Result is the per-target output of one solve.
type Result struct {
	TargetPath string
	OS         platform.OS
	Entries    []Entry

	solved bool
	index  map[string]int // folded name -> index into Entries
}

// New returns an empty, solved Result for targetPath.
func New(targetPath string, os platform.OS) *Result {
	return &Result{
		TargetPath: targetPath,
		OS:         os,
		solved:     true,
		index:      make(map[string]int),
	}
}

func (r *Result) fold(name string) string {
	return platform.Platform{OS: r.OS}.FoldName(name)
}

// AddFound records name as resolved at path. Idempotent by name: a
// duplicate add for an already-recorded name is silently ignored, per
// spec.md section 4.8.
func (r *Result) AddFound(name, path string, rp rpath.RPath) {
	key := r.fold(name)
	if _, ok := r.index[key]; ok {
		return
	}
	r.index[key] = len(r.Entries)
	r.Entries = append(r.Entries, Entry{
		LibraryName: name,
		Status:      Status{Kind: Found, Path: path, RPath: rp},
	})
}

// AddNotFound records name as unresolved and marks the result unsolved.
func (r *Result) AddNotFound(name string) {
	key := r.fold(name)
	if _, ok := r.index[key]; ok {
		return
	}
	r.index[key] = len(r.Entries)
	r.Entries = append(r.Entries, Entry{
		LibraryName: name,
		Status:      Status{Kind: NotFound},
	})
	r.solved = false
}

// AddExcluded records name as excluded from redistribution. Does not
// affect solvedness.
func (r *Result) AddExcluded(name string) {
	key := r.fold(name)
	if _, ok := r.index[key]; ok {
		return
	}
	r.index[key] = len(r.Entries)
	r.Entries = append(r.Entries, Entry{
		LibraryName: name,
		Status:      Status{Kind: Excluded},
	})
}

// IsSolved reports whether no entry has status NotFound.
func (r *Result) IsSolved() bool {
	return r.solved
}

// IsEmpty reports whether the target has no recorded dependencies at all.
func (r *Result) IsEmpty() bool {
	return len(r.Entries) == 0
}

// LibrariesToRedistribute returns the entries with status Found, in
// discovery order, deduplicated by construction.
func (r *Result) LibrariesToRedistribute() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Status.Kind == Found {
			out = append(out, e)
		}
	}
	return out
}

// List is the output of a multi-target solve: one Result per target,
// sharing a single operating system.
type List struct {
	OS      platform.OS
	Results []Result
}

// IsSolved reports whether every Result in the list is solved.
func (l *List) IsSolved() bool {
	for i := range l.Results {
		if !l.Results[i].IsSolved() {
			return false
		}
	}
	return true
}

// RedistributePaths returns the union, across all results, of paths to
// redistribute, deduplicated in first-insertion order. Deduplication uses
// OS-aware equality: case-insensitive on Windows, exact on Linux.
func (l *List) RedistributePaths() []string {
	plat := platform.Platform{OS: l.OS}
	var out []string
	seen := make(map[string]bool)
	for i := range l.Results {
		for _, e := range l.Results[i].LibrariesToRedistribute() {
			key := plat.FoldName(e.Status.Path)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, e.Status.Path)
		}
	}
	return out
}
