// Package pathlist builds the ordered, de-duplicated directory lists the
// shared library finders search in. The build order is the contract: for
// names that exist under more than one prefix, whichever prefix comes first
// in the list wins, so every function here is careful to preserve input
// order and only ever drop entries, never reorder them.
package pathlist

import (
	"os"
	"path/filepath"
)

// PathList is an ordered list of directories. Order matters: it is the
// search precedence.
type PathList []string

// LinuxSuffixes and WindowsSuffixes return the fixed suffix-expansion set
// for an operating system,
// matching distri's "prefix -> {prefix, prefix/lib, prefix/qt5/lib}" rule
// for Linux and the bin-based analog for Windows.
func LinuxSuffixes() []string   { return []string{"", "lib", "qt5/lib"} }
func WindowsSuffixes() []string { return []string{"", "bin", "qt5/bin"} }

// ExpandPrefixes emits, for each prefix P and each suffix S (in that
// nesting order), the path P/S -- skipping the empty suffix only when
// includeBarePrefix is false.
func ExpandPrefixes(prefixes []string, suffixes []string, includeBarePrefix bool) PathList {
	var out PathList
	for _, p := range prefixes {
		for _, s := range suffixes {
			if s == "" {
				if !includeBarePrefix {
					continue
				}
				out = append(out, cleanJoin(p))
				continue
			}
			out = append(out, cleanJoin(p, s))
		}
	}
	return out
}

func cleanJoin(parts ...string) string {
	return filepath.Clean(filepath.Join(parts...))
}

// Dedup returns a new PathList containing only the first occurrence of
// each directory, in original order, and drops directories that do not
// exist on disk.
func Dedup(in PathList, exists func(string) bool) PathList {
	seen := make(map[string]bool, len(in))
	out := make(PathList, 0, len(in))
	for _, p := range in {
		if seen[p] {
			continue
		}
		seen[p] = true
		if exists != nil && !exists(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// DirExists is the default existence predicate used by Dedup: a directory
// that stat-fails or is a regular file is dropped.
func DirExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// Concat joins path lists in argument order, the building block every
// platform-specific SearchPathList constructor uses to express its
// "A ++ B ++ C" build order from spec.md section 4.3.
func Concat(lists ...PathList) PathList {
	var total int
	for _, l := range lists {
		total += len(l)
	}
	out := make(PathList, 0, total)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// Contains reports whether path (after cleaning) is already present.
func (pl PathList) Contains(path string) bool {
	clean := cleanJoin(path)
	for _, p := range pl {
		if p == clean {
			return true
		}
	}
	return false
}
