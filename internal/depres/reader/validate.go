package reader

import "github.com/distr1/distri-deploy/internal/depres/platform"

// IsExistingValidSharedLibrary reports whether path exists and is a valid
// shared library for plat's operating system. It is the
// "IsExistingValidSharedLibrary" capability spec.md section 4.6 requires
// finders to consult before accepting a candidate; it opens and closes its
// own, throwaway Reader so it never interferes with the read-at-most-once
// bookkeeping the graph does with the reader it was given for the primary
// BFS traversal.
func IsExistingValidSharedLibrary(path string, plat platform.Platform) bool {
	r := New()
	if err := r.Open(path, plat); err != nil {
		return false
	}
	defer r.Close()
	if plat.OS != platform.Unknown && r.plat.OS != plat.OS {
		return false
	}
	return r.IsExecutableOrSharedLibrary()
}
