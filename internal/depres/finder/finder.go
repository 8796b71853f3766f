// Package finder implements SharedLibraryFinder (spec.md section 4.6): the
// Linux and Windows variants of "given a library name and the referring
// binary, return its absolute path or report not-found", sharing a common
// base that handles candidate and Qt-tree validation. Each variant
// implements its own should-distribute delegation to package exclude.
package finder

import (
	"path/filepath"

	"golang.org/x/xerrors"

	"github.com/distr1/distri-deploy/internal/depres/pathlist"
	"github.com/distr1/distri-deploy/internal/depres/platform"
	"github.com/distr1/distri-deploy/internal/depres/qtdir"
	"github.com/distr1/distri-deploy/internal/depres/rpath"
)

// BinaryFile is the minimal view of a binary the finder needs of the
// "referring" side of a lookup: the file whose RPATH (on Linux) provides
// additional search directories for its own dependencies.
type BinaryFile struct {
	AbsolutePath string
	RPath        rpath.RPath
}

// Dir returns the directory containing the referring binary, used for
// origin-relative RPATH expansion.
func (b BinaryFile) Dir() string {
	return filepath.Dir(b.AbsolutePath)
}

// ErrNotFound is wrapped and returned by Find when no candidate directory
// contains a validated library matching name.
var ErrNotFound = xerrors.New("shared library not found")

// ValidateCandidate abstracts "is this path an existing, valid shared
// library for our target platform, and if it looks like a Qt library, does
// it belong to the Qt tree we've committed to" -- the two checks spec.md
// section 4.6 requires before accepting a candidate.
type ValidateCandidate func(path string) bool

// Base holds the state and validation logic shared by the Linux and
// Windows finders: the precomputed search path list, the shared-library
// validity check, and Qt-tree validation frozen on first hit.
type Base struct {
	Platform       platform.Platform
	SearchPathList pathlist.PathList
	QtDir          *qtdir.Directory
	IsValidShlib   func(path string) bool // delegates to IsExistingValidSharedLibrary
}

// validateCandidate is the shared candidate-validation plumbing; Base has
// no ShouldDistribute of its own, each embedding finder defines one.
func (b *Base) validateCandidate(path string) bool {
	if !b.IsValidShlib(path) {
		return false
	}
	name := filepath.Base(path)
	if qtdir.IsQtLibraryName(name) {
		if b.QtDir.IsNull() {
			b.QtDir.GuessFromLibrary(path, b.Platform.OS == platform.Windows)
			return true
		}
		return b.QtDir.Contains(path)
	}
	return true
}

// Finder is the contract the dependency graph consumes: OS, the
// should-distribute decision, and the search itself.
type Finder interface {
	OS() platform.OS
	ShouldDistribute(name string) bool
	Find(name string, referring BinaryFile) (string, error)
}
