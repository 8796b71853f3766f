package finder

import (
	"path/filepath"

	"golang.org/x/xerrors"

	"github.com/distr1/distri-deploy/internal/depres/exclude"
	"github.com/distr1/distri-deploy/internal/depres/pathlist"
	"github.com/distr1/distri-deploy/internal/depres/platform"
	"github.com/distr1/distri-deploy/internal/depres/qtdir"
)

// Linux finds shared libraries using ld.so's effective algorithm: the
// referring binary's expanded RPATH/RUNPATH first, then the precomputed
// search path list, first match wins.
type Linux struct {
	Base
}

// NewLinux builds a Linux finder over an already-assembled search path
// list (compiler-redist ++ expanded prefixes ++ system defaults, per
// spec.md section 4.3).
func NewLinux(searchPathList pathlist.PathList, qtDir *qtdir.Directory, isValidShlib func(string) bool) *Linux {
	return &Linux{
		Base: Base{
			Platform:       platform.Platform{OS: platform.Linux},
			SearchPathList: searchPathList,
			QtDir:          qtDir,
			IsValidShlib:   isValidShlib,
		},
	}
}

func (l *Linux) OS() platform.OS { return platform.Linux }

func (l *Linux) ShouldDistribute(name string) bool {
	return exclude.ShouldDistributeLinux(name)
}

// Find implements spec.md section 4.6's Linux search algorithm: expand the
// referring binary's RPATH with origin substitution into a per-call prefix
// list, then probe (rpathDirs ++ searchPathList) in order, returning the
// first validated candidate.
func (l *Linux) Find(name string, referring BinaryFile) (string, error) {
	rpathDirs := referring.RPath.Expand(referring.Dir())
	for _, dir := range rpathDirs {
		candidate := filepath.Join(dir, name)
		if l.validateCandidate(candidate) {
			return candidate, nil
		}
	}
	for _, dir := range l.SearchPathList {
		candidate := filepath.Join(dir, name)
		if l.validateCandidate(candidate) {
			return candidate, nil
		}
	}
	return "", xerrors.Errorf("%s: %w", name, ErrNotFound)
}
