package finder

import (
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"

	"github.com/distr1/distri-deploy/internal/depres/exclude"
	"github.com/distr1/distri-deploy/internal/depres/pathlist"
	"github.com/distr1/distri-deploy/internal/depres/platform"
	"github.com/distr1/distri-deploy/internal/depres/qtdir"
)

// Windows finds shared libraries by probing the precomputed search path
// list only -- PE files carry no RPATH equivalent, so there is no
// per-binary prefix list the way there is on Linux (spec.md section 4.6
// rationale).
type Windows struct {
	Base
	ExcludeConfig exclude.Config
}

// NewWindows builds a Windows finder over an already-assembled search path
// list (MSVC redist release/debug ++ expanded prefixes ++ target dir ++
// optional host PATH, per spec.md section 4.3).
func NewWindows(searchPathList pathlist.PathList, qtDir *qtdir.Directory, isValidShlib func(string) bool, cfg exclude.Config) *Windows {
	return &Windows{
		Base: Base{
			Platform:       platform.Platform{OS: platform.Windows},
			SearchPathList: searchPathList,
			QtDir:          qtDir,
			IsValidShlib:   isValidShlib,
		},
		ExcludeConfig: cfg,
	}
}

func (w *Windows) OS() platform.OS { return platform.Windows }

func (w *Windows) ShouldDistribute(name string) bool {
	return exclude.ShouldDistributeWindows(name, w.ExcludeConfig)
}

// Find implements spec.md section 4.6's Windows search algorithm: for each
// directory in the search path list, probe name, then its lower-cased
// form, then its upper-cased form, returning the first validated
// candidate. The three-probe dance is required to solve Windows binaries
// from a case-sensitive host filesystem.
func (w *Windows) Find(name string, referring BinaryFile) (string, error) {
	candidates := []string{name, strings.ToLower(name), strings.ToUpper(name)}
	for _, dir := range w.SearchPathList {
		for _, c := range candidates {
			path := filepath.Join(dir, c)
			if w.validateCandidate(path) {
				return path, nil
			}
		}
	}
	return "", xerrors.Errorf("%s: %w", name, ErrNotFound)
}
