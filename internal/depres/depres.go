// Package depres wires the reader, the platform-specific finder and the
// dependency graph together behind the small surface a caller actually
// needs: FindDependencies(target) and FindDependenciesAll(targets)
// (spec.md section 2, "Driver").
package depres

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/xerrors"

	"github.com/distr1/distri-deploy/internal/compilerfinder"
	"github.com/distr1/distri-deploy/internal/depres/exclude"
	"github.com/distr1/distri-deploy/internal/depres/finder"
	"github.com/distr1/distri-deploy/internal/depres/graph"
	"github.com/distr1/distri-deploy/internal/depres/logsink"
	"github.com/distr1/distri-deploy/internal/depres/pathlist"
	"github.com/distr1/distri-deploy/internal/depres/platform"
	"github.com/distr1/distri-deploy/internal/depres/qtdir"
	"github.com/distr1/distri-deploy/internal/depres/reader"
	"github.com/distr1/distri-deploy/internal/depres/result"
	"github.com/distr1/distri-deploy/internal/depres/rpath"
)

// Config configures one Driver. It is built directly from CLI flags by
// cmd/distri-deploy's main, the same way distri's own commands pass
// flag-derived values straight into package-level functions rather than
// through a config-file layer (see spec.md section 8).
type Config struct {
	// PrefixPathList are user-provided search prefixes, expanded by the
	// platform's suffix set.
	PrefixPathList []string

	// SystemDefaultPaths seeds the tail of the Linux search path list.
	SystemDefaultPaths []string

	// ExcludeConfig toggles the optional parts of the Windows
	// should-distribute decision.
	ExcludeConfig exclude.Config

	// IncludeHostPath, when true and the target is a Windows binary, adds
	// the (Linux) host process's PATH to the Windows search path list.
	// Exposed as an explicit flag rather than an implicit host-OS check,
	// per the open question in spec.md section 9.
	IncludeHostPath bool
	HostPath        []string

	// CompilerFinder locates MSVC redistributable directories for Windows
	// targets. Nil is treated as compilerfinder.Null{}.
	CompilerFinder compilerfinder.Finder

	Sink logsink.Sink
}

// Driver is the resolver's entry point.
type Driver struct {
	cfg Config
	// QtDir is shared across every FindDependencies(All) call made
	// through this Driver, per spec.md section 4.5: the first Qt library
	// encountered initializes it, and it is read-only afterwards.
	QtDir *qtdir.Directory
}

// New returns a Driver with a fresh, uninitialized Qt distribution cache.
func New(cfg Config) *Driver {
	if cfg.CompilerFinder == nil {
		cfg.CompilerFinder = compilerfinder.Null{}
	}
	return &Driver{cfg: cfg, QtDir: qtdir.New()}
}

// FindDependencies resolves the transitive dependency closure of a single
// target binary.
func (d *Driver) FindDependencies(ctx context.Context, targetPath string) (*result.Result, error) {
	rd := reader.New()
	plat, f, needed, rp, err := d.setup(rd, targetPath)
	if err != nil {
		return nil, err
	}

	g := graph.New(plat, d.cfg.Sink)
	id := g.AddTarget(targetPath)
	g.MarkRead(id, needed, rp)
	if err := d.build(ctx, g, rd, f); err != nil {
		return nil, err
	}
	return g.GetResult(id), nil
}

// FindDependenciesAll resolves the transitive dependency closure of
// multiple targets sharing one platform, guaranteeing the shared reader
// opens each distinct binary at most once across the whole batch (spec.md
// section 2/8, "Multi-target shared work"). Candidate validation in the
// finder opens probed files through its own, separate reader.
func (d *Driver) FindDependenciesAll(ctx context.Context, targetPaths []string) (*result.List, error) {
	if len(targetPaths) == 0 {
		return nil, xerrors.New("no targets given")
	}
	rd := reader.New()
	plat, f, needed, rp, err := d.setup(rd, targetPaths[0])
	if err != nil {
		return nil, err
	}

	g := graph.New(plat, d.cfg.Sink)
	ids := g.AddTargets(targetPaths)
	g.MarkRead(ids[0], needed, rp)
	if err := d.build(ctx, g, rd, f); err != nil {
		return nil, err
	}
	return g.GetResultList(ids), nil
}

// setup opens the first target exactly once, using that single open both to
// determine its platform and to extract its needed-libraries/RPATH, so the
// build loop never has to reopen it (spec.md section 5, "opened at most
// once per unique path"). It also builds the platform-appropriate finder
// and its search path list.
func (d *Driver) setup(rd reader.Reader, firstTarget string) (platform.Platform, finder.Finder, []string, rpath.RPath, error) {
	if err := rd.Open(firstTarget, platform.Platform{}); err != nil {
		return platform.Platform{}, nil, nil, nil, xerrors.Errorf("%s: %w", firstTarget, err)
	}
	plat, err := rd.Platform()
	if err != nil {
		rd.Close()
		return platform.Platform{}, nil, nil, nil, xerrors.Errorf("%s: %w", firstTarget, err)
	}
	var needed []string
	var rp rpath.RPath
	if rd.IsExecutableOrSharedLibrary() {
		needed = rd.NeededSharedLibraries()
		rp = rd.RunPath()
	}
	if err := rd.Close(); err != nil {
		return platform.Platform{}, nil, nil, nil, xerrors.Errorf("%s: %w", firstTarget, err)
	}
	d.cfg.Sink.EmitDebug("read: " + filepath.Base(firstTarget))

	isValid := func(path string) bool {
		return reader.IsExistingValidSharedLibrary(path, plat)
	}

	var f finder.Finder
	switch plat.OS {
	case platform.Linux:
		spl := pathlist.BuildLinux(nil, d.cfg.PrefixPathList, d.cfg.SystemDefaultPaths)
		d.cfg.Sink.EmitVerbose("search path list:")
		for _, p := range spl {
			d.cfg.Sink.EmitVerbose(" " + p)
		}
		f = finder.NewLinux(spl, d.QtDir, isValid)
	case platform.Windows:
		isa := "x86"
		if plat.ISA == platform.X86_64 {
			isa = "x64"
		}
		release, debug := d.cfg.CompilerFinder.RedistDirs(isa)
		hostPath := d.cfg.HostPath
		if hostPath == nil {
			hostPath = splitPathEnv(os.Getenv("PATH"))
		}
		spl := pathlist.BuildWindows(
			pathlist.PathList{release},
			pathlist.PathList{debug},
			d.cfg.PrefixPathList,
			filepath.Dir(firstTarget),
			hostPath,
			d.cfg.IncludeHostPath,
		)
		d.cfg.Sink.EmitVerbose("search path list:")
		for _, p := range spl {
			d.cfg.Sink.EmitVerbose(" " + p)
		}
		f = finder.NewWindows(spl, d.QtDir, isValid, d.cfg.ExcludeConfig)
	default:
		return plat, nil, nil, nil, xerrors.Errorf("%s: %w", firstTarget, platform.ErrUnsupported)
	}
	return plat, f, needed, rp, nil
}

func (d *Driver) build(ctx context.Context, g *graph.Graph, rd reader.Reader, f finder.Finder) error {
	return g.FindTransitiveDependencies(ctx, rd, f)
}

func splitPathEnv(path string) []string {
	if path == "" {
		return nil
	}
	return filepath.SplitList(path)
}
