// Package install stages a solved dependency result.Result into a
// destination directory: copying the target and its redistributable
// dependencies, and rewriting RPATH/RUNPATH so the staged tree is
// self-contained. It is kept decoupled from the resolver per spec.md's
// "file-copier and RPATH-rewriter (treated as opaque installers)" scoping
// -- nothing under internal/depres imports this package.
//
// This package used to hold distri's squashfs/FUSE package installer; that
// logic is specific to distri's own package-repository wire format (which
// this tool has no analog of) and was replaced outright rather than
// adapted -- see DESIGN.md.
package install

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/distr1/distri-deploy/internal/depres/platform"
	"github.com/distr1/distri-deploy/internal/depres/result"
	"github.com/distr1/distri-deploy/internal/logsink"
)

func join(parts ...string) string { return filepath.Join(parts...) }

// OverwriteBehavior controls what Apply does when a destination path
// already exists.
type OverwriteBehavior int

const (
	// Keep leaves an existing destination file untouched.
	Keep OverwriteBehavior = iota
	// Fail aborts the whole Apply if any destination already exists.
	Fail
	// Overwrite replaces an existing destination file.
	Overwrite
)

// Copy is one file this Plan will stage: a resolved source path and the
// absolute destination it will be written to.
type Copy struct {
	Source      string
	Destination string
	// NewRPath is the RPATH this file should carry once staged, expressed
	// as origin-relative entries so the tree remains relocatable.
	NewRPath []string
}

// Plan is the set of copies + RPATH rewrites needed to stage one solved
// Result into a DestinationLayout. Building a Plan never touches the
// filesystem; only Apply does.
type Plan struct {
	Layout DestinationLayout
	OS     platform.OS
	Copies []Copy
}

// Outcome reports what Apply actually did, for callers that want to log or
// verify the install afterward.
type Outcome struct {
	Installed []string
	Skipped   []string
}

// Stage builds a Plan for a single target plus its solved dependencies.
// The target is staged into the layout's bin directory; every Found
// dependency is staged into the lib directory with an RPATH pointing back
// at that directory (origin-relative), making the staged tree
// self-contained regardless of where it is later moved.
func Stage(r *result.Result, layout DestinationLayout) (*Plan, error) {
	if !r.IsSolved() {
		return nil, xerrors.New("install: refusing to stage an unsolved result")
	}

	plan := &Plan{Layout: layout, OS: r.OS}

	targetRPath := relOriginRPath(layout.BinDir(), layout.LibDir())
	plan.Copies = append(plan.Copies, Copy{
		Source:      r.TargetPath,
		Destination: join(layout.BinDir(), filepath.Base(r.TargetPath)),
		NewRPath:    targetRPath,
	})

	libRPath := relOriginRPath(layout.LibDir(), layout.LibDir())
	for _, e := range r.LibrariesToRedistribute() {
		plan.Copies = append(plan.Copies, Copy{
			Source:      e.Status.Path,
			Destination: join(layout.LibDir(), filepath.Base(e.Status.Path)),
			NewRPath:    libRPath,
		})
	}
	return plan, nil
}

// StageList builds one Plan covering every solved result in a result.List,
// deduplicating dependencies shared by more than one target so a library
// needed by two different binaries is only staged once.
func StageList(l *result.List, layout DestinationLayout) (*Plan, error) {
	if !l.IsSolved() {
		return nil, xerrors.New("install: refusing to stage an unsolved result list")
	}
	plan := &Plan{Layout: layout, OS: l.OS}
	seen := make(map[string]bool)
	for i := range l.Results {
		r := &l.Results[i]
		targetRPath := relOriginRPath(layout.BinDir(), layout.LibDir())
		dst := join(layout.BinDir(), filepath.Base(r.TargetPath))
		if !seen[dst] {
			seen[dst] = true
			plan.Copies = append(plan.Copies, Copy{
				Source:      r.TargetPath,
				Destination: dst,
				NewRPath:    targetRPath,
			})
		}
		libRPath := relOriginRPath(layout.LibDir(), layout.LibDir())
		for _, e := range r.LibrariesToRedistribute() {
			dst := join(layout.LibDir(), filepath.Base(e.Status.Path))
			if seen[dst] {
				continue
			}
			seen[dst] = true
			plan.Copies = append(plan.Copies, Copy{
				Source:      e.Status.Path,
				Destination: dst,
				NewRPath:    libRPath,
			})
		}
	}
	return plan, nil
}

// relOriginRPath returns the single origin-relative RPATH entry pointing
// from fromDir at toDir, e.g. "$ORIGIN" when fromDir == toDir or
// "$ORIGIN/../lib" when toDir is a sibling directory.
func relOriginRPath(fromDir, toDir string) []string {
	rel, err := filepath.Rel(fromDir, toDir)
	if err != nil || rel == "." {
		return []string{"$ORIGIN"}
	}
	// Not join(): filepath.Clean would fold "$ORIGIN/../lib" into "lib".
	return []string{"$ORIGIN/" + filepath.ToSlash(rel)}
}

// Apply executes the plan: copies every file atomically (via renameio, so
// a partially-written file is never observed at its final path), then
// rewrites RPATH/RUNPATH on each Linux copy via rewriter. Independent
// copies run concurrently, the same way distri parallelizes independent
// package installs with an errgroup.
func (p *Plan) Apply(ctx context.Context, behavior OverwriteBehavior, sink logsink.Sink, rewriter RPathRewriter) (*Outcome, error) {
	results := make([]string, len(p.Copies))
	skipped := make([]bool, len(p.Copies))

	g, _ := errgroup.WithContext(ctx)
	for i, c := range p.Copies {
		i, c := i, c
		g.Go(func() error {
			if _, err := os.Stat(c.Destination); err == nil {
				switch behavior {
				case Keep:
					skipped[i] = true
					return nil
				case Fail:
					return xerrors.Errorf("install: %s already exists", c.Destination)
				}
			}
			if err := os.MkdirAll(filepath.Dir(c.Destination), 0o755); err != nil {
				return xerrors.Errorf("mkdir %s: %w", filepath.Dir(c.Destination), err)
			}
			if err := copyFileAtomic(c.Source, c.Destination); err != nil {
				return xerrors.Errorf("copy %s -> %s: %w", c.Source, c.Destination, err)
			}
			sink.EmitStatus("installed " + c.Destination)
			if rewriter != nil && p.OS == platform.Linux {
				if err := rewriter.SetRPath(c.Destination, c.NewRPath); err != nil {
					return xerrors.Errorf("set rpath on %s: %w", c.Destination, err)
				}
			}
			results[i] = c.Destination
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	outcome := &Outcome{}
	for i, dst := range results {
		if skipped[i] {
			outcome.Skipped = append(outcome.Skipped, p.Copies[i].Destination)
			continue
		}
		if dst != "" {
			outcome.Installed = append(outcome.Installed, dst)
		}
	}
	return outcome, nil
}

func copyFileAtomic(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}

	t, err := renameio.TempFile("", dst)
	if err != nil {
		return err
	}
	defer t.Cleanup()

	if _, err := io.Copy(t, in); err != nil {
		return err
	}
	if err := t.Chmod(fi.Mode()); err != nil {
		return err
	}
	return t.CloseAtomicallyReplace()
}
