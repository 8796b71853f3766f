package install

import (
	"os"
	"os/exec"
	"strings"

	"golang.org/x/xerrors"
)

// RPathRewriter rewrites the RPATH/RUNPATH of a staged file. Byte-level
// ELF/PE mutation is out of scope for this module (spec.md's "Out of
// scope" list treats the RPATH-rewriter as an opaque installer); the
// default implementation shells out to patchelf the same way
// internal/build/shlibdeps.go shells out to ldd rather than re-implementing
// dynamic-section parsing.
type RPathRewriter interface {
	SetRPath(path string, entries []string) error
}

// PatchelfRewriter rewrites RPATH by invoking the external "patchelf"
// tool.
type PatchelfRewriter struct {
	// Path to the patchelf binary; defaults to "patchelf" (looked up on
	// PATH) when empty.
	Path string
}

// SetRPath runs `patchelf --set-rpath <entries> <path>`, joining entries
// with ':' the way the dynamic linker expects RPATH/RUNPATH to be encoded.
func (r PatchelfRewriter) SetRPath(path string, entries []string) error {
	bin := r.Path
	if bin == "" {
		bin = "patchelf"
	}
	cmd := exec.Command(bin, "--set-rpath", strings.Join(entries, ":"), path)
	cmd.Stderr = os.Stderr
	if out, err := cmd.Output(); err != nil {
		return xerrors.Errorf("%v: %w (out: %s)", cmd.Args, err, out)
	}
	return nil
}

// NullRewriter leaves RPATH untouched; useful for report-only runs or
// platforms (Windows) where this concept does not apply.
type NullRewriter struct{}

func (NullRewriter) SetRPath(string, []string) error { return nil }
