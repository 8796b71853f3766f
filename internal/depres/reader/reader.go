// Package reader defines the ExecutableFileReader capability the resolver
// consumes (spec.md section 6) and implements it on top of the standard
// library's debug/elf and debug/pe packages. Low-level ELF/PE byte decoding
// beyond what those packages expose is out of scope for this module, per
// spec.md's "Out of scope" list.
package reader

import (
	"debug/elf"
	"debug/pe"
	"os"

	"golang.org/x/xerrors"

	"github.com/distr1/distri-deploy/internal/depres/platform"
	"github.com/distr1/distri-deploy/internal/depres/rpath"
)

// ErrUnreadableBinary is wrapped and returned whenever Open is given a file
// that is not a well-formed ELF or PE image.
var ErrUnreadableBinary = xerrors.New("unreadable binary")

// Reader is the capability the resolver consumes: open a binary, report
// its platform, its direct needed-library names, its RPATH/RUNPATH
// entries, and whether it is a valid executable or shared library.
//
// A Reader is reused across multiple Open/Close cycles within one
// find-dependencies call (one per graph vertex); it owns at most one
// transient open-file handle at a time, released on every exit path by
// Close.
type Reader interface {
	Open(path string, plat platform.Platform) error
	IsExecutableOrSharedLibrary() bool
	Platform() (platform.Platform, error)
	NeededSharedLibraries() []string
	RunPath() rpath.RPath
	Close() error
}

// FileReader is the default Reader, backed by debug/elf on Linux targets
// and debug/pe on Windows targets.
type FileReader struct {
	path     string
	elfFile  *elf.File
	peFile   *pe.File
	plat     platform.Platform
	isValid  bool
	needed   []string
	runPath  rpath.RPath
}

// New returns a FileReader with no open file.
func New() *FileReader {
	return &FileReader{}
}

// Open reads path as a binary of the given platform's OS, populating
// NeededSharedLibraries/RunPath for the duration of this Reader's lifetime
// until Close. Open fails with ErrUnreadableBinary if the file cannot be
// parsed as the expected format; detecting the format itself tries ELF
// first, then PE, independent of plat, so callers may pass an unknown
// platform for the very first Open of a find-dependencies call.
func (r *FileReader) Open(path string, plat platform.Platform) error {
	if err := r.Close(); err != nil {
		return err
	}
	r.path = path
	r.plat = plat

	if f, err := elf.Open(path); err == nil {
		r.elfFile = f
		r.isValid = true
		r.plat.OS = platform.Linux
		r.plat.ISA = isaFromELFMachine(f.Machine)
		libs, err := f.ImportedLibraries()
		if err != nil {
			return xerrors.Errorf("%s: %w", path, err)
		}
		r.needed = libs
		r.runPath = readELFRunPath(f)
		return nil
	}

	if f, err := pe.Open(path); err == nil {
		r.peFile = f
		r.isValid = true
		r.plat.OS = platform.Windows
		r.plat.ISA = isaFromPEMachine(f.Machine)
		libs, err := f.ImportedLibraries()
		if err != nil {
			return xerrors.Errorf("%s: %w", path, err)
		}
		r.needed = libs
		r.runPath = nil // PE carries no RPATH equivalent
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		return xerrors.Errorf("%s: %w", path, err)
	}
	return xerrors.Errorf("%s: %w", path, ErrUnreadableBinary)
}

// IsExecutableOrSharedLibrary reports whether the last Open succeeded in
// parsing path as a recognized executable or shared library format.
func (r *FileReader) IsExecutableOrSharedLibrary() bool {
	return r.isValid
}

// Platform returns the platform detected by the last Open.
func (r *FileReader) Platform() (platform.Platform, error) {
	if err := r.plat.Validate(); err != nil {
		return r.plat, err
	}
	return r.plat, nil
}

// NeededSharedLibraries returns the direct DT_NEEDED (ELF) or import-table
// (PE) library names, in the order the binary's dynamic section lists
// them.
func (r *FileReader) NeededSharedLibraries() []string {
	return r.needed
}

// RunPath returns the RPATH/RUNPATH entries read from the binary; empty
// for PE targets, which have no equivalent mechanism.
func (r *FileReader) RunPath() rpath.RPath {
	return r.runPath
}

// Close releases the transient file handle opened by Open, on every exit
// path (success or error), and is safe to call on an already-closed
// Reader.
func (r *FileReader) Close() error {
	var err error
	if r.elfFile != nil {
		err = r.elfFile.Close()
		r.elfFile = nil
	}
	if r.peFile != nil {
		if e := r.peFile.Close(); err == nil {
			err = e
		}
		r.peFile = nil
	}
	r.isValid = false
	r.needed = nil
	r.runPath = nil
	return err
}

func isaFromELFMachine(m elf.Machine) platform.ISA {
	switch m {
	case elf.EM_X86_64:
		return platform.X86_64
	case elf.EM_386:
		return platform.X86_32
	default:
		return platform.ISAUnknown
	}
}

func isaFromPEMachine(m uint16) platform.ISA {
	switch m {
	case pe.IMAGE_FILE_MACHINE_AMD64:
		return platform.X86_64
	case pe.IMAGE_FILE_MACHINE_I386:
		return platform.X86_32
	default:
		return platform.ISAUnknown
	}
}

// readELFRunPath prefers DT_RUNPATH over DT_RPATH, matching ld.so search
// order: a binary with both set uses RUNPATH and ignores RPATH.
func readELFRunPath(f *elf.File) rpath.RPath {
	raw, err := f.DynString(elf.DT_RUNPATH)
	if err != nil || len(raw) == 0 {
		raw, err = f.DynString(elf.DT_RPATH)
		if err != nil {
			return nil
		}
	}
	var rp rpath.RPath
	for _, entry := range raw {
		for _, p := range splitColonPath(entry) {
			if p == "" {
				continue
			}
			rp = append(rp, rpath.NewEntry(expandOrigin(p)))
		}
	}
	return rp
}

func splitColonPath(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// expandOrigin strips a leading $ORIGIN/${ORIGIN} token (ld.so's name for
// "directory of the referring binary"), leaving a path whose absoluteness
// rpath.NewEntry can use to classify the entry as origin-relative.
// Substitution of the actual directory happens later, against the
// referring binary's directory, via rpath.RPath.Expand (spec.md section
// 4.2) -- this function only normalizes the token away.
func expandOrigin(p string) string {
	for _, token := range []string{"${ORIGIN}", "$ORIGIN"} {
		if p == token {
			return "."
		}
		if len(p) > len(token) && p[:len(token)] == token && p[len(token)] == '/' {
			rest := p[len(token)+1:]
			if rest == "" {
				return "."
			}
			return rest
		}
	}
	return p
}
