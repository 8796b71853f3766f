// Package compilerfinder locates the MSVC redistributable directories used
// to seed the Windows search path list. It is treated as an opaque
// collaborator by the resolver (spec.md's "Out of scope" list): the
// resolver only ever calls RedistDirs, never reasons about how compiler
// installations are discovered.
package compilerfinder

import (
	"os"
	"path/filepath"
)

// Finder reports the release and debug MSVC redistributable directories
// for the processor ISA the resolver is solving for, or ("", "") if none
// was found -- matching "has not to be valid" from the original: the
// resolver treats an unset CompilerFinder as simply contributing no paths.
type Finder interface {
	RedistDirs(isa string) (release, debug string)
}

// EnvFinder discovers an MSVC install directory the same way a build
// invoked from a Visual Studio developer prompt would see one: via the
// VCINSTALLDIR/VCToolsInstallDir environment variables. It never shells
// out to vswhere.exe or reads the Windows registry -- that level of
// compiler discovery is explicitly out of scope for this module.
type EnvFinder struct{}

// RedistDirs implements Finder using environment variables set by the
// Visual Studio developer command prompt.
func (EnvFinder) RedistDirs(isa string) (release, debug string) {
	toolsDir := os.Getenv("VCToolsInstallDir")
	if toolsDir == "" {
		toolsDir = os.Getenv("VCINSTALLDIR")
	}
	if toolsDir == "" {
		return "", ""
	}
	redist := filepath.Join(toolsDir, "redist", isa)
	debugRedist := filepath.Join(toolsDir, "bin", isa, "Debug_NonRedist")
	return redist, debugRedist
}

// Null never reports a redist directory; used when no CompilerFinder was
// configured.
type Null struct{}

func (Null) RedistDirs(string) (string, string) { return "", "" }
