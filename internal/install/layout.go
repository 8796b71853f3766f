// Package install stages a solved dependency Result into a destination
// directory: copying the target and its redistributable dependencies, and
// rewriting RPATH/RUNPATH so the staged tree is self-contained. It is kept
// decoupled from the resolver per spec.md's "file-copier and
// RPATH-rewriter (treated as opaque installers)" scoping -- nothing in
// internal/depres imports this package.
package install

// Layout selects where, under the destination directory, staged files
// land. Grounded on MdtDeployUtils' DestinationDirectoryStructure, which
// the distilled spec dropped but original_source/ shows as a real,
// user-facing choice (spec.md section 10, SUPPLEMENTED FEATURES).
type Layout int

const (
	// Flat copies every file directly into the destination directory,
	// spec.md's literal "destination directory" behavior. Default.
	Flat Layout = iota
	// Structured separates bin/, lib/ and plugins/ subdirectories.
	Structured
)

// DestinationLayout computes where a given kind of staged file should land
// under destDir for this Layout.
type DestinationLayout struct {
	Layout  Layout
	DestDir string
}

// LibDir returns the directory shared libraries are staged into.
func (d DestinationLayout) LibDir() string {
	if d.Layout == Structured {
		return join(d.DestDir, "lib")
	}
	return d.DestDir
}

// BinDir returns the directory the target binary is staged into.
func (d DestinationLayout) BinDir() string {
	if d.Layout == Structured {
		return join(d.DestDir, "bin")
	}
	return d.DestDir
}

// PluginsDir returns the directory Qt plugins are staged into, relevant
// only in Structured layout.
func (d DestinationLayout) PluginsDir() string {
	if d.Layout == Structured {
		return join(d.DestDir, "plugins")
	}
	return d.DestDir
}
