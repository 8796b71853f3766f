// Package qtdir identifies a discovered Qt distribution tree (root, lib
// dir, plugin dir) and validates that a library whose file name looks like
// a Qt library actually belongs to that tree, rather than to some unrelated
// directory that happens to contain a same-named file.
package qtdir

import (
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// Directory is the identity of one discovered Qt installation.
type Directory struct {
	// Root is the Qt prefix directory (e.g. /opt/Qt/5.15.2/gcc_64), empty
	// if not yet discovered.
	Root string
	// LibsDir is the directory containing the Qt shared libraries,
	// relative to Root (e.g. "lib" on Linux, "bin" on Windows).
	LibsDir string
	// PluginsDir is the plugins directory, relative to Root. Defaults to
	// "plugins".
	PluginsDir string
}

// New returns a Directory with the default plugins directory and no root
// yet discovered.
func New() *Directory {
	return &Directory{PluginsDir: "plugins"}
}

// IsNull reports whether no Qt tree has been discovered yet.
func (d *Directory) IsNull() bool {
	return d.Root == "" || d.LibsDir == ""
}

// IsQtLibraryName reports whether name looks like a Qt library (its file
// name contains "Qt5" or "Qt6", e.g. libQt5Core.so or Qt6Core.dll),
// independent of whether it belongs to any particular distribution.
func IsQtLibraryName(name string) bool {
	return strings.Contains(name, "Qt5") || strings.Contains(name, "Qt6")
}

// GuessFromLibrary initializes d from the absolute path of a discovered Qt
// library, e.g. /opt/qt/5.15/gcc_64/lib/libQt5Core.so on Linux (root is two
// levels up) or C:/Qt/5.15/msvc2019_64/bin/Qt5Core.dll on Windows (root is
// one level up from "bin"). If a qt.conf file sits next to the library, its
// [Paths] section overrides the guessed values.
func (d *Directory) GuessFromLibrary(libraryPath string, windows bool) {
	libsDir := filepath.Dir(libraryPath)
	// On both platforms the root is the parent of the libs directory.
	root := filepath.Dir(libsDir)
	d.Root = root
	d.LibsDir = filepath.Base(libsDir)

	d.readQtConf(filepath.Join(libsDir, "qt.conf"))
}

// readQtConf applies the [Paths] section of a qt.conf file, if present,
// resolving a relative Prefix against the qt.conf file's own directory.
func (d *Directory) readQtConf(qtConfPath string) {
	cfg, err := ini.Load(qtConfPath)
	if err != nil {
		return
	}
	section := cfg.Section("Paths")
	if prefix := section.Key("Prefix").String(); prefix != "" {
		if filepath.IsAbs(prefix) {
			d.Root = filepath.Clean(prefix)
		} else {
			d.Root = filepath.Clean(filepath.Join(filepath.Dir(qtConfPath), prefix))
		}
	}
	if libs := section.Key("Libraries").String(); libs != "" {
		d.LibsDir = libs
	}
	if plugins := section.Key("Plugins").String(); plugins != "" {
		d.PluginsDir = plugins
	}
}

// Contains reports whether the absolute directory of libraryPath equals
// this distribution's libs directory.
func (d *Directory) Contains(libraryPath string) bool {
	if d.IsNull() {
		return false
	}
	want := filepath.Clean(filepath.Join(d.Root, d.LibsDir))
	got := filepath.Clean(filepath.Dir(libraryPath))
	return want == got
}

// IsValidExisting reports whether root, the libs directory and the plugins
// directory all exist as directories on disk.
func (d *Directory) IsValidExisting(isDir func(string) bool) bool {
	if d.IsNull() {
		return false
	}
	if !isDir(d.Root) {
		return false
	}
	if !isDir(filepath.Join(d.Root, d.LibsDir)) {
		return false
	}
	if !isDir(filepath.Join(d.Root, d.PluginsDir)) {
		return false
	}
	return true
}
