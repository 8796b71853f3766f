package finder_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/distr1/distri-deploy/internal/depres/finder"
	"github.com/distr1/distri-deploy/internal/depres/pathlist"
	"github.com/distr1/distri-deploy/internal/depres/qtdir"
	"github.com/distr1/distri-deploy/internal/depres/rpath"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func existsValidator(t *testing.T) func(string) bool {
	return func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}
}

func TestLinuxFindPrefersRPathOverSearchPath(t *testing.T) {
	binDir := t.TempDir()
	rpathDir := t.TempDir()
	searchDir := t.TempDir()

	touch(t, filepath.Join(rpathDir, "libfoo.so"))
	touch(t, filepath.Join(searchDir, "libfoo.so"))

	f := finder.NewLinux(pathlist.PathList{searchDir}, qtdir.New(), existsValidator(t))
	referring := finder.BinaryFile{
		AbsolutePath: filepath.Join(binDir, "app"),
		RPath:        rpath.RPath{rpath.NewEntry(rpathDir)},
	}

	got, err := f.Find("libfoo.so", referring)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(rpathDir, "libfoo.so"); got != want {
		t.Errorf("Find() = %q, want %q (RPATH must win over the search path list)", got, want)
	}
}

func TestLinuxFindFallsBackToSearchPath(t *testing.T) {
	binDir := t.TempDir()
	searchDir := t.TempDir()
	touch(t, filepath.Join(searchDir, "libbar.so"))

	f := finder.NewLinux(pathlist.PathList{searchDir}, qtdir.New(), existsValidator(t))
	referring := finder.BinaryFile{AbsolutePath: filepath.Join(binDir, "app")}

	got, err := f.Find("libbar.so", referring)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(searchDir, "libbar.so"); got != want {
		t.Errorf("Find() = %q, want %q", got, want)
	}
}

func TestLinuxFindNotFound(t *testing.T) {
	f := finder.NewLinux(pathlist.PathList{t.TempDir()}, qtdir.New(), existsValidator(t))
	referring := finder.BinaryFile{AbsolutePath: "/bin/app"}

	if _, err := f.Find("libmissing.so", referring); err == nil {
		t.Fatal("expected an error for a library absent from every search directory")
	}
}
