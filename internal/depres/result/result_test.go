package result_test

import (
	"testing"

	"github.com/distr1/distri-deploy/internal/depres/platform"
	"github.com/distr1/distri-deploy/internal/depres/result"
)

func TestAddFoundIdempotentByName(t *testing.T) {
	r := result.New("/bin/app", platform.Linux)
	r.AddFound("libA.so", "/lib/libA.so", nil)
	r.AddFound("libA.so", "/other/libA.so", nil)

	if got := len(r.Entries); got != 1 {
		t.Fatalf("len(Entries) = %d, want 1 (duplicate add must be ignored)", got)
	}
	if r.Entries[0].Status.Path != "/lib/libA.so" {
		t.Errorf("Path = %q, want the first-recorded path to stick", r.Entries[0].Status.Path)
	}
}

func TestAddFoundIdempotentCaseInsensitiveOnWindows(t *testing.T) {
	r := result.New(`C:\app.exe`, platform.Windows)
	r.AddFound("KERNEL32.dll", `C:\Windows\KERNEL32.dll`, nil)
	r.AddFound("kernel32.dll", `C:\other\kernel32.dll`, nil)

	if got := len(r.Entries); got != 1 {
		t.Fatalf("len(Entries) = %d, want 1 (Windows names fold case)", got)
	}
}

func TestAddNotFoundMarksUnsolved(t *testing.T) {
	r := result.New("/bin/app", platform.Linux)
	if !r.IsSolved() {
		t.Fatalf("a fresh Result must start solved")
	}
	r.AddNotFound("libmissing.so")
	if r.IsSolved() {
		t.Fatalf("AddNotFound must mark the result unsolved")
	}
}

func TestAddExcludedDoesNotAffectSolved(t *testing.T) {
	r := result.New("/bin/app", platform.Linux)
	r.AddExcluded("libc.so.6")
	if !r.IsSolved() {
		t.Fatalf("an excluded dependency must not mark the result unsolved")
	}
}

func TestLibrariesToRedistribute(t *testing.T) {
	r := result.New("/bin/app", platform.Linux)
	r.AddFound("libA.so", "/lib/libA.so", nil)
	r.AddExcluded("libc.so.6")
	r.AddNotFound("libmissing.so")

	got := r.LibrariesToRedistribute()
	if len(got) != 1 || got[0].LibraryName != "libA.so" {
		t.Fatalf("LibrariesToRedistribute() = %+v, want only libA.so", got)
	}
}

func TestListRedistributePathsDedupsAcrossTargets(t *testing.T) {
	a := result.New("/bin/app1", platform.Linux)
	a.AddFound("libshared.so", "/lib/libshared.so", nil)
	b := result.New("/bin/app2", platform.Linux)
	b.AddFound("libshared.so", "/lib/libshared.so", nil)

	l := &result.List{OS: platform.Linux, Results: []result.Result{*a, *b}}
	paths := l.RedistributePaths()
	if len(paths) != 1 {
		t.Fatalf("RedistributePaths() = %v, want one deduplicated entry", paths)
	}
}
