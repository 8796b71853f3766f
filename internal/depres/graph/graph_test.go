package graph_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/distr1/distri-deploy/internal/depres/finder"
	"github.com/distr1/distri-deploy/internal/depres/graph"
	"github.com/distr1/distri-deploy/internal/depres/logsink"
	"github.com/distr1/distri-deploy/internal/depres/platform"
	"github.com/distr1/distri-deploy/internal/depres/rpath"
)

// fakeReader models a fixed universe of binaries by absolute path,
// avoiding any real file I/O so the graph's BFS scheduling can be tested
// in isolation from debug/elf.
type fakeReader struct {
	needed map[string][]string
	opened []string
	cur    string
}

func (r *fakeReader) Open(path string, _ platform.Platform) error {
	r.opened = append(r.opened, path)
	r.cur = path
	return nil
}
func (r *fakeReader) IsExecutableOrSharedLibrary() bool { return true }
func (r *fakeReader) Platform() (platform.Platform, error) {
	return platform.Platform{OS: platform.Linux, ISA: platform.X86_64}, nil
}
func (r *fakeReader) NeededSharedLibraries() []string { return r.needed[r.cur] }
func (r *fakeReader) RunPath() rpath.RPath            { return nil }
func (r *fakeReader) Close() error                    { r.cur = ""; return nil }

// fakeFinder resolves every name to "/lib/"+name unless listed as missing,
// and excludes any name in excluded.
type fakeFinder struct {
	excluded map[string]bool
	missing  map[string]bool
}

func (f *fakeFinder) OS() platform.OS { return platform.Linux }
func (f *fakeFinder) ShouldDistribute(name string) bool {
	return !f.excluded[name]
}
func (f *fakeFinder) Find(name string, _ finder.BinaryFile) (string, error) {
	if f.missing[name] {
		return "", finder.ErrNotFound
	}
	return "/lib/" + name, nil
}

// TestFindTransitiveDependencies builds: app -> libA.so -> libB.so,
// app -> libC.so (excluded), app -> libmissing.so (not found). Each
// binary must be read at most once (spec.md's "read at most once"
// invariant) even though libA.so is reachable via one edge and would be
// revisited by a naive single-pass BFS that re-examines edges.
func TestFindTransitiveDependencies(t *testing.T) {
	rd := &fakeReader{needed: map[string][]string{
		"/bin/app":     {"libA.so", "libC.so", "libmissing.so"},
		"/lib/libA.so": {"libB.so"},
		"/lib/libB.so": nil,
	}}
	f := &fakeFinder{
		excluded: map[string]bool{"libC.so": true},
		missing:  map[string]bool{"libmissing.so": true},
	}

	g := graph.New(platform.Platform{OS: platform.Linux}, logsink.Noop)
	id := g.AddTarget("/bin/app")

	if err := g.FindTransitiveDependencies(context.Background(), rd, f); err != nil {
		t.Fatalf("FindTransitiveDependencies: %v", err)
	}

	opened := map[string]int{}
	for _, p := range rd.opened {
		opened[p]++
	}
	for _, p := range []string{"/bin/app", "/lib/libA.so", "/lib/libB.so"} {
		if opened[p] != 1 {
			t.Errorf("opened[%s] = %d, want exactly 1", p, opened[p])
		}
	}
	if opened["/lib/libC.so"] != 0 {
		t.Errorf("excluded library libC.so must never be opened, opened %d times", opened["/lib/libC.so"])
	}

	result := g.GetResult(id)
	if result.IsSolved() {
		t.Fatalf("result should be unsolved due to libmissing.so")
	}

	var names []string
	for _, e := range result.Entries {
		names = append(names, e.LibraryName)
	}
	want := []string{"libA.so", "libC.so", "libmissing.so", "libB.so"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("unexpected entry order: diff (-want +got):\n%s", diff)
	}
}

// TestSharedDependencyReadOnce verifies a node reached via two distinct
// parents is still opened by the reader exactly once.
func TestSharedDependencyReadOnce(t *testing.T) {
	rd := &fakeReader{needed: map[string][]string{
		"/bin/app":     {"libA.so", "libB.so"},
		"/lib/libA.so": {"libShared.so"},
		"/lib/libB.so": {"libShared.so"},
	}}
	f := &fakeFinder{}

	g := graph.New(platform.Platform{OS: platform.Linux}, logsink.Noop)
	id := g.AddTarget("/bin/app")

	if err := g.FindTransitiveDependencies(context.Background(), rd, f); err != nil {
		t.Fatalf("FindTransitiveDependencies: %v", err)
	}

	opened := map[string]int{}
	for _, p := range rd.opened {
		opened[p]++
	}
	if opened["/lib/libShared.so"] != 1 {
		t.Fatalf("libShared.so opened %d times, want exactly 1", opened["/lib/libShared.so"])
	}

	result := g.GetResult(id)
	if !result.IsSolved() {
		t.Fatalf("expected a fully solved result")
	}
}
