package rpath_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/distr1/distri-deploy/internal/depres/rpath"
)

func TestNewEntryDerivesOriginRelative(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{"../lib", true},
		{"lib", true},
		{"/opt/app/lib", false},
	}
	for _, c := range cases {
		e := rpath.NewEntry(c.raw)
		if e.OriginRelative != c.want {
			t.Errorf("NewEntry(%q).OriginRelative = %v, want %v", c.raw, e.OriginRelative, c.want)
		}
	}
}

func TestExpand(t *testing.T) {
	rp := rpath.RPath{
		rpath.NewEntry("../lib"),
		rpath.NewEntry("/opt/qt5/lib"),
		rpath.NewEntry("."),
	}
	got := rp.Expand("/opt/app/bin")
	want := []string{"/opt/app/lib", "/opt/qt5/lib", "/opt/app/bin"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Expand() mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandPreservesDuplicates(t *testing.T) {
	rp := rpath.RPath{rpath.NewEntry("../lib"), rpath.NewEntry("../lib")}
	got := rp.Expand("/opt/app/bin")
	if len(got) != 2 {
		t.Fatalf("Expand() = %v, want duplicate entries preserved (dedup is SearchPathList's job)", got)
	}
}
