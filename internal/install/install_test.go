package install_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/distr1/distri-deploy/internal/depres/platform"
	"github.com/distr1/distri-deploy/internal/depres/result"
	"github.com/distr1/distri-deploy/internal/install"
	"github.com/distr1/distri-deploy/internal/logsink"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestStageFlatLayout(t *testing.T) {
	srcDir := t.TempDir()
	writeFile(t, filepath.Join(srcDir, "app"), "app")
	writeFile(t, filepath.Join(srcDir, "libA.so"), "liba")

	r := result.New(filepath.Join(srcDir, "app"), platform.Linux)
	r.AddFound("libA.so", filepath.Join(srcDir, "libA.so"), nil)

	destDir := t.TempDir()
	layout := install.DestinationLayout{Layout: install.Flat, DestDir: destDir}

	plan, err := install.Stage(r, layout)
	if err != nil {
		t.Fatal(err)
	}
	outcome, err := plan.Apply(context.Background(), install.Fail, logsink.Noop, install.NullRewriter{})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(destDir, "app"),
		filepath.Join(destDir, "libA.so"),
	}
	got := outcome.Installed
	// Apply runs copies concurrently, so sort before comparing order.
	got = sortedCopy(got)
	want = sortedCopy(want)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected installed set: diff (-want +got):\n%s", diff)
	}

	for _, f := range want {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("expected %s to exist: %v", f, err)
		}
	}
}

func TestStageRefusesUnsolvedResult(t *testing.T) {
	r := result.New("/opt/app", platform.Linux)
	r.AddNotFound("libmissing.so")

	_, err := install.Stage(r, install.DestinationLayout{DestDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected Stage to refuse an unsolved result")
	}
}

func TestApplyKeepSkipsExisting(t *testing.T) {
	srcDir := t.TempDir()
	writeFile(t, filepath.Join(srcDir, "app"), "new")

	destDir := t.TempDir()
	writeFile(t, filepath.Join(destDir, "app"), "old")

	r := result.New(filepath.Join(srcDir, "app"), platform.Linux)
	layout := install.DestinationLayout{Layout: install.Flat, DestDir: destDir}
	plan, err := install.Stage(r, layout)
	if err != nil {
		t.Fatal(err)
	}

	outcome, err := plan.Apply(context.Background(), install.Keep, logsink.Noop, install.NullRewriter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(outcome.Installed) != 0 {
		t.Fatalf("expected no installs, got %v", outcome.Installed)
	}
	if len(outcome.Skipped) != 1 {
		t.Fatalf("expected one skipped file, got %v", outcome.Skipped)
	}

	got, err := os.ReadFile(filepath.Join(destDir, "app"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "old" {
		t.Fatalf("Keep must not overwrite existing file, got contents %q", got)
	}
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
