package exclude_test

import (
	"testing"

	"github.com/distr1/distri-deploy/internal/depres/exclude"
)

func TestShouldDistributeLinuxBaseline(t *testing.T) {
	cases := map[string]bool{
		"libc.so.6":   false,
		"ld-linux.so.2": false,
		"libfoo.so.1": true,
	}
	for name, want := range cases {
		if got := exclude.ShouldDistributeLinux(name); got != want {
			t.Errorf("ShouldDistributeLinux(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestShouldDistributeWindowsBaseline(t *testing.T) {
	cfg := exclude.Config{ExcludeMSVCRuntime: true, ExcludeWindowsAPISets: true}
	cases := map[string]bool{
		"kernel32.dll":     false,
		"KERNEL32.DLL":     false,
		"msvcp140.dll":     false,
		"api-ms-win-core-file-l1-1-0.dll": false,
		"d3d11.dll":        false,
		"dxgi.dll":         false,
		"myapp.dll":        true,
	}
	for name, want := range cases {
		if got := exclude.ShouldDistributeWindows(name, cfg); got != want {
			t.Errorf("ShouldDistributeWindows(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestShouldDistributeWindowsMSVCRuntimeToggle(t *testing.T) {
	cfg := exclude.Config{ExcludeMSVCRuntime: false, ExcludeWindowsAPISets: true}
	if !exclude.ShouldDistributeWindows("msvcp140.dll", cfg) {
		t.Errorf("with ExcludeMSVCRuntime=false, msvcp140.dll should be distributable")
	}
}

func TestIsWindowsAPISet(t *testing.T) {
	if !exclude.IsWindowsAPISet("api-ms-win-core-file-l1-1-0.dll") {
		t.Errorf("api-ms- prefixed name should be recognized as a Windows API set")
	}
	if !exclude.IsWindowsAPISet("ext-ms-win-something.dll") {
		t.Errorf("ext-ms- prefixed name should be recognized as a Windows API set")
	}
	if exclude.IsWindowsAPISet("myapp.dll") {
		t.Errorf("myapp.dll must not be recognized as a Windows API set")
	}
}
