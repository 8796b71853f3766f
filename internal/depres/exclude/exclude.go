// Package exclude embeds the static, name-keyed lists of libraries that
// belong to the host/OS baseline and must never be redistributed, plus the
// predicates (MSVC runtime, Windows API sets, Direct3D/DXGI) layered on top
// of the Windows list. Every decision here is name-only: it never touches
// the filesystem, which is what lets the resolver prune a branch before
// reading anything.
//
// The Linux list is the AppImage/linuxdeployqt "excludelist" baked into
// distri-style Go source, matching the curated list MdtDeployUtils ships
// (itself generated from https://github.com/probonopd/AppImages). The
// Windows list is the known-DLLs / core Win32 API set from the same
// lineage.
package exclude

import "strings"

// linuxExcludeList enumerates libraries belonging to the glibc/X11/GL/ALSA
// baseline every Linux distribution ships, plus a short hand-curated
// secondary set.
var linuxExcludeList = map[string]bool{
	"ld-linux.so.2":          true,
	"ld-linux-x86-64.so.2":   true,
	"libanl.so.1":            true,
	"libasound.so.2":         true,
	"libBrokenLocale.so.1":   true,
	"libcidn.so.1":           true,
	"libcom_err.so.2":        true,
	"libc.so.6":              true,
	"libdl.so.2":             true,
	"libdrm.so.2":            true,
	"libEGL.so.1":            true,
	"libexpat.so.1":          true,
	"libfontconfig.so.1":     true,
	"libfreetype.so.6":       true,
	"libfribidi.so.0":        true,
	"libgbm.so.1":            true,
	"libgcc_s.so.1":          true,
	"libgio-2.0.so.0":        true,
	"libglapi.so.0":          true,
	"libGLdispatch.so.0":     true,
	"libglib-2.0.so.0":       true,
	"libGL.so.1":             true,
	"libGLX.so.0":            true,
	"libgmp.so.10":           true,
	"libgobject-2.0.so.0":    true,
	"libgpg-error.so.0":      true,
	"libharfbuzz.so.0":       true,
	"libICE.so.6":            true,
	"libjack.so.0":           true,
	"libm.so.6":              true,
	"libmvec.so.1":           true,
	"libnss_compat.so.2":     true,
	"libnss_dns.so.2":        true,
	"libnss_files.so.2":      true,
	"libnss_hesiod.so.2":     true,
	"libnss_nisplus.so.2":    true,
	"libnss_nis.so.2":        true,
	"libOpenGL.so.0":         true,
	"libp11-kit.so.0":        true,
	"libpango-1.0.so.0":      true,
	"libpangocairo-1.0.so.0": true,
	"libpangoft2-1.0.so.0":   true,
	"libpthread.so.0":        true,
	"libresolv.so.2":         true,
	"librt.so.1":             true,
	"libSM.so.6":             true,
	"libstdc++.so.6":         true,
	"libthai.so.0":           true,
	"libthread_db.so.1":      true,
	"libusb-1.0.so.0":        true,
	"libutil.so.1":           true,
	"libuuid.so.1":           true,
	"libX11.so.6":            true,
	"libxcb-dri2.so.0":       true,
	"libxcb-dri3.so.0":       true,
	"libxcb.so.1":            true,
	"libz.so.1":              true,
	// hand-curated secondary list
	"libdbus-1.so.3": true,
}

// windowsExcludeList enumerates the Windows known-DLLs set plus the core
// Win32 API surface that is always present and never redistributed.
var windowsExcludeList = map[string]bool{
	"hal.dll":            true,
	"ntdll.dll":          true,
	"kernel32.dll":       true,
	"gdi32.dll":          true,
	"user32.dll":         true,
	"comctl32.dll":       true,
	"ws2_32.dll":         true,
	"advapi32.dll":       true,
	"netapi32.dll":       true,
	"shscrap.dll":        true,
	"winmm.dll":          true,
	"msvcrt.dll":         true,
	"userenv.dll":        true,
	"mpr.dll":            true,
	"ole32.dll":          true,
	"shell32.dll":        true,
	"version.dll":        true,
	"crypt32.dll":        true,
	"dnsapi.dll":         true,
	"iphlpapi.dll":       true,
	"opengl32.dll":       true,
	"uxtheme.dll":        true,
	"dwmapi.dll":         true,
	"imm32.dll":          true,
	"oleaut32.dll":       true,
	"secur32.dll":        true,
	"odbc32.dll":         true,
	"shfolder.dll":       true,
	"wsock32.dll":        true,
	"ucrtbase.dll":       true,
	"ucrtbased.dll":      true,
	"policymanager.dll":  true,
	"wininet.dll":        true,
	"bcp47mrm.dll":       true,
	"kernelbase.dll":     true,
	"wow64cpu.dll":       true,
	"wowarmhw.dll":       true,
	"xtajit.dll":         true,
	"clbcatq.dll":        true,
	"combase.dll":        true,
	"comdlg32.dll":       true,
	"coml2.dll":          true,
	"difxapi.dll":        true,
	"gdiplus.dll":        true,
	"imagehlp.dll":       true,
	"msctf.dll":          true,
	"normaliz.dll":       true,
	"nsi.dll":            true,
	"psapi.dll":          true,
	"rpcrt4.dll":         true,
	"sechost.dll":        true,
	"setupapi.dll":       true,
	"shcore.dll":         true,
	"shlwapi.dll":        true,
	"wldap32.dll":        true,
	"wow64.dll":          true,
	"wow64win.dll":       true,
}

var direct3d11Names = map[string]bool{
	"d3d11.dll": true,
}

var dxgiNames = map[string]bool{
	"dxgi.dll": true,
}

var msvcRuntimePrefixes = []string{
	"concrt", "msvcp", "vccorlib", "vcruntime", "vcamp", "vcomp",
}

// IsLinuxBaseline reports whether name belongs to the embedded Linux
// exclude-list. Comparison is byte-exact, matching Linux library name
// semantics.
func IsLinuxBaseline(name string) bool {
	return linuxExcludeList[name]
}

// IsWindowsBaseline reports whether name belongs to the embedded Windows
// exclude-list. Comparison is case-insensitive.
func IsWindowsBaseline(name string) bool {
	return windowsExcludeList[strings.ToLower(name)]
}

// IsMSVCRuntime reports whether name starts with one of the MSVC runtime
// family prefixes (concrt/msvcp/vccorlib/vcruntime/vcamp/vcomp),
// case-insensitively.
func IsMSVCRuntime(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range msvcRuntimePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// IsWindowsAPISet reports whether name is a pseudo-DLL from the Windows API
// set mechanism (names starting with "api-" or "ext-"), case-insensitively.
func IsWindowsAPISet(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "api-") || strings.HasPrefix(lower, "ext-")
}

// IsDirect3D11 reports an exact (case-insensitive) match against the
// Direct3D 11 runtime DLL name.
func IsDirect3D11(name string) bool {
	return direct3d11Names[strings.ToLower(name)]
}

// IsDXGI reports an exact (case-insensitive) match against the DXGI
// runtime DLL name.
func IsDXGI(name string) bool {
	return dxgiNames[strings.ToLower(name)]
}

// Config toggles the optional parts of the Windows distribution decision.
// Exposed as a plain struct because cmd/distri-deploy wires it straight
// from flag.Bool values.
type Config struct {
	ExcludeMSVCRuntime    bool
	ExcludeWindowsAPISets bool
}

// ShouldDistributeLinux implements the Linux half of the should_distribute
// composite decision from spec.md section 4.4: false iff name is in the
// baseline exclude-list.
func ShouldDistributeLinux(name string) bool {
	return !IsLinuxBaseline(name)
}

// ShouldDistributeWindows implements the Windows half of the
// should_distribute composite decision from spec.md section 4.4.
func ShouldDistributeWindows(name string, cfg Config) bool {
	if IsWindowsBaseline(name) {
		return false
	}
	if cfg.ExcludeMSVCRuntime && IsMSVCRuntime(name) {
		return false
	}
	if cfg.ExcludeWindowsAPISets && IsWindowsAPISet(name) {
		return false
	}
	if IsDirect3D11(name) || IsDXGI(name) {
		return false
	}
	return true
}
