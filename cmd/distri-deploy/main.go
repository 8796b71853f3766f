// Command distri-deploy discovers the transitive shared-library
// dependencies of one or more executables or shared libraries, and stages
// a self-contained, relocatable copy of the target plus its
// redistributable dependencies into a destination directory.
//
// Usage:
//
//	distri-deploy [flags] target [target...]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/xerrors"

	distrideploy "github.com/distr1/distri-deploy"
	"github.com/distr1/distri-deploy/internal/compilerfinder"
	"github.com/distr1/distri-deploy/internal/depres"
	"github.com/distr1/distri-deploy/internal/depres/exclude"
	depreslog "github.com/distr1/distri-deploy/internal/depres/logsink"
	"github.com/distr1/distri-deploy/internal/depres/platform"
	"github.com/distr1/distri-deploy/internal/install"
	installlog "github.com/distr1/distri-deploy/internal/logsink"
)

var (
	debug      = flag.Bool("debug", false, "print debug messages, such as each binary as it is read")
	verbose    = flag.Bool("verbose", false, "print the search path list and every resolved/excluded library")
	cpuprofile = flag.String("cpuprofile", "", "path to store a CPU profile at")

	destDir    = flag.String("dest-dir", "", "directory to stage the target and its dependencies into (required)")
	structured = flag.Bool("structured", false, "stage into bin/, lib/ and plugins/ subdirectories of -dest-dir instead of a flat layout")
	reportOnly = flag.Bool("report-only", false, "resolve dependencies and print the result, but do not copy any files")

	prefixes   = flag.String("prefix-path-list", "", "comma-separated list of installation prefixes to search for libraries under")
	systemDirs = flag.String("system-default-path-list", "", "comma-separated list of system library directories appended to the Linux search path list")

	excludeMSVCRuntime    = flag.Bool("exclude-msvc-runtime", true, "on Windows targets, do not redistribute the MSVC runtime DLLs")
	excludeWindowsAPISets = flag.Bool("exclude-windows-api-sets", true, "on Windows targets, do not redistribute api-ms-*/ext-ms-* API set DLLs")
	includeHostPath       = flag.Bool("include-host-path", false, "on Windows targets, also search the host process's PATH environment variable")

	overwrite = flag.String("overwrite", "keep", "what to do when a destination file already exists: keep, fail, or overwrite")

	patchelfPath = flag.String("patchelf", "", "path to the patchelf binary used to rewrite RPATH on staged Linux binaries (defaults to looking up \"patchelf\" on PATH)")
)

func parseOverwrite(s string) (install.OverwriteBehavior, error) {
	switch strings.ToLower(s) {
	case "keep":
		return install.Keep, nil
	case "fail":
		return install.Fail, nil
	case "overwrite":
		return install.Overwrite, nil
	default:
		return 0, xerrors.Errorf("invalid -overwrite value %q: want keep, fail or overwrite", s)
	}
}

func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// statusf writes a progress line to stderr, prefixed the way cmake-style
// tooling does when stderr is a terminal, plain otherwise.
func statusf(colorize bool, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if colorize {
		fmt.Fprintln(os.Stderr, "-- "+msg)
		return
	}
	fmt.Fprintln(os.Stderr, msg)
}

func funcmain() error {
	flag.Parse()
	targets := flag.Args()
	if len(targets) == 0 {
		return xerrors.New("usage: distri-deploy [flags] target [target...]")
	}
	if *destDir == "" && !*reportOnly {
		return xerrors.New("-dest-dir is required unless -report-only is set")
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		distrideploy.RegisterAtExit(func() error {
			pprof.StopCPUProfile()
			return f.Close()
		})
	}

	overwriteBehavior, err := parseOverwrite(*overwrite)
	if err != nil {
		return err
	}

	if err := distrideploy.BumpFileLimit(); err != nil {
		log.Printf("warning: bumping RLIMIT_NOFILE failed: %v", err)
	}

	colorize := isatty.IsTerminal(os.Stderr.Fd())
	sink := depreslog.Sink{
		Status: func(msg string) { statusf(colorize, "%s", msg) },
	}
	if *verbose {
		sink.Verbose = func(msg string) { statusf(colorize, "%s", msg) }
	}
	if *debug {
		sink.Debug = func(msg string) { statusf(colorize, "debug: %s", msg) }
	}

	cfg := depres.Config{
		PrefixPathList:     splitCommaList(*prefixes),
		SystemDefaultPaths: splitCommaList(*systemDirs),
		ExcludeConfig: exclude.Config{
			ExcludeMSVCRuntime:    *excludeMSVCRuntime,
			ExcludeWindowsAPISets: *excludeWindowsAPISets,
		},
		IncludeHostPath: *includeHostPath,
		CompilerFinder:  compilerfinder.EnvFinder{},
		Sink:            sink,
	}
	driver := depres.New(cfg)

	ctx, canc := distrideploy.InterruptibleContext()
	defer canc()

	list, err := driver.FindDependenciesAll(ctx, targets)
	if err != nil {
		return xerrors.Errorf("resolving dependencies: %w", err)
	}

	for _, r := range list.Results {
		status := "solved"
		if !r.IsSolved() {
			status = "UNSOLVED"
		}
		statusf(colorize, "%s: %s", r.TargetPath, status)
		for _, e := range r.Entries {
			statusf(colorize, "  %s: %s", e.LibraryName, e.Status.Kind)
		}
	}
	if !list.IsSolved() {
		return xerrors.New("one or more targets have unresolved dependencies; see output above")
	}

	if *reportOnly {
		return nil
	}

	layout := install.Flat
	if *structured {
		layout = install.Structured
	}
	plan, err := install.StageList(list, install.DestinationLayout{Layout: layout, DestDir: *destDir})
	if err != nil {
		return xerrors.Errorf("building install plan: %w", err)
	}

	installSink := installlog.Sink{
		Status: func(msg string) { statusf(colorize, "%s", msg) },
	}

	var rewriter install.RPathRewriter = install.NullRewriter{}
	if plan.OS == platform.Linux {
		rewriter = install.PatchelfRewriter{Path: *patchelfPath}
	}

	outcome, err := plan.Apply(ctx, overwriteBehavior, installSink, rewriter)
	if err != nil {
		return xerrors.Errorf("staging dependencies: %w", err)
	}
	statusf(colorize, "installed %d file(s), skipped %d", len(outcome.Installed), len(outcome.Skipped))
	return nil
}

func main() {
	if err := funcmain(); err != nil {
		if err := distrideploy.RunAtExit(); err != nil {
			log.Printf("at-exit cleanup: %v", err)
		}
		log.Fatal(err)
	}
	if err := distrideploy.RunAtExit(); err != nil {
		log.Fatal(err)
	}
}
