package distrideploy

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// BumpFileLimit raises RLIMIT_NOFILE to the kernel-wide maximum, the same
// way distri's own CLI does before a build: staging a large multi-target
// batch copies many files concurrently, each holding a source and a
// destination file open, and the default per-process limit is easy to
// exhaust.
func BumpFileLimit() error {
	var fileMax, nrOpen uint64
	{
		b, err := os.ReadFile("/proc/sys/fs/file-max")
		if err != nil {
			return err
		}
		fileMax, err = strconv.ParseUint(strings.TrimSpace(string(b)), 0, 64)
		if err != nil {
			return err
		}
	}
	{
		b, err := os.ReadFile("/proc/sys/fs/nr_open")
		if err != nil {
			return err
		}
		nrOpen, err = strconv.ParseUint(strings.TrimSpace(string(b)), 0, 64)
		if err != nil {
			return err
		}
	}
	max := fileMax
	if nrOpen < max {
		max = nrOpen
	}
	set := unix.Rlimit{Max: max, Cur: max}
	return unix.Setrlimit(unix.RLIMIT_NOFILE, &set)
}
