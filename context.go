// Package distrideploy holds the small pieces of process-lifecycle glue
// shared by cmd/distri-deploy: signal-driven cancellation and an at-exit
// hook list for cleaning up profile files. The rest of distri's root
// package (Repo, Architectures, PackageVersion) described distri's own
// package-repository format and has no analog in a binary-deploy tool; it
// was deleted rather than adapted (see DESIGN.md).
package distrideploy

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// InterruptibleContext returns a context which is canceled when the program is
// interrupted (i.e. receiving SIGINT or SIGTERM).
func InterruptibleContext() (context.Context, context.CancelFunc) {
	ctx, canc := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		// Subsequent signals will result in immediate termination, which is
		// useful in case cleanup hangs:
		signal.Stop(sig)
		canc()
	}()
	return ctx, canc
}
