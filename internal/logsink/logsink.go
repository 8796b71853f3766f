// Package logsink is install's own copy of the status/verbose/debug
// callback-sink pattern used throughout this tool (see
// internal/depres/logsink). It is duplicated rather than imported so that
// internal/install stays decoupled from internal/depres, matching spec.md's
// "file-copier and RPATH-rewriter (treated as opaque installers)" scoping:
// nothing under internal/depres imports this package, and this package
// never imports internal/depres.
package logsink

// Sink groups the three message channels install emits progress on. A
// zero-value Sink is safe to use: every field defaults to nil and Emit*
// treats a nil func as a no-op.
type Sink struct {
	Status  func(string)
	Verbose func(string)
	Debug   func(string)
}

// Noop is the default sink: every channel discards its messages.
var Noop = Sink{}

func (s Sink) EmitStatus(msg string) {
	if s.Status != nil {
		s.Status(msg)
	}
}

func (s Sink) EmitVerbose(msg string) {
	if s.Verbose != nil {
		s.Verbose(msg)
	}
}

func (s Sink) EmitDebug(msg string) {
	if s.Debug != nil {
		s.Debug(msg)
	}
}
