// Package logging provides the verbosity levels and colored logr sink
// (SimpleLogSink, in simple.go) that the copy-in core's diagnostics are
// built on; every component takes a plain logr.Logger rather than a
// package-specific wrapper type, so the CLI only needs these level
// constants to pick NewSimpleLogger's verbosity.
package logging

const (
	LEVEL_INFO  = 0
	LEVEL_DEBUG = 1
	LEVEL_TRACE = 2
)
