// Package cpio is the module-root facade: it re-exports the copy-in
// core (pkg/driver, pkg/extract, pkg/option) behind a functional-options
// constructor for opening an archive.
package cpio

import (
	"io"

	"github.com/bgrewell/cpio-kit/pkg/driver"
	"github.com/bgrewell/cpio-kit/pkg/extract"
	"github.com/bgrewell/cpio-kit/pkg/option"
	"github.com/go-logr/logr"
)

// Option mutates the extraction/listing configuration. It is an alias
// for pkg/option.Option so callers never need to import pkg/option
// directly for the common case.
type Option = option.Option

// Report is the accumulated diagnostic summary for one archive run.
type Report = extract.Report

// Re-export the WithX constructors callers reach for most often, the
// way iso.go exposes WithParseOnOpen et al. at package scope. The full
// set lives in pkg/option for less common toggles.
var (
	WithLogger            = option.WithLogger
	WithToStdout          = option.WithToStdout
	WithTargetDir         = option.WithTargetDir
	WithTable             = option.WithTable
	WithVerbose           = option.WithVerbose
	WithNumericUID        = option.WithNumericUID
	WithDot               = option.WithDot
	WithQuiet             = option.WithQuiet
	WithRename            = option.WithRename
	WithRenameBatchFile   = option.WithRenameBatchFile
	WithPatterns          = option.WithPatterns
	WithPatternFile       = option.WithPatternFile
	WithUnconditional     = option.WithUnconditional
	WithCreateDir         = option.WithCreateDir
	WithNoChown           = option.WithNoChown
	WithSetOwner          = option.WithSetOwner
	WithSetGroup          = option.WithSetGroup
	WithRetainTime        = option.WithRetainTime
	WithNoAbsolutePaths   = option.WithNoAbsolutePaths
	WithSwapBytes         = option.WithSwapBytes
	WithSwapHalfwords     = option.WithSwapHalfwords
	WithOnlyVerifyCRC     = option.WithOnlyVerifyCRC
	WithAppend            = option.WithAppend
	WithNameEnd           = option.WithNameEnd
	WithIOBlockSize       = option.WithIOBlockSize
	WithProgress          = option.WithProgress
	WithStdout            = option.WithStdout
	WithStderr            = option.WithStderr
)

// Extractor runs the copy-in core against a single archive stream. It
// is a thin wrapper over pkg/driver.Run, constructed once the caller
// has finished applying Options.
type Extractor struct {
	r    io.Reader
	opts option.Options
}

// NewExtractor builds an Extractor that reads archive r under the
// given options, applying Default() first so every unset toggle has a
// sane value.
func NewExtractor(r io.Reader, opts ...Option) *Extractor {
	o := option.Default()
	for _, opt := range opts {
		opt(&o)
	}
	return &Extractor{r: r, opts: o}
}

// Extract runs the full extraction pass: decode, filter, dispatch to
// the type-specific writers, and finalize deferred hard links and
// symlink placeholders.
func (e *Extractor) Extract() (Report, error) {
	return driver.Run(e.r, e.opts)
}

// List runs a listing pass regardless of the Options' own TableFlag,
// the way cpio -t forces table mode independent of how the options
// were built.
func (e *Extractor) List() (Report, error) {
	o := e.opts
	o.TableFlag = true
	return driver.Run(e.r, o)
}

// Extract decodes archive r and writes every member to disk (or to
// stdout, under WithToStdout), applying opts over the default
// configuration. It is a convenience wrapper for one-shot callers that
// don't need an Extractor value.
func Extract(r io.Reader, opts ...Option) (Report, error) {
	return NewExtractor(r, opts...).Extract()
}

// List decodes archive r and reports its table of contents without
// writing anything to disk.
func List(r io.Reader, opts ...Option) (Report, error) {
	return NewExtractor(r, opts...).List()
}

// DiscardLogger is logr.Discard, exposed at package scope as the
// default WithLogger argument for callers that don't want one.
func DiscardLogger() logr.Logger {
	return logr.Discard()
}
