// Package option holds the functional-option configuration surface for
// the copy-in core: a toggle set configured through WithX constructors
// rather than a struct literal.
package option

import (
	"io"

	"github.com/go-logr/logr"
)

// ProgressCallback is invoked once per record processed.
type ProgressCallback func(name string, bytesTransferred, totalBytes int64, currentFileNumber, totalFileCount int)

// Options carries every toggle the copy-in core observes.
type Options struct {
	Logger logr.Logger

	// Destination/mode
	ToStdout   bool
	TargetDir  string
	TableFlag  bool
	Verbose    bool
	NumericUID bool
	DotFlag    bool
	QuietFlag  bool

	// Rename channel
	RenameFlag      bool
	RenameBatchFile string

	// Pattern filtering
	PatternFileName   string
	Patterns          []string
	CopyMatchingFiles bool

	// Overwrite/creation policy
	UnconditionalFlag bool
	CreateDirFlag     bool

	// Ownership/permissions
	NoChownFlag  bool
	SetOwnerFlag bool
	SetOwnerUID  int
	SetGroupFlag bool
	SetGroupGID  int
	RetainTime   bool

	// Safety
	NoAbsolutePaths bool

	// Byte order
	SwapBytesFlag     bool
	SwapHalfwordsFlag bool

	// Verification
	OnlyVerifyCRC bool

	// Append mode: read through the archive without writing anything,
	// leaving the stream positioned at the trailer for a copy-out pass.
	AppendFlag bool

	// Listing
	NameEnd byte

	// Block accounting
	IOBlockSize int64

	// Output streams for listing/diagnostics, defaulting to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	Progress ProgressCallback
}

// Option mutates Options.
type Option func(*Options)

// Default returns the Options a bare extraction runs with absent any
// Option: non-verbose, quiet-off, padding and ownership applied, no
// absolute-path restriction, 5120-byte blocks (the historical default).
func Default() Options {
	return Options{
		Logger:            logr.Discard(),
		CopyMatchingFiles: true,
		NameEnd:           '\n',
		IOBlockSize:       5120,
	}
}

func WithLogger(logger logr.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

func WithToStdout(v bool) Option {
	return func(o *Options) { o.ToStdout = v }
}

func WithTargetDir(dir string) Option {
	return func(o *Options) { o.TargetDir = dir }
}

func WithTable(v bool) Option {
	return func(o *Options) { o.TableFlag = v }
}

func WithVerbose(v bool) Option {
	return func(o *Options) { o.Verbose = v }
}

func WithNumericUID(v bool) Option {
	return func(o *Options) { o.NumericUID = v }
}

func WithDot(v bool) Option {
	return func(o *Options) { o.DotFlag = v }
}

func WithQuiet(v bool) Option {
	return func(o *Options) { o.QuietFlag = v }
}

func WithRename(v bool) Option {
	return func(o *Options) { o.RenameFlag = v }
}

func WithRenameBatchFile(path string) Option {
	return func(o *Options) { o.RenameBatchFile, o.RenameFlag = path, true }
}

func WithPatterns(patterns []string, copyMatching bool) Option {
	return func(o *Options) {
		o.Patterns = patterns
		o.CopyMatchingFiles = copyMatching
	}
}

func WithPatternFile(path string, copyMatching bool) Option {
	return func(o *Options) {
		o.PatternFileName = path
		o.CopyMatchingFiles = copyMatching
	}
}

func WithUnconditional(v bool) Option {
	return func(o *Options) { o.UnconditionalFlag = v }
}

func WithCreateDir(v bool) Option {
	return func(o *Options) { o.CreateDirFlag = v }
}

func WithNoChown(v bool) Option {
	return func(o *Options) { o.NoChownFlag = v }
}

func WithSetOwner(uid int) Option {
	return func(o *Options) { o.SetOwnerFlag, o.SetOwnerUID = true, uid }
}

func WithSetGroup(gid int) Option {
	return func(o *Options) { o.SetGroupFlag, o.SetGroupGID = true, gid }
}

func WithRetainTime(v bool) Option {
	return func(o *Options) { o.RetainTime = v }
}

func WithNoAbsolutePaths(v bool) Option {
	return func(o *Options) { o.NoAbsolutePaths = v }
}

func WithSwapBytes(v bool) Option {
	return func(o *Options) { o.SwapBytesFlag = v }
}

func WithSwapHalfwords(v bool) Option {
	return func(o *Options) { o.SwapHalfwordsFlag = v }
}

func WithOnlyVerifyCRC(v bool) Option {
	return func(o *Options) { o.OnlyVerifyCRC = v }
}

func WithAppend(v bool) Option {
	return func(o *Options) { o.AppendFlag = v }
}

func WithNameEnd(b byte) Option {
	return func(o *Options) { o.NameEnd = b }
}

func WithIOBlockSize(n int64) Option {
	return func(o *Options) { o.IOBlockSize = n }
}

func WithProgress(cb ProgressCallback) Option {
	return func(o *Options) { o.Progress = cb }
}

func WithStdout(w io.Writer) Option {
	return func(o *Options) { o.Stdout = w }
}

func WithStderr(w io.Writer) Option {
	return func(o *Options) { o.Stderr = w }
}
