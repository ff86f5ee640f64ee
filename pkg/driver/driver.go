// Package driver implements the top-level driver:
// pattern loading, rename channel setup, the main read/classify/dispatch
// loop, and end-of-archive finalization.
package driver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/bgrewell/cpio-kit/pkg/extract"
	"github.com/bgrewell/cpio-kit/pkg/header"
	"github.com/bgrewell/cpio-kit/pkg/option"
	"github.com/bgrewell/cpio-kit/pkg/rename"
	"github.com/bgrewell/cpio-kit/pkg/tape"
)

// Run reads the archive from r under the given options, extracting (or
// listing) every record until the trailer, then performs the
// end-of-archive finalization sequence. It returns the accumulated
// diagnostic Report alongside any fatal stream error.
func Run(r io.Reader, opts option.Options) (extract.Report, error) {
	if err := loadPatternFile(&opts); err != nil {
		return extract.Report{}, fmt.Errorf("driver: %w", err)
	}

	renameCh, err := openRenameChannel(opts)
	if err != nil {
		return extract.Report{}, fmt.Errorf("driver: %w", err)
	}

	restoreUmask := syscall.Umask(0)
	defer syscall.Umask(restoreUmask)

	if opts.TargetDir != "" {
		prev, err := os.Getwd()
		if err != nil {
			return extract.Report{}, fmt.Errorf("driver: %w", err)
		}
		if err := os.MkdirAll(opts.TargetDir, 0o755); err != nil {
			return extract.Report{}, fmt.Errorf("driver: %w", err)
		}
		if err := os.Chdir(opts.TargetDir); err != nil {
			return extract.Report{}, fmt.Errorf("driver: %w", err)
		}
		defer os.Chdir(prev)
	}

	tr := tape.New(r)
	dec := header.NewDecoder(tr, opts.Logger)
	ex := extract.New(dec, opts, renameCh)

	for {
		err := ex.ProcessNext()
		if errors.Is(err, extract.ErrDone) {
			break
		}
		if err != nil {
			return ex.Report(), fmt.Errorf("driver: %w", err)
		}
	}

	if opts.DotFlag {
		fmt.Fprintln(stderrOf(opts))
	}

	ex.Finalize()

	if !opts.QuietFlag {
		blocks := (dec.InputBytes() + opts.IOBlockSize - 1) / opts.IOBlockSize
		fmt.Fprintf(stderrOf(opts), "%d block(s)\n", blocks)
	}

	return ex.Report(), nil
}

func stderrOf(opts option.Options) io.Writer {
	if opts.Stderr != nil {
		return opts.Stderr
	}
	return os.Stderr
}

// loadPatternFile reads newline-separated patterns from opts.PatternFileName,
// appending them to opts.Patterns, when configured.
func loadPatternFile(opts *option.Options) error {
	if opts.PatternFileName == "" {
		return nil
	}
	f, err := os.Open(opts.PatternFileName)
	if err != nil {
		return fmt.Errorf("open pattern file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		opts.Patterns = append(opts.Patterns, line)
	}
	return scanner.Err()
}

// openRenameChannel opens the configured rename channel: a batch file
// when RenameBatchFile is set, the interactive tty pair when RenameFlag
// is set without a batch file, or nil when renaming is disabled.
func openRenameChannel(opts option.Options) (*rename.Channel, error) {
	if opts.RenameBatchFile != "" {
		f, err := os.Open(opts.RenameBatchFile)
		if err != nil {
			return nil, fmt.Errorf("open rename batch file: %w", err)
		}
		return rename.Batch(f), nil
	}
	if opts.RenameFlag {
		return rename.Interactive(), nil
	}
	return nil, nil
}
