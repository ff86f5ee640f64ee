package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bgrewell/cpio-kit/pkg/header"
	"github.com/bgrewell/cpio-kit/pkg/link"
	"github.com/bgrewell/cpio-kit/pkg/option"
	"github.com/bgrewell/cpio-kit/pkg/rename"
	"github.com/bgrewell/cpio-kit/pkg/symlink"
)

// Extractor drives the per-record decision tree and type-specific
// writers against one archive stream. It holds the two cross-record
// tables (deferred hard links and delayed symlinks) and the delayed
// directory metadata queue; the top-level driver (pkg/driver) owns
// Extractor and calls ProcessNext in a loop, then Finalize once the
// trailer is seen.
type Extractor struct {
	dec      *header.Decoder
	opts     option.Options
	links    *link.Table
	symlinks *symlink.Table
	rename   *rename.Channel
	dstat    delayedStat
	report   Report
	now      time.Time

	fileNumber int
}

// New constructs an Extractor. rename may be nil, meaning the rename
// channel is disabled.
func New(dec *header.Decoder, opts option.Options, renameCh *rename.Channel) *Extractor {
	return &Extractor{
		dec:      dec,
		opts:     opts,
		links:    link.New(),
		symlinks: symlink.New(),
		rename:   renameCh,
		now:      time.Now(),
	}
}

func (e *Extractor) warnf(msg string) {
	e.opts.Logger.Info(msg, "warning", true)
}

func (e *Extractor) stdout() io.Writer {
	if e.opts.Stdout != nil {
		return e.opts.Stdout
	}
	return os.Stdout
}

func (e *Extractor) stderr() io.Writer {
	if e.opts.Stderr != nil {
		return e.opts.Stderr
	}
	return os.Stderr
}

// ErrDone is returned by ProcessNext once the trailer record has been
// consumed.
var ErrDone = errors.New("extract: archive trailer reached")

// ProcessNext decodes and dispatches exactly one record. It returns
// ErrDone (not wrapped) when the trailer is reached; any other non-nil
// error is a fatal stream error.
func (e *Extractor) ProcessNext() error {
	rec, err := e.dec.Next()
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	e.report.RecordsSeen++

	if rec.IsTrailer() {
		return ErrDone
	}

	for _, field := range rec.MalformedFields {
		if field != "name" {
			e.warnf(fmt.Sprintf("malformed number in %s field for %s", field, rec.Name))
		}
	}
	if rec.OutOfRangeField {
		e.warnf(fmt.Sprintf("archive header has out-of-range value for %s", rec.Name))
	}

	if hasMalformedName(rec) {
		e.report.MalformedRecords++
		e.warnf("malformed or missing member name in archive header")
		return e.dec.SkipPayload()
	}
	if rec.Type() == header.TypeUnknown {
		e.report.MalformedRecords++
		e.warnf(fmt.Sprintf("%s: unknown file type", rec.Name))
		return e.dec.SkipPayload()
	}

	name, rejected := sanitizeName(rec.Name, !e.opts.NoAbsolutePaths)
	if rejected {
		e.report.MalformedRecords++
		e.warnf(fmt.Sprintf("%s: path contains \"..\", not extracted", rec.Name))
		return e.dec.SkipPayload()
	}
	// The record keeps the sanitized (and later renamed) name so the
	// deferred-link table and listers see the same path the writers use.
	rec.Name = name

	ps := patternSet{patterns: e.opts.Patterns, copyMatchingFiles: e.opts.CopyMatchingFiles}
	if !ps.include(name) {
		return e.handleExcluded(rec, name)
	}

	if e.opts.TableFlag {
		return e.handleList(rec, name)
	}

	if e.opts.AppendFlag {
		// Append mode reads the existing archive only to find its end;
		// nothing is written to disk.
		e.report.Skipped++
		return e.dec.SkipPayload()
	}

	if e.opts.OnlyVerifyCRC {
		return e.handleVerify(rec, name)
	}

	if e.rename != nil {
		renamed, skip, err := e.rename.Rename(name)
		if err != nil {
			return fmt.Errorf("extract: rename channel: %w", err)
		}
		if skip {
			e.report.Skipped++
			return e.dec.SkipPayload()
		}
		name = renamed
		rec.Name = name
	}

	return e.dispatch(rec, name)
}

func hasMalformedName(rec *header.Record) bool {
	for _, f := range rec.MalformedFields {
		if f == "name" {
			return true
		}
	}
	return false
}

// handleExcluded handles a filtered-out record whose payload might
// still be the data carrier for a deferred hard-link group, giving it
// a chance to redirect into that group instead of being thrown away.
func (e *Extractor) handleExcluded(rec *header.Record, name string) error {
	e.report.Skipped++
	if rec.Dialect.IsNewCPIO() && rec.NLink > 1 && rec.Size > 0 {
		id := rec.Identity()
		if entry, ok := e.links.TakePending(id); ok {
			if err := e.writeRegularAt(rec, entry.Name); err != nil {
				return err
			}
			if err := e.dec.SkipPayload(); err != nil {
				return err
			}
			e.links.OnExtracted(id, entry.Name, e.opts.Logger)
			return nil
		}
	}
	return e.dec.SkipPayload()
}

// writeRegularAt streams the current record's payload to path without
// going through any of writeRegular's link-group short-circuits (the
// caller has already resolved those), then applies the record's
// metadata and checksum verification the same way writeRegular would.
func (e *Extractor) writeRegularAt(rec *header.Record, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("extract: open %s: %w", path, err)
	}
	sum, err := streamPayload(f, e.dec.PayloadReader(), path, rec.Size, e.opts.SwapBytesFlag, e.opts.SwapHalfwordsFlag, e.warnf)
	closeErr := f.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}
	if err := applyOwnership(path, rec, &e.opts, true); err != nil {
		e.warnf(fmt.Sprintf("failed to set ownership on %s: %v", path, err))
	}
	if err := os.Chmod(path, header.PermMode(rec.Perm())); err != nil {
		e.warnf(fmt.Sprintf("failed to set mode on %s: %v", path, err))
	}
	if err := applyMtime(path, rec, &e.opts); err != nil {
		e.warnf(fmt.Sprintf("failed to set mtime on %s: %v", path, err))
	}
	if rec.Dialect.HasCRC() && sum != rec.Checksum {
		e.warnf(fmt.Sprintf("%s: checksum error (0x%x, should be 0x%x)", path, sum, rec.Checksum))
		e.report.ChecksumMismatch++
	}
	return nil
}

func (e *Extractor) handleList(rec *header.Record, name string) error {
	e.report.Listed++
	var target string
	if rec.Type() == header.TypeSymlink {
		target = e.readLinkTarget(rec)
	}
	var err error
	if e.opts.Verbose {
		err = listLong(e.stdout(), rec, target, e.opts.NumericUID, e.now)
	} else {
		err = listBare(e.stdout(), name, e.opts.NameEnd)
	}
	if err != nil {
		return err
	}
	if e.opts.OnlyVerifyCRC && rec.Type() != header.TypeSymlink {
		return e.verifyCRC(rec, name)
	}
	return e.dec.SkipPayload()
}

func (e *Extractor) handleVerify(rec *header.Record, name string) error {
	if rec.Type() == header.TypeSymlink {
		// links don't carry a checksum.
		return e.dec.SkipPayload()
	}
	if err := e.verifyCRC(rec, name); err != nil {
		return err
	}
	if e.opts.Verbose {
		fmt.Fprintln(e.stderr(), name)
	}
	if e.opts.DotFlag {
		fmt.Fprint(e.stderr(), ".")
	}
	return nil
}

func (e *Extractor) verifyCRC(rec *header.Record, name string) error {
	sum, err := streamPayload(io.Discard, e.dec.PayloadReader(), name, rec.Size, false, false, nil)
	if err != nil {
		return err
	}
	if err := e.dec.SkipPayload(); err != nil {
		return err
	}
	if rec.Dialect.HasCRC() && sum != rec.Checksum {
		e.warnf(fmt.Sprintf("%s: checksum error (0x%x, should be 0x%x)", name, sum, rec.Checksum))
		e.report.ChecksumMismatch++
	}
	return nil
}

// readLinkTarget resolves a symlink's target the way the lister needs
// it: from the record's own payload for cpio dialects, or LinkName for
// tar/ustar.
func (e *Extractor) readLinkTarget(rec *header.Record) string {
	if rec.Dialect.StoresLinkInline() {
		return rec.LinkName
	}
	// Read the payload bytes directly (rather than via ReadAllPayload)
	// so the trailing pad is left for the caller's own SkipPayload call
	// to consume exactly once.
	buf := make([]byte, rec.Size)
	var total int64
	for total < rec.Size {
		n, err := e.dec.ReadPayload(buf[total:])
		total += int64(n)
		if err != nil {
			break
		}
	}
	return string(buf[:total])
}

// dispatch performs type-specific writer invocation, after
// the try_existing pre-check.
func (e *Extractor) dispatch(rec *header.Record, name string) error {
	disp, err := tryExisting(name, rec, e.opts.UnconditionalFlag || e.opts.ToStdout)
	switch disp {
	case existingDir:
		// Both are directories: nothing to remove, but the record still
		// flows through writeDirectory so its final metadata is queued.
	case skipNewer:
		e.warnf(fmt.Sprintf("%s not created: newer or same age version exists", name))
		e.report.Skipped++
		return e.dec.SkipPayload()
	case skipRemoveFailed:
		e.report.ExtractionErrors++
		e.warnf(fmt.Sprintf("cannot remove current %s: %v", name, err))
		return e.dec.SkipPayload()
	}

	var werr error
	switch rec.Type() {
	case header.TypeRegular:
		werr = e.writeRegular(rec, name)
	case header.TypeDirectory:
		werr = e.writeDirectory(rec, name)
	case header.TypeCharDevice, header.TypeBlockDevice, header.TypeFIFO, header.TypeSocket:
		werr = e.writeDevice(rec, name)
	case header.TypeSymlink:
		target := e.readLinkTarget(rec)
		werr = e.writeSymlink(rec, name, target)
		if err := e.dec.SkipPayload(); err != nil && werr == nil {
			werr = err
		}
		if werr != nil {
			e.report.ExtractionErrors++
			e.warnf(werr.Error())
			return nil
		}
		e.report.Extracted++
		e.progress(name, rec)
		return nil
	}

	if werr != nil {
		e.report.ExtractionErrors++
		e.warnf(werr.Error())
		return e.dec.SkipPayload()
	}

	// For a regular file writeRegular already consumed the payload
	// itself; SkipPayload here only tosses the trailing pad.
	if err := e.dec.SkipPayload(); err != nil {
		return err
	}
	e.report.Extracted++
	e.progress(name, rec)
	return nil
}

func (e *Extractor) progress(name string, rec *header.Record) {
	e.fileNumber++
	if e.opts.Verbose {
		fmt.Fprintln(e.stderr(), name)
	} else if e.opts.DotFlag {
		fmt.Fprint(e.stderr(), ".")
	}
	if e.opts.Progress != nil {
		e.opts.Progress(name, rec.Size, rec.Size, e.fileNumber, 0)
	}
}

// Finalize runs the end-of-archive sequence: replace
// symlink placeholders, apply delayed directory metadata, then flush
// any still-pending deferred hard links.
func (e *Extractor) Finalize() {
	e.symlinks.ReplaceAll(e.opts.Logger)
	e.dstat.apply(e.opts.Logger)
	e.links.Finalize(e.opts.Logger)
}

// Report returns the accumulated diagnostics, including counters the
// decoder tracked for junk-skipping and byte-swap detection.
func (e *Extractor) Report() Report {
	r := e.report
	r.JunkBytesSkipped = e.dec.JunkBytesSkipped()
	r.ByteOrderSwapped = e.dec.ByteOrderSwapped()
	return r
}
