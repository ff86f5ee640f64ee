package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bgrewell/cpio-kit/pkg/header"
	"github.com/bgrewell/cpio-kit/pkg/numeric"
	"github.com/bgrewell/cpio-kit/pkg/option"
	"github.com/bgrewell/cpio-kit/pkg/symlink"
	"golang.org/x/sys/unix"
)

// existingDisposition is the result of tryExisting's pre-check.
type existingDisposition int

const (
	proceed existingDisposition = iota
	existingDir
	skipNewer
	skipRemoveFailed
)

// tryExisting implements the "try_existing_file" pre-check: lstat name
// and decide whether to proceed with creation, treat an existing
// directory as already satisfied, or skip because the on-disk copy is
// not older than the archive member (both timestamps are truncated to
// whole seconds before comparing, matching the historical time_t-
// resolution check).
func tryExisting(name string, rec *header.Record, unconditional bool) (existingDisposition, error) {
	info, err := os.Lstat(name)
	if err != nil {
		if os.IsNotExist(err) {
			return proceed, nil
		}
		return proceed, nil
	}

	if info.IsDir() && rec.Type() == header.TypeDirectory {
		return existingDir, nil
	}

	if !unconditional {
		existing := info.ModTime().Truncate(time.Second)
		incoming := rec.MTime.Truncate(time.Second)
		if !existing.Before(incoming) {
			return skipNewer, nil
		}
	}

	if info.IsDir() {
		if err := os.Remove(name); err != nil {
			return skipRemoveFailed, err
		}
		return proceed, nil
	}
	if err := os.Remove(name); err != nil {
		return skipRemoveFailed, err
	}
	return proceed, nil
}

// ensureParents creates name's parent directories when createDir is set,
// for the single create-dir-and-retry-once policy every writer below
// shares.
func ensureParents(name string, createDir bool) error {
	if !createDir {
		return nil
	}
	dir := filepath.Dir(name)
	if dir == "." || dir == "/" {
		return nil
	}
	return os.MkdirAll(dir, 0o777)
}

// applyOwnership chowns path unless disabled, honoring explicit
// SetOwner/SetGroup overrides over the record's own uid/gid.
func applyOwnership(path string, rec *header.Record, opts *option.Options, followSymlink bool) error {
	if opts.NoChownFlag {
		return nil
	}
	uid, gid := int(rec.UID), int(rec.GID)
	if opts.SetOwnerFlag {
		uid = opts.SetOwnerUID
	}
	if opts.SetGroupFlag {
		gid = opts.SetGroupGID
	}
	if followSymlink {
		return os.Chown(path, uid, gid)
	}
	return os.Lchown(path, uid, gid)
}

// applyMtime sets path's mtime to rec.MTime when retain-time is
// requested.
func applyMtime(path string, rec *header.Record, opts *option.Options) error {
	if !opts.RetainTime {
		return nil
	}
	return os.Chtimes(path, rec.MTime, rec.MTime)
}

// streamPayload copies size payload bytes from payload to dst, optionally
// byte/halfword-swapping the data, and returns the simple unsigned byte
// sum used for new-crc verification. Swapping applies only when size is
// a multiple of the swap unit; an incompatible size is reported and the
// data copied unswapped.
func streamPayload(dst io.Writer, payload io.Reader, name string, size int64, swapBytes, swapHalfwords bool, warn func(string)) (sum uint32, err error) {
	swappingBytes, swappingHalfwords := false, false
	if swapHalfwords {
		if size%4 == 0 {
			swappingHalfwords = true
		} else if warn != nil {
			warn(fmt.Sprintf("cannot swap halfwords of %s: odd number of halfwords", name))
		}
	}
	if swapBytes {
		if size%2 == 0 {
			swappingBytes = true
		} else if warn != nil {
			warn(fmt.Sprintf("cannot swap bytes of %s: odd number of bytes", name))
		}
	}

	// The buffer length is a multiple of 4 so every chunk but the last
	// stays aligned to the swap units.
	buf := make([]byte, 64*1024)
	var total int64
	for total < size {
		chunk := buf[:min64(int64(len(buf)), size-total)]
		n, rerr := io.ReadFull(payload, chunk)
		if n > 0 {
			chunk = chunk[:n]
			for _, b := range chunk {
				sum += uint32(b)
			}
			if swappingHalfwords && n%4 == 0 {
				swapHalfwordPairs(chunk)
			}
			if swappingBytes && n%2 == 0 {
				numeric.SwabArray(chunk, n/2)
			}
			if _, werr := dst.Write(chunk); werr != nil {
				return sum, werr
			}
			total += int64(n)
		}
		if rerr != nil {
			if (rerr == io.EOF || rerr == io.ErrUnexpectedEOF) && total >= size {
				break
			}
			return sum, rerr
		}
	}
	return sum, nil
}

// swapHalfwordPairs exchanges the two 16-bit halves of each 4-byte word.
func swapHalfwordPairs(buf []byte) {
	for i := 0; i+4 <= len(buf); i += 4 {
		buf[i], buf[i+1], buf[i+2], buf[i+3] = buf[i+2], buf[i+3], buf[i], buf[i+1]
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// writeRegular implements the regular file writer, including the
// hard-link-group short-circuits and the stdout streaming mode.
func (e *Extractor) writeRegular(rec *header.Record, name string) error {
	if e.opts.ToStdout {
		sum, err := streamPayload(e.stdout(), e.dec.PayloadReader(), name, rec.Size, e.opts.SwapBytesFlag, e.opts.SwapHalfwordsFlag, e.warnf)
		if err != nil {
			return err
		}
		if rec.Dialect.HasCRC() && sum != rec.Checksum {
			e.warnf(fmt.Sprintf("%s: checksum error (0x%x, should be 0x%x)", name, sum, rec.Checksum))
			e.report.ChecksumMismatch++
		}
		return nil
	}

	id := rec.Identity()
	if rec.Dialect.IsNewCPIO() && rec.NLink > 1 {
		if rec.Size == 0 {
			e.links.Defer(rec)
			return nil
		}
		if linked, err := e.links.LinkToGroup(id, name); err != nil {
			return err
		} else if linked {
			return nil
		}
	} else if !rec.Dialect.IsTar() && rec.NLink > 1 {
		if linked, err := e.links.LinkToGroup(id, name); err != nil {
			return err
		} else if linked {
			return nil
		}
	} else if rec.Dialect.IsTar() && rec.LinkName != "" {
		if err := ensureParents(name, e.opts.CreateDirFlag); err != nil {
			return err
		}
		if err := os.Link(rec.LinkName, name); err != nil {
			return fmt.Errorf("extract: hard link %s: %w", name, err)
		}
		return nil
	}

	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		if e.opts.CreateDirFlag {
			if perr := ensureParents(name, true); perr == nil {
				f, err = os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
			}
		}
		if err != nil {
			return fmt.Errorf("extract: open %s: %w", name, err)
		}
	}

	sum, err := streamPayload(f, e.dec.PayloadReader(), name, rec.Size, e.opts.SwapBytesFlag, e.opts.SwapHalfwordsFlag, e.warnf)
	closeErr := f.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}

	// chown first: it may clear setuid/setgid bits the chmod then restores.
	if err := applyOwnership(name, rec, &e.opts, true); err != nil {
		e.warnf(fmt.Sprintf("failed to set ownership on %s: %v", name, err))
	}
	if err := os.Chmod(name, header.PermMode(rec.Perm())); err != nil {
		e.warnf(fmt.Sprintf("failed to set mode on %s: %v", name, err))
	}
	if err := applyMtime(name, rec, &e.opts); err != nil {
		e.warnf(fmt.Sprintf("failed to set mtime on %s: %v", name, err))
	}

	if rec.Dialect.HasCRC() && sum != rec.Checksum {
		e.warnf(fmt.Sprintf("%s: checksum error (0x%x, should be 0x%x)", name, sum, rec.Checksum))
		e.report.ChecksumMismatch++
	}

	e.links.OnExtracted(id, name, e.opts.Logger)
	return nil
}

// writeDirectory implements the directory writer: mkdir, then
// queue the final metadata application for end-of-archive.
func (e *Extractor) writeDirectory(rec *header.Record, name string) error {
	if e.opts.ToStdout {
		return nil
	}
	if err := os.Mkdir(name, 0o700); err != nil && !os.IsExist(err) {
		if e.opts.CreateDirFlag {
			if perr := ensureParents(name, true); perr == nil {
				err = os.Mkdir(name, 0o700)
			}
		}
		if err != nil && !os.IsExist(err) {
			return fmt.Errorf("extract: mkdir %s: %w", name, err)
		}
	}
	e.dstat.push(statEntry{
		path: name, mode: rec.Mode, uid: rec.UID, gid: rec.GID, mtime: rec.MTime,
		noChown: e.opts.NoChownFlag, retainTime: e.opts.RetainTime,
	})
	return nil
}

// writeDevice implements the device/FIFO/socket writer.
func (e *Extractor) writeDevice(rec *header.Record, name string) error {
	if e.opts.ToStdout {
		return nil
	}
	id := rec.Identity()
	if !rec.Dialect.IsTar() && rec.NLink > 1 {
		if linked, err := e.links.LinkToGroup(id, name); err != nil {
			return err
		} else if linked {
			return nil
		}
	}

	mode := unix.S_IFREG
	switch rec.Type() {
	case header.TypeCharDevice:
		mode = unix.S_IFCHR
	case header.TypeBlockDevice:
		mode = unix.S_IFBLK
	case header.TypeFIFO:
		mode = unix.S_IFIFO
	case header.TypeSocket:
		mode = unix.S_IFSOCK
	}
	dev := unix.Mkdev(rec.RdevMajor, rec.RdevMinor)
	err := unix.Mknod(name, uint32(mode)|rec.Perm(), int(dev))
	if err != nil {
		if e.opts.CreateDirFlag {
			if perr := ensureParents(name, true); perr == nil {
				err = unix.Mknod(name, uint32(mode)|rec.Perm(), int(dev))
			}
		}
		if err != nil {
			return fmt.Errorf("extract: mknod %s: %w", name, err)
		}
	}

	if err := applyOwnership(name, rec, &e.opts, true); err != nil {
		e.warnf(fmt.Sprintf("failed to chown %s: %v", name, err))
	}
	if err := os.Chmod(name, header.PermMode(rec.Perm())); err != nil {
		e.warnf(fmt.Sprintf("failed to chmod %s: %v", name, err))
	}
	if err := applyMtime(name, rec, &e.opts); err != nil {
		e.warnf(fmt.Sprintf("failed to set mtime on %s: %v", name, err))
	}
	return nil
}

// writeSymlink implements the symlink writer, delegating to the
// delayed-symlink table when absolute paths are forbidden.
func (e *Extractor) writeSymlink(rec *header.Record, name, target string) error {
	if e.opts.ToStdout {
		return nil
	}
	if e.opts.NoAbsolutePaths {
		uid, gid := rec.UID, rec.GID
		if e.opts.SetOwnerFlag {
			uid = uint32(e.opts.SetOwnerUID)
		}
		if e.opts.SetGroupFlag {
			gid = uint32(e.opts.SetGroupGID)
		}
		err := e.symlinks.Placeholder(name, target, rec.Mode, uid, gid, rec.MTime, e.opts.RetainTime, e.opts.NoChownFlag)
		if err != nil && e.opts.CreateDirFlag {
			if perr := ensureParents(name, true); perr == nil {
				err = e.symlinks.Placeholder(name, target, rec.Mode, uid, gid, rec.MTime, e.opts.RetainTime, e.opts.NoChownFlag)
			}
		}
		if err != nil {
			return fmt.Errorf("extract: symlink placeholder %s: %w", name, err)
		}
		return nil
	}

	err := os.Symlink(target, name)
	if err != nil {
		if e.opts.CreateDirFlag {
			if perr := ensureParents(name, true); perr == nil {
				err = os.Symlink(target, name)
			}
		}
		if err != nil {
			return fmt.Errorf("extract: symlink %s: %w", name, err)
		}
	}
	if err := applyOwnership(name, rec, &e.opts, false); err != nil {
		e.warnf(fmt.Sprintf("failed to lchown %s: %v", name, err))
	}
	if e.opts.RetainTime {
		if err := symlink.Lchtimes(name, rec.MTime); err != nil {
			e.warnf(fmt.Sprintf("failed to set mtime on %s: %v", name, err))
		}
	}
	return nil
}
