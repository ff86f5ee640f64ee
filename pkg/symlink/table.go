// Package symlink implements the delayed-symlink table:
// the placeholder-and-replace protocol used when absolute symlink
// targets are forbidden.
package symlink

import (
	"os"
	"syscall"
	"time"

	"github.com/go-logr/logr"
)

// placeholderID is the (device, inode) identity of a placeholder file,
// used at replace time to confirm nothing else has touched it since.
type placeholderID struct {
	dev uint64
	ino uint64
}

// entry holds everything replace_all needs to finish creating a symlink.
type entry struct {
	path     string
	target   string
	mode     uint32
	uid, gid uint32
	mtime    time.Time
	setTime  bool
	noChown  bool
}

// Table tracks placeholders awaiting replacement. Construct it with New;
// the zero value has a nil map and Placeholder panics on it.
type Table struct {
	entries map[placeholderID]entry
}

// New returns an empty Table.
func New() *Table {
	return &Table{entries: make(map[placeholderID]entry)}
}

// Placeholder creates an opaque zero-permission regular file at path
// standing in for the eventual symlink to target, and records its
// (dev, ino) so replace_all can confirm it wasn't superseded before the
// archive ends.
func (t *Table) Placeholder(path, target string, mode, uid, gid uint32, mtime time.Time, setTime, noChown bool) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o000)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	id, ok := identityOf(info)
	if !ok {
		// Platform without syscall.Stat_t; fall back to creating the
		// symlink immediately since the race window can't be detected.
		f.Close()
		if err := os.Remove(path); err != nil {
			return err
		}
		return os.Symlink(target, path)
	}

	t.entries[id] = entry{
		path: path, target: target, mode: mode,
		uid: uid, gid: gid, mtime: mtime, setTime: setTime, noChown: noChown,
	}
	return nil
}

// ReplaceAll is called at end-of-archive: for each surviving placeholder
// that is still a regular file whose (dev, ino) matches what Placeholder
// recorded, it is unlinked and replaced by the real symlink, then
// ownership and mtime are applied. A placeholder that no longer matches
// was overwritten by a later record and its entry is silently dropped;
// the regular-file check catches a later directory or other non-file
// that happens to reuse the placeholder's inode number.
func (t *Table) ReplaceAll(logger logr.Logger) {
	for id, e := range t.entries {
		info, err := os.Lstat(e.path)
		if err != nil {
			continue
		}
		current, ok := identityOf(info)
		if !ok || current != id || !info.Mode().IsRegular() {
			continue
		}

		if err := os.Remove(e.path); err != nil {
			logger.Info("failed to remove symlink placeholder", "warning", true, "path", e.path, "error", err)
			continue
		}
		if err := os.Symlink(e.target, e.path); err != nil {
			logger.Info("failed to create delayed symlink", "warning", true, "path", e.path, "target", e.target, "error", err)
			continue
		}
		if !e.noChown {
			if err := os.Lchown(e.path, int(e.uid), int(e.gid)); err != nil {
				logger.Info("failed to chown delayed symlink", "warning", true, "path", e.path, "error", err)
			}
		}
		if e.setTime {
			if err := lchtimes(e.path, e.mtime); err != nil {
				logger.Info("failed to set mtime on delayed symlink", "warning", true, "path", e.path, "error", err)
			}
		}
	}
	t.entries = make(map[placeholderID]entry)
}

func identityOf(info os.FileInfo) (placeholderID, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return placeholderID{}, false
	}
	return placeholderID{dev: uint64(st.Dev), ino: st.Ino}, true
}
