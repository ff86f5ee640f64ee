package extract

import (
	"os"
	"time"

	"github.com/bgrewell/cpio-kit/pkg/header"
	"github.com/go-logr/logr"
)

// statEntry is one directory awaiting its final metadata application.
type statEntry struct {
	path       string
	mode       uint32
	uid, gid   uint32
	mtime      time.Time
	noChown    bool
	retainTime bool
}

// delayedStat queues directory metadata until end-of-archive, so a
// directory's final (possibly restrictive) mode never blocks writes
// into it by records that follow. Applied in LIFO order so inner
// directories are restored before their parents.
type delayedStat struct {
	entries []statEntry
}

func (d *delayedStat) push(e statEntry) {
	d.entries = append(d.entries, e)
}

// apply walks entries newest-first and applies ownership/mode/mtime,
// logging (never aborting on) any single failure. chown runs before
// chmod because it may clear setuid/setgid bits the chmod restores.
func (d *delayedStat) apply(logger logr.Logger) {
	for i := len(d.entries) - 1; i >= 0; i-- {
		e := d.entries[i]
		if !e.noChown {
			if err := os.Chown(e.path, int(e.uid), int(e.gid)); err != nil {
				logger.Info("failed to set directory ownership", "warning", true, "path", e.path, "error", err)
			}
		}
		if err := os.Chmod(e.path, header.PermMode(e.mode)); err != nil {
			logger.Info("failed to set directory mode", "warning", true, "path", e.path, "error", err)
		}
		if e.retainTime {
			if err := os.Chtimes(e.path, e.mtime, e.mtime); err != nil {
				logger.Info("failed to set directory mtime", "warning", true, "path", e.path, "error", err)
			}
		}
	}
	d.entries = nil
}
