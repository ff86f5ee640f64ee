package symlink

import (
	"time"

	"golang.org/x/sys/unix"
)

// lchtimes sets path's mtime without following a final symlink
// component (utimensat with AT_SYMLINK_NOFOLLOW).
func lchtimes(path string, mtime time.Time) error {
	ts := unix.NsecToTimespec(mtime.UnixNano())
	times := [2]unix.Timespec{ts, ts}
	return unix.UtimesNanoAt(unix.AT_FDCWD, path, times[:], unix.AT_SYMLINK_NOFOLLOW)
}

// Lchtimes is lchtimes exported for callers outside this package that
// create a symlink directly (rather than through the delayed-placeholder
// protocol) and still need to apply retain-time without following it.
func Lchtimes(path string, mtime time.Time) error {
	return lchtimes(path, mtime)
}
