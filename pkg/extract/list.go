package extract

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/bgrewell/cpio-kit/pkg/header"
)

// sixMonths is the cutoff, in seconds, for deciding between printing a
// time-of-day and a year: a Gregorian year averaged over leap years,
// halved.
const sixMonths = 31556952 / 2

// listBare writes name followed by the configured terminator: "\n" by
// default, "\0" under the null-separated option.
func listBare(w io.Writer, name string, terminator byte) error {
	_, err := fmt.Fprintf(w, "%s%c", name, terminator)
	return err
}

// listLong writes an ls -l-style line for rec, appending "-> target" for
// a symlink. The caller resolves target beforehand (readLinkTarget: from
// the payload for cpio dialects, or LinkName for tar/ustar).
func listLong(w io.Writer, rec *header.Record, target string, numericUID bool, now time.Time) error {
	modeStr := modeString(rec)
	size := fmt.Sprintf("%d", rec.Size)
	if rec.Type() == header.TypeCharDevice || rec.Type() == header.TypeBlockDevice {
		size = fmt.Sprintf("%d, %d", rec.RdevMajor, rec.RdevMinor)
	}

	uid := strconv.FormatUint(uint64(rec.UID), 10)
	gid := strconv.FormatUint(uint64(rec.GID), 10)
	_ = numericUID // both forms are numeric here; non-numeric name lookup is a host-identity concern out of scope.

	stamp := formatTime(rec.MTime, now)

	line := fmt.Sprintf("%s %3d %-8s %-8s %10s %s %s", modeStr, rec.NLink, uid, gid, size, stamp, rec.Name)
	if rec.Type() == header.TypeSymlink && target != "" {
		line += " -> " + target
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

func formatTime(t, now time.Time) string {
	age := now.Sub(t)
	if age < 0 {
		age = -age
	}
	if age.Seconds() > sixMonths {
		return t.Format("Jan _2  2006")
	}
	return t.Format("Jan _2 15:04")
}

func modeString(rec *header.Record) string {
	b := []byte("----------")
	switch rec.Type() {
	case header.TypeDirectory:
		b[0] = 'd'
	case header.TypeSymlink:
		b[0] = 'l'
	case header.TypeCharDevice:
		b[0] = 'c'
	case header.TypeBlockDevice:
		b[0] = 'b'
	case header.TypeFIFO:
		b[0] = 'p'
	case header.TypeSocket:
		b[0] = 's'
	}
	perm := rec.Perm()
	bits := "rwxrwxrwx"
	for i := 0; i < 9; i++ {
		if perm&(1<<uint(8-i)) != 0 {
			b[i+1] = bits[i]
		}
	}
	if perm&0o4000 != 0 {
		if b[3] == 'x' {
			b[3] = 's'
		} else {
			b[3] = 'S'
		}
	}
	if perm&0o2000 != 0 {
		if b[6] == 'x' {
			b[6] = 's'
		} else {
			b[6] = 'S'
		}
	}
	if perm&0o1000 != 0 {
		if b[9] == 'x' {
			b[9] = 't'
		} else {
			b[9] = 'T'
		}
	}
	return string(b)
}
