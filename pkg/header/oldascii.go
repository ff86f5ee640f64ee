package header

import (
	"time"

	"github.com/bgrewell/cpio-kit/pkg/consts"
	"github.com/bgrewell/cpio-kit/pkg/tape"
)

// old-ascii field widths, in order, following the 6-byte magic (70 bytes total).
var oldASCIIWidths = []int{6, 6, 6, 6, 6, 6, 6, 11, 6, 11}

// decodeOldASCII fills rec from an old portable ASCII header, whose
// magic has already been consumed by the caller.
func decodeOldASCII(tr tape.Reader, rec *Record) error {
	buf := make([]byte, consts.OldASCIIHeaderSize)
	if err := tr.Read(buf); err != nil {
		return err
	}
	f := splitFixed(string(buf), oldASCIIWidths)

	dev := decodeField(rec, f[0], 3, "dev")
	ino := decodeField(rec, f[1], 3, "ino")
	mode := decodeField(rec, f[2], 3, "mode")
	uid := decodeField(rec, f[3], 3, "uid")
	gid := decodeField(rec, f[4], 3, "gid")
	nlink := decodeField(rec, f[5], 3, "nlink")
	rdev := decodeField(rec, f[6], 3, "rdev")
	mtime := decodeField(rec, f[7], 3, "mtime")
	namesize := decodeField(rec, f[8], 3, "namesize")
	filesize := decodeField(rec, f[9], 3, "filesize")

	rec.DevMajor, rec.DevMinor = major(uint32(dev)), minor(uint32(dev))
	rec.Ino = ino
	rec.Mode = uint32(mode)
	rec.UID = uint32(uid)
	rec.GID = uint32(gid)
	rec.NLink = uint32(nlink)
	rec.RdevMajor, rec.RdevMinor = major(uint32(rdev)), minor(uint32(rdev))
	rec.MTime = time.Unix(int64(mtime), 0).UTC()
	rec.Size = int64(filesize)

	name, malformed, err := readName(tr, namesize)
	if err != nil {
		return err
	}
	rec.Name = name
	if malformed {
		rec.MalformedFields = append(rec.MalformedFields, "name")
	}

	// Old-ascii records carry no name or payload padding.
	applyHPFixup(rec)
	return nil
}
