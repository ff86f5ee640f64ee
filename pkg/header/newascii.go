package header

import (
	"time"

	"github.com/bgrewell/cpio-kit/pkg/consts"
	"github.com/bgrewell/cpio-kit/pkg/tape"
)

// new-ascii/new-crc field widths, in order, following the 6-byte magic
// (104 bytes total: 13 fields of 8 hex digits).
var newASCIIWidths = []int{8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8}

// decodeNewASCII fills rec from a new-format portable ASCII header
// (070701 or 070702), whose magic has already been consumed by the
// caller and recorded in rec.Dialect.
func decodeNewASCII(tr tape.Reader, rec *Record) error {
	buf := make([]byte, consts.NewASCIIHeaderSize)
	if err := tr.Read(buf); err != nil {
		return err
	}
	f := splitFixed(string(buf), newASCIIWidths)

	const base = 4
	ino := decodeField(rec, f[0], base, "ino")
	mode := decodeField(rec, f[1], base, "mode")
	uid := decodeField(rec, f[2], base, "uid")
	gid := decodeField(rec, f[3], base, "gid")
	nlink := decodeField(rec, f[4], base, "nlink")
	mtime := decodeField(rec, f[5], base, "mtime")
	filesize := decodeField(rec, f[6], base, "filesize")
	devMajor := decodeField(rec, f[7], base, "devmajor")
	devMinor := decodeField(rec, f[8], base, "devminor")
	rdevMajor := decodeField(rec, f[9], base, "rdevmajor")
	rdevMinor := decodeField(rec, f[10], base, "rdevminor")
	namesize := decodeField(rec, f[11], base, "namesize")
	checksum := decodeField(rec, f[12], base, "check")

	rec.Ino = ino
	rec.Mode = uint32(mode)
	rec.UID = uint32(uid)
	rec.GID = uint32(gid)
	rec.NLink = uint32(nlink)
	rec.MTime = time.Unix(int64(mtime), 0).UTC()
	rec.Size = int64(filesize)
	rec.DevMajor = uint32(devMajor)
	rec.DevMinor = uint32(devMinor)
	rec.RdevMajor = uint32(rdevMajor)
	rec.RdevMinor = uint32(rdevMinor)
	rec.Checksum = uint32(checksum)

	name, malformed, err := readName(tr, namesize)
	if err != nil {
		return err
	}
	rec.Name = name
	if malformed {
		rec.MalformedFields = append(rec.MalformedFields, "name")
	}

	// Name field (including magic+header+name) is padded to a 4-byte
	// boundary; the fixed 110-byte prefix (6 magic + 104 header) is
	// constant regardless of malformed-name handling.
	if pad := tape.PadTo(int64(consts.NewASCIIHeaderSize+6)+int64(namesize), 4); pad > 0 {
		if err := tr.Toss(pad); err != nil {
			return err
		}
	}

	// No HP fixup: that quirk belongs only to the two historical formats.
	return nil
}
