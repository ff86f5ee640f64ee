package header

import (
	"time"

	"github.com/bgrewell/cpio-kit/pkg/consts"
	"github.com/bgrewell/cpio-kit/pkg/numeric"
	"github.com/bgrewell/cpio-kit/pkg/tape"
)

// decodeOldBinary fills rec from an old binary header. magic holds the
// two bytes already peeked by the caller to identify the dialect; swapped
// reports whether the header's byte order was reversed relative to this
// host, so the caller can emit its once-per-archive warning.
func decodeOldBinary(tr tape.Reader, magic [2]byte, rec *Record) (swapped bool, err error) {
	rest := make([]byte, consts.OldBinaryHeaderSize-2)
	if err := tr.Read(rest); err != nil {
		return false, err
	}

	full := make([]byte, consts.OldBinaryHeaderSize)
	full[0], full[1] = magic[0], magic[1]
	copy(full[2:], rest)

	canonical := le16(full[0:2])
	if canonical != uint16(consts.OldBinaryMagic) {
		if numeric.SwabShort(canonical) == uint16(consts.OldBinaryMagic) {
			swapped = true
			numeric.SwabArray(full, consts.OldBinaryHeaderSize/2)
		}
	}

	shorts := make([]uint16, consts.OldBinaryHeaderSize/2)
	for i := range shorts {
		shorts[i] = le16(full[i*2 : i*2+2])
	}

	// shorts[0] is the magic, already verified.
	dev := uint32(shorts[1])
	ino := uint32(shorts[2])
	mode := uint32(shorts[3])
	uid := uint32(shorts[4])
	gid := uint32(shorts[5])
	nlink := uint32(shorts[6])
	rdev := uint32(shorts[7])
	mtime := uint32(shorts[8])<<16 | uint32(shorts[9])
	namesize := uint32(shorts[10])
	filesize := uint32(shorts[11])<<16 | uint32(shorts[12])

	rec.DevMajor, rec.DevMinor = major(dev), minor(dev)
	rec.Ino = uint64(ino)
	rec.Mode = mode
	rec.UID = uid
	rec.GID = gid
	rec.NLink = nlink
	rec.RdevMajor, rec.RdevMinor = major(rdev), minor(rdev)
	rec.MTime = time.Unix(int64(mtime), 0).UTC()
	rec.Size = int64(filesize)

	name, malformed, err := readName(tr, uint64(namesize))
	if err != nil {
		return swapped, err
	}
	rec.Name = name
	if malformed {
		rec.MalformedFields = append(rec.MalformedFields, "name")
	}

	if namesize%2 != 0 {
		if err := tr.Toss(1); err != nil {
			return swapped, err
		}
	}

	applyHPFixup(rec)
	return swapped, nil
}
