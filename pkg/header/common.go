package header

import (
	"github.com/bgrewell/cpio-kit/pkg/numeric"
	"github.com/bgrewell/cpio-kit/pkg/tape"
)

// splitFixed cuts s into the fixed-width fields described by widths, in
// order. Caller guarantees len(s) == sum(widths).
func splitFixed(s string, widths []int) []string {
	fields := make([]string, len(widths))
	off := 0
	for i, w := range widths {
		fields[i] = s[off : off+w]
		off += w
	}
	return fields
}

// le16 reads a little-endian 16-bit value from the first two bytes of b.
func le16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

// major and minor decompose the historical packed dev_t: 8 bits major in
// the high byte, 8 bits minor in the low byte. No cross-host device
// translation is attempted.
func major(dev uint32) uint32 { return (dev >> 8) & 0xff }
func minor(dev uint32) uint32 { return dev & 0xff }

// readName reads namesize bytes as a NUL-terminated name. namesize == 0
// is fatal-per-record and consumes no bytes; a name
// whose last byte isn't NUL is also fatal-per-record, but the bytes it
// occupied are still consumed so the stream stays aligned. Both cases
// report malformed=true so the caller can skip this record's payload.
func readName(tr tape.Reader, namesize uint64) (name string, malformed bool, err error) {
	if namesize == 0 {
		return "", true, nil
	}
	buf := make([]byte, namesize)
	if err := tr.Read(buf); err != nil {
		return "", false, err
	}
	if buf[len(buf)-1] != 0 {
		return string(buf), true, nil
	}
	return string(buf[:len(buf)-1]), false, nil
}

// decodeField decodes one ASCII-encoded field and folds its malformed/
// out-of-range status into rec.
func decodeField(rec *Record, raw string, logBase uint, label string) uint64 {
	res := numeric.FromASCII(raw, logBase)
	if res.Malformed {
		rec.MalformedFields = append(rec.MalformedFields, label)
	}
	if res.OutOfRange {
		rec.OutOfRangeField = true
	}
	return res.Value
}

// applyHPFixup detects the HP/UX convention of encoding a device's real
// major/minor in the filesize field (sentinel rdev (0,1)) and corrects
// it. Applies to old-ascii and old-binary only.
func applyHPFixup(rec *Record) {
	switch rec.Type() {
	case TypeCharDevice, TypeBlockDevice, TypeFIFO, TypeSocket:
		if rec.Size != 0 && rec.RdevMajor == 0 && rec.RdevMinor == 1 {
			sz := uint32(rec.Size)
			rec.RdevMajor = major(sz)
			rec.RdevMinor = minor(sz)
			rec.Size = 0
		}
	}
}
