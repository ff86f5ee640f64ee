// Package consts holds the magic numbers and fixed field widths for the
// five cpio wire dialects.
package consts

const (
	// TrailerName is the sentinel record name that marks end-of-archive.
	TrailerName = "TRAILER!!!"

	// NewASCIIMagic is the 6-byte magic for the "new" portable ASCII format (070701).
	NewASCIIMagic = "070701"
	// CRCMagic is the 6-byte magic for the new-ASCII-with-checksum format (070702).
	CRCMagic = "070702"
	// OldASCIIMagic is the 6-byte magic for the old portable ASCII format (070707).
	OldASCIIMagic = "070707"
	// OldBinaryMagic is the 16-bit magic for the old binary format, 0o070707.
	OldBinaryMagic = 0o070707

	// OldASCIIHeaderSize is the fixed width, in bytes, of the old-ASCII
	// header fields following the 6-byte magic (70 bytes).
	OldASCIIHeaderSize = 70
	// NewASCIIHeaderSize is the fixed width, in bytes, of the new-ASCII /
	// new-CRC header fields following the 6-byte magic (104 hex digits).
	NewASCIIHeaderSize = 104
	// OldBinaryHeaderSize is the total size, in bytes, of an old-binary
	// header including its 2-byte magic.
	OldBinaryHeaderSize = 26

	// DetectWindow is how many bytes are peeked to recognize a dialect's
	// magic, sized to cover a 512-byte tar block.
	DetectWindow = 512

	// TarBlockSize is the tar/ustar block alignment unit.
	TarBlockSize = 512
)
