package header

import (
	"io/fs"
	"time"

	"github.com/bgrewell/cpio-kit/pkg/consts"
)

// Mode type bits, matching the historical CP_IFMT enumeration. Closed:
// any other bit pattern in the type field is "unknown file type".
const (
	ModeTypeMask = 0o170000

	ModeRegular   = 0o100000
	ModeDirectory = 0o040000
	ModeSymlink   = 0o120000
	ModeCharDev   = 0o020000
	ModeBlockDev  = 0o060000
	ModeFIFO      = 0o010000
	ModeSocket    = 0o140000
)

// FileType is the closed set of recognized on-disk file types.
type FileType int

const (
	TypeUnknown FileType = iota
	TypeRegular
	TypeDirectory
	TypeSymlink
	TypeCharDevice
	TypeBlockDevice
	TypeFIFO
	TypeSocket
)

// Record is the normalized descriptor produced by the header decoder and
// consumed by the dispatcher and writers.
type Record struct {
	Dialect   Dialect
	Ino       uint64
	DevMajor  uint32
	DevMinor  uint32
	Mode      uint32
	UID       uint32
	GID       uint32
	NLink     uint32
	MTime     time.Time
	Size      int64
	RdevMajor uint32
	RdevMinor uint32
	Checksum  uint32
	Name      string
	// LinkName is the tar_linkname: populated only for tar/ustar hard
	// and symbolic links, empty for every cpio dialect (those carry
	// their link target as the record's payload instead).
	LinkName string

	// malformed/out-of-range flags set during decode, surfaced by the
	// dispatcher as non-fatal diagnostics.
	MalformedFields []string
	OutOfRangeField bool
}

// Type classifies Mode's type bits into the closed enumeration.
func (r *Record) Type() FileType {
	switch r.Mode & ModeTypeMask {
	case ModeRegular:
		return TypeRegular
	case ModeDirectory:
		return TypeDirectory
	case ModeSymlink:
		return TypeSymlink
	case ModeCharDev:
		return TypeCharDevice
	case ModeBlockDev:
		return TypeBlockDevice
	case ModeFIFO:
		return TypeFIFO
	case ModeSocket:
		return TypeSocket
	default:
		return TypeUnknown
	}
}

// Perm returns just the permission bits (low 12 bits) of Mode.
func (r *Record) Perm() uint32 {
	return r.Mode &^ ModeTypeMask
}

// PermMode converts mode's permission, setuid/setgid and sticky bits to
// the fs.FileMode representation Chmod expects; a plain numeric cast
// would silently drop the three high bits.
func PermMode(mode uint32) fs.FileMode {
	m := fs.FileMode(mode & 0o777)
	if mode&0o4000 != 0 {
		m |= fs.ModeSetuid
	}
	if mode&0o2000 != 0 {
		m |= fs.ModeSetgid
	}
	if mode&0o1000 != 0 {
		m |= fs.ModeSticky
	}
	return m
}

// Identity is the (ino, dev_major, dev_minor) triple that groups hard
// links together.
type Identity struct {
	Ino      uint64
	DevMajor uint32
	DevMinor uint32
}

// Identity returns the record's hard-link grouping key.
func (r *Record) Identity() Identity {
	return Identity{Ino: r.Ino, DevMajor: r.DevMajor, DevMinor: r.DevMinor}
}

// IsTrailer reports whether this record is the end-of-archive sentinel.
func (r *Record) IsTrailer() bool {
	return r.Name == consts.TrailerName
}
