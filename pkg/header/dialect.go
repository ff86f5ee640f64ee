// Package header implements format auto-detection and per-dialect
// header decoding: it turns the raw byte stream into a
// normalized Record, regardless of which of the five cpio wire dialects
// produced it.
package header

import "github.com/bgrewell/cpio-kit/pkg/consts"

// Dialect is the closed sum type over the five wire encodings this
// decoder recognizes. Callers never branch on Dialect
// directly; they ask it for padding unit, integer base, CRC presence and
// whether link targets are stored inline.
type Dialect int

const (
	// DialectUnknown marks a Record not yet associated with a dialect.
	DialectUnknown Dialect = iota
	DialectOldBinary
	DialectOldASCII
	DialectNewASCII
	DialectNewCRC
	DialectTar
	DialectUSTar
)

// String names the dialect, mainly for diagnostics.
func (d Dialect) String() string {
	switch d {
	case DialectOldBinary:
		return "old-binary"
	case DialectOldASCII:
		return "old-ascii"
	case DialectNewASCII:
		return "new-ascii"
	case DialectNewCRC:
		return "new-crc"
	case DialectTar:
		return "tar"
	case DialectUSTar:
		return "ustar"
	default:
		return "unknown"
	}
}

// PaddingUnit returns the byte boundary payloads and names are padded to.
func (d Dialect) PaddingUnit() int64 {
	switch d {
	case DialectNewASCII, DialectNewCRC:
		return 4
	case DialectOldBinary:
		return 2
	case DialectTar, DialectUSTar:
		return consts.TarBlockSize
	default:
		return 1
	}
}

// IntegerBase returns the log2 of the numeric base used for this
// dialect's ASCII-encoded fields (3 for octal, 4 for hex); 0 for the
// binary and tar dialects, which don't use from_ascii at all.
func (d Dialect) IntegerBase() uint {
	switch d {
	case DialectNewASCII, DialectNewCRC:
		return 4
	case DialectOldASCII:
		return 3
	default:
		return 0
	}
}

// HasCRC reports whether this dialect carries a meaningful checksum field.
func (d Dialect) HasCRC() bool {
	return d == DialectNewCRC
}

// StoresLinkInline reports whether link targets travel in a dedicated
// header field (tar/ustar) rather than as the record's payload bytes
// (the cpio dialects).
func (d Dialect) StoresLinkInline() bool {
	return d == DialectTar || d == DialectUSTar
}

// IsNewCPIO reports whether this is one of the two dialects that defer
// multiply-linked file data to the last link in the archive.
func (d Dialect) IsNewCPIO() bool {
	return d == DialectNewASCII || d == DialectNewCRC
}

// IsTar reports whether this dialect delegates header decoding to the
// external tar reader.
func (d Dialect) IsTar() bool {
	return d == DialectTar || d == DialectUSTar
}
