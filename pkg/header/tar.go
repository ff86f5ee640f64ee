package header

import (
	"archive/tar"
	"io"
	"strings"

	"github.com/bgrewell/cpio-kit/pkg/tape"
)

// tarStreamAdapter exposes a tape.Reader as an io.Reader so the standard
// library's tar reader can consume the same underlying stream as every
// other dialect. tape.Reader.Peek reports true end of stream as a short
// (possibly empty) read rather than an error, so a zero-length result
// here is translated to io.EOF, which is what archive/tar expects.
type tarStreamAdapter struct {
	tr tape.Reader
}

func (a *tarStreamAdapter) Read(p []byte) (int, error) {
	n, err := a.tr.Peek(p)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	if tossErr := a.tr.Toss(int64(n)); tossErr != nil {
		return 0, tossErr
	}
	return n, nil
}

// tarModeToCPIOMode maps a tar header's type flag and permission bits
// onto this package's Mode representation, so downstream code never
// needs to branch on tar.Header directly.
func tarModeToCPIOMode(hdr *tar.Header) uint32 {
	perm := uint32(hdr.Mode) &^ ModeTypeMask
	switch hdr.Typeflag {
	case tar.TypeReg, tar.TypeRegA:
		return ModeRegular | perm
	case tar.TypeLink:
		return ModeRegular | perm
	case tar.TypeSymlink:
		return ModeSymlink | perm
	case tar.TypeChar:
		return ModeCharDev | perm
	case tar.TypeBlock:
		return ModeBlockDev | perm
	case tar.TypeDir:
		return ModeDirectory | perm
	case tar.TypeFifo:
		return ModeFIFO | perm
	default:
		return ModeRegular | perm
	}
}

// cleanTarName trims the single trailing slash tar uses to mark
// directories; cpio names carry no such marker.
func cleanTarName(name string) string {
	if len(name) > 1 && strings.HasSuffix(name, "/") {
		return name[:len(name)-1]
	}
	return name
}

// tarIsHardLink reports whether hdr represents a tar hard link, which
// (unlike a cpio hard link) carries no shared inode number and must be
// resolved by name through LinkName instead.
func tarIsHardLink(hdr *tar.Header) bool {
	return hdr.Typeflag == tar.TypeLink
}
