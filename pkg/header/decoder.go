package header

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"

	"github.com/bgrewell/cpio-kit/pkg/consts"
	"github.com/bgrewell/cpio-kit/pkg/numeric"
	"github.com/bgrewell/cpio-kit/pkg/tape"
	"github.com/go-logr/logr"
)

// Decoder turns a raw byte stream into a sequence of normalized Records,
// auto-detecting the wire dialect from the first record and holding to
// it for the rest of the archive.
type Decoder struct {
	tr     tape.Reader
	logger logr.Logger

	dialect    Dialect
	detected   bool
	swapWarned bool

	tarReader  *tar.Reader
	tarStream  *tarStreamAdapter
	tarDone    bool

	// payload bookkeeping for the cpio dialects; tar payload bookkeeping
	// is delegated entirely to tarReader.
	payloadSize int64
	remaining   int64

	junkBytesSkipped int64
	byteOrderSwapped bool
}

// JunkBytesSkipped reports how many leading bytes were discarded before
// the archive's magic was recognized.
func (d *Decoder) JunkBytesSkipped() int64 { return d.junkBytesSkipped }

// ByteOrderSwapped reports whether an old-binary archive's headers were
// byte-swapped relative to this host.
func (d *Decoder) ByteOrderSwapped() bool { return d.byteOrderSwapped }

// NewDecoder wraps tr with dialect detection and per-record decoding.
func NewDecoder(tr tape.Reader, logger logr.Logger) *Decoder {
	return &Decoder{tr: tr, logger: logger}
}

// Dialect returns the archive's detected wire dialect. Valid only after
// the first call to Next.
func (d *Decoder) Dialect() Dialect { return d.dialect }

// Next decodes and returns the next header record. A record whose Name
// equals the trailer sentinel marks end of archive; the caller should
// stop iterating once IsTrailer() is true. Next never returns io.EOF: a
// cpio stream that ends before its trailer yields tape.ErrPrematureEOF,
// a stream too short to identify yields a wrapped io.ErrUnexpectedEOF,
// and a tar stream that ends cleanly yields a synthetic trailer record.
func (d *Decoder) Next() (*Record, error) {
	if !d.detected {
		if err := d.detect(); err != nil {
			return nil, err
		}
		d.detected = true
	}
	if d.dialect.IsTar() {
		return d.nextTar()
	}
	return d.nextCPIO()
}

// detect peeks the input stream for one of the five recognized magics,
// skipping and counting leading junk bytes one at a time. It emits
// a single warning for however much junk was skipped, matching the
// original's one-line-per-archive convention.
func (d *Decoder) detect() error {
	window := make([]byte, consts.DetectWindow)
	var skipped int64

	for {
		n, err := d.tr.Peek(window)
		if n < 6 {
			if err != nil {
				return err
			}
			return fmt.Errorf("header: could not identify archive format: %w", io.ErrUnexpectedEOF)
		}
		buf := window[:n]

		switch string(buf[:6]) {
		case consts.OldASCIIMagic:
			d.dialect = DialectOldASCII
		case consts.NewASCIIMagic:
			d.dialect = DialectNewASCII
		case consts.CRCMagic:
			d.dialect = DialectNewCRC
		}
		if d.dialect == DialectUnknown && n >= 2 {
			m := le16(buf[0:2])
			if m == uint16(consts.OldBinaryMagic) || numeric.SwabShort(m) == uint16(consts.OldBinaryMagic) {
				d.dialect = DialectOldBinary
			}
		}
		if d.dialect == DialectUnknown && n >= 512 && isUSTarMagic(buf) {
			d.dialect = DialectUSTar
		}
		if d.dialect == DialectUnknown && n >= 512 && looksLikeTarBlock(buf) {
			d.dialect = DialectTar
		}

		if d.dialect != DialectUnknown {
			if skipped > 0 {
				d.logger.Info("skipped junk bytes before archive start", "warning", true, "bytes", skipped)
			}
			d.junkBytesSkipped = skipped
			return nil
		}

		if err := d.tr.Toss(1); err != nil {
			return err
		}
		skipped++
	}
}

// isUSTarMagic reports whether buf (a peeked 512-byte tar block) carries
// the "ustar\x00" or "ustar  \x00" magic at its conventional offset.
func isUSTarMagic(buf []byte) bool {
	if len(buf) < 263 {
		return false
	}
	m := buf[257:263]
	return string(m) == "ustar\x00" || string(m) == "ustar "
}

// looksLikeTarBlock applies the classic tar header checksum as a
// fallback recognizer for pre-POSIX ("v7") tar archives that carry no
// ustar magic at all.
func looksLikeTarBlock(buf []byte) bool {
	if len(buf) < 512 {
		return false
	}
	var sum, recorded int64
	n, err := fmt.Sscanf(string(buf[148:156]), "%o", &recorded)
	if err != nil || n != 1 {
		return false
	}
	for i, b := range buf[:512] {
		if i >= 148 && i < 156 {
			sum += int64(' ')
			continue
		}
		sum += int64(b)
	}
	return sum == recorded
}

// nextCPIO reads and decodes one record in the detected cpio dialect.
func (d *Decoder) nextCPIO() (*Record, error) {
	rec := &Record{Dialect: d.dialect}

	magicLen := 6
	if d.dialect == DialectOldBinary {
		magicLen = 2
	}
	magic := make([]byte, magicLen)
	if err := d.tr.Read(magic); err != nil {
		return nil, err
	}

	var err error
	switch d.dialect {
	case DialectOldASCII:
		err = decodeOldASCII(d.tr, rec)
	case DialectNewASCII:
		err = decodeNewASCII(d.tr, rec)
	case DialectNewCRC:
		err = decodeNewASCII(d.tr, rec)
	case DialectOldBinary:
		var swapped bool
		swapped, err = decodeOldBinary(d.tr, [2]byte{magic[0], magic[1]}, rec)
		if swapped {
			d.byteOrderSwapped = true
			if !d.swapWarned {
				d.logger.Info("archive byte order is reversed relative to this host", "warning", true)
				d.swapWarned = true
			}
		}
	default:
		return nil, fmt.Errorf("header: unhandled dialect %v", d.dialect)
	}
	if err != nil {
		return nil, err
	}

	d.payloadSize = rec.Size
	d.remaining = rec.Size
	return rec, nil
}

// nextTar pulls the next entry from the delegated tar reader, translating
// its header into a Record with the same shape as the cpio dialects
// produce. End of the tar stream is reported as a synthetic trailer
// record so callers never need to special-case tar termination.
func (d *Decoder) nextTar() (*Record, error) {
	if d.tarDone {
		return &Record{Dialect: d.dialect, Name: consts.TrailerName}, nil
	}
	if d.tarReader == nil {
		d.tarStream = &tarStreamAdapter{tr: d.tr}
		d.tarReader = tar.NewReader(d.tarStream)
	}

	hdr, err := d.tarReader.Next()
	if errors.Is(err, io.EOF) {
		d.tarDone = true
		return &Record{Dialect: d.dialect, Name: consts.TrailerName}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("header: tar: %w", err)
	}

	switch hdr.Format {
	case tar.FormatUSTAR, tar.FormatPAX:
		d.dialect = DialectUSTar
	}

	rec := &Record{
		Dialect:  d.dialect,
		Name:     cleanTarName(hdr.Name),
		Mode:     tarModeToCPIOMode(hdr),
		UID:      uint32(hdr.Uid),
		GID:      uint32(hdr.Gid),
		NLink:    1,
		MTime:    hdr.ModTime,
		Size:     hdr.Size,
		LinkName: hdr.Linkname,
	}
	if hdr.Devmajor != 0 || hdr.Devminor != 0 {
		rec.RdevMajor = uint32(hdr.Devmajor)
		rec.RdevMinor = uint32(hdr.Devminor)
	}
	if tarIsHardLink(hdr) {
		rec.NLink = 2
	}

	d.payloadSize = rec.Size
	d.remaining = rec.Size
	return rec, nil
}

// ReadPayload reads up to len(p) bytes of the current record's payload.
func (d *Decoder) ReadPayload(p []byte) (int, error) {
	if d.dialect.IsTar() {
		return d.tarReader.Read(p)
	}
	if d.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > d.remaining {
		p = p[:d.remaining]
	}
	if err := d.tr.Read(p); err != nil {
		return 0, err
	}
	d.remaining -= int64(len(p))
	return len(p), nil
}

// ReadAllPayload reads the whole of the current record's payload, for
// callers that need it as one value (symlink targets, small buffers).
func (d *Decoder) ReadAllPayload() ([]byte, error) {
	buf := make([]byte, d.payloadSize)
	if _, err := io.ReadFull(decoderPayloadReader{d}, buf); err != nil {
		return nil, err
	}
	if err := d.finishPayload(); err != nil {
		return nil, err
	}
	return buf, nil
}

// decoderPayloadReader adapts Decoder.ReadPayload to io.Reader for use
// with io.ReadFull/io.Copy by extraction writers.
type decoderPayloadReader struct{ d *Decoder }

func (r decoderPayloadReader) Read(p []byte) (int, error) { return r.d.ReadPayload(p) }

// PayloadReader returns an io.Reader over the current record's payload,
// for writers that stream it with io.Copy.
func (d *Decoder) PayloadReader() io.Reader { return decoderPayloadReader{d} }

// SkipPayload discards whatever payload bytes of the current record have
// not yet been read, along with its dialect's trailing pad.
func (d *Decoder) SkipPayload() error {
	if d.dialect.IsTar() {
		_, err := io.Copy(io.Discard, d.tarReader)
		return err
	}
	if d.remaining > 0 {
		if err := d.tr.Toss(d.remaining); err != nil {
			return err
		}
		d.remaining = 0
	}
	return d.tossPad()
}

// finishPayload tosses the dialect's trailing pad after a caller has
// fully consumed the payload itself via ReadPayload/ReadAllPayload.
func (d *Decoder) finishPayload() error {
	if d.dialect.IsTar() {
		return nil
	}
	return d.tossPad()
}

func (d *Decoder) tossPad() error {
	pad := tape.PadTo(d.payloadSize, d.dialect.PaddingUnit())
	if pad == 0 {
		return nil
	}
	return d.tr.Toss(pad)
}

// InputBytes reports the total number of bytes consumed from the
// underlying stream so far, for the end-of-archive block count report.
func (d *Decoder) InputBytes() int64 { return d.tr.InputBytes() }
