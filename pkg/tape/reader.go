// Package tape supplies the buffered, non-seekable stream reader the
// copy-in core is built against: read, peek and toss, with block
// alignment and seek-vs-discard handling hidden behind the interface.
package tape

import (
	"bufio"
	"errors"
	"io"
)

// ErrPrematureEOF is returned by Read when fewer than the requested
// number of bytes remain in the stream.
var ErrPrematureEOF = errors.New("tape: premature end of archive")

// Reader is the contract the copy-in core consumes from its input
// stream. It hides whether the underlying source is seekable (a
// regular file, where Toss can seek) or a pipe/remote-tape connection
// (where Toss must discard-read).
type Reader interface {
	// Read fills dst[0:len(dst)] or returns ErrPrematureEOF.
	Read(dst []byte) error
	// Peek returns up to len(dst) bytes without consuming them. A short
	// read is only legal at true end of stream.
	Peek(dst []byte) (actually int, err error)
	// Toss advances n bytes, by seek or by discard-read depending on the
	// underlying source.
	Toss(n int64) error
	// InputBytes reports the total number of bytes consumed so far.
	InputBytes() int64
}

// bufReader implements Reader over a bufio.Reader. It is used for both
// seekable and non-seekable sources; Toss always discard-reads, which is
// correct for either case and keeps InputBytes accurate without needing
// to special-case os.File.Seek.
type bufReader struct {
	r     *bufio.Reader
	total int64
}

// New wraps r in a Reader with the block-sized lookahead buffer the
// format detector needs (at least consts.DetectWindow bytes).
func New(r io.Reader) Reader {
	return &bufReader{r: bufio.NewReaderSize(r, 64*1024)}
}

func (b *bufReader) Read(dst []byte) error {
	n, err := io.ReadFull(b.r, dst)
	b.total += int64(n)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return ErrPrematureEOF
		}
		return err
	}
	return nil
}

func (b *bufReader) Peek(dst []byte) (int, error) {
	peeked, err := b.r.Peek(len(dst))
	copy(dst, peeked)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return len(peeked), err
	}
	return len(peeked), nil
}

func (b *bufReader) Toss(n int64) error {
	if n <= 0 {
		return nil
	}
	discarded, err := b.r.Discard(int(n))
	b.total += int64(discarded)
	if err != nil {
		if err == io.EOF {
			return ErrPrematureEOF
		}
		return err
	}
	return nil
}

func (b *bufReader) InputBytes() int64 {
	return b.total
}

// PadTo returns the number of bytes needed to advance offset to the next
// multiple of unit, 0 if already aligned or unit <= 1. Always expressed
// as (unit - offset%unit) % unit so an aligned offset yields 0, not unit.
func PadTo(offset, unit int64) int64 {
	if unit <= 1 {
		return 0
	}
	return (unit - offset%unit) % unit
}
