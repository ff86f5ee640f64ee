// Package dstring implements the grow-on-write byte buffer the rename
// channel uses to accumulate lines read one byte at a time from a
// non-seekable stream.
package dstring

import (
	"bufio"
	"io"
)

// String is a dynamically-growing byte buffer. The zero value is ready to
// use. Contents are always NUL-terminated internally; Bytes and String
// strip that terminator.
type String struct {
	buf []byte
	idx int
}

// Reset truncates the buffer's logical length to len, growing the
// backing array first if necessary. It does not release capacity.
func (s *String) Reset(len int) {
	s.grow(len)
	s.idx = len
	s.buf[s.idx] = 0
}

// Append adds a single byte, doubling the backing array when it is full.
func (s *String) Append(c byte) {
	s.grow(1)
	s.buf[s.idx] = c
	s.idx++
	s.grow(1)
	s.buf[s.idx] = 0
}

// Concat appends str in its entirety.
func (s *String) Concat(str string) {
	s.grow(len(str))
	copy(s.buf[s.idx:], str)
	s.idx += len(str)
	s.grow(0)
	s.buf[s.idx] = 0
}

// Bytes returns the buffer's current contents, excluding the trailing NUL.
func (s *String) Bytes() []byte {
	if s.idx == 0 {
		return nil
	}
	return s.buf[:s.idx]
}

// String returns the buffer's current contents as a string.
func (s *String) String() string {
	return string(s.Bytes())
}

// Len returns the number of bytes currently stored.
func (s *String) Len() int {
	return s.idx
}

// grow ensures the backing array can hold idx+extra+1 bytes (the +1 is
// for the permanent NUL terminator), at least doubling so repeated
// single-byte appends remain amortized O(1).
func (s *String) grow(extra int) {
	need := s.idx + extra + 1
	if need <= len(s.buf) {
		return
	}
	newSize := len(s.buf)
	if newSize == 0 {
		newSize = 64
	}
	for newSize < need {
		newSize *= 2
	}
	grown := make([]byte, newSize)
	copy(grown, s.buf)
	s.buf = grown
}

// FgetStr reads bytes from r until terminator or EOF, discarding the
// terminator. It returns (value, true) on success, or ("", false) only
// when EOF is reached before any byte is read; a terminator-less
// trailing line still yields its accumulated bytes.
func FgetStr(r *bufio.Reader, terminator byte) (string, bool) {
	var s String
	sawByte := false
	for {
		c, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				break
			}
			break
		}
		if c == terminator {
			sawByte = true
			break
		}
		s.Append(c)
		sawByte = true
	}
	if !sawByte && s.Len() == 0 {
		return "", false
	}
	return s.String(), true
}
