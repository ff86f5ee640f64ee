package tape

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadExact(t *testing.T) {
	r := New(bytes.NewReader([]byte("hello world")))
	buf := make([]byte, 5)
	assert.NoError(t, r.Read(buf))
	assert.Equal(t, "hello", string(buf))
	assert.Equal(t, int64(5), r.InputBytes())
}

func TestReadPrematureEOF(t *testing.T) {
	r := New(bytes.NewReader([]byte("abc")))
	buf := make([]byte, 10)
	err := r.Read(buf)
	assert.True(t, errors.Is(err, ErrPrematureEOF))
}

func TestPeekDoesNotConsume(t *testing.T) {
	r := New(bytes.NewReader([]byte("abcdef")))
	buf := make([]byte, 3)
	n, err := r.Peek(buf)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int64(0), r.InputBytes())

	full := make([]byte, 6)
	assert.NoError(t, r.Read(full))
	assert.Equal(t, "abcdef", string(full))
}

func TestPeekShortAtEOF(t *testing.T) {
	r := New(bytes.NewReader([]byte("ab")))
	buf := make([]byte, 10)
	n, err := r.Peek(buf)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestToss(t *testing.T) {
	r := New(bytes.NewReader([]byte("abcdef")))
	assert.NoError(t, r.Toss(2))
	buf := make([]byte, 4)
	assert.NoError(t, r.Read(buf))
	assert.Equal(t, "cdef", string(buf))
	assert.Equal(t, int64(6), r.InputBytes())
}

func TestTossPastEOF(t *testing.T) {
	r := New(bytes.NewReader([]byte("ab")))
	err := r.Toss(10)
	assert.True(t, errors.Is(err, ErrPrematureEOF))
}

func TestPadTo(t *testing.T) {
	assert.Equal(t, int64(0), PadTo(8, 4))
	assert.Equal(t, int64(2), PadTo(6, 4))
	assert.Equal(t, int64(0), PadTo(5, 1))
	assert.Equal(t, int64(0), PadTo(5, 0))
}
