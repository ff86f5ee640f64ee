package dstring

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringAppendAndConcat(t *testing.T) {
	var s String
	s.Append('a')
	s.Append('b')
	s.Concat("cde")
	assert.Equal(t, "abcde", s.String())
	assert.Equal(t, 5, s.Len())
}

func TestStringResetTruncates(t *testing.T) {
	var s String
	s.Concat("hello")
	s.Reset(2)
	assert.Equal(t, "he", s.String())
}

func TestStringBytesEmpty(t *testing.T) {
	var s String
	assert.Nil(t, s.Bytes())
}

func TestFgetStrReadsUntilTerminator(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("newname\nrest"))
	name, ok := FgetStr(r, '\n')
	assert.True(t, ok)
	assert.Equal(t, "newname", name)
}

func TestFgetStrEmptyLine(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("\nrest"))
	name, ok := FgetStr(r, '\n')
	assert.True(t, ok)
	assert.Equal(t, "", name)
}

func TestFgetStrEOFBeforeAnyByte(t *testing.T) {
	r := bufio.NewReader(strings.NewReader(""))
	_, ok := FgetStr(r, '\n')
	assert.False(t, ok)
}

func TestFgetStrNoTerminatorStillReturnsBytes(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("trailing"))
	name, ok := FgetStr(r, '\n')
	assert.True(t, ok)
	assert.Equal(t, "trailing", name)
}
