package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromASCIIOctal(t *testing.T) {
	res := FromASCII("000123", 3)
	assert.False(t, res.Malformed)
	assert.Equal(t, uint64(0o123), res.Value)
}

func TestFromASCIIHex(t *testing.T) {
	res := FromASCII("0000002A", 4)
	assert.False(t, res.Malformed)
	assert.Equal(t, uint64(0x2A), res.Value)
}

func TestFromASCIILeadingSpaces(t *testing.T) {
	res := FromASCII("   755", 3)
	assert.False(t, res.Malformed)
	assert.Equal(t, uint64(0o755), res.Value)
}

func TestFromASCIIAllSpaces(t *testing.T) {
	res := FromASCII("      ", 3)
	assert.False(t, res.Malformed)
	assert.Equal(t, uint64(0), res.Value)
}

func TestFromASCIIOctalRejectsDigitEightAndNine(t *testing.T) {
	res := FromASCII("000089", 3)
	assert.True(t, res.Malformed)
}

func TestFromASCIIMalformedDigit(t *testing.T) {
	res := FromASCII("12!45", 3)
	assert.True(t, res.Malformed)
}

func TestFromASCIIHexLowercase(t *testing.T) {
	res := FromASCII("0000ff01", 4)
	assert.False(t, res.Malformed)
	assert.Equal(t, uint64(0xff01), res.Value)
}

func TestSwabArray(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	SwabArray(buf, 2)
	assert.Equal(t, []byte{2, 1, 4, 3}, buf)
}

func TestSwabShort(t *testing.T) {
	assert.Equal(t, uint16(0x0201), SwabShort(0x0102))
}
