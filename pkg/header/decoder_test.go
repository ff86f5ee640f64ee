package header

import (
	"archive/tar"
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/bgrewell/cpio-kit/pkg/consts"
	"github.com/bgrewell/cpio-kit/pkg/tape"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// octalField zero-pads v as an ASCII octal string of exactly width chars.
func octalField(v uint64, width int) string {
	s := fmt.Sprintf("%o", v)
	return fmt.Sprintf("%0*s", width, s)[:width]
}

func hexField(v uint64, width int) string {
	s := fmt.Sprintf("%x", v)
	return fmt.Sprintf("%0*s", width, s)[:width]
}

func buildOldASCIIRecord(name string, mode, size uint64) []byte {
	var b bytes.Buffer
	b.WriteString(consts.OldASCIIMagic)
	b.WriteString(octalField(1, 6))    // dev
	b.WriteString(octalField(2, 6))    // ino
	b.WriteString(octalField(mode, 6)) // mode
	b.WriteString(octalField(0, 6))    // uid
	b.WriteString(octalField(0, 6))    // gid
	b.WriteString(octalField(1, 6))    // nlink
	b.WriteString(octalField(0, 6))    // rdev
	b.WriteString(octalField(0, 11))   // mtime
	b.WriteString(octalField(uint64(len(name)+1), 6)) // namesize
	b.WriteString(octalField(size, 11))               // filesize
	b.WriteString(name)
	b.WriteByte(0)
	return b.Bytes()
}

func oldASCIITrailer() []byte {
	return buildOldASCIIRecord(consts.TrailerName, 0, 0)
}

func TestDecodeOldASCIIRegularFile(t *testing.T) {
	var archive bytes.Buffer
	archive.Write(buildOldASCIIRecord("hello.txt", ModeRegular|0o644, 5))
	archive.WriteString("world")
	archive.Write(oldASCIITrailer())

	tr := tape.New(&archive)
	dec := NewDecoder(tr, logr.Discard())

	rec, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, DialectOldASCII, rec.Dialect)
	assert.Equal(t, "hello.txt", rec.Name)
	assert.Equal(t, TypeRegular, rec.Type())
	assert.Equal(t, int64(5), rec.Size)
	assert.Equal(t, uint64(2), rec.Ino)

	payload, err := dec.ReadAllPayload()
	require.NoError(t, err)
	assert.Equal(t, "world", string(payload))

	trailer, err := dec.Next()
	require.NoError(t, err)
	assert.True(t, trailer.IsTrailer())
}

func TestDetectSkipsLeadingJunk(t *testing.T) {
	var archive bytes.Buffer
	archive.WriteString("\x00\x00garbage")
	archive.Write(buildOldASCIIRecord("a", ModeRegular|0o600, 0))
	archive.Write(oldASCIITrailer())

	tr := tape.New(&archive)
	dec := NewDecoder(tr, logr.Discard())

	rec, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", rec.Name)
	assert.True(t, dec.JunkBytesSkipped() > 0)
}

func buildNewASCIIRecord(magic string, name string, mode, size uint64) []byte {
	var b bytes.Buffer
	b.WriteString(magic)
	b.WriteString(hexField(2, 8))             // ino
	b.WriteString(hexField(mode, 8))          // mode
	b.WriteString(hexField(0, 8))             // uid
	b.WriteString(hexField(0, 8))             // gid
	b.WriteString(hexField(1, 8))              // nlink
	b.WriteString(hexField(0, 8))             // mtime
	b.WriteString(hexField(size, 8))          // filesize
	b.WriteString(hexField(0, 8))             // devmajor
	b.WriteString(hexField(1, 8))             // devminor
	b.WriteString(hexField(0, 8))             // rdevmajor
	b.WriteString(hexField(0, 8))             // rdevminor
	b.WriteString(hexField(uint64(len(name)+1), 8)) // namesize
	b.WriteString(hexField(0, 8))             // checksum
	b.WriteString(name)
	b.WriteByte(0)

	prefixLen := int64(6 + consts.NewASCIIHeaderSize + len(name) + 1)
	if pad := tape.PadTo(prefixLen, 4); pad > 0 {
		b.Write(make([]byte, pad))
	}
	return b.Bytes()
}

func newASCIITrailer() []byte {
	return buildNewASCIIRecord(consts.NewASCIIMagic, consts.TrailerName, 0, 0)
}

func TestDecodeNewASCIIPadsNameAndPayload(t *testing.T) {
	var archive bytes.Buffer
	archive.Write(buildNewASCIIRecord(consts.NewASCIIMagic, "ab", ModeRegular|0o644, 3))
	archive.WriteString("xyz")
	if pad := tape.PadTo(3, 4); pad > 0 {
		archive.Write(make([]byte, pad))
	}
	archive.Write(newASCIITrailer())

	tr := tape.New(&archive)
	dec := NewDecoder(tr, logr.Discard())

	rec, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, DialectNewASCII, rec.Dialect)
	assert.Equal(t, "ab", rec.Name)

	require.NoError(t, dec.SkipPayload())

	trailer, err := dec.Next()
	require.NoError(t, err)
	assert.True(t, trailer.IsTrailer())
}

func TestDecodeNewCRCChecksum(t *testing.T) {
	rec := buildNewASCIIRecord(consts.CRCMagic, "c", ModeRegular|0o644, 0)
	var archive bytes.Buffer
	archive.Write(rec)
	archive.Write(buildNewASCIIRecord(consts.CRCMagic, consts.TrailerName, 0, 0))

	tr := tape.New(&archive)
	dec := NewDecoder(tr, logr.Discard())
	got, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, DialectNewCRC, got.Dialect)
	assert.True(t, got.Dialect.HasCRC())
}

func buildOldBinaryRecord(name string, mode uint32, size uint32, swapped bool) []byte {
	shorts := make([]uint16, 13)
	shorts[0] = uint16(consts.OldBinaryMagic)
	shorts[1] = 1 // dev
	shorts[2] = 2 // ino
	shorts[3] = uint16(mode)
	shorts[4] = 0 // uid
	shorts[5] = 0 // gid
	shorts[6] = 1 // nlink
	shorts[7] = 0 // rdev
	shorts[8] = 0 // mtime hi
	shorts[9] = 0 // mtime lo
	shorts[10] = uint16(len(name) + 1)
	shorts[11] = uint16(size >> 16)
	shorts[12] = uint16(size & 0xffff)

	var b bytes.Buffer
	for _, s := range shorts {
		if swapped {
			var be [2]byte
			binary.BigEndian.PutUint16(be[:], s)
			b.Write(be[:])
		} else {
			var le [2]byte
			binary.LittleEndian.PutUint16(le[:], s)
			b.Write(le[:])
		}
	}
	b.WriteString(name)
	b.WriteByte(0)
	if len(name)%2 == 0 {
		// namesize (len+1) odd requires one pad byte; even requires none.
		b.WriteByte(0)
	}
	return b.Bytes()
}

func TestDecodeOldBinaryNormal(t *testing.T) {
	var archive bytes.Buffer
	archive.Write(buildOldBinaryRecord("f", ModeRegular|0o644, 0, false))
	archive.Write(buildOldBinaryRecord(consts.TrailerName, 0, 0, false))

	tr := tape.New(&archive)
	dec := NewDecoder(tr, logr.Discard())
	rec, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, DialectOldBinary, rec.Dialect)
	assert.Equal(t, "f", rec.Name)
	assert.False(t, dec.ByteOrderSwapped())
}

func TestDecodeOldBinarySwapped(t *testing.T) {
	var archive bytes.Buffer
	archive.Write(buildOldBinaryRecord("f", ModeRegular|0o644, 0, true))
	archive.Write(buildOldBinaryRecord(consts.TrailerName, 0, 0, true))

	tr := tape.New(&archive)
	dec := NewDecoder(tr, logr.Discard())
	rec, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "f", rec.Name)
	assert.True(t, dec.ByteOrderSwapped())
}

func TestDecodeTarDelegation(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "hello.txt", Mode: 0o644, Size: 5, Typeflag: tar.TypeReg,
	}))
	_, err := tw.Write([]byte("world"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	tr := tape.New(&buf)
	dec := NewDecoder(tr, logr.Discard())

	rec, err := dec.Next()
	require.NoError(t, err)
	assert.True(t, rec.Dialect.IsTar())
	assert.Equal(t, "hello.txt", rec.Name)
	assert.Equal(t, TypeRegular, rec.Type())
	assert.Equal(t, int64(5), rec.Size)

	payload, err := dec.ReadAllPayload()
	require.NoError(t, err)
	assert.Equal(t, "world", string(payload))

	trailer, err := dec.Next()
	require.NoError(t, err)
	assert.True(t, trailer.IsTrailer())
}

func TestDecodeTarSymlinkCarriesLinkName(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "link", Linkname: "target.txt", Mode: 0o777, Typeflag: tar.TypeSymlink,
	}))
	require.NoError(t, tw.Close())

	tr := tape.New(&buf)
	dec := NewDecoder(tr, logr.Discard())

	rec, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, TypeSymlink, rec.Type())
	assert.Equal(t, "target.txt", rec.LinkName)
	assert.True(t, rec.Dialect.StoresLinkInline())
}

func TestRecordTypeClassification(t *testing.T) {
	r := &Record{Mode: ModeCharDev | 0o644}
	assert.Equal(t, TypeCharDevice, r.Type())
	r2 := &Record{Mode: ModeBlockDev | 0o644}
	assert.Equal(t, TypeBlockDevice, r2.Type())
	r3 := &Record{Mode: 0o644}
	assert.Equal(t, TypeUnknown, r3.Type())
}
