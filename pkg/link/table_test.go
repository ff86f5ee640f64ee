package link

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bgrewell/cpio-kit/pkg/header"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkToGroupFirstMemberRecordsThenLinksSecond(t *testing.T) {
	dir := t.TempDir()
	id := header.Identity{Ino: 1, DevMajor: 0, DevMinor: 1}

	first := filepath.Join(dir, "first")
	require.NoError(t, os.WriteFile(first, []byte("data"), 0o644))

	tbl := New()
	linked, err := tbl.LinkToGroup(id, first)
	require.NoError(t, err)
	assert.False(t, linked)

	second := filepath.Join(dir, "second")
	linked, err = tbl.LinkToGroup(id, second)
	require.NoError(t, err)
	assert.True(t, linked)

	content, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))
}

func TestDeferAndOnExtracted(t *testing.T) {
	dir := t.TempDir()
	id := header.Identity{Ino: 5, DevMajor: 0, DevMinor: 1}

	tbl := New()
	tbl.Defer(&header.Record{Name: filepath.Join(dir, "alias1"), Ino: 5, DevMinor: 1})
	tbl.Defer(&header.Record{Name: filepath.Join(dir, "alias2"), Ino: 5, DevMinor: 1})

	data := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(data, []byte("payload"), 0o644))

	tbl.OnExtracted(id, data, logr.Discard())

	for _, alias := range []string{"alias1", "alias2"} {
		content, err := os.ReadFile(filepath.Join(dir, alias))
		require.NoError(t, err)
		assert.Equal(t, "payload", string(content))
	}
}

func TestFinalizeMaterializesEmptyFileForNeverLinkedGroup(t *testing.T) {
	dir := t.TempDir()

	tbl := New()
	tbl.Defer(&header.Record{Name: filepath.Join(dir, "a"), Mode: 0o100644, Ino: 9, DevMinor: 1})
	tbl.Defer(&header.Record{Name: filepath.Join(dir, "b"), Mode: 0o100644, Ino: 9, DevMinor: 1})

	tbl.Finalize(logr.Discard())

	aInfo, err := os.Stat(filepath.Join(dir, "a"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), aInfo.Size())

	bInfo, err := os.Stat(filepath.Join(dir, "b"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), bInfo.Size())
}

func TestFinalizePreservesSetuidOnMaterializedFile(t *testing.T) {
	dir := t.TempDir()

	tbl := New()
	tbl.Defer(&header.Record{Name: filepath.Join(dir, "suid"), Mode: 0o104755, Ino: 11, DevMinor: 1})

	tbl.Finalize(logr.Discard())

	info, err := os.Stat(filepath.Join(dir, "suid"))
	require.NoError(t, err)
	assert.True(t, info.Mode()&os.ModeSetuid != 0)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestTakePendingRemovesEntry(t *testing.T) {
	id := header.Identity{Ino: 1}
	tbl := New()
	tbl.Defer(&header.Record{Name: "only", Ino: 1})

	entry, ok := tbl.TakePending(id)
	assert.True(t, ok)
	assert.Equal(t, "only", entry.Name)

	_, ok = tbl.TakePending(id)
	assert.False(t, ok)
}
