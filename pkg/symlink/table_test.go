package symlink

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholderThenReplaceAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "link")

	tbl := New()
	err := tbl.Placeholder(path, "target.txt", 0o777, 0, 0, time.Unix(0, 0), false, true)
	require.NoError(t, err)

	info, err := os.Lstat(path)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())

	tbl.ReplaceAll(logr.Discard())

	info, err = os.Lstat(path)
	require.NoError(t, err)
	assert.True(t, info.Mode()&os.ModeSymlink != 0)

	target, err := os.Readlink(path)
	require.NoError(t, err)
	assert.Equal(t, "target.txt", target)
}

func TestReplaceAllSkipsPlaceholderReplacedByLaterRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "link")

	tbl := New()
	require.NoError(t, tbl.Placeholder(path, "original.txt", 0o777, 0, 0, time.Unix(0, 0), false, true))

	// A later record in the archive overwrote the same path with a
	// directory before end-of-archive replacement runs.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))

	tbl.ReplaceAll(logr.Discard())

	info, err := os.Lstat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
