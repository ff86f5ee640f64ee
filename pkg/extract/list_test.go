package extract

import (
	"bytes"
	"testing"
	"time"

	"github.com/bgrewell/cpio-kit/pkg/header"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBareWritesNameAndTerminator(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, listBare(&buf, "foo.txt", '\n'))
	assert.Equal(t, "foo.txt\n", buf.String())
}

func TestListBareNullTerminator(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, listBare(&buf, "foo.txt", 0))
	assert.Equal(t, "foo.txt\x00", buf.String())
}

func TestModeStringRegularFile(t *testing.T) {
	rec := &header.Record{Mode: header.ModeRegular | 0o644}
	assert.Equal(t, "-rw-r--r--", modeString(rec))
}

func TestModeStringDirectory(t *testing.T) {
	rec := &header.Record{Mode: header.ModeDirectory | 0o755}
	assert.Equal(t, "drwxr-xr-x", modeString(rec))
}

func TestModeStringSetuid(t *testing.T) {
	rec := &header.Record{Mode: header.ModeRegular | 0o4755}
	assert.Equal(t, "-rwsr-xr-x", modeString(rec))
}

func TestModeStringSymlink(t *testing.T) {
	rec := &header.Record{Mode: header.ModeSymlink | 0o777}
	assert.Equal(t, "lrwxrwxrwx", modeString(rec))
}

func TestFormatTimeRecentUsesClockTime(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)
	s := formatTime(recent, now)
	assert.Contains(t, s, ":")
}

func TestFormatTimeOldUsesYear(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	old := now.Add(-365 * 24 * time.Hour)
	s := formatTime(old, now)
	assert.NotContains(t, s, ":")
}

func TestListLongSymlinkShowsTarget(t *testing.T) {
	var buf bytes.Buffer
	rec := &header.Record{
		Mode: header.ModeSymlink | 0o777, Name: "link", NLink: 1,
		MTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, listLong(&buf, rec, "target.txt", true, now))
	assert.Contains(t, buf.String(), "-> target.txt")
}
