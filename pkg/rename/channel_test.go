package rename

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchRenameReplacesName(t *testing.T) {
	ch := Batch(strings.NewReader("newname\n"))
	renamed, skip, err := ch.Rename("oldname")
	require.NoError(t, err)
	assert.False(t, skip)
	assert.Equal(t, "newname", renamed)
}

func TestBatchRenameEmptyLineSkips(t *testing.T) {
	ch := Batch(strings.NewReader("\n"))
	_, skip, err := ch.Rename("oldname")
	require.NoError(t, err)
	assert.True(t, skip)
}

func TestBatchRenameShortFileKeepsName(t *testing.T) {
	ch := Batch(strings.NewReader(""))
	renamed, skip, err := ch.Rename("oldname")
	require.NoError(t, err)
	assert.False(t, skip)
	assert.Equal(t, "oldname", renamed)
}

func TestBatchRenameMultipleRecords(t *testing.T) {
	ch := Batch(strings.NewReader("one\ntwo\n"))
	r1, _, _ := ch.Rename("a")
	r2, _, _ := ch.Rename("b")
	assert.Equal(t, "one", r1)
	assert.Equal(t, "two", r2)
}
