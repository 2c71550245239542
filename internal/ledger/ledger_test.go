package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "completed.txt"))
	require.NoError(t, err)
	assert.Equal(t, 0, l.Size())
	assert.False(t, l.Contains("acme"))
}

func TestLoadExistingLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "completed.txt")
	require.NoError(t, os.WriteFile(path, []byte("acme\n\nglobex\n"), 0644))

	l, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Size())
	assert.True(t, l.Contains("acme"))
	assert.True(t, l.Contains("globex"))
	assert.False(t, l.Contains("initech"))
}

func TestMarkCompletedPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "completed.txt")

	l, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, l.MarkCompleted("acme"))
	assert.True(t, l.Contains("acme"))

	// A fresh load sees the appended entry.
	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, reloaded.Contains("acme"))
}

func TestMarkCompletedAppendFailure(t *testing.T) {
	// The ledger path points into a directory that does not exist.
	l, err := Load(filepath.Join(t.TempDir(), "missing", "completed.txt"))
	require.NoError(t, err)

	err = l.MarkCompleted("acme")
	assert.Error(t, err)
	assert.False(t, l.Contains("acme"), "failed append must not poison the in-memory set")
}
