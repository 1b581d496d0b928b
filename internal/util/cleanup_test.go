package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupEmptyChapterDirs(t *testing.T) {
	out := t.TempDir()

	empty := filepath.Join(out, "slug_Chapter_5")
	require.NoError(t, os.Mkdir(empty, 0755))

	full := filepath.Join(out, "slug_Chapter_6")
	require.NoError(t, os.Mkdir(full, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(full, "page_001.jpg"), []byte("x"), 0644))

	unrelated := filepath.Join(out, "notes")
	require.NoError(t, os.Mkdir(unrelated, 0755))

	CleanupEmptyChapterDirs(out)

	assert.NoDirExists(t, empty)
	assert.DirExists(t, full)
	assert.DirExists(t, unrelated)
}
