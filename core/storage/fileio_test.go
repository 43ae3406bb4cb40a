package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/pagenote/core/storage"
)

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "text")
	require.NoError(t, storage.Write(path, "first line\nsecond line\n"))

	text, err := storage.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line\n", text)

	line, err := storage.ReadFirstLine(path)
	require.NoError(t, err)
	assert.Equal(t, "first line", line)

	_, err = storage.Read(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "text")
	require.NoError(t, storage.Overwrite(path, "one"))
	require.NoError(t, storage.Overwrite(path, "two"))
	text, err := storage.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "two", text)

	gone := filepath.Join(dir, "gone", "text")
	assert.ErrorIs(t, storage.Overwrite(gone, "x"), os.ErrNotExist)
	assert.NoDirExists(t, filepath.Dir(gone))
}

func TestCopyFilesToDir(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "images")
	require.NoError(t, storage.Write(filepath.Join(src, "1"), "one"))
	require.NoError(t, storage.Write(filepath.Join(src, "2"), "two"))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0755))

	require.NoError(t, storage.CopyFilesToDir(src, dst))
	assert.FileExists(t, filepath.Join(dst, "1"))
	assert.FileExists(t, filepath.Join(dst, "2"))
	assert.NoDirExists(t, filepath.Join(dst, "nested"))

	// A missing source directory has nothing to copy.
	assert.NoError(t, storage.CopyFilesToDir(filepath.Join(src, "none"), dst))
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, storage.Write(filepath.Join(src, "text"), "body"))
	require.NoError(t, storage.Write(filepath.Join(src, "notes", "images", "7"), "img"))

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, storage.CopyDir(src, dst))

	text, err := storage.Read(filepath.Join(dst, "text"))
	require.NoError(t, err)
	assert.Equal(t, "body", text)
	assert.FileExists(t, filepath.Join(dst, "notes", "images", "7"))

	assert.Error(t, storage.CopyDir(filepath.Join(src, "text"), dst))
}

func TestListDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "pages")

	names, err := storage.ListDirs(root)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.DirExists(t, root)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "100"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "200"), 0755))
	require.NoError(t, storage.Write(filepath.Join(root, "stray"), "x"))

	names, err = storage.ListDirs(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"100", "200"}, names)

	require.NoError(t, storage.RemoveAll(filepath.Join(root, "100")))
	assert.False(t, storage.Exists(filepath.Join(root, "100")))
}
