package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathExists(t *testing.T) {
	dir := t.TempDir()

	exists, err := PathExists(dir)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = PathExists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreateDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, CreateDir(target))
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent on an existing directory.
	require.NoError(t, CreateDir(target))
}

func TestCreateDirOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	err := CreateDir(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0644))

	isDir, err := IsDir(dir)
	require.NoError(t, err)
	assert.True(t, isDir)

	isDir, err = IsDir(filePath)
	require.NoError(t, err)
	assert.False(t, isDir)

	isDir, err = IsDir(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, isDir)
}

func TestFileMD5(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	sum, err := FileMD5(path)
	require.NoError(t, err)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", sum)
}

func TestFileMD5Missing(t *testing.T) {
	_, err := FileMD5(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
