package util

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFileInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "godot.log")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0644))

	info, err := GetFileInfo(path)
	require.NoError(t, err)
	assert.Equal(t, int64(6), info.Size)
	if runtime.GOOS == "linux" || runtime.GOOS == "darwin" {
		assert.NotZero(t, info.Inode)
	}

	osInfo, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime.Equal(osInfo.ModTime()))
}

func TestGetFileInfoMissing(t *testing.T) {
	_, err := GetFileInfo(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStatFileMatchesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "godot.log")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	byFd, err := StatFile(f)
	require.NoError(t, err)
	byPath, err := GetFileInfo(path)
	require.NoError(t, err)
	assert.Equal(t, byPath.Inode, byFd.Inode)
	assert.Equal(t, byPath.Size, byFd.Size)
	assert.True(t, byPath.ModTime.Equal(byFd.ModTime))

	_, err = StatFile(nil)
	assert.Error(t, err)
}

func TestGetFileInfoModTime(t *testing.T) {
	tests := []struct {
		name  string
		mtime time.Time
	}{
		{name: "whole seconds", mtime: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		{name: "sub second", mtime: time.Date(2024, 3, 1, 12, 0, 0, 250_000_000, time.UTC)},
		{name: "nanoseconds", mtime: time.Date(2025, 7, 9, 8, 30, 15, 123_456_789, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "godot.log")
			require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
			require.NoError(t, os.Chtimes(path, tt.mtime, tt.mtime))

			osInfo, err := os.Stat(path)
			require.NoError(t, err)

			info, err := GetFileInfo(path)
			require.NoError(t, err)
			assert.True(t, info.ModTime.Equal(osInfo.ModTime()), "got %v, want %v", info.ModTime, osInfo.ModTime())
			assert.Equal(t, osInfo.ModTime().Unix(), info.ModTime.Unix())
		})
	}
}
