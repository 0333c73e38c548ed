package util

import (
	"fmt"
	"os"
	"time"
)

// FileInfo contains the stat fields the tailer cares about.
type FileInfo struct {
	ModTime time.Time // Last modification time, nanosecond precision where the filesystem has it
	Size    int64     // File size in bytes
	Inode   uint64    // Inode number, 0 on platforms without one
}

// GetFileInfo stats the file at path.
func GetFileInfo(path string) (*FileInfo, error) {
	return statPath(path)
}

// StatFile stats an already open file through its descriptor, so the result
// always describes the file being read even if the path was replaced.
func StatFile(f *os.File) (*FileInfo, error) {
	if f == nil {
		return nil, fmt.Errorf("stat: nil file")
	}
	return statOpen(f)
}
