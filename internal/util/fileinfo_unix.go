//go:build linux || darwin

package util

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

func statPath(path string) (*FileInfo, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return nil, &os.PathError{Op: "stat", Path: path, Err: err}
	}
	return fromStat(&st), nil
}

func statOpen(f *os.File) (*FileInfo, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return nil, &os.PathError{Op: "fstat", Path: f.Name(), Err: err}
	}
	return fromStat(&st), nil
}

func fromStat(st *unix.Stat_t) *FileInfo {
	mtime := statMtime(st)
	sec, nsec := mtime.Unix()
	return &FileInfo{
		ModTime: time.Unix(sec, nsec),
		Size:    st.Size,
		Inode:   uint64(st.Ino),
	}
}
