//go:build !linux && !darwin

package util

import "os"

func statPath(path string) (*FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return fromOSInfo(fi), nil
}

func statOpen(f *os.File) (*FileInfo, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return fromOSInfo(fi), nil
}

func fromOSInfo(fi os.FileInfo) *FileInfo {
	return &FileInfo{ModTime: fi.ModTime(), Size: fi.Size()}
}
