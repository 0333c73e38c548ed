package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/penwyp/go-error-capture/internal/util"
)

const (
	defaultReadBufSize = 64 * 1024
	tailSearchWindow   = 64 * 1024
)

// FileSource reads lines from a log file that keeps growing while it is open.
type FileSource struct {
	path     string
	file     *os.File
	reader   *bufio.Reader
	pending  []byte // bytes read past the last complete line
	position int64
}

// Open opens path for incremental reading from its beginning. Failures wrap
// ErrResourceUnavailable and are not retried.
func Open(path string) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrResourceUnavailable, path)
	}

	util.LogDebugf("Opened log source: %s (%d bytes)", path, info.Size())

	return &FileSource{
		path:   path,
		file:   file,
		reader: bufio.NewReaderSize(file, defaultReadBufSize),
	}, nil
}

// Path returns the path the source was opened with.
func (s *FileSource) Path() string {
	return s.path
}

// Length returns the file's current size.
func (s *FileSource) Length() (int64, error) {
	info, err := s.stat()
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

// Position returns the offset just past the last complete line returned.
func (s *FileSource) Position() int64 {
	return s.position
}

// ModTime returns the file's modification time.
func (s *FileSource) ModTime() (time.Time, error) {
	info, err := s.stat()
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime, nil
}

// ReadLine returns the next newline-terminated line. A trailing fragment is
// buffered, not returned, until the writer finishes it.
func (s *FileSource) ReadLine() (string, error) {
	if s.file == nil {
		return "", ErrClosed
	}

	// bufio.Reader hands back EOF once and then reads the file again on the
	// next call, which is what lets the same reader follow appends.
	chunk, err := s.reader.ReadBytes('\n')
	s.pending = append(s.pending, chunk...)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrEndOfStream
		}
		return "", fmt.Errorf("read %s: %w", s.path, err)
	}

	line := string(s.pending)
	s.position += int64(len(s.pending))
	s.pending = s.pending[:0]
	return trimEOL(line), nil
}

// TakeRemainder consumes the unterminated fragment at the end of the file.
func (s *FileSource) TakeRemainder() (string, bool) {
	if len(s.pending) == 0 {
		return "", false
	}
	line := string(s.pending)
	s.position += int64(len(s.pending))
	s.pending = s.pending[:0]
	return trimEOL(line), true
}

// SkipToEnd moves the read position to the end of the last complete line so
// only content written from now on is read. Call before the first ReadLine.
func (s *FileSource) SkipToEnd() error {
	if s.file == nil {
		return ErrClosed
	}
	info, err := s.stat()
	if err != nil {
		return err
	}

	offset := info.Size
	if offset > 0 {
		window := int64(tailSearchWindow)
		if window > offset {
			window = offset
		}
		buf := make([]byte, window)
		if _, err := s.file.ReadAt(buf, offset-window); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read tail of %s: %w", s.path, err)
		}
		if i := bytes.LastIndexByte(buf, '\n'); i >= 0 {
			offset = offset - window + int64(i) + 1
		} else if window == offset {
			// One unfinished line is all there is; read it once it completes.
			offset = 0
		}
	}

	if _, err := s.file.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek %s: %w", s.path, err)
	}
	s.reader.Reset(s.file)
	s.pending = s.pending[:0]
	s.position = offset

	util.LogDebugf("Skipped to offset %d of %s", offset, s.path)
	return nil
}

// Close releases the file handle. Safe to call repeatedly.
func (s *FileSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.reader = nil
	s.pending = nil
	return err
}

func (s *FileSource) stat() (*util.FileInfo, error) {
	if s.file == nil {
		return nil, ErrClosed
	}
	return util.StatFile(s.file)
}
