package output

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/penwyp/go-error-capture/internal/core/model"
	"github.com/penwyp/go-error-capture/internal/util"
)

const maxRotatedFiles = 9

// FileOption configures a File sink.
type FileOption func(*File)

// WithMaxSize rotates the file once it would grow past bytes. 0 disables it.
func WithMaxSize(bytes int64) FileOption {
	return func(f *File) { f.maxSize = bytes }
}

// File appends NDJSON envelopes to a file. Every write is flushed so the
// file can be followed while capture runs.
type File struct {
	mu      sync.Mutex
	path    string
	f       *os.File
	w       *bufio.Writer
	maxSize int64
	written int64
}

// NewFile opens path for appending, creating parent directories.
func NewFile(path string, opts ...FileOption) (*File, error) {
	out := &File{path: path}
	for _, opt := range opts {
		opt(out)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("file output: mkdir: %w", err)
	}
	if err := out.open(); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *File) Path() string {
	return o.path
}

func (o *File) Write(_ context.Context, record model.ErrorRecord) error {
	data, err := encodeJSONLine(record)
	if err != nil {
		return fmt.Errorf("file output: marshal: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.f == nil {
		return fmt.Errorf("file output: %w", os.ErrClosed)
	}

	if o.maxSize > 0 && o.written > 0 && o.written+int64(len(data)) > o.maxSize {
		if err := o.rotate(); err != nil {
			return fmt.Errorf("file output: rotate: %w", err)
		}
	}

	n, err := o.w.Write(data)
	o.written += int64(n)
	if err != nil {
		return fmt.Errorf("file output: write: %w", err)
	}
	if err := o.w.Flush(); err != nil {
		return fmt.Errorf("file output: flush: %w", err)
	}
	return nil
}

// Close flushes and closes the file. Safe to call twice.
func (o *File) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.f == nil {
		return nil
	}
	flushErr := o.w.Flush()
	closeErr := o.f.Close()
	o.f, o.w = nil, nil
	if flushErr != nil {
		return fmt.Errorf("file output: flush: %w", flushErr)
	}
	return closeErr
}

func (o *File) open() error {
	f, err := os.OpenFile(o.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("file output: open %s: %w", o.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("file output: stat %s: %w", o.path, err)
	}
	o.f = f
	o.w = bufio.NewWriter(f)
	o.written = info.Size()
	return nil
}

// rotate shifts path.N to path.N+1, moves the live file to path.1 and
// reopens an empty one.
func (o *File) rotate() error {
	if err := o.w.Flush(); err != nil {
		return err
	}
	if err := o.f.Close(); err != nil {
		return err
	}
	for i := maxRotatedFiles - 1; i >= 1; i-- {
		// Missing generations are expected.
		_ = os.Rename(fmt.Sprintf("%s.%d", o.path, i), fmt.Sprintf("%s.%d", o.path, i+1))
	}
	if err := os.Rename(o.path, o.path+".1"); err != nil {
		return err
	}
	util.LogDebugf("Rotated record file %s at %s", o.path, util.FormatBytes(o.written))
	return o.open()
}
