// Package source provides the growable, line-oriented byte streams the tail
// scanner reads from.
package source

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrEndOfStream means no further complete line is available right now.
	// It is an expected condition that ends a read loop, never a failure.
	ErrEndOfStream = errors.New("end of stream")

	// ErrResourceUnavailable wraps failures to open the underlying log.
	ErrResourceUnavailable = errors.New("log resource unavailable")

	// ErrClosed is returned by reads on a source that has been closed.
	ErrClosed = errors.New("line source closed")
)

// LineSource is a seekable, growable byte stream read one line at a time.
type LineSource interface {
	// Length returns the current size of the stream. Never cached.
	Length() (int64, error)
	// Position returns the offset just past the last complete line returned.
	Position() int64
	// ModTime returns the stream's last modification time.
	ModTime() (time.Time, error)
	// ReadLine returns the next complete line without its terminator, or
	// ErrEndOfStream when only a partial line (or nothing) remains.
	ReadLine() (string, error)
	// Close releases the stream. Calling it more than once is harmless.
	Close() error
}

// RemainderSource is implemented by sources that can surrender a trailing
// fragment that never received its newline. Used when input is known to be
// complete, e.g. a one-shot scan of a finished file.
type RemainderSource interface {
	TakeRemainder() (string, bool)
}

// trimEOL strips a trailing "\n" or "\r\n".
func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
