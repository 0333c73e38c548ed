package source

import (
	"bytes"
	"strings"
	"time"
)

// MemorySource is an in-memory LineSource. Every append advances its
// modification time by one millisecond unless the time is pinned with
// SetModTime.
type MemorySource struct {
	data     []byte
	position int64
	modTime  time.Time
	pinned   bool
	closed   bool
}

// NewMemorySource returns an empty source.
func NewMemorySource() *MemorySource {
	return &MemorySource{modTime: time.Unix(1700000000, 0)}
}

// Append writes raw text, which may end mid-line.
func (m *MemorySource) Append(text string) {
	m.data = append(m.data, text...)
	if !m.pinned {
		m.modTime = m.modTime.Add(time.Millisecond)
	}
}

// AppendLines writes each line followed by a newline.
func (m *MemorySource) AppendLines(lines ...string) {
	if len(lines) == 0 {
		return
	}
	m.Append(strings.Join(lines, "\n") + "\n")
}

// SetModTime pins the modification time; later appends leave it unchanged.
func (m *MemorySource) SetModTime(t time.Time) {
	m.modTime = t
	m.pinned = true
}

func (m *MemorySource) Length() (int64, error) {
	if m.closed {
		return 0, ErrClosed
	}
	return int64(len(m.data)), nil
}

func (m *MemorySource) Position() int64 {
	return m.position
}

func (m *MemorySource) ModTime() (time.Time, error) {
	if m.closed {
		return time.Time{}, ErrClosed
	}
	return m.modTime, nil
}

func (m *MemorySource) ReadLine() (string, error) {
	if m.closed {
		return "", ErrClosed
	}
	rest := m.data[m.position:]
	i := bytes.IndexByte(rest, '\n')
	if i < 0 {
		return "", ErrEndOfStream
	}
	line := string(rest[:i+1])
	m.position += int64(i + 1)
	return trimEOL(line), nil
}

func (m *MemorySource) TakeRemainder() (string, bool) {
	if m.closed || m.position >= int64(len(m.data)) {
		return "", false
	}
	line := string(m.data[m.position:])
	m.position = int64(len(m.data))
	return trimEOL(line), true
}

func (m *MemorySource) Close() error {
	m.closed = true
	return nil
}
