package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
)

const logTimeLayout = "2006/01/02 15:04:05.000"

// encodeEntry renders one entry without a trailing newline.
func encodeEntry(entry LogEntry, format LogFormat) ([]byte, error) {
	if format == FormatJSON {
		return sonic.Marshal(entry)
	}

	var b strings.Builder
	b.WriteString(entry.Timestamp.Format(logTimeLayout))
	b.WriteString(" [")
	b.WriteString(entry.Level)
	b.WriteString("] ")
	if entry.Component != "" {
		b.WriteString(entry.Component)
		b.WriteString(": ")
	}
	b.WriteString(entry.Message)
	for _, k := range sortedFieldKeys(entry.Fields) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
	}
	return []byte(b.String()), nil
}

// writerOutput serializes entries onto an io.Writer.
type writerOutput struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	format LogFormat
}

func (o *writerOutput) Write(entry LogEntry) error {
	data, err := encodeEntry(entry, o.format)
	if err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.w == nil {
		return os.ErrClosed
	}
	data = append(data, '\n')
	_, err = o.w.Write(data)
	return err
}

func (o *writerOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.w = nil
	if o.closer == nil {
		return nil
	}
	err := o.closer.Close()
	o.closer = nil
	return err
}

// NewConsoleOutput writes to w and never closes it.
func NewConsoleOutput(w io.Writer, format LogFormat) Output {
	return &writerOutput{w: w, format: format}
}

// NewFileOutput appends to path, creating its directory when needed.
func NewFileOutput(path string, format LogFormat) (Output, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &writerOutput{w: file, closer: file, format: format}, nil
}
