package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/penwyp/go-error-capture/internal/core/model"
)

// Stream writes records to a writer, stdout by default.
type Stream struct {
	mu     sync.Mutex
	w      io.Writer
	format Format
}

// NewStdout writes to os.Stdout.
func NewStdout(format Format) *Stream {
	return NewStream(os.Stdout, format)
}

// NewStream writes to w. Text mode prints the human-readable report, JSON
// mode prints one envelope per line.
func NewStream(w io.Writer, format Format) *Stream {
	return &Stream{w: w, format: format}
}

func (s *Stream) Write(_ context.Context, record model.ErrorRecord) error {
	var data []byte
	if s.format == FormatJSON {
		line, err := encodeJSONLine(record)
		if err != nil {
			return fmt.Errorf("stream output: marshal: %w", err)
		}
		data = line
	} else {
		data = []byte(record.String() + "\n")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("stream output: %w", err)
	}
	return nil
}

func (s *Stream) Close() error {
	return nil
}
