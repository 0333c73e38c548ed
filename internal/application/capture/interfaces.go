package capture

import (
	"github.com/penwyp/go-error-capture/internal/core/model"
	"github.com/penwyp/go-error-capture/internal/presentation/interaction"
)

// FileMonitor nudges the poll loop when the log changes.
type FileMonitor interface {
	// Events returns a channel of file change events
	Events() <-chan model.FileEvent
	// Close stops monitoring and cleans up resources
	Close() error
}

// KeySource delivers key presses used to dismiss the panel or quit.
type KeySource interface {
	Events() <-chan interaction.KeyEvent
	Close() error
}

// StateStore keeps capture progress for reporting.
type StateStore interface {
	RecordCycle(linesRead int, skipped bool, position int64)
	RecordError(record model.ErrorRecord)
	Snapshot() Stats
}
