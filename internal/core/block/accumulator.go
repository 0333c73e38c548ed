// Package block holds the error block being assembled while a log is tailed.
package block

import (
	"errors"
	"strings"

	"github.com/penwyp/go-error-capture/internal/core/model"
)

// ErrBlockNotOpen is returned by operations that require Open to run first.
var ErrBlockNotOpen = errors.New("error block not open")

// Accumulator collects the raw text, summary and stack frames of one block.
// The zero value is an idle accumulator ready for Open.
type Accumulator struct {
	inError    bool
	summary    string
	raw        strings.Builder
	stackTrace []string
	source     model.ScriptSource
	lines      int
}

// New returns an idle accumulator
func New() *Accumulator {
	return &Accumulator{}
}

// InError reports whether a block is currently open.
func (a *Accumulator) InError() bool {
	return a.inError
}

// Lines returns how many lines the open block holds.
func (a *Accumulator) Lines() int {
	return a.lines
}

// Open starts a block from its trigger line. The summary is everything after
// the first "ERROR:" token, so both trigger forms share one extraction rule.
func (a *Accumulator) Open(trigger string) {
	a.Reset()
	a.inError = true
	if idx := strings.Index(trigger, model.MarkerError); idx >= 0 {
		a.summary = trigger[idx+len(model.MarkerError):]
	}
	a.appendRaw(trigger)
}

// AddStackFrame appends a classified frame. The block's source always takes
// the latest frame's classification, Unknown included.
func (a *Accumulator) AddStackFrame(line string, source model.ScriptSource) error {
	if !a.inError {
		return ErrBlockNotOpen
	}
	a.stackTrace = append(a.stackTrace, line)
	a.source = source
	a.appendRaw(line)
	return nil
}

// Snapshot builds the record for the open block without modifying it.
func (a *Accumulator) Snapshot() (model.ErrorRecord, error) {
	if !a.inError {
		return model.ErrorRecord{}, ErrBlockNotOpen
	}
	return model.NewErrorRecord(a.source, a.raw.String(), a.summary, a.stackTrace), nil
}

// RawText returns the text accumulated so far.
func (a *Accumulator) RawText() string {
	return a.raw.String()
}

// Reset clears the block. Safe to call at any time.
func (a *Accumulator) Reset() {
	a.inError = false
	a.summary = ""
	a.raw.Reset()
	a.stackTrace = nil
	a.source = model.SourceUnknown
	a.lines = 0
}

func (a *Accumulator) appendRaw(line string) {
	a.raw.WriteString(line)
	a.raw.WriteByte('\n')
	a.lines++
}
