// Package tail implements the incremental error-block scanner.
//
// A Scanner is driven by an external tick. Each Poll checks whether the log
// changed since the last fully read state, reads at most MaxLinesPerCycle
// complete lines, and turns runs of "ERROR:"/"SCRIPT ERROR:" lines followed by
// indented "at" frames into ErrorRecords. The Scanner is not safe for
// concurrent use; the driver must serialize calls.
package tail

import (
	"errors"
	"time"

	"github.com/penwyp/go-error-capture/internal/core/block"
	"github.com/penwyp/go-error-capture/internal/core/classifier"
	"github.com/penwyp/go-error-capture/internal/core/model"
	"github.com/penwyp/go-error-capture/internal/data/source"
	"github.com/penwyp/go-error-capture/internal/util"
)

// DefaultMaxLinesPerCycle bounds the lines read by one Poll.
const DefaultMaxLinesPerCycle = 500

// Mode is the block-detection state.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeInBlock
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "Idle"
	case ModeInBlock:
		return "InBlock"
	default:
		return "Unknown"
	}
}

// Config tunes a Scanner.
type Config struct {
	MaxLinesPerCycle int
}

func (c Config) withDefaults() Config {
	if c.MaxLinesPerCycle <= 0 {
		c.MaxLinesPerCycle = DefaultMaxLinesPerCycle
	}
	return c
}

// Observer receives every finalized record, synchronously.
type Observer func(record model.ErrorRecord)

// Display shows the raw text of the latest finalized block.
type Display interface {
	Show(rawText string, hasStackTrace bool)
	Hide()
}

// TailState is the scanner's progress, kept across polls.
type TailState struct {
	Position           int64
	LastModified       time.Time
	LastSize           int64
	LinesReadThisCycle int
}

// CycleResult describes what one Poll did.
type CycleResult struct {
	LinesRead int
	Records   int
	Skipped   bool // nothing changed, or the scanner is inert
	Exhausted bool // every complete line available at the start was read
	Failed    bool // a read error ended the cycle early
}

type subscription struct {
	id       int
	observer Observer
}

// Scanner tails one LineSource and emits a record per error block.
type Scanner struct {
	src       source.LineSource
	cfg       Config
	acc       *block.Accumulator
	state     TailState
	observers []subscription
	nextID    int
	display   Display
	closed    bool
}

// New wraps an open source. A nil source yields an inert scanner.
func New(src source.LineSource, cfg Config) *Scanner {
	return &Scanner{
		src: src,
		cfg: cfg.withDefaults(),
		acc: block.New(),
	}
}

// Open opens the log at path. On failure it still returns a usable, inert
// scanner together with an error wrapping source.ErrResourceUnavailable; the
// scanner never retries.
func Open(path string, cfg Config) (*Scanner, error) {
	src, err := source.Open(path)
	if err != nil {
		return New(nil, cfg), err
	}
	return New(src, cfg), nil
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Scanner) Subscribe(o Observer) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, subscription{id: id, observer: o})
	return func() {
		kept := make([]subscription, 0, len(s.observers))
		for _, sub := range s.observers {
			if sub.id != id {
				kept = append(kept, sub)
			}
		}
		s.observers = kept
	}
}

// SetDisplay sets the collaborator that shows finalized block text.
func (s *Scanner) SetDisplay(d Display) {
	s.display = d
}

// State returns a copy of the tail progress.
func (s *Scanner) State() TailState {
	return s.state
}

// Mode reports whether a block is currently being accumulated.
func (s *Scanner) Mode() Mode {
	if s.acc.InError() {
		return ModeInBlock
	}
	return ModeIdle
}

// PendingText returns the raw text of the block still open, if any.
func (s *Scanner) PendingText() string {
	return s.acc.RawText()
}

// Inert reports whether the scanner has no source to read.
func (s *Scanner) Inert() bool {
	return s.src == nil
}

// Poll runs one bounded read cycle.
func (s *Scanner) Poll() CycleResult {
	return s.cycle(true)
}

// cycle reads up to the line budget. With finalizeAtEnd unset an open block
// survives exhaustion, which lets Drain feed the unterminated last line.
func (s *Scanner) cycle(finalizeAtEnd bool) CycleResult {
	var res CycleResult
	if s.src == nil {
		res.Skipped = true
		return res
	}

	modTime, err := s.src.ModTime()
	if err != nil {
		util.LogWarnf("Failed to stat log source: %v", err)
		res.Skipped = true
		return res
	}
	size, err := s.src.Length()
	if err != nil {
		util.LogWarnf("Failed to read log length: %v", err)
		res.Skipped = true
		return res
	}

	// Unchanged since the last cycle that reached the end: nothing to do.
	if !modTime.After(s.state.LastModified) && size == s.state.LastSize {
		res.Skipped = true
		return res
	}

	s.state.LinesReadThisCycle = 0
	for s.state.LinesReadThisCycle < s.cfg.MaxLinesPerCycle {
		line, err := s.src.ReadLine()
		if err != nil {
			if errors.Is(err, source.ErrEndOfStream) {
				res.Exhausted = true
			} else {
				util.LogErrorf("Failed to read log line at offset %d: %v", s.src.Position(), err)
				res.Failed = true
			}
			break
		}
		s.state.LinesReadThisCycle++
		res.Records += s.feed(line)
	}
	res.LinesRead = s.state.LinesReadThisCycle
	s.state.Position = s.src.Position()

	if !res.Exhausted && !res.Failed && s.state.Position >= size {
		res.Exhausted = true
	}

	// The stamp is recorded only once the end is reached, so writes that
	// land during a budget-limited read are still picked up next cycle.
	if res.Exhausted {
		if finalizeAtEnd && s.acc.InError() {
			res.Records += s.finalize()
		}
		s.state.LastModified = modTime
		s.state.LastSize = size
	}

	if res.LinesRead > 0 {
		util.LogDebugf("Poll cycle: lines=%d records=%d position=%d exhausted=%v",
			res.LinesRead, res.Records, s.state.Position, res.Exhausted)
	}
	return res
}

// Drain reads everything currently available, including a final line that
// lacks its newline, and finalizes any open block. Meant for input that will
// not grow any further.
func (s *Scanner) Drain() CycleResult {
	var total CycleResult
	if s.src == nil {
		total.Skipped = true
		return total
	}

	for {
		res := s.cycle(false)
		total.LinesRead += res.LinesRead
		total.Records += res.Records
		if res.Failed {
			total.Failed = true
			return total
		}
		if res.Exhausted || res.Skipped {
			break
		}
	}

	if rs, ok := s.src.(source.RemainderSource); ok {
		if line, ok := rs.TakeRemainder(); ok {
			total.LinesRead++
			total.Records += s.feed(line)
			s.state.Position = s.src.Position()
		}
	}
	if s.acc.InError() {
		total.Records += s.finalize()
	}
	total.Exhausted = true
	return total
}

// Close releases the source exactly once. Safe on an inert scanner.
func (s *Scanner) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.src == nil {
		return nil
	}
	err := s.src.Close()
	s.src = nil
	return err
}

// feed applies the transition rules to one line and returns the number of
// records it finalized.
func (s *Scanner) feed(line string) int {
	emitted := 0
	if s.acc.InError() {
		if classifier.IsStackFrame(line) {
			if err := s.acc.AddStackFrame(line, classifier.ClassifySource(line)); err != nil {
				util.LogWarnf("Dropped stack frame %q: %v", line, err)
			}
			return 0
		}
		emitted += s.finalize()
	}

	// A line that closed the previous block may open the next one.
	if classifier.IsTrigger(line) {
		s.acc.Open(line)
	}
	return emitted
}

func (s *Scanner) finalize() int {
	record, err := s.acc.Snapshot()
	if err != nil {
		return 0
	}
	for _, sub := range s.observers {
		sub.observer(record)
	}
	if s.display != nil {
		s.display.Show(record.RawText, record.IsLikelyRealError)
	}
	s.acc.Reset()
	return 1
}
