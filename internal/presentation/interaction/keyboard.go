// Package interaction reads single key presses from the terminal.
package interaction

import (
	"errors"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// ErrNotTerminal is returned when stdin is not a terminal.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key  rune
	Type KeyType
}

// KeyType represents the type of key pressed
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEscape
	KeyEnter
)

const (
	keyCtrlC  = 3
	keyEscape = 27
)

// IsInterrupt reports whether the key asks to quit.
func (e KeyEvent) IsInterrupt() bool {
	return e.Type == KeyChar && (e.Key == keyCtrlC || e.Key == 'q' || e.Key == 'Q')
}

// KeyboardReader handles keyboard input in raw mode
type KeyboardReader struct {
	in      io.Reader
	input   chan KeyEvent
	stop    chan struct{}
	once    sync.Once
	restore func() error
}

// NewKeyboardReader switches the terminal behind f to raw mode and starts
// reading key presses from it.
func NewKeyboardReader(f *os.File) (*KeyboardReader, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	restore, err := enableRawMode(fd)
	if err != nil {
		return nil, err
	}
	kr := newKeyboardReader(f)
	kr.restore = restore
	return kr, nil
}

// newKeyboardReader reads keys from r without touching terminal modes.
func newKeyboardReader(r io.Reader) *KeyboardReader {
	kr := &KeyboardReader{
		in:    r,
		input: make(chan KeyEvent, 10),
		stop:  make(chan struct{}),
	}
	go kr.readInput()
	return kr
}

// readInput reads keyboard input in a goroutine. The event channel is closed
// once the input ends.
func (kr *KeyboardReader) readInput() {
	defer close(kr.input)
	buf := make([]byte, 3)

	for {
		n, err := kr.in.Read(buf)
		if n > 0 {
			if event := parseInput(buf[:n]); event != nil {
				select {
				case kr.input <- *event:
				case <-kr.stop:
					return
				}
			}
		}
		if err != nil {
			return
		}
		select {
		case <-kr.stop:
			return
		default:
		}
	}
}

// parseInput parses raw keyboard input. Escape sequences such as arrow keys
// are ignored.
func parseInput(buf []byte) *KeyEvent {
	if len(buf) == 0 {
		return nil
	}

	switch buf[0] {
	case keyCtrlC:
		return &KeyEvent{Key: keyCtrlC, Type: KeyChar}
	case keyEscape:
		if len(buf) == 1 {
			return &KeyEvent{Key: keyEscape, Type: KeyEscape}
		}
		return nil
	case '\r', '\n':
		return &KeyEvent{Key: '\n', Type: KeyEnter}
	}

	return &KeyEvent{Key: rune(buf[0]), Type: KeyChar}
}

// Events returns the keyboard event channel
func (kr *KeyboardReader) Events() <-chan KeyEvent {
	return kr.input
}

// Close stops the keyboard reader and restores the terminal. Safe to call
// more than once.
func (kr *KeyboardReader) Close() error {
	var err error
	kr.once.Do(func() {
		close(kr.stop)
		if kr.restore != nil {
			err = kr.restore()
		}
	})
	return err
}
