// Package capture wires the tail scanner to its sinks, display and file
// watcher, and drives the poll loop.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/penwyp/go-error-capture/internal/core/model"
	"github.com/penwyp/go-error-capture/internal/core/tail"
	"github.com/penwyp/go-error-capture/internal/data/source"
	"github.com/penwyp/go-error-capture/internal/monitoring"
	"github.com/penwyp/go-error-capture/internal/output"
	"github.com/penwyp/go-error-capture/internal/presentation/display"
	"github.com/penwyp/go-error-capture/internal/presentation/interaction"
	"github.com/penwyp/go-error-capture/internal/util"
)

// Orchestrator coordinates all components for the watch command
type Orchestrator struct {
	config *CaptureConfig
	log    util.LoggerInterface

	// Core components
	scanner *tail.Scanner
	sink    *output.Multi
	state   StateStore

	// UI components
	display tail.Display
	stdout  io.Writer

	// Monitoring
	watcher       FileMonitor
	watcherCustom bool

	// Keyboard
	keys       KeySource
	keysCustom bool

	ctx context.Context
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithStdout redirects record output, used by tests.
func WithStdout(w io.Writer) Option {
	return func(o *Orchestrator) { o.stdout = w }
}

// WithDisplay replaces the terminal display.
func WithDisplay(d tail.Display) Option {
	return func(o *Orchestrator) { o.display = d }
}

// WithFileMonitor replaces the fsnotify watcher.
func WithFileMonitor(m FileMonitor) Option {
	return func(o *Orchestrator) {
		o.watcher = m
		o.watcherCustom = true
	}
}

// WithKeySource replaces the raw-mode stdin reader.
func WithKeySource(k KeySource) Option {
	return func(o *Orchestrator) {
		o.keys = k
		o.keysCustom = true
	}
}

// NewOrchestrator opens the log and builds the pipeline. A log that cannot be
// opened is reported here; capture does not retry it.
func NewOrchestrator(config *CaptureConfig, opts ...Option) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := util.InitializeTimeProvider(config.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize timezone: %w", err)
	}
	format, err := output.ParseFormat(config.OutputFormat)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		config: config,
		log:    util.Component("capture"),
		state:  NewStateManager(),
		stdout: os.Stdout,
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(o)
	}

	src, err := source.Open(config.LogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	if config.StartAtEnd {
		if err := src.SkipToEnd(); err != nil {
			src.Close()
			return nil, fmt.Errorf("failed to seek to end of log: %w", err)
		}
	}

	if o.display == nil && config.DisplayEnabled {
		o.display = display.NewTerminalDisplay(os.Stderr, display.Config{Color: config.DisplayColor})
	}

	sinks, err := o.buildSinks(format)
	if err != nil {
		src.Close()
		return nil, err
	}
	o.sink = output.NewMulti(sinks...)

	o.scanner = tail.New(src, tail.Config{MaxLinesPerCycle: config.MaxLinesPerCycle})
	o.scanner.Subscribe(o.handleRecord)
	if o.display != nil {
		o.scanner.SetDisplay(o.display)
	}
	return o, nil
}

// buildSinks picks the record outputs. With the panel on and text output the
// report would duplicate what the panel shows, so stdout is left out unless
// it is redirected.
func (o *Orchestrator) buildSinks(format output.Format) ([]output.Output, error) {
	var sinks []output.Output
	if format == output.FormatJSON || o.display == nil || !isTerminal(o.stdout) {
		sinks = append(sinks, output.NewStream(o.stdout, format))
	}
	if o.config.RecordFile != "" {
		var fileOpts []output.FileOption
		if o.config.MaxRecordFileSize > 0 {
			fileOpts = append(fileOpts, output.WithMaxSize(o.config.MaxRecordFileSize))
		}
		f, err := output.NewFile(o.config.RecordFile, fileOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to open record file: %w", err)
		}
		sinks = append(sinks, f)
	}
	return sinks, nil
}

// Run polls until ctx is cancelled, then releases every resource.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.ctx = ctx
	defer o.Close()

	if info, err := util.GetFileInfo(o.config.LogPath); err == nil {
		o.log.Infof("Capturing errors from %s (%s, every %s, %d lines per cycle)",
			o.config.LogPath, util.FormatBytes(info.Size), o.config.PollInterval, o.config.MaxLinesPerCycle)
	}

	o.poll()

	if o.config.Watch && o.watcher == nil {
		w, err := monitoring.NewFileWatcher(o.config.LogPath)
		if err != nil {
			o.log.Warnf("File watching unavailable, polling only: %v", err)
		} else {
			o.watcher = w
		}
	}
	var events <-chan model.FileEvent
	if o.watcher != nil {
		events = o.watcher.Events()
	}

	if o.keys == nil && o.config.DisplayEnabled && o.display != nil && isTerminal(os.Stdin) {
		kr, err := interaction.NewKeyboardReader(os.Stdin)
		if err != nil {
			o.log.Warnf("Keyboard input unavailable, the panel cannot be dismissed: %v", err)
		} else {
			o.keys = kr
			o.log.Infof("Press d, Enter or Esc to dismiss the error panel, q to quit")
		}
	}
	var keys <-chan interaction.KeyEvent
	if o.keys != nil {
		keys = o.keys.Events()
	}

	ticker := time.NewTicker(o.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			stats := o.state.Snapshot()
			o.log.Infof("Stopping capture after %s: %d records (%d with stack traces) from %d lines, read up to %s",
				util.FormatDuration(util.GetTimeProvider().Now().Sub(stats.StartedAt)),
				stats.Records, stats.LikelyReal, stats.LinesRead, util.FormatBytes(stats.Position))
			return nil

		case <-ticker.C:
			o.poll()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			o.log.Debugf("File event %s on %s", ev.Operation, ev.Path)
			o.poll()

		case key, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			if key.IsInterrupt() {
				o.log.Infof("Quit requested from keyboard")
				return nil
			}
			o.handleKey(key)
		}
	}
}

// Stats returns the progress so far.
func (o *Orchestrator) Stats() Stats {
	return o.state.Snapshot()
}

func (o *Orchestrator) poll() {
	res := o.scanner.Poll()
	o.state.RecordCycle(res.LinesRead, res.Skipped, o.scanner.State().Position)
}

// handleKey dismisses the panel on d, Enter or Esc.
func (o *Orchestrator) handleKey(key interaction.KeyEvent) {
	if o.display == nil {
		return
	}
	switch {
	case key.Type == interaction.KeyEnter, key.Type == interaction.KeyEscape,
		key.Type == interaction.KeyChar && (key.Key == 'd' || key.Key == 'D'):
		o.display.Hide()
	}
}

func (o *Orchestrator) handleRecord(record model.ErrorRecord) {
	o.state.RecordError(record)
	if err := o.sink.Write(o.ctx, record); err != nil {
		o.log.Warnf("Failed to deliver error record: %v", err)
	}
}

// Close releases the scanner, sinks and watcher.
func (o *Orchestrator) Close() error {
	var errs []error
	if o.scanner != nil {
		errs = append(errs, o.scanner.Close())
	}
	if o.sink != nil {
		errs = append(errs, o.sink.Close())
		o.sink = output.NewMulti()
	}
	if o.watcher != nil && !o.watcherCustom {
		errs = append(errs, o.watcher.Close())
		o.watcher = nil
	}
	if o.keys != nil && !o.keysCustom {
		errs = append(errs, o.keys.Close())
		o.keys = nil
	}
	return errors.Join(errs...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
