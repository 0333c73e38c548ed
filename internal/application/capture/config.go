package capture

import (
	"errors"
	"time"

	"github.com/penwyp/go-error-capture/internal/config"
	"github.com/penwyp/go-error-capture/internal/core/tail"
)

// CaptureConfig contains everything the orchestrator needs.
type CaptureConfig struct {
	// Log to tail
	LogPath    string
	StartAtEnd bool

	// Polling
	MaxLinesPerCycle int
	PollInterval     time.Duration
	Watch            bool

	// Display settings
	DisplayEnabled bool
	DisplayColor   string
	Timezone       string

	// Sinks
	OutputFormat      string // text, json
	RecordFile        string
	MaxRecordFileSize int64
}

// FromConfig maps loaded settings onto a CaptureConfig.
func FromConfig(c config.Config) *CaptureConfig {
	return &CaptureConfig{
		LogPath:           c.LogPath,
		StartAtEnd:        c.StartAtEnd,
		MaxLinesPerCycle:  c.MaxLinesPerCycle,
		PollInterval:      c.PollInterval,
		Watch:             c.Watch,
		DisplayEnabled:    c.Display.Enabled,
		DisplayColor:      c.Display.Color,
		Timezone:          c.Timezone,
		OutputFormat:      c.Output.Format,
		RecordFile:        c.Output.RecordFile,
		MaxRecordFileSize: c.Output.MaxRecordFileSize,
	}
}

// Validate checks the configuration and fills defaults.
func (c *CaptureConfig) Validate() error {
	if c.LogPath == "" {
		return errors.New("no log file given: pass --file or set log_path in the config")
	}
	if c.MaxLinesPerCycle <= 0 {
		c.MaxLinesPerCycle = tail.DefaultMaxLinesPerCycle
	}
	if c.PollInterval <= 0 {
		c.PollInterval = config.DefaultPollInterval
	}
	if c.DisplayColor == "" {
		c.DisplayColor = config.DefaultDisplayColor
	}
	if c.Timezone == "" {
		c.Timezone = config.DefaultTimezone
	}
	if c.OutputFormat == "" {
		c.OutputFormat = "text"
	}
	return nil
}
