// Package config loads go-error-capture settings from TOML or YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/penwyp/go-error-capture/internal/util"
)

const (
	DefaultDir              = "~/.go-error-capture"
	DefaultMaxLinesPerCycle = 500
	DefaultPollInterval     = 250 * time.Millisecond
	DefaultDisplayColor     = "#FF0000"
	DefaultLogLevel         = "info"
	DefaultLogFile          = DefaultDir + "/logs/app.log"
	DefaultTimezone         = "Local"

	minPollInterval = 10 * time.Millisecond
)

// Candidate file names tried, in order, when no path is given.
var defaultFileNames = []string{"config.toml", "config.yaml", "config.yml"}

var colorPattern = regexp.MustCompile(`^(#[0-9A-Fa-f]{6}|#[0-9A-Fa-f]{3}|[0-9]{1,3})$`)

type DisplayConfig struct {
	Enabled bool
	Color   string
}

type OutputConfig struct {
	Format            string
	RecordFile        string
	MaxRecordFileSize int64
}

type LogConfig struct {
	Level string
	File  string
}

// Config is the resolved configuration.
type Config struct {
	LogPath          string
	MaxLinesPerCycle int
	PollInterval     time.Duration
	Watch            bool
	StartAtEnd       bool
	Timezone         string
	Display          DisplayConfig
	Output           OutputConfig
	Log              LogConfig

	// Path of the file the values came from, empty when only defaults apply.
	LoadedFrom string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxLinesPerCycle: DefaultMaxLinesPerCycle,
		PollInterval:     DefaultPollInterval,
		Watch:            true,
		Timezone:         DefaultTimezone,
		Display:          DisplayConfig{Enabled: true, Color: DefaultDisplayColor},
		Output:           OutputConfig{Format: "text"},
		Log:              LogConfig{Level: DefaultLogLevel, File: DefaultLogFile},
	}
}

// rawConfig mirrors the file layout. Pointers tell unset keys from zero
// values so defaults survive partial files.
type rawConfig struct {
	LogPath          *string    `toml:"log_path" yaml:"log_path"`
	MaxLinesPerCycle *int       `toml:"max_lines_per_cycle" yaml:"max_lines_per_cycle"`
	PollInterval     *string    `toml:"poll_interval" yaml:"poll_interval"`
	Watch            *bool      `toml:"watch" yaml:"watch"`
	StartAtEnd       *bool      `toml:"start_at_end" yaml:"start_at_end"`
	Timezone         *string    `toml:"timezone" yaml:"timezone"`
	Display          rawDisplay `toml:"display" yaml:"display"`
	Output           rawOutput  `toml:"output" yaml:"output"`
	Log              rawLog     `toml:"log" yaml:"log"`
}

type rawDisplay struct {
	Enabled *bool   `toml:"enabled" yaml:"enabled"`
	Color   *string `toml:"color" yaml:"color"`
}

type rawOutput struct {
	Format            *string `toml:"format" yaml:"format"`
	RecordFile        *string `toml:"record_file" yaml:"record_file"`
	MaxRecordFileSize *int64  `toml:"max_record_file_size" yaml:"max_record_file_size"`
}

type rawLog struct {
	Level *string `toml:"level" yaml:"level"`
	File  *string `toml:"file" yaml:"file"`
}

// Load reads the config at path. An empty path searches DefaultDir; a
// missing file yields the defaults. The result is validated and its paths
// expanded.
func Load(path string) (Config, error) {
	cfg := Default()

	resolved, err := resolve(path)
	if err != nil {
		return Config{}, err
	}
	if resolved == "" {
		return cfg, cfg.finish()
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && strings.TrimSpace(path) == "" {
			return cfg, cfg.finish()
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	raw, err := decode(resolved, data)
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	if err := cfg.apply(raw); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", resolved, err)
	}
	cfg.LoadedFrom = resolved

	util.LogDebugf("Loaded config from %s", resolved)
	return cfg, cfg.finish()
}

// resolve returns the file to read. An explicit path is returned as is so a
// missing file surfaces as an error; with no path the first existing default
// candidate wins and "" means none exist.
func resolve(path string) (string, error) {
	if strings.TrimSpace(path) != "" {
		return ExpandPath(path)
	}
	dir, err := ExpandPath(DefaultDir)
	if err != nil {
		return "", err
	}
	for _, name := range defaultFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

func decode(path string, data []byte) (rawConfig, error) {
	var raw rawConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return raw, err
		}
	case ".toml", "":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&raw); err != nil {
			return raw, err
		}
	default:
		return raw, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return raw, nil
}

func (c *Config) apply(raw rawConfig) error {
	setString(&c.LogPath, raw.LogPath)
	if raw.MaxLinesPerCycle != nil {
		c.MaxLinesPerCycle = *raw.MaxLinesPerCycle
	}
	if raw.PollInterval != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*raw.PollInterval))
		if err != nil {
			return fmt.Errorf("poll_interval: %w", err)
		}
		c.PollInterval = d
	}
	setBool(&c.Watch, raw.Watch)
	setBool(&c.StartAtEnd, raw.StartAtEnd)
	setString(&c.Timezone, raw.Timezone)

	setBool(&c.Display.Enabled, raw.Display.Enabled)
	setString(&c.Display.Color, raw.Display.Color)

	setString(&c.Output.Format, raw.Output.Format)
	setString(&c.Output.RecordFile, raw.Output.RecordFile)
	if raw.Output.MaxRecordFileSize != nil {
		c.Output.MaxRecordFileSize = *raw.Output.MaxRecordFileSize
	}

	setString(&c.Log.Level, raw.Log.Level)
	setString(&c.Log.File, raw.Log.File)
	return nil
}

// finish validates and expands paths.
func (c *Config) finish() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.ExpandPaths()
}

// Validate fills empty values with defaults and rejects invalid ones.
func (c *Config) Validate() error {
	if c.MaxLinesPerCycle == 0 {
		c.MaxLinesPerCycle = DefaultMaxLinesPerCycle
	}
	if c.MaxLinesPerCycle < 0 {
		return fmt.Errorf("max_lines_per_cycle must be positive, got %d", c.MaxLinesPerCycle)
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.PollInterval < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval)
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.Display.Color == "" {
		c.Display.Color = DefaultDisplayColor
	}
	if !colorPattern.MatchString(c.Display.Color) {
		return fmt.Errorf("display.color %q is neither a hex color nor an ANSI color number", c.Display.Color)
	}
	switch strings.ToLower(c.Output.Format) {
	case "":
		c.Output.Format = "text"
	case "text", "json":
		c.Output.Format = strings.ToLower(c.Output.Format)
	default:
		return fmt.Errorf("output.format must be text or json, got %q", c.Output.Format)
	}
	if c.Output.MaxRecordFileSize < 0 {
		return fmt.Errorf("output.max_record_file_size must not be negative")
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if _, err := util.ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.File == "" {
		c.Log.File = DefaultLogFile
	}
	return nil
}

// ExpandPaths resolves "~" and relative paths.
func (c *Config) ExpandPaths() error {
	for _, p := range []*string{&c.LogPath, &c.Output.RecordFile, &c.Log.File} {
		if *p == "" {
			continue
		}
		expanded, err := ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// ExpandPath turns "~/x" into an absolute path under the home directory.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
