package util

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel orders log severities.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps a config string to a level.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// LogFormat selects how entries are encoded.
type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

// LogEntry is one encoded log line.
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Component string                 `json:"component,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Output is a destination for log entries.
type Output interface {
	Write(entry LogEntry) error
	Close() error
}

// LoggerInterface is what packages log through.
type LoggerInterface interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Log(level LogLevel, msg string, fields ...Field)
	With(fields ...Field) LoggerInterface
	WithComponent(name string) LoggerInterface
	Enabled(level LogLevel) bool
}

// LoggerOptions configures NewLogger.
type LoggerOptions struct {
	Level   string
	File    string    // empty disables file output
	Console bool      // mirror entries to stderr
	Format  LogFormat // defaults to text
}

// shared is the state every derived logger points at.
type shared struct {
	mu      sync.RWMutex
	level   LogLevel
	outputs []Output
	now     func() time.Time
}

// Logger writes leveled entries to its outputs.
type Logger struct {
	core      *shared
	component string
	fields    []Field
}

// NewLogger builds a logger from options. Either a file or the console must
// be enabled.
func NewLogger(opts LoggerOptions) (*Logger, error) {
	level, err := ParseLogLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	format := opts.Format
	if format == "" {
		format = FormatText
	}

	l := &Logger{core: &shared{level: level, now: time.Now}}
	if opts.Console {
		l.AddOutput(NewConsoleOutput(os.Stderr, format))
	}
	if opts.File != "" {
		out, err := NewFileOutput(opts.File, format)
		if err != nil {
			return nil, err
		}
		l.AddOutput(out)
	}
	if !opts.Console && opts.File == "" {
		return nil, errors.New("logger needs a log file or console output")
	}
	return l, nil
}

// NewLoggerWithOutputs is used by tests to log into arbitrary outputs.
func NewLoggerWithOutputs(level LogLevel, outputs ...Output) *Logger {
	return &Logger{core: &shared{level: level, outputs: outputs, now: time.Now}}
}

func (l *Logger) Enabled(level LogLevel) bool {
	l.core.mu.RLock()
	defer l.core.mu.RUnlock()
	return level >= l.core.level
}

func (l *Logger) Log(level LogLevel, msg string, fields ...Field) {
	if !l.Enabled(level) {
		return
	}

	entry := LogEntry{
		Timestamp: l.core.now(),
		Level:     level.String(),
		Component: l.component,
		Message:   msg,
	}
	if n := len(l.fields) + len(fields); n > 0 {
		entry.Fields = make(map[string]interface{}, n)
		for _, f := range l.fields {
			entry.Fields[f.Key] = f.Value
		}
		for _, f := range fields {
			entry.Fields[f.Key] = f.Value
		}
	}

	l.core.mu.RLock()
	defer l.core.mu.RUnlock()
	for _, out := range l.core.outputs {
		if err := out.Write(entry); err != nil {
			log.Printf("Failed to write log entry: %v", err)
		}
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Log(LevelDebug, fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.Log(LevelInfo, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Log(LevelWarn, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Log(LevelError, fmt.Sprintf(format, args...))
}

// With returns a logger that adds fields to every entry.
func (l *Logger) With(fields ...Field) LoggerInterface {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Logger{core: l.core, component: l.component, fields: merged}
}

// WithComponent tags entries with the emitting package.
func (l *Logger) WithComponent(name string) LoggerInterface {
	return &Logger{core: l.core, component: name, fields: l.fields}
}

func (l *Logger) SetLevel(level LogLevel) {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	l.core.level = level
}

func (l *Logger) AddOutput(out Output) {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	l.core.outputs = append(l.core.outputs, out)
}

// Close closes every output and returns the joined errors.
func (l *Logger) Close() error {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	var errs []error
	for _, out := range l.core.outputs {
		if err := out.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	l.core.outputs = nil
	return errors.Join(errs...)
}

// sortedFieldKeys keeps text output stable.
func sortedFieldKeys(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
