package util

import "sync"

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// InitLogger installs the process-wide logger. Later calls replace it and
// close the previous one.
func InitLogger(opts LoggerOptions) error {
	l, err := NewLogger(opts)
	if err != nil {
		return err
	}
	SetLogger(l)
	return nil
}

// SetLogger installs l, closing the logger it replaces. A nil l disables
// logging.
func SetLogger(l *Logger) {
	globalMu.Lock()
	prev := globalLogger
	globalLogger = l
	globalMu.Unlock()
	if prev != nil && prev != l {
		prev.Close()
	}
}

// CloseLogger flushes and removes the global logger.
func CloseLogger() error {
	globalMu.Lock()
	l := globalLogger
	globalLogger = nil
	globalMu.Unlock()
	if l == nil {
		return nil
	}
	return l.Close()
}

// Component returns a logger scoped to name, or a discarding logger when
// none is installed.
func Component(name string) LoggerInterface {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return nopLogger{}
	}
	return globalLogger.WithComponent(name)
}

func current() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

func LogDebugf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Debugf(format, args...)
	}
}

func LogInfof(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Infof(format, args...)
	}
}

func LogWarnf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Warnf(format, args...)
	}
}

func LogErrorf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Errorf(format, args...)
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{})          {}
func (nopLogger) Infof(string, ...interface{})           {}
func (nopLogger) Warnf(string, ...interface{})           {}
func (nopLogger) Errorf(string, ...interface{})          {}
func (nopLogger) Log(LogLevel, string, ...Field)         {}
func (n nopLogger) With(...Field) LoggerInterface        { return n }
func (n nopLogger) WithComponent(string) LoggerInterface { return n }
func (nopLogger) Enabled(LogLevel) bool                  { return false }
