package model

// Trigger markers that open an error block when a line starts with them.
const (
	MarkerError       = "ERROR:"
	MarkerScriptError = "SCRIPT ERROR:"
)

// Filename-extension markers embedded in stack frame text.
const (
	ExtNative   = ".cpp:"
	ExtManaged  = ".cs:"
	ExtScripted = ".gd:"
)

// NotRealErrorNotice prefixes blocks that carried no stack trace.
const NotRealErrorNotice = "This message may not be an actual script error. It could be user output or a system log without a stack trace."

// FileEvent is a change notification for the tailed file
type FileEvent struct {
	Path      string
	Operation string
}
