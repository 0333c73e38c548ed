package model

import (
	"fmt"
	"strings"
)

// ScriptSource identifies the subsystem that produced a stack frame.
type ScriptSource uint8

const (
	SourceUnknown ScriptSource = iota
	SourceNative
	SourceScripted
	SourceManaged
)

var sourceNames = [...]string{
	SourceUnknown:  "Unknown",
	SourceNative:   "Native",
	SourceScripted: "Scripted",
	SourceManaged:  "Managed",
}

func (s ScriptSource) String() string {
	if int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return fmt.Sprintf("ScriptSource(%d)", uint8(s))
}

// MarshalText encodes the source by name so JSON and TOML output stay readable.
func (s ScriptSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText, case-insensitively.
func (s *ScriptSource) UnmarshalText(text []byte) error {
	parsed, err := ParseScriptSource(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseScriptSource converts a source name back into a ScriptSource.
func ParseScriptSource(name string) (ScriptSource, error) {
	for i, n := range sourceNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return ScriptSource(i), nil
		}
	}
	return SourceUnknown, fmt.Errorf("unknown script source %q", name)
}

// ErrorRecord is the immutable result of one finalized error block.
type ErrorRecord struct {
	Source            ScriptSource `json:"source"`
	RawText           string       `json:"raw_text"`
	Summary           string       `json:"summary"`
	StackTrace        []string     `json:"stack_trace"`
	IsLikelyRealError bool         `json:"is_likely_real_error"`
}

// NewErrorRecord builds a record from a block snapshot. The stack trace is
// copied so later changes to the caller's slice cannot leak into the record.
func NewErrorRecord(source ScriptSource, rawText, summary string, stackTrace []string) ErrorRecord {
	stack := make([]string, len(stackTrace))
	copy(stack, stackTrace)
	return ErrorRecord{
		Source:            source,
		RawText:           rawText,
		Summary:           summary,
		StackTrace:        stack,
		IsLikelyRealError: len(stack) > 0,
	}
}

// String renders the record as a human readable report.
func (r ErrorRecord) String() string {
	var b strings.Builder
	b.WriteString("A runtime error has occurred:\n")
	fmt.Fprintf(&b, "Script Source: %s\n", r.Source)
	fmt.Fprintf(&b, "Summary: %s\n", r.Summary)
	b.WriteString("Stack Trace:\n")
	for _, frame := range r.StackTrace {
		b.WriteString(frame)
		b.WriteByte('\n')
	}
	if !r.IsLikelyRealError {
		b.WriteString("\n" + NotRealErrorNotice + "\n")
	}
	return b.String()
}
