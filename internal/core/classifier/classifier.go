// Package classifier recognizes stack-trace continuation lines and infers the
// runtime that produced them.
package classifier

import (
	"regexp"
	"strings"

	"github.com/penwyp/go-error-capture/internal/core/model"
)

// stackFramePattern matches one or more leading whitespace characters
// followed by the literal "at".
var stackFramePattern = regexp.MustCompile(`^\s+at`)

// sourceMarkers is checked in order; the first marker found wins.
var sourceMarkers = []struct {
	marker string
	source model.ScriptSource
}{
	{model.ExtNative, model.SourceNative},
	{model.ExtManaged, model.SourceManaged},
	{model.ExtScripted, model.SourceScripted},
}

// IsStackFrame reports whether line is a stack-trace continuation line.
func IsStackFrame(line string) bool {
	return stackFramePattern.MatchString(line)
}

// ClassifySource returns the runtime a frame line belongs to, or
// SourceUnknown when no extension marker is present.
func ClassifySource(line string) model.ScriptSource {
	for _, m := range sourceMarkers {
		if strings.Contains(line, m.marker) {
			return m.source
		}
	}
	return model.SourceUnknown
}

// IsTrigger reports whether line opens a new error block.
func IsTrigger(line string) bool {
	return strings.HasPrefix(line, model.MarkerError) || strings.HasPrefix(line, model.MarkerScriptError)
}
