package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkerConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant string
		expected string
	}{
		{name: "error_marker", constant: MarkerError, expected: "ERROR:"},
		{name: "script_error_marker", constant: MarkerScriptError, expected: "SCRIPT ERROR:"},
		{name: "native_extension", constant: ExtNative, expected: ".cpp:"},
		{name: "managed_extension", constant: ExtManaged, expected: ".cs:"},
		{name: "scripted_extension", constant: ExtScripted, expected: ".gd:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.constant)
		})
	}
}

func TestScriptErrorMarkerContainsErrorMarker(t *testing.T) {
	// Summary extraction relies on both triggers sharing the ERROR: token.
	assert.True(t, strings.Contains(MarkerScriptError, MarkerError))
}
