package block

import (
	"testing"

	"github.com/penwyp/go-error-capture/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccumulatorIsIdle(t *testing.T) {
	acc := New()

	assert.False(t, acc.InError())
	assert.Equal(t, 0, acc.Lines())
	assert.Empty(t, acc.RawText())
}

func TestOpenExtractsSummary(t *testing.T) {
	tests := []struct {
		name     string
		trigger  string
		expected string
	}{
		{name: "script_error", trigger: "SCRIPT ERROR: boom", expected: " boom"},
		{name: "plain_error", trigger: "ERROR: something printed", expected: " something printed"},
		{name: "empty_summary", trigger: "ERROR:", expected: ""},
		{name: "repeated_marker", trigger: "ERROR: inner ERROR: again", expected: " inner ERROR: again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := New()
			acc.Open(tt.trigger)

			record, err := acc.Snapshot()
			require.NoError(t, err)
			assert.True(t, acc.InError())
			assert.Equal(t, tt.expected, record.Summary)
			assert.Equal(t, tt.trigger+"\n", record.RawText)
		})
	}
}

func TestAddStackFrame(t *testing.T) {
	acc := New()
	acc.Open("SCRIPT ERROR: boom")

	require.NoError(t, acc.AddStackFrame("   at Foo.cs:10", model.SourceManaged))
	require.NoError(t, acc.AddStackFrame("   at Boo.cs:5", model.SourceManaged))

	record, err := acc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []string{"   at Foo.cs:10", "   at Boo.cs:5"}, record.StackTrace)
	assert.Equal(t, "SCRIPT ERROR: boom\n   at Foo.cs:10\n   at Boo.cs:5\n", record.RawText)
	assert.Equal(t, model.SourceManaged, record.Source)
	assert.True(t, record.IsLikelyRealError)
	assert.Equal(t, 3, acc.Lines())
}

func TestLastFrameWinsSource(t *testing.T) {
	acc := New()
	acc.Open("ERROR: mixed")

	require.NoError(t, acc.AddStackFrame("   at a.gd:1", model.SourceScripted))
	require.NoError(t, acc.AddStackFrame("   at b.cpp:2", model.SourceNative))
	record, err := acc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, model.SourceNative, record.Source)

	require.NoError(t, acc.AddStackFrame("   at <native>", model.SourceUnknown))
	record, err = acc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, model.SourceUnknown, record.Source, "a later unmarked frame overwrites the source")
}

func TestOperationsRequireOpen(t *testing.T) {
	acc := New()

	err := acc.AddStackFrame("   at Foo.cs:1", model.SourceManaged)
	assert.ErrorIs(t, err, ErrBlockNotOpen)

	_, err = acc.Snapshot()
	assert.ErrorIs(t, err, ErrBlockNotOpen)
}

func TestSnapshotDoesNotMutate(t *testing.T) {
	acc := New()
	acc.Open("ERROR: once")
	require.NoError(t, acc.AddStackFrame("   at x.cs:1", model.SourceManaged))

	first, err := acc.Snapshot()
	require.NoError(t, err)
	first.StackTrace[0] = "changed"

	second, err := acc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "   at x.cs:1", second.StackTrace[0])
	assert.True(t, acc.InError())
}

func TestResetIsIdempotent(t *testing.T) {
	acc := New()
	acc.Open("ERROR: a")
	require.NoError(t, acc.AddStackFrame("   at a.cs:1", model.SourceManaged))

	acc.Reset()
	acc.Reset()

	assert.False(t, acc.InError())
	assert.Empty(t, acc.RawText())
	assert.Equal(t, 0, acc.Lines())

	acc.Open("ERROR: b")
	record, err := acc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, model.SourceUnknown, record.Source, "source must not leak between blocks")
	assert.Empty(t, record.StackTrace)
}
