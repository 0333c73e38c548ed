package tail

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-error-capture/internal/core/classifier"
	"github.com/penwyp/go-error-capture/internal/core/model"
	"github.com/penwyp/go-error-capture/internal/data/source"
	"github.com/penwyp/go-error-capture/internal/testing/fixtures"
)

type recorder struct {
	records []model.ErrorRecord
	events  []string
}

func (r *recorder) observe(record model.ErrorRecord) {
	r.records = append(r.records, record)
	r.events = append(r.events, "observer")
}

type fakeDisplay struct {
	rec    *recorder
	shown  []string
	traced []bool
	hidden int
}

func (d *fakeDisplay) Show(rawText string, hasStackTrace bool) {
	d.shown = append(d.shown, rawText)
	d.traced = append(d.traced, hasStackTrace)
	if d.rec != nil {
		d.rec.events = append(d.rec.events, "display")
	}
}

func (d *fakeDisplay) Hide() { d.hidden++ }

func newScanner(t *testing.T, maxLines int) (*Scanner, *source.MemorySource, *recorder) {
	t.Helper()
	src := source.NewMemorySource()
	s := New(src, Config{MaxLinesPerCycle: maxLines})
	rec := &recorder{}
	s.Subscribe(rec.observe)
	return s, src, rec
}

func TestConfigDefaults(t *testing.T) {
	assert.Equal(t, DefaultMaxLinesPerCycle, Config{}.withDefaults().MaxLinesPerCycle)
	assert.Equal(t, DefaultMaxLinesPerCycle, Config{MaxLinesPerCycle: -3}.withDefaults().MaxLinesPerCycle)
	assert.Equal(t, 7, Config{MaxLinesPerCycle: 7}.withDefaults().MaxLinesPerCycle)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "Idle", ModeIdle.String())
	assert.Equal(t, "InBlock", ModeInBlock.String())
	assert.Equal(t, "Unknown", Mode(9).String())
}

func TestPollCompletesBlockOnTerminator(t *testing.T) {
	s, src, rec := newScanner(t, 0)
	src.AppendLines("SCRIPT ERROR: boom", "   at foo.gd:10", "   at bar.cs:20", "normal line")

	res := s.Poll()

	require.Len(t, rec.records, 1)
	r := rec.records[0]
	assert.Equal(t, model.SourceManaged, r.Source)
	assert.Equal(t, " boom", r.Summary)
	assert.Equal(t, []string{"   at foo.gd:10", "   at bar.cs:20"}, r.StackTrace)
	assert.Equal(t, "SCRIPT ERROR: boom\n   at foo.gd:10\n   at bar.cs:20\n", r.RawText)
	assert.True(t, r.IsLikelyRealError)

	assert.Equal(t, 4, res.LinesRead)
	assert.Equal(t, 1, res.Records)
	assert.True(t, res.Exhausted)
	assert.Equal(t, ModeIdle, s.Mode())
}

func TestPollBlockWithoutTrace(t *testing.T) {
	s, src, rec := newScanner(t, 0)
	src.AppendLines("ERROR: x", "hello")

	s.Poll()

	require.Len(t, rec.records, 1)
	r := rec.records[0]
	assert.Equal(t, model.SourceUnknown, r.Source)
	assert.Equal(t, " x", r.Summary)
	assert.Empty(t, r.StackTrace)
	assert.NotNil(t, r.StackTrace)
	assert.Equal(t, "ERROR: x\n", r.RawText)
	assert.False(t, r.IsLikelyRealError)
}

func TestPollAdjacentBlocks(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected []string
	}{
		{
			name:     "with_frames",
			lines:    []string{"ERROR: first", "   at a.gd:1", "SCRIPT ERROR: second", "   at b.cs:2", "tail"},
			expected: []string{"ERROR: first\n   at a.gd:1\n", "SCRIPT ERROR: second\n   at b.cs:2\n"},
		},
		{
			name:     "bare_triggers",
			lines:    []string{"ERROR: a", "ERROR: b", "noise"},
			expected: []string{"ERROR: a\n", "ERROR: b\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, src, rec := newScanner(t, 0)
			src.AppendLines(tt.lines...)

			s.Poll()

			require.Len(t, rec.records, len(tt.expected))
			for i, raw := range tt.expected {
				assert.Equal(t, raw, rec.records[i].RawText)
			}
		})
	}
}

func TestPollFinalizesOpenBlockAtExhaustion(t *testing.T) {
	s, src, rec := newScanner(t, 0)
	src.AppendLines("SCRIPT ERROR: x", "   at engine.cpp:1")

	res := s.Poll()

	assert.True(t, res.Exhausted)
	require.Len(t, rec.records, 1)
	assert.Equal(t, model.SourceNative, rec.records[0].Source)
	assert.Equal(t, ModeIdle, s.Mode())
}

func TestPollSourceFollowsLastFrame(t *testing.T) {
	s, src, rec := newScanner(t, 0)
	src.AppendLines("ERROR: mixed", "   at a.cs:1", "   at <unknown>", "done")

	s.Poll()

	require.Len(t, rec.records, 1)
	assert.Equal(t, model.SourceUnknown, rec.records[0].Source)
	assert.True(t, rec.records[0].IsLikelyRealError)
}

func TestPollIgnoresOrphanFrames(t *testing.T) {
	s, src, rec := newScanner(t, 0)
	src.AppendLines("   at a.gd:1", "   at b.gd:2", "ordinary")

	s.Poll()

	assert.Empty(t, rec.records)
	assert.Equal(t, ModeIdle, s.Mode())
}

func TestPollBudgetCutoffResumes(t *testing.T) {
	s, src, rec := newScanner(t, 2)
	src.AppendLines("ERROR: slow", "   at a.gd:1", "   at b.gd:2", "   at c.gd:3", "normal")

	first := s.Poll()
	assert.Equal(t, 2, first.LinesRead)
	assert.False(t, first.Exhausted)
	assert.Empty(t, rec.records)
	assert.Equal(t, ModeInBlock, s.Mode())
	assert.True(t, s.State().LastModified.IsZero(), "stamp is only recorded at exhaustion")

	second := s.Poll()
	assert.Equal(t, 2, second.LinesRead)
	assert.False(t, second.Exhausted)
	assert.Empty(t, rec.records)

	third := s.Poll()
	assert.Equal(t, 1, third.LinesRead)
	assert.True(t, third.Exhausted)
	require.Len(t, rec.records, 1)
	assert.Len(t, rec.records[0].StackTrace, 3)
	assert.Equal(t, model.SourceScripted, rec.records[0].Source)
}

func TestPollBudgetExactlyAtEndIsExhausted(t *testing.T) {
	s, src, rec := newScanner(t, 2)
	src.AppendLines("ERROR: edge", "   at a.gd:1")

	res := s.Poll()

	assert.True(t, res.Exhausted)
	assert.Len(t, rec.records, 1)
	assert.False(t, s.State().LastModified.IsZero())
}

func TestPollIdempotentWhenUnchanged(t *testing.T) {
	s, src, rec := newScanner(t, 0)
	src.AppendLines("ERROR: once", "   at a.gd:1", "next")

	s.Poll()
	require.Len(t, rec.records, 1)
	before := s.State()

	res := s.Poll()

	assert.True(t, res.Skipped)
	assert.Zero(t, res.LinesRead)
	assert.Equal(t, before.Position, s.State().Position)
	assert.True(t, before.LastModified.Equal(s.State().LastModified))
	assert.Equal(t, before.LastSize, s.State().LastSize)
	assert.Len(t, rec.records, 1)
}

func TestPollReadsGrowthWithPinnedModTime(t *testing.T) {
	s, src, rec := newScanner(t, 0)
	src.SetModTime(time.Unix(1700000000, 0))
	src.AppendLines("quiet")
	s.Poll()

	src.AppendLines("ERROR: same second", "   at a.gd:1")
	res := s.Poll()

	assert.False(t, res.Skipped, "a size change is enough to read")
	assert.Len(t, rec.records, 1)
}

func TestPollHoldsPartialLine(t *testing.T) {
	s, src, rec := newScanner(t, 0)
	src.Append("ERROR: split")

	res := s.Poll()
	assert.Zero(t, res.LinesRead)
	assert.Empty(t, rec.records)
	assert.Equal(t, int64(0), s.State().Position)

	src.Append(" line\n   at a.cs:3\n")
	s.Poll()

	require.Len(t, rec.records, 1)
	assert.Equal(t, " split line", rec.records[0].Summary)
}

func TestObserversThenDisplay(t *testing.T) {
	s, src, rec := newScanner(t, 0)
	other := &recorder{}
	s.Subscribe(other.observe)
	display := &fakeDisplay{rec: rec}
	s.SetDisplay(display)

	src.AppendLines("ERROR: traced", "   at a.gd:1", "ERROR: bare", "plain")
	s.Poll()

	assert.Len(t, rec.records, 2)
	assert.Len(t, other.records, 2)
	assert.Equal(t, []string{"observer", "display", "observer", "display"}, rec.events)
	assert.Equal(t, []string{"ERROR: traced\n   at a.gd:1\n", "ERROR: bare\n"}, display.shown)
	assert.Equal(t, []bool{true, false}, display.traced)
	assert.Zero(t, display.hidden)
}

func TestUnsubscribe(t *testing.T) {
	s, src, rec := newScanner(t, 0)
	late := &recorder{}
	unsubscribe := s.Subscribe(late.observe)

	src.AppendLines("ERROR: one", "x")
	s.Poll()
	unsubscribe()
	unsubscribe()

	src.AppendLines("ERROR: two", "y")
	s.Poll()

	assert.Len(t, rec.records, 2)
	assert.Len(t, late.records, 1)
}

func TestUnsubscribeDuringDelivery(t *testing.T) {
	s, src, rec := newScanner(t, 0)
	var unsubscribe func()
	calls := 0
	unsubscribe = s.Subscribe(func(model.ErrorRecord) {
		calls++
		unsubscribe()
	})
	tail := &recorder{}
	s.Subscribe(tail.observe)

	src.AppendLines("ERROR: a", "ERROR: b", "z")
	s.Poll()

	assert.Equal(t, 1, calls)
	assert.Len(t, rec.records, 2)
	assert.Len(t, tail.records, 2)
}

func TestDrainIncludesUnterminatedTail(t *testing.T) {
	s, src, rec := newScanner(t, 1)
	src.Append("noise\nSCRIPT ERROR: last\n   at a.cs:9")

	res := s.Drain()

	assert.True(t, res.Exhausted)
	assert.Equal(t, 3, res.LinesRead)
	require.Len(t, rec.records, 1)
	assert.Equal(t, []string{"   at a.cs:9"}, rec.records[0].StackTrace)
	assert.Equal(t, ModeIdle, s.Mode())
}

func TestInertScanner(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "missing.log"), Config{})

	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrResourceUnavailable)
	require.NotNil(t, s)
	assert.True(t, s.Inert())

	rec := &recorder{}
	s.Subscribe(rec.observe)
	assert.True(t, s.Poll().Skipped)
	assert.True(t, s.Drain().Skipped)
	assert.Empty(t, rec.records)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

type countingSource struct {
	*source.MemorySource
	closes int
}

func (c *countingSource) Close() error {
	c.closes++
	return c.MemorySource.Close()
}

func TestCloseReleasesOnce(t *testing.T) {
	src := &countingSource{MemorySource: source.NewMemorySource()}
	s := New(src, Config{})

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, src.closes)
	assert.True(t, s.Poll().Skipped)
}

type failingSource struct {
	*source.MemorySource
}

var errDisk = errors.New("disk gone")

func (f *failingSource) ReadLine() (string, error) {
	return "", errDisk
}

func TestPollReadFailure(t *testing.T) {
	src := &failingSource{MemorySource: source.NewMemorySource()}
	src.AppendLines("ERROR: never read")
	s := New(src, Config{})

	res := s.Poll()

	assert.True(t, res.Failed)
	assert.False(t, res.Exhausted)
	assert.True(t, s.State().LastModified.IsZero())

	drained := s.Drain()
	assert.True(t, drained.Failed)
}

// chunkLog splits generated lines into appends. Splits never fall before a
// stack frame or inside one, so no block straddles an exhausted poll.
func chunkLog(gen *fixtures.LogGenerator, lines []string) []string {
	var chunks []string
	var current strings.Builder
	for _, line := range lines {
		frame := classifier.IsStackFrame(line)
		if !frame && current.Len() > 0 && gen.Intn(3) == 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if !frame && len(line) > 1 && gen.Intn(4) == 0 {
			cut := 1 + gen.Intn(len(line)-1)
			current.WriteString(line[:cut])
			chunks = append(chunks, current.String())
			current.Reset()
			current.WriteString(line[cut:])
			current.WriteString("\n")
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func TestNoLossNoDuplication(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		gen := fixtures.NewLogGenerator(seed)
		lines, blocks := gen.Generate(12)
		budget := 1 + gen.Intn(6)

		s, src, rec := newScanner(t, budget)
		for _, chunk := range chunkLog(gen, lines) {
			src.Append(chunk)
			for i := 0; i < len(lines)+2; i++ {
				if res := s.Poll(); res.Exhausted || res.Skipped {
					break
				}
			}
		}

		var want, got strings.Builder
		for _, b := range blocks {
			want.WriteString(b.RawText())
		}
		for _, r := range rec.records {
			got.WriteString(r.RawText)
		}
		got.WriteString(s.PendingText())

		require.Equal(t, want.String(), got.String(), "seed %d budget %d", seed, budget)
		require.Len(t, rec.records, len(blocks), "seed %d", seed)
		for i, b := range blocks {
			assert.Equal(t, b.Summary(), rec.records[i].Summary, "seed %d block %d", seed, i)
			assert.Equal(t, b.Source, rec.records[i].Source, "seed %d block %d", seed, i)
			assert.Equal(t, len(b.Frames) > 0, rec.records[i].IsLikelyRealError)
		}
	}
}

func TestScannerOverGrowingFile(t *testing.T) {
	w := fixtures.NewLogWriter(t.TempDir())
	path, err := w.Create("godot.log")
	require.NoError(t, err)

	s, err := Open(path, Config{MaxLinesPerCycle: 3})
	require.NoError(t, err)
	defer s.Close()
	rec := &recorder{}
	s.Subscribe(rec.observe)

	require.NoError(t, w.AppendLines("godot.log", "boot", "SCRIPT ERROR: first", "   at: _ready (res://main.gd:4)"))
	require.NoError(t, w.AppendRaw("godot.log", "more noise\nERROR: sec"))

	for i := 0; i < 5; i++ {
		if s.Poll().Exhausted {
			break
		}
	}
	require.Len(t, rec.records, 1)
	assert.Equal(t, model.SourceScripted, rec.records[0].Source)

	require.NoError(t, w.AppendLines("godot.log", "ond", "   at engine.cpp:77", "after"))
	for i := 0; i < 5; i++ {
		if s.Poll().Exhausted {
			break
		}
	}

	require.Len(t, rec.records, 2)
	assert.Equal(t, " second", rec.records[1].Summary)
	assert.Equal(t, model.SourceNative, rec.records[1].Source)
}
