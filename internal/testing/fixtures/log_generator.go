// Package fixtures generates engine-style log output for tests.
package fixtures

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/penwyp/go-error-capture/internal/core/model"
)

// Block is one generated error block and the record it should produce.
type Block struct {
	Trigger string
	Frames  []string
	Source  model.ScriptSource
}

// Lines returns the trigger followed by its frames.
func (b Block) Lines() []string {
	return append([]string{b.Trigger}, b.Frames...)
}

// RawText returns the block text exactly as a scanner accumulates it.
func (b Block) RawText() string {
	return strings.Join(b.Lines(), "\n") + "\n"
}

// Summary returns the text after the first "ERROR:" of the trigger.
func (b Block) Summary() string {
	idx := strings.Index(b.Trigger, model.MarkerError)
	if idx < 0 {
		return ""
	}
	return b.Trigger[idx+len(model.MarkerError):]
}

var noiseLines = []string{
	"Godot Engine v4.2.2.stable.mono.official.15073afe3 - https://godotengine.org",
	"Vulkan API 1.3.242 - Forward+ - Using Vulkan Device #0: NVIDIA GeForce RTX 3070",
	"player spawned at 12,4",
	"WARNING: Texture 'res://icon.svg' imported with lossy compression",
	"Loading scene res://levels/level_01.tscn",
	"",
	"save slot 2 written (14 KB)",
}

var triggerTemplates = []string{
	"ERROR: Condition \"p_index < 0\" is true. Returning: nullptr",
	"SCRIPT ERROR: Invalid get index 'position' (on base: 'null instance').",
	"ERROR: Attempt to call function 'queue_free' in base 'previously freed'",
	"SCRIPT ERROR: Parse Error: Identifier \"speed\" not declared in the current scope.",
	"ERROR: System.NullReferenceException: Object reference not set to an instance of an object.",
}

// LogGenerator produces deterministic log content from a seed.
type LogGenerator struct {
	rng *rand.Rand
}

// NewLogGenerator creates a generator; equal seeds give equal output.
func NewLogGenerator(seed int64) *LogGenerator {
	return &LogGenerator{rng: rand.New(rand.NewSource(seed))}
}

// NoiseLine returns a line that neither opens a block nor counts as a frame.
func (g *LogGenerator) NoiseLine() string {
	return noiseLines[g.rng.Intn(len(noiseLines))]
}

// Frame returns a stack frame attributed to src.
func (g *LogGenerator) Frame(src model.ScriptSource) string {
	line := g.rng.Intn(400) + 1
	switch src {
	case model.SourceNative:
		return fmt.Sprintf("   at: get_node (scene/main/node.cpp:%d)", line)
	case model.SourceManaged:
		return fmt.Sprintf("   at Game.Player._Process(Double delta) in /src/Player.cs:line %d", line)
	case model.SourceScripted:
		return fmt.Sprintf("   at: _ready (res://scripts/enemy.gd:%d)", line)
	default:
		return "   at <unknown>"
	}
}

// Block builds a block with the given number of frames, each attributed to a
// random source. The expected source follows the last frame.
func (g *LogGenerator) Block(frames int) Block {
	b := Block{Trigger: triggerTemplates[g.rng.Intn(len(triggerTemplates))]}
	for i := 0; i < frames; i++ {
		src := model.ScriptSource(g.rng.Intn(4))
		b.Frames = append(b.Frames, g.Frame(src))
		b.Source = src
	}
	return b
}

// Generate produces a log of n blocks interleaved with noise. Some blocks are
// adjacent, some carry no frames.
func (g *LogGenerator) Generate(n int) ([]string, []Block) {
	var lines []string
	blocks := make([]Block, 0, n)
	for i := 0; i < n; i++ {
		for noise := g.rng.Intn(3); noise > 0; noise-- {
			lines = append(lines, g.NoiseLine())
		}
		b := g.Block(g.rng.Intn(5))
		blocks = append(blocks, b)
		lines = append(lines, b.Lines()...)
	}
	if g.rng.Intn(2) == 0 {
		lines = append(lines, g.NoiseLine())
	}
	return lines, blocks
}

// Intn exposes the generator's random stream for split points and budgets.
func (g *LogGenerator) Intn(n int) int {
	return g.rng.Intn(n)
}

// LogWriter writes generated logs below a base directory.
type LogWriter struct {
	baseDir string
}

// NewLogWriter creates a writer rooted at baseDir.
func NewLogWriter(baseDir string) *LogWriter {
	return &LogWriter{baseDir: baseDir}
}

// Path returns the absolute path of a log under the base directory.
func (w *LogWriter) Path(name string) string {
	return filepath.Join(w.baseDir, name)
}

// Create creates or truncates an empty log.
func (w *LogWriter) Create(name string) (string, error) {
	path := w.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	return path, file.Close()
}

// AppendLines appends newline-terminated lines to the named log.
func (w *LogWriter) AppendLines(name string, lines ...string) error {
	if len(lines) == 0 {
		return nil
	}
	return w.AppendRaw(name, strings.Join(lines, "\n")+"\n")
}

// AppendRaw appends text verbatim, which may end mid-line.
func (w *LogWriter) AppendRaw(name, text string) error {
	file, err := os.OpenFile(w.Path(name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	if _, err := file.WriteString(text); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
