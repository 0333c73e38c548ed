// Package display shows the latest captured error block in the terminal.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/penwyp/go-error-capture/internal/core/model"
	"github.com/penwyp/go-error-capture/internal/util"
)

const (
	defaultWidth = 80
	minWidth     = 40
	maxWidth     = 120
	panelTitle   = "Runtime error captured"
)

// Config controls the panel look.
type Config struct {
	Color string // lipgloss color: "#RRGGBB" or an ANSI number
	Width int    // 0 sizes the panel to the terminal
}

// TerminalDisplay renders one bordered panel holding the latest block. On a
// terminal each Show replaces the previous panel in place; on other writers
// panels are appended.
type TerminalDisplay struct {
	mu        sync.Mutex
	out       io.Writer
	isTTY     bool
	width     int
	panel     lipgloss.Style
	title     lipgloss.Style
	notice    lipgloss.Style
	visible   bool
	lastLines int
	shown     int
}

// NewTerminalDisplay renders onto out using the configured color.
func NewTerminalDisplay(out io.Writer, cfg Config) *TerminalDisplay {
	isTTY := false
	fd := -1
	if f, ok := out.(*os.File); ok {
		fd = int(f.Fd())
		isTTY = term.IsTerminal(fd)
	}

	renderer := lipgloss.NewRenderer(out)
	color := lipgloss.Color(cfg.Color)
	width := resolveWidth(cfg.Width, fd, isTTY)

	return &TerminalDisplay{
		out:   out,
		isTTY: isTTY,
		width: width,
		panel: renderer.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color).
			Foreground(color).
			Padding(0, 1).
			Width(width - 2),
		title:  renderer.NewStyle().Foreground(color).Bold(true),
		notice: renderer.NewStyle().Italic(true).Faint(true),
	}
}

func resolveWidth(configured, fd int, isTTY bool) int {
	width := configured
	if width <= 0 {
		width = defaultWidth
		if isTTY {
			if w, _, err := term.GetSize(fd); err == nil {
				width = w - 2
			}
		}
	}
	if width < minWidth {
		width = minWidth
	}
	if width > maxWidth {
		width = maxWidth
	}
	util.LogDebugf("Error panel width %d (tty=%v)", width, isTTY)
	return width
}

// Show makes the panel visible with rawText. Blocks without a stack trace
// are prefixed with an advisory that they may not be real errors.
func (d *TerminalDisplay) Show(rawText string, hasStackTrace bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.clearLocked()

	inner := d.width - 4
	var body []string
	body = append(body, d.title.Render(panelTitle), "")
	if !hasStackTrace {
		for _, line := range util.WrapLines(model.NotRealErrorNotice, inner) {
			body = append(body, d.notice.Render(line))
		}
		body = append(body, "")
	}
	body = append(body, util.WrapLines(rawText, inner)...)

	rendered := d.panel.Render(strings.Join(body, "\n"))
	fmt.Fprintln(d.out, rendered)

	d.lastLines = strings.Count(rendered, "\n") + 1
	d.visible = true
	d.shown++
}

// Hide removes the panel from a terminal. Elsewhere it only marks the
// display hidden, since appended output cannot be taken back.
func (d *TerminalDisplay) Hide() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearLocked()
	d.visible = false
}

// Visible reports whether a panel is currently shown.
func (d *TerminalDisplay) Visible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visible
}

// Shown counts panels rendered so far.
func (d *TerminalDisplay) Shown() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shown
}

func (d *TerminalDisplay) clearLocked() {
	if !d.visible || !d.isTTY || d.lastLines == 0 {
		return
	}
	// Cursor up over the panel, then erase to the end of the screen.
	fmt.Fprint(d.out, util.CursorUp(d.lastLines)+util.ClearToEnd)
	d.lastLines = 0
}
