package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/penwyp/go-error-capture/internal/core/model"
	"github.com/penwyp/go-error-capture/internal/util"
)

const maxSummaryWidth = 60

type TableFormatter struct {
	w       io.Writer
	headers []string
}

func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		w:       w,
		headers: []string{"#", "Source", "Summary", "Frames", "Likely Real"},
	}
}

func (f *TableFormatter) Format(records []model.ErrorRecord) error {
	rows := make([][]string, 0, len(records)+1)
	likely, frames := 0, 0
	for i, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.Source.String(),
			util.TruncateToWidth(strings.TrimSpace(r.Summary), maxSummaryWidth),
			strconv.Itoa(len(r.StackTrace)),
			yesNo(r.IsLikelyRealError),
		})
		frames += len(r.StackTrace)
		if r.IsLikelyRealError {
			likely++
		}
	}
	total := []string{"Total", "", util.Plural(len(records), "error", "errors"), strconv.Itoa(frames), strconv.Itoa(likely)}

	widths := f.calculateColumnWidths(append(rows, total))

	f.printBorder(widths, "top")
	f.printRow(f.headers, widths)
	f.printBorder(widths, "middle")
	for _, row := range rows {
		f.printRow(row, widths)
	}
	if len(rows) > 0 {
		f.printBorder(widths, "middle")
	}
	f.printRow(total, widths)
	f.printBorder(widths, "bottom")
	return nil
}

// calculateColumnWidths sizes columns by display width, so wide runes in
// summaries stay aligned.
func (f *TableFormatter) calculateColumnWidths(rows [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, h := range f.headers {
		widths[i] = util.GetDisplayWidth(h)
	}
	for _, row := range rows {
		for i, v := range row {
			if w := util.GetDisplayWidth(v); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func (f *TableFormatter) printBorder(widths []int, borderType string) {
	var left, middle, right string
	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	default:
		left, middle, right = "└", "┴", "┘"
	}

	var b strings.Builder
	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(util.Separator(width + 2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	fmt.Fprintln(f.w, b.String())
}

// printRow left-aligns text columns and right-aligns the counts.
func (f *TableFormatter) printRow(values []string, widths []int) {
	var b strings.Builder
	b.WriteString("│")
	for i, v := range values {
		pad := widths[i] - util.GetDisplayWidth(v)
		if i == 0 || i == 3 || i == 4 {
			b.WriteString(" " + strings.Repeat(" ", pad) + v + " │")
		} else {
			b.WriteString(" " + util.PadToWidth(v, widths[i]) + " │")
		}
	}
	fmt.Fprintln(f.w, b.String())
}
