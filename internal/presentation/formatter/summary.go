package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-error-capture/internal/core/model"
	"github.com/penwyp/go-error-capture/internal/util"
)

const topSummaryLimit = 5

// SummaryFormatter prints aggregate counts instead of individual records.
type SummaryFormatter struct {
	w io.Writer
}

func NewSummaryFormatter(w io.Writer) *SummaryFormatter {
	return &SummaryFormatter{w: w}
}

func (f *SummaryFormatter) Format(records []model.ErrorRecord) error {
	s := Summarize(records)
	rule := strings.Repeat("=", 60)

	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Error Capture Summary Report")
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b)

	if s.Total == 0 {
		fmt.Fprintln(&b, "No error blocks found")
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, rule)
		_, err := io.WriteString(f.w, b.String())
		return err
	}

	fmt.Fprintf(&b, "Error Blocks: %s\n", util.Plural(s.Total, "block", "blocks"))
	fmt.Fprintf(&b, "  With stack trace: %d\n", s.LikelyReal)
	fmt.Fprintf(&b, "  Without stack trace: %d\n", s.Total-s.LikelyReal)
	fmt.Fprintf(&b, "  Stack frames: %s\n", util.FormatNumber(s.TotalFrames))
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "By Source:")
	for _, src := range sourceOrder {
		if n := s.BySource[src]; n > 0 {
			fmt.Fprintf(&b, "  %s: %d (%.1f%%)\n", src, n, float64(n)*100/float64(s.Total))
		}
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "Most Frequent:")
	for i, sc := range s.TopSummary {
		if i == topSummaryLimit {
			break
		}
		fmt.Fprintf(&b, "  %3dx %s\n", sc.Count, util.TruncateToWidth(sc.Summary, maxSummaryWidth))
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, rule)

	_, err := io.WriteString(f.w, b.String())
	return err
}
