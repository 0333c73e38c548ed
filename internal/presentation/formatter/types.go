// Package formatter renders captured error records as reports.
package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/penwyp/go-error-capture/internal/core/model"
)

// Formatter writes a report for a batch of records.
type Formatter interface {
	Format(records []model.ErrorRecord) error
}

// Names lists the accepted report formats.
var Names = []string{"table", "json", "csv", "summary"}

// New returns the formatter registered under name.
func New(name string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "table":
		return NewTableFormatter(w), nil
	case "json":
		return NewJSONFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "summary":
		return NewSummaryFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %s)", name, strings.Join(Names, ", "))
	}
}

// SummaryCount is how often one summary text occurred.
type SummaryCount struct {
	Summary string
	Count   int
}

// Stats aggregates a batch of records.
type Stats struct {
	Total       int
	LikelyReal  int
	TotalFrames int
	BySource    map[model.ScriptSource]int
	TopSummary  []SummaryCount
}

// Summarize computes Stats, ranking summaries by frequency then text.
func Summarize(records []model.ErrorRecord) Stats {
	s := Stats{BySource: make(map[model.ScriptSource]int)}
	counts := make(map[string]int)
	for _, r := range records {
		s.Total++
		s.TotalFrames += len(r.StackTrace)
		if r.IsLikelyRealError {
			s.LikelyReal++
		}
		s.BySource[r.Source]++
		counts[strings.TrimSpace(r.Summary)]++
	}

	for summary, n := range counts {
		s.TopSummary = append(s.TopSummary, SummaryCount{Summary: summary, Count: n})
	}
	sort.Slice(s.TopSummary, func(i, j int) bool {
		if s.TopSummary[i].Count != s.TopSummary[j].Count {
			return s.TopSummary[i].Count > s.TopSummary[j].Count
		}
		return s.TopSummary[i].Summary < s.TopSummary[j].Summary
	})
	return s
}

// sourceOrder fixes the row order of per-source breakdowns.
var sourceOrder = []model.ScriptSource{
	model.SourceScripted, model.SourceManaged, model.SourceNative, model.SourceUnknown,
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
