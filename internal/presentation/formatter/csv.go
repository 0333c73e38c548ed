package formatter

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/penwyp/go-error-capture/internal/core/model"
)

type CSVFormatter struct {
	w io.Writer
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{w: w}
}

func (f *CSVFormatter) Format(records []model.ErrorRecord) error {
	w := csv.NewWriter(f.w)

	headers := []string{"Index", "Source", "Summary", "Frames", "Likely Real", "Top Frame"}
	if err := w.Write(headers); err != nil {
		return err
	}

	for i, r := range records {
		top := ""
		if len(r.StackTrace) > 0 {
			top = strings.TrimSpace(r.StackTrace[0])
		}
		row := []string{
			strconv.Itoa(i + 1),
			r.Source.String(),
			strings.TrimSpace(r.Summary),
			strconv.Itoa(len(r.StackTrace)),
			strconv.FormatBool(r.IsLikelyRealError),
			top,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
