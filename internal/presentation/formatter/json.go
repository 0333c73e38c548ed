package formatter

import (
	"io"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-error-capture/internal/core/model"
)

type JSONFormatter struct {
	w io.Writer
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{w: w}
}

// Format writes the records as one indented JSON array.
func (f *JSONFormatter) Format(records []model.ErrorRecord) error {
	if records == nil {
		records = []model.ErrorRecord{}
	}
	data, err := sonic.ConfigStd.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = f.w.Write(data)
	return err
}
