package output

import (
	"context"
	"errors"

	"github.com/penwyp/go-error-capture/internal/core/model"
)

// Multi fans a record out to several outputs. A failing output does not stop
// delivery to the rest.
type Multi struct {
	outputs []Output
}

func NewMulti(outputs ...Output) *Multi {
	return &Multi{outputs: outputs}
}

// Len reports how many outputs are attached.
func (m *Multi) Len() int {
	return len(m.outputs)
}

func (m *Multi) Write(ctx context.Context, record model.ErrorRecord) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Write(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
