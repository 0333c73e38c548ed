// Package output delivers finalized error records to sinks.
package output

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/penwyp/go-error-capture/internal/core/model"
	"github.com/penwyp/go-error-capture/internal/util"
)

// Output is a destination for error records.
type Output interface {
	Write(ctx context.Context, record model.ErrorRecord) error
	Close() error
}

// Format selects how a sink encodes records.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a configured format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// Envelope wraps a record with capture metadata for line-delimited JSON.
type Envelope struct {
	ID         string            `json:"id"`
	CapturedAt time.Time         `json:"captured_at"`
	Record     model.ErrorRecord `json:"record"`
}

// NewEnvelope stamps record with a short id and the current time.
func NewEnvelope(record model.ErrorRecord) Envelope {
	return Envelope{
		ID:         uuid.New().String()[:8],
		CapturedAt: util.GetTimeProvider().Now(),
		Record:     record,
	}
}

// encodeJSONLine renders one NDJSON line including the trailing newline.
func encodeJSONLine(record model.ErrorRecord) ([]byte, error) {
	data, err := sonic.Marshal(NewEnvelope(record))
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
