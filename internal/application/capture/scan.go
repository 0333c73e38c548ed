package capture

import (
	"fmt"

	"github.com/penwyp/go-error-capture/internal/core/model"
	"github.com/penwyp/go-error-capture/internal/core/tail"
)

// ScanResult is the outcome of a one-shot scan.
type ScanResult struct {
	File      string
	Records   []model.ErrorRecord
	LinesRead int
}

// ScanFile reads path once from start to end, including a final line without
// a newline, and returns every block found.
func ScanFile(path string, maxLinesPerCycle int) (*ScanResult, error) {
	scanner, err := tail.Open(path, tail.Config{MaxLinesPerCycle: maxLinesPerCycle})
	defer scanner.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	result := &ScanResult{File: path, Records: []model.ErrorRecord{}}
	scanner.Subscribe(func(r model.ErrorRecord) {
		result.Records = append(result.Records, r)
	})

	res := scanner.Drain()
	result.LinesRead = res.LinesRead
	if res.Failed {
		return result, fmt.Errorf("failed to read %s to the end", path)
	}
	return result, nil
}
