package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-error-capture/internal/application/capture"
	"github.com/penwyp/go-error-capture/internal/config"
	"github.com/penwyp/go-error-capture/internal/presentation/formatter"
	"github.com/penwyp/go-error-capture/internal/util"
)

// ErrErrorsFound is returned by scan --fail-on-error when at least one block
// carried a stack trace.
var ErrErrorsFound = errors.New("runtime errors found")

var (
	scanFormat      string
	scanFailOnError bool
	scanMaxLines    int
)

var scanCmd = &cobra.Command{
	Use:   "scan [LOG_FILE]",
	Short: "Report every error block in a log once and exit",
	Long: `Reads a log from start to end, including a last line without a newline,
and prints a report of the error blocks found. Without LOG_FILE the log_path
from the config file is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanFormat, "format", "table",
		"Report format (table, json, csv, summary)")
	scanCmd.Flags().BoolVar(&scanFailOnError, "fail-on-error", false,
		"Exit with an error when a block with a stack trace is found")
	scanCmd.Flags().IntVar(&scanMaxLines, "max-lines", config.DefaultMaxLinesPerCycle,
		"Lines read per cycle while scanning")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath, func(c *config.Config) {
		if len(args) > 0 {
			c.LogPath = args[0]
		}
	})
	if err != nil {
		return err
	}
	if cfg.LogPath == "" {
		return errors.New("no log file given: pass LOG_FILE or set log_path in the config")
	}

	if err := setupLogging(cfg, debug); err != nil {
		return err
	}
	defer util.CloseLogger()

	opts := scanOptions{
		format:      scanFormat,
		maxLines:    scanMaxLines,
		failOnError: scanFailOnError,
	}
	return scanReport(cmd.OutOrStdout(), cfg.LogPath, opts)
}

type scanOptions struct {
	format      string
	maxLines    int
	failOnError bool
}

// scanReport scans path and writes the report in the named format.
func scanReport(w io.Writer, path string, opts scanOptions) error {
	f, err := formatter.New(opts.format, w)
	if err != nil {
		return err
	}

	result, err := capture.ScanFile(path, opts.maxLines)
	if err != nil {
		return err
	}
	util.LogInfof("Scanned %s: %d lines, %d records", result.File, result.LinesRead, len(result.Records))

	if err := f.Format(result.Records); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if opts.failOnError {
		for _, r := range result.Records {
			if r.IsLikelyRealError {
				return ErrErrorsFound
			}
		}
	}
	return nil
}
