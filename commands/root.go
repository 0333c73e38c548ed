package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/penwyp/go-error-capture/internal/application/capture"
	"github.com/penwyp/go-error-capture/internal/config"
	"github.com/penwyp/go-error-capture/internal/util"
)

var (
	// Logging related
	debug bool

	// Config file
	configPath string

	watchOpts = &watchFlags{}

	rootCmd = &cobra.Command{
		Use:   "go-error-capture [flags] [LOG_FILE]",
		Short: "Capture runtime errors from a growing engine log",
		Long: `go-error-capture tails an engine log file and reports every error block it finds.

A block starts with a line beginning "ERROR:" or "SCRIPT ERROR:" and continues
with indented "at" stack frames. Each block is classified as Native, Managed or
Scripted from its frames and reported as soon as it ends.

Examples:
  go-error-capture -f ~/game/logs/godot.log            # Watch a log with the default panel
  go-error-capture godot.log --no-display -o json      # Stream records as JSON lines
  go-error-capture godot.log --record-file errors.jsonl # Keep a record file as well
  go-error-capture godot.log --from-end --interval 1s  # Ignore history, poll every second
  go-error-capture scan godot.log --format summary     # One-shot report of a finished log`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runWatch,
	}
)

// watchFlags holds the overrides the watch command accepts on top of the
// config file.
type watchFlags struct {
	logPath      string
	maxLines     int
	interval     time.Duration
	outputFormat string
	recordFile   string
	color        string
	timezone     string
	noDisplay    bool
	noWatch      bool
	fromEnd      bool
}

func (w *watchFlags) register(fs *pflag.FlagSet) {
	// Input
	fs.StringVarP(&w.logPath, "file", "f", "",
		"Log file to tail (overrides log_path)")
	fs.BoolVar(&w.fromEnd, "from-end", false,
		"Start at the current end of the log instead of its beginning")

	// Polling
	fs.IntVar(&w.maxLines, "max-lines", config.DefaultMaxLinesPerCycle,
		"Maximum lines read per poll")
	fs.DurationVar(&w.interval, "interval", config.DefaultPollInterval,
		"Poll interval")
	fs.BoolVar(&w.noWatch, "no-watch", false,
		"Disable file system notifications and rely on polling only")

	// Output
	fs.StringVarP(&w.outputFormat, "output", "o", "text",
		"Record output format (text, json)")
	fs.StringVar(&w.recordFile, "record-file", "",
		"Also append records as JSON lines to this file")
	fs.BoolVar(&w.noDisplay, "no-display", false,
		"Do not show the error panel")
	fs.StringVar(&w.color, "color", config.DefaultDisplayColor,
		"Panel color (hex or ANSI number)")
	fs.StringVar(&w.timezone, "timezone", config.DefaultTimezone,
		"Timezone for record timestamps (e.g., Asia/Shanghai, UTC)")
}

// apply copies every flag the user set onto cfg. Flags left at their
// defaults do not override the config file.
func (w *watchFlags) apply(cfg *config.Config, fs *pflag.FlagSet, args []string) {
	if len(args) > 0 {
		cfg.LogPath = args[0]
	}
	if fs.Changed("file") {
		cfg.LogPath = w.logPath
	}
	if fs.Changed("from-end") {
		cfg.StartAtEnd = w.fromEnd
	}
	if fs.Changed("max-lines") {
		cfg.MaxLinesPerCycle = w.maxLines
	}
	if fs.Changed("interval") {
		cfg.PollInterval = w.interval
	}
	if fs.Changed("no-watch") {
		cfg.Watch = !w.noWatch
	}
	if fs.Changed("output") {
		cfg.Output.Format = w.outputFormat
	}
	if fs.Changed("record-file") {
		cfg.Output.RecordFile = w.recordFile
	}
	if fs.Changed("no-display") {
		cfg.Display.Enabled = !w.noDisplay
	}
	if fs.Changed("color") {
		cfg.Display.Color = w.color
	}
	if fs.Changed("timezone") {
		cfg.Timezone = w.timezone
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default searches ~/.go-error-capture for config.toml or config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")

	watchOpts.register(rootCmd.Flags())
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath, func(c *config.Config) {
		watchOpts.apply(c, cmd.Flags(), args)
	})
	if err != nil {
		return err
	}

	if err := setupLogging(cfg, debug); err != nil {
		return err
	}
	defer util.CloseLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator, err := capture.NewOrchestrator(capture.FromConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}
	return orchestrator.Run(ctx)
}

// loadConfig reads the config file, lets the caller apply flag overrides,
// then validates and expands the result.
func loadConfig(path string, override func(*config.Config)) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if override != nil {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid settings: %w", err)
	}
	if err := cfg.ExpandPaths(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// setupLogging installs the global logger. Debug mode raises the level and
// mirrors entries to stderr.
func setupLogging(cfg config.Config, debugMode bool) error {
	level := cfg.Log.Level
	if debugMode {
		level = "debug"
	}
	if err := util.InitLogger(util.LoggerOptions{
		Level:   level,
		File:    cfg.Log.File,
		Console: debugMode,
	}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}
