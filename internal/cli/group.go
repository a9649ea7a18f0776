package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/msgnorm/internal/common"
	"github.com/yildizm/msgnorm/internal/config"
	"github.com/yildizm/msgnorm/internal/formatter"
	"github.com/yildizm/msgnorm/internal/grouping"
	"github.com/yildizm/msgnorm/internal/ingest"
	"github.com/yildizm/msgnorm/internal/ui"
)

var (
	groupFormat      string
	groupInputFormat string
	groupTUI         bool
	groupTheme       string
	groupOutputFile  string
	groupTop         int
	groupMinLevel    string
	groupWorkers     int
	groupTimeout     time.Duration
	groupMaxLines    int
	groupRollout     rolloutFlags
)

func newGroupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group [file]",
		Short: "Group log messages by normalized template",
		Long: `Normalize every message of a log file and group the entries whose templates
share a fingerprint. The report lists groups by size with their level, first
and last occurrence and a few distinct example messages.

If no file is specified, reads from stdin.

Examples:
  msgnorm group app.log
  msgnorm group --format markdown --output-file report.md app.log
  msgnorm group --min-level warn --top 10 app.log
  cat app.log | msgnorm group --format json
  msgnorm group --tui app.log`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGroup,
	}

	cmd.Flags().StringVarP(&groupFormat, "format", "f", "", "output format (text, json, markdown, csv, prompt)")
	cmd.Flags().StringVar(&groupInputFormat, "input-format", "", "log format (auto, json, logfmt, text)")
	cmd.Flags().BoolVar(&groupTUI, "tui", false, "browse groups in an interactive terminal UI")
	cmd.Flags().StringVar(&groupTheme, "theme", "default", "TUI theme (default, high-contrast, minimal)")
	cmd.Flags().StringVar(&groupOutputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().IntVar(&groupTop, "top", 0, "number of groups to show, 0 for all")
	cmd.Flags().StringVar(&groupMinLevel, "min-level", "", "skip entries below this level (debug, info, warn, error, fatal)")
	cmd.Flags().IntVar(&groupWorkers, "workers", 0, "number of grouping workers")
	cmd.Flags().DurationVar(&groupTimeout, "timeout", 0, "grouping timeout")
	cmd.Flags().IntVar(&groupMaxLines, "max-lines", 0, "maximum lines to read")
	groupRollout.register(cmd)

	return cmd
}

// applyGroupFlags overrides configuration values with explicitly set flags.
func applyGroupFlags(cmd *cobra.Command, cfg *config.Config) config.Config {
	merged := *cfg
	if cmd.Flags().Changed("format") {
		merged.Output.DefaultFormat = groupFormat
	}
	if cmd.Flags().Changed("input-format") {
		merged.Input.Format = groupInputFormat
	}
	if cmd.Flags().Changed("top") {
		merged.Grouping.Top = groupTop
	}
	if cmd.Flags().Changed("min-level") {
		merged.Grouping.MinLevel = groupMinLevel
	}
	if cmd.Flags().Changed("workers") {
		merged.Grouping.Workers = groupWorkers
	}
	if cmd.Flags().Changed("timeout") {
		merged.Grouping.Timeout = groupTimeout
	}
	if cmd.Flags().Changed("max-lines") {
		merged.Input.MaxLines = groupMaxLines
	}
	return merged
}

func runGroup(cmd *cobra.Command, args []string) error {
	loaded, err := GetGlobalConfig()
	if err != nil {
		return err
	}
	cfg := applyGroupFlags(cmd, loaded)
	if err := cfg.Validate(); err != nil {
		return err
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	entries, err := loadEntries(path, &cfg)
	if err != nil {
		return err
	}

	grouper, _, err := newGrouper(&cfg, groupRollout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if groupTUI {
		theme, ok := ui.ThemeByName(groupTheme)
		if !ok {
			return fmt.Errorf("unknown theme %s (available: %v)", groupTheme, ui.GetAvailableThemes())
		}
		return ui.Run(ctx, grouper, entries, ui.NewStyles(theme, useColor(&cfg)))
	}

	if cfg.Grouping.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Grouping.Timeout)
		defer cancel()
	}

	report, err := grouper.Group(ctx, entries)
	if err != nil {
		return err
	}

	return writeReport(cmd, report, &cfg)
}

func loadEntries(path string, cfg *config.Config) ([]*common.LogEntry, error) {
	reader, name, err := ingest.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close input: %v\n", err)
		}
	}()

	parser, err := ingest.NewParser(cfg.Input.Format)
	if err != nil {
		return nil, err
	}

	entries, err := ingest.Load(reader, name, parser, cfg.Input.MaxLines, cfg.Input.MaxLineLength)
	if err != nil {
		return nil, err
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Parsed %d entries (%s format)\n", len(entries), parser.Format())
	}
	return entries, nil
}

// newGrouper wires a grouper to the rollout chain and grouping settings.
func newGrouper(cfg *config.Config, flags rolloutFlags) (*grouping.Grouper, *gateSetup, error) {
	n, inv, setup, err := buildNormalizer(flags)
	if err != nil {
		return nil, nil, err
	}

	opts := grouping.Options{
		Workers:     cfg.Grouping.Workers,
		MaxExamples: cfg.Grouping.MaxExamples,
		Invocation:  inv,
		Logger:      newLogger(),
	}
	if cfg.Grouping.MinLevel != "" {
		level, ok := common.LookupLogLevel(cfg.Grouping.MinLevel)
		if !ok {
			return nil, nil, fmt.Errorf("invalid min level: %s", cfg.Grouping.MinLevel)
		}
		opts.MinLevel = level
		opts.FilterLevel = true
	}
	return grouping.New(n, opts), setup, nil
}

func writeReport(cmd *cobra.Command, report *grouping.Report, cfg *config.Config) error {
	f, err := formatter.New(cfg.Output.DefaultFormat, formatter.Options{
		Color:           useColor(cfg) && groupOutputFile == "",
		Top:             cfg.Grouping.Top,
		TimestampFormat: cfg.Output.TimestampFormat,
	})
	if err != nil {
		return err
	}

	output, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("formatting failed: %w", err)
	}

	if groupOutputFile != "" {
		if err := os.WriteFile(groupOutputFile, output, 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", groupOutputFile)
		}
		return nil
	}

	_, err = cmd.OutOrStdout().Write(output)
	return err
}
