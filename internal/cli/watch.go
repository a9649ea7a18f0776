package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/yildizm/msgnorm/internal/common"
	"github.com/yildizm/msgnorm/internal/emoji"
	"github.com/yildizm/msgnorm/internal/grouping"
	"github.com/yildizm/msgnorm/internal/ingest"
)

var (
	watchInputFormat string
	watchAll         bool
	watchFromStart   bool
	watchRollout     rolloutFlags
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Follow a log file and report new message groups",
		Long: `Follow a log file and normalize entries as they are written. Each entry
that starts a new group is printed with its fingerprint and template; with
--all every entry is printed together with the running count of its group.

Uses file system notifications to detect changes. When a rollouts file is
configured it is reloaded on change as well. Press Ctrl+C to stop watching.

Examples:
  msgnorm watch app.log
  msgnorm watch --all --input-format json app.log`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().StringVar(&watchInputFormat, "input-format", "", "log format (auto, json, logfmt, text)")
	cmd.Flags().BoolVar(&watchAll, "all", false, "print every entry, not only new groups")
	cmd.Flags().BoolVar(&watchFromStart, "from-start", false, "process existing content before following")
	watchRollout.register(cmd)

	return cmd
}

// tailer turns appended file content into entries and reports them.
type tailer struct {
	parser  *ingest.Parser
	grouper *grouping.Grouper
	out     io.Writer
	all     bool
	// pending holds a trailing line that has no newline yet.
	pending []byte
	line    int
}

// consume reads everything available from r. Complete lines are parsed and
// grouped; an unterminated last line waits for the next call.
func (t *tailer) consume(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read new data: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	data = append(t.pending, data...)
	cut := bytes.LastIndexByte(data, '\n')
	if cut < 0 {
		t.pending = data
		return nil
	}
	t.pending = append([]byte(nil), data[cut+1:]...)

	// Blank lines are dropped, so each run of non-blank lines is parsed
	// with its own first line number.
	var entries []*common.LogEntry
	var run []string
	parseRun := func() error {
		if len(run) == 0 {
			return nil
		}
		parsed, err := t.parser.Parse(run, t.line-len(run)+1)
		if err != nil {
			return err
		}
		entries = append(entries, parsed...)
		run = run[:0]
		return nil
	}
	for _, raw := range strings.Split(string(data[:cut]), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			if err := parseRun(); err != nil {
				return err
			}
			t.line++
			continue
		}
		t.line++
		run = append(run, line)
	}
	if err := parseRun(); err != nil {
		return err
	}

	for _, entry := range entries {
		group, isNew, ok := t.grouper.Observe(entry)
		if !ok || (!isNew && !t.all) {
			continue
		}
		marker := strings.Repeat(" ", lipgloss.Width(emoji.GetEmoji("new")))
		if isNew {
			marker = emoji.GetEmoji("new")
		}
		fmt.Fprintf(t.out, "%s %s %6d  %s\n", marker, group.Fingerprint[:8], group.Count, group.Template)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	filename := args[0]

	cfg, err := GetGlobalConfig()
	if err != nil {
		return err
	}
	format := cfg.Input.Format
	if cmd.Flags().Changed("input-format") {
		format = watchInputFormat
	}
	parser, err := ingest.NewParser(format)
	if err != nil {
		return err
	}

	grouper, rollouts, err := newGrouper(cfg, watchRollout)
	if err != nil {
		return err
	}

	watcher, file, cleanup, err := setupFileWatcher(filename, watchFromStart)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rollouts.watch(ctx)

	t := &tailer{parser: parser, grouper: grouper, out: cmd.OutOrStdout(), all: watchAll}
	if watchFromStart {
		if err := t.consume(file); err != nil {
			return err
		}
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "%s Watching file: %s\n", emoji.GetEmoji("watch"), filename)
		fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop...\n\n")
	}

	return runWatchLoop(ctx, watcher, file, t)
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}

// cleanupFile safely closes file with error logging
func cleanupFile(file *os.File) {
	if err := file.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close file: %v\n", err)
	}
}

// createWatcher creates and configures a new file system watcher
func createWatcher(filename string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filename); err != nil {
		cleanupWatcher(watcher)
		return nil, fmt.Errorf("failed to watch file: %w", err)
	}

	return watcher, nil
}

// openWatchFile opens the file, positioned at its end unless fromStart
func openWatchFile(filename string, fromStart bool) (*os.File, error) {
	// #nosec G304 - path is validated by caller
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	if fromStart {
		return file, nil
	}
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		cleanupFile(file)
		return nil, fmt.Errorf("failed to seek to end of file: %w", err)
	}

	return file, nil
}

// setupFileWatcher creates and configures file watcher
func setupFileWatcher(filename string, fromStart bool) (*fsnotify.Watcher, *os.File, func(), error) {
	if err := validateWatchFilePath(filename); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid file path: %w", err)
	}
	filename = filepath.Clean(filename)

	watcher, err := createWatcher(filename)
	if err != nil {
		return nil, nil, nil, err
	}

	file, err := openWatchFile(filename, fromStart)
	if err != nil {
		cleanupWatcher(watcher)
		return nil, nil, nil, err
	}

	cleanup := func() {
		cleanupWatcher(watcher)
		cleanupFile(file)
	}

	return watcher, file, cleanup, nil
}

// runWatchLoop feeds appended content to t until ctx is done
func runWatchLoop(ctx context.Context, watcher *fsnotify.Watcher, file *os.File, t *tailer) error {
	for {
		select {
		case <-ctx.Done():
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "\nStopping, %d groups seen\n", len(t.grouper.Live()))
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if err := handleWatchEvent(event, file, t); err != nil && isVerbose() {
				fmt.Fprintf(os.Stderr, "Error handling event: %v\n", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
			}
		}
	}
}

// handleWatchEvent processes file system events
func handleWatchEvent(event fsnotify.Event, file *os.File, t *tailer) error {
	if !event.Has(fsnotify.Write) {
		return nil
	}
	if err := rewindIfTruncated(file, t); err != nil {
		return err
	}
	if err := t.consume(file); err != nil {
		return fmt.Errorf("error processing new lines: %w", err)
	}
	return nil
}

// rewindIfTruncated starts over when the file shrank below the read offset,
// as happens with copytruncate log rotation.
func rewindIfTruncated(file *os.File, t *tailer) error {
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("failed to read offset: %w", err)
	}
	if info.Size() >= offset {
		return nil
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind file: %w", err)
	}
	t.pending = nil
	return nil
}

// validateWatchFilePath validates that a file path is safe to watch
func validateWatchFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot watch directory, must be a file")
	}

	return nil
}
