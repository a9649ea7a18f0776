// Package ingest reads raw log input and turns it into entries whose
// messages can be normalized.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yildizm/go-logparser"

	"github.com/yildizm/msgnorm/internal/common"
)

// DefaultMaxLineLength is the scanner buffer used when no limit is given.
const DefaultMaxLineLength = 1024 * 1024 // 1MB

// ReadLines reads up to maxLines non-empty, trimmed lines from reader.
// A maxLines below 1 means no limit.
func ReadLines(reader io.Reader, maxLines, maxLineLength int) ([]string, error) {
	if maxLineLength < 1 {
		maxLineLength = DefaultMaxLineLength
	}

	var lines []string
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if maxLines > 0 && len(lines) >= maxLines {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("scanner error: %w", err)
	}

	return lines, nil
}

// Parser turns lines into log entries, either auto-detecting the format or
// using a fixed one.
type Parser struct {
	format string
	parser logparser.Parser
}

// NewParser creates a parser for format: auto, json, logfmt or text.
func NewParser(format string) (*Parser, error) {
	switch format {
	case "", "auto":
		return &Parser{format: "auto", parser: logparser.New()}, nil
	case "json":
		return &Parser{format: format, parser: logparser.NewWithFormat(logparser.FormatJSON)}, nil
	case "logfmt":
		return &Parser{format: format, parser: logparser.NewWithFormat(logparser.FormatLogfmt)}, nil
	case "text":
		return &Parser{format: format, parser: logparser.NewWithFormat(logparser.FormatText)}, nil
	default:
		return nil, fmt.Errorf("unknown format %s. Available formats: auto, json, logfmt, text", format)
	}
}

// Format returns the configured format name.
func (p *Parser) Format() string {
	return p.format
}

// Parse parses lines; firstLine is the line number of lines[0]. In auto
// mode, input the parser cannot make sense of is kept one entry per line
// so that every message still gets normalized.
func (p *Parser) Parse(lines []string, firstLine int) ([]*common.LogEntry, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	logEntries, err := p.parser.ParseString(strings.Join(lines, "\n"))
	if err != nil || len(logEntries) == 0 {
		if p.format != "auto" {
			if err == nil {
				err = fmt.Errorf("no entries recognized as %s", p.format)
			}
			return nil, fmt.Errorf("failed to parse logs: %w", err)
		}
		return rawEntries(lines, firstLine), nil
	}

	entries := make([]*common.LogEntry, 0, len(logEntries))
	for i := range logEntries {
		entry := common.ConvertToCommonLogEntry(&logEntries[i], firstLine+i)
		if entry.Message == "" && i < len(lines) && len(logEntries) == len(lines) {
			entry.Message = lines[i]
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func rawEntries(lines []string, firstLine int) []*common.LogEntry {
	entries := make([]*common.LogEntry, len(lines))
	for i, line := range lines {
		entries[i] = &common.LogEntry{
			LogEntry:   logparser.LogEntry{Message: line},
			LogLevel:   common.LevelInfo,
			LineNumber: firstLine + i,
		}
	}
	return entries
}

// Open validates path and opens it for reading. An empty path or "-" reads
// stdin; the returned name is empty in that case.
func Open(path string) (io.ReadCloser, string, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), "", nil
	}

	if err := ValidateFilePath(path); err != nil {
		return nil, "", fmt.Errorf("invalid file path: %w", err)
	}

	cleanPath := filepath.Clean(path)
	// #nosec G304 - path is validated above
	file, err := os.Open(cleanPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file %s: %w", path, err)
	}
	return file, cleanPath, nil
}

// ValidateFilePath checks that path names an existing regular file.
func ValidateFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", cleanPath)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", cleanPath)
	}

	return nil
}

// Load reads and parses a whole input in one go and tags entries with the
// source name.
func Load(reader io.Reader, source string, parser *Parser, maxLines, maxLineLength int) ([]*common.LogEntry, error) {
	lines, err := ReadLines(reader, maxLines, maxLineLength)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("no log entries found")
	}

	entries, err := parser.Parse(lines, 1)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		entry.Source = source
	}
	return entries, nil
}
