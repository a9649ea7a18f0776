// Package common holds the log entry model shared by ingest, grouping and
// the output layers.
package common

import (
	"strings"

	"github.com/yildizm/go-logparser"
)

// LogLevel represents the severity of a log entry
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// LogEntry extends go-logparser.LogEntry with the position it was read from
type LogEntry struct {
	logparser.LogEntry
	LogLevel   LogLevel `json:"level_enum"`
	Source     string   `json:"source,omitempty"`
	LineNumber int      `json:"line_number"`
}

// String methods for LogLevel
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the level by name.
func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// ParseLogLevel parses string to LogLevel
func ParseLogLevel(s string) LogLevel {
	level, ok := LookupLogLevel(s)
	if !ok {
		return LevelInfo
	}
	return level
}

// LookupLogLevel is ParseLogLevel that reports unknown names.
func LookupLogLevel(s string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "TRACE":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR", "ERR":
		return LevelError, true
	case "FATAL", "CRITICAL", "PANIC":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

// ConvertToCommonLogEntry converts go-logparser.LogEntry to common.LogEntry
func ConvertToCommonLogEntry(entry *logparser.LogEntry, lineNumber int) *LogEntry {
	return &LogEntry{
		LogEntry:   *entry,
		LogLevel:   ParseLogLevel(entry.Level),
		LineNumber: lineNumber,
	}
}
