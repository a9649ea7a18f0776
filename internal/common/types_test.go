package common

import (
	"testing"
	"time"

	"github.com/yildizm/go-logparser"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
		known bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"warning", LevelWarn, true},
		{" Error ", LevelError, true},
		{"critical", LevelFatal, true},
		{"verbose", LevelInfo, false},
		{"", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLogLevel(tt.input); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if _, ok := LookupLogLevel(tt.input); ok != tt.known {
				t.Errorf("LookupLogLevel(%q) known = %v, want %v", tt.input, ok, tt.known)
			}
		})
	}
}

func TestLogLevelString(t *testing.T) {
	if LevelWarn.String() != "WARN" {
		t.Errorf("Expected WARN, got %s", LevelWarn.String())
	}
	if LogLevel(42).String() != "UNKNOWN" {
		t.Errorf("Expected UNKNOWN for out of range level")
	}
	text, err := LevelFatal.MarshalText()
	if err != nil || string(text) != "FATAL" {
		t.Errorf("MarshalText() = %q, %v", text, err)
	}
}

func TestConvertToCommonLogEntry(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	entry := &logparser.LogEntry{Timestamp: ts, Level: "error", Message: "boom"}

	got := ConvertToCommonLogEntry(entry, 7)
	if got.LogLevel != LevelError {
		t.Errorf("Expected LevelError, got %v", got.LogLevel)
	}
	if got.LineNumber != 7 || got.Message != "boom" || !got.Timestamp.Equal(ts) {
		t.Errorf("Unexpected conversion result: %+v", got)
	}
}
