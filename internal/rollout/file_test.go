package rollout

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func writeRollouts(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write rollouts file: %v", err)
	}
}

func TestNewFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rollouts.yaml")
	writeRollouts(t, path, "rollouts:\n  "+testKey+": 25\n")

	src, err := NewFileSource(path, nil)
	if err != nil {
		t.Fatalf("NewFileSource() error = %v", err)
	}
	if got := src.RolloutPercentage(testKey); got != 25 {
		t.Errorf("RolloutPercentage() = %d, want 25", got)
	}
	if src.Path() != path {
		t.Errorf("Path() = %q, want %q", src.Path(), path)
	}
}

func TestNewFileSourceErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed yaml", "rollouts: [", "failed to parse rollouts file"},
		{"out of range", "rollouts:\n  a: 120\n", "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
			writeRollouts(t, path, tt.content)
			_, err := NewFileSource(path, nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewFileSource() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}

	if _, err := NewFileSource(filepath.Join(dir, "missing.yaml"), nil); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFileSourceReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollouts.yaml")
	writeRollouts(t, path, "rollouts:\n  "+testKey+": 40\n")

	src, err := NewFileSource(path, nil)
	if err != nil {
		t.Fatalf("NewFileSource() error = %v", err)
	}

	writeRollouts(t, path, "rollouts: {")
	if err := src.Reload(); err == nil {
		t.Fatal("Expected reload error")
	}
	if got := src.RolloutPercentage(testKey); got != 40 {
		t.Errorf("Expected previous value 40 after failed reload, got %d", got)
	}
}

func TestFileSourceWatch(t *testing.T) {
	// Expiring caches from other tests keep their janitor goroutines alive.
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "rollouts.yaml")
	writeRollouts(t, path, "rollouts:\n  "+testKey+": 0\n")

	src, err := NewFileSource(path, nil)
	if err != nil {
		t.Fatalf("NewFileSource() error = %v", err)
	}
	reloaded := make(chan map[string]int, 16)
	src.OnReload(func(v map[string]int) {
		select {
		case reloaded <- v:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Watch(ctx) }()

	gate := NewGate(src)
	deadline := time.Now().Add(5 * time.Second)
	// The watcher may not be registered yet, so keep rewriting until seen.
	for !gate.Enabled(testKey, "any") {
		if time.Now().After(deadline) {
			t.Fatal("Expected watch to pick up the new rollout")
		}
		writeRollouts(t, path, "rollouts:\n  "+testKey+": 100\n")
		select {
		case <-reloaded:
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		in      string
		key     string
		pct     int
		wantErr bool
	}{
		{in: testKey + "=50", key: testKey, pct: 50},
		{in: "a=b=0", key: "a=b", pct: 0},
		{in: " k = 100 ", key: "k", pct: 100},
		{in: "k", wantErr: true},
		{in: "=10", wantErr: true},
		{in: "k=abc", wantErr: true},
		{in: "k=101", wantErr: true},
		{in: "k=-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			key, pct, err := ParseAssignment(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAssignment() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (key != tt.key || pct != tt.pct) {
				t.Errorf("ParseAssignment() = (%q, %d), want (%q, %d)", key, pct, tt.key, tt.pct)
			}
		})
	}
}
