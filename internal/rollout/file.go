package rollout

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/yildizm/msgnorm/internal/logger"
)

// fileFormat is the on-disk layout of a rollouts file:
//
//	rollouts:
//	  grouping.experiments.parameterization.uniq_id: 25
type fileFormat struct {
	Rollouts map[string]int `yaml:"rollouts"`
}

// FileSource serves percentages read from a YAML file. Watch keeps it in
// sync with the file; a reload that fails leaves the previous values.
type FileSource struct {
	path     string
	values   *MutableSource
	log      *logger.Logger
	onReload func(map[string]int)
}

// NewFileSource loads path. A nil logger discards reload messages.
func NewFileSource(path string, log *logger.Logger) (*FileSource, error) {
	if log == nil {
		log = logger.Nop()
	}
	fs := &FileSource{
		path:   filepath.Clean(path),
		values: NewMutableSource(nil),
		log:    log.WithComponent("rollout"),
	}
	if err := fs.Reload(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Path returns the watched file.
func (f *FileSource) Path() string {
	return f.path
}

// OnReload registers fn to be called with the new values after every
// successful reload. It must be set before Watch is started.
func (f *FileSource) OnReload(fn func(map[string]int)) {
	f.onReload = fn
}

// RolloutPercentage implements Source.
func (f *FileSource) RolloutPercentage(key string) int {
	return f.values.RolloutPercentage(key)
}

// Snapshot returns a copy of the currently loaded values.
func (f *FileSource) Snapshot() map[string]int {
	return f.values.Snapshot()
}

// Reload reads the file again and swaps in its values.
func (f *FileSource) Reload() error {
	values, err := readRolloutFile(f.path)
	if err != nil {
		return err
	}
	f.values.Replace(values)
	f.log.DebugWithFields("rollouts loaded", []logger.Field{logger.Path(f.path), logger.Count(len(values))})
	if f.onReload != nil {
		f.onReload(f.values.Snapshot())
	}
	return nil
}

// Watch reloads the file whenever it is written or recreated, until ctx is
// done. The parent directory is watched so that editors which replace the
// file by rename are picked up.
func (f *FileSource) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			f.log.Warn("failed to close watcher: %v", err)
		}
	}()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", f.path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			f.handleEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			f.log.WarnWithFields("watcher error", []logger.Field{logger.Error(err)})
		}
	}
}

func (f *FileSource) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != f.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if err := f.Reload(); err != nil {
		f.log.WarnWithFields("keeping previous rollouts", []logger.Field{logger.Path(f.path), logger.Error(err)})
	}
}

func readRolloutFile(path string) (map[string]int, error) {
	// #nosec G304 - path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rollouts file: %w", err)
	}

	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rollouts file %s: %w", path, err)
	}

	for key, pct := range doc.Rollouts {
		if pct < 0 || pct > 100 {
			return nil, fmt.Errorf("rollout %s: percentage %d out of range [0, 100]", key, pct)
		}
	}
	return doc.Rollouts, nil
}

// ParseAssignment parses a "key=percentage" pair as given on the command
// line.
func ParseAssignment(s string) (string, int, error) {
	i := strings.LastIndexByte(s, '=')
	if i <= 0 {
		return "", 0, fmt.Errorf("invalid rollout %q (expected key=percentage)", s)
	}
	key, value := strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	pct, err := strconv.Atoi(value)
	if err != nil {
		return "", 0, fmt.Errorf("invalid rollout percentage %q: %w", value, err)
	}
	if pct < 0 || pct > 100 {
		return "", 0, fmt.Errorf("rollout %s: percentage %d out of range [0, 100]", key, pct)
	}
	return key, pct, nil
}
