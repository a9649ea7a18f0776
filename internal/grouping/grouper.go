package grouping

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yildizm/msgnorm/internal/common"
	"github.com/yildizm/msgnorm/internal/logger"
	"github.com/yildizm/msgnorm/internal/normalize"
)

// cancelCheckPeriod is how many entries a worker handles between checks of
// its context.
const cancelCheckPeriod = 256

// Options configures a Grouper.
type Options struct {
	Workers     int
	MaxExamples int
	// MinLevel drops entries below it when FilterLevel is set.
	MinLevel    common.LogLevel
	FilterLevel bool
	// Invocation is passed to every Normalize call; its ID keys rollouts.
	Invocation normalize.Invocation
	Logger     *logger.Logger
}

// Report is the outcome of grouping a batch of entries.
type Report struct {
	Groups       []*Group      `json:"groups"`
	TotalEntries int           `json:"total_entries"`
	Grouped      int           `json:"grouped"`
	Skipped      int           `json:"skipped"`
	Source       string        `json:"source,omitempty"`
	GeneratedAt  time.Time     `json:"generated_at"`
	Duration     time.Duration `json:"duration"`
}

// Top returns at most n groups; n < 1 returns all of them.
func (r *Report) Top(n int) []*Group {
	if n < 1 || n >= len(r.Groups) {
		return r.Groups
	}
	return r.Groups[:n]
}

// Grouper normalizes entries and groups them by fingerprint.
type Grouper struct {
	normalizer *normalize.Normalizer
	opts       Options
	log        *logger.Logger
	live       *Index
}

// New creates a grouper around n.
func New(n *normalize.Normalizer, opts Options) *Grouper {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Grouper{
		normalizer: n,
		opts:       opts,
		log:        log.WithComponent("grouping"),
		live:       NewIndex(opts.MaxExamples),
	}
}

// Group processes entries with a pool of workers. Entries are split into
// contiguous chunks and merged back in input order, so the report does not
// depend on scheduling.
func (g *Grouper) Group(ctx context.Context, entries []*common.LogEntry) (*Report, error) {
	start := time.Now()

	chunks := split(entries, g.opts.Workers)
	partials := make([]*Index, len(chunks))
	grouped := make([]int, len(chunks))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		partials[i] = NewIndex(g.opts.MaxExamples)
		eg.Go(func() error {
			n, err := g.groupChunk(egCtx, chunk, partials[i])
			grouped[i] = n
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("grouping cancelled: %w", err)
	}

	merged := NewIndex(g.opts.MaxExamples)
	total := 0
	for i, p := range partials {
		merged.merge(p)
		total += grouped[i]
	}

	report := &Report{
		Groups:       merged.Groups(),
		TotalEntries: len(entries),
		Grouped:      total,
		Skipped:      len(entries) - total,
		GeneratedAt:  time.Now(),
		Duration:     time.Since(start),
	}
	if len(entries) > 0 {
		report.Source = entries[0].Source
	}

	g.log.DebugWithFields("grouped entries", []logger.Field{
		logger.Count(report.TotalEntries),
		logger.F("groups", len(report.Groups)),
		logger.F("workers", len(chunks)),
		logger.Duration(report.Duration),
	})
	return report, nil
}

func (g *Grouper) groupChunk(ctx context.Context, chunk []*common.LogEntry, ix *Index) (int, error) {
	n := 0
	for i, entry := range chunk {
		if i%cancelCheckPeriod == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		if !g.accepts(entry) {
			continue
		}
		ix.Observe(entry, g.normalizer.Explain(entry.Message, g.opts.Invocation))
		n++
	}
	return n, nil
}

// Observe groups a single entry into the grouper's running index, as used
// when following a file. ok is false when the entry was filtered out.
func (g *Grouper) Observe(entry *common.LogEntry) (group Group, isNew, ok bool) {
	if !g.accepts(entry) {
		return Group{}, false, false
	}
	group, isNew = g.live.Observe(entry, g.normalizer.Explain(entry.Message, g.opts.Invocation))
	return group, isNew, true
}

// Live returns the groups seen through Observe.
func (g *Grouper) Live() []*Group {
	return g.live.Groups()
}

func (g *Grouper) accepts(entry *common.LogEntry) bool {
	if entry == nil || entry.Message == "" {
		return false
	}
	return !g.opts.FilterLevel || entry.LogLevel >= g.opts.MinLevel
}

// split cuts entries into at most n contiguous chunks of similar size.
func split(entries []*common.LogEntry, n int) [][]*common.LogEntry {
	if len(entries) == 0 {
		return nil
	}
	if n > len(entries) {
		n = len(entries)
	}
	size := (len(entries) + n - 1) / n
	chunks := make([][]*common.LogEntry, 0, n)
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		chunks = append(chunks, entries[start:end])
	}
	return chunks
}
