// Package grouping clusters log entries whose messages normalize to the same
// template.
package grouping

import (
	"crypto/md5" // #nosec G501 - fingerprint, not a security boundary
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/yildizm/msgnorm/internal/common"
	"github.com/yildizm/msgnorm/internal/normalize"
)

// Fingerprint returns the grouping key of a normalized message.
func Fingerprint(template string) string {
	sum := md5.Sum([]byte(template)) // #nosec G401
	return hex.EncodeToString(sum[:])
}

// Group is the set of entries sharing one template.
type Group struct {
	Fingerprint  string                  `json:"fingerprint"`
	Template     string                  `json:"template"`
	Count        int                     `json:"count"`
	Level        common.LogLevel         `json:"level"`
	FirstSeen    time.Time               `json:"first_seen,omitempty"`
	LastSeen     time.Time               `json:"last_seen,omitempty"`
	FirstLine    int                     `json:"first_line"`
	Examples     []string                `json:"examples"`
	Placeholders map[normalize.Label]int `json:"placeholders,omitempty"`
}

func newGroup(fp string, entry *common.LogEntry, res normalize.Result) *Group {
	return &Group{
		Fingerprint:  fp,
		Template:     res.Output,
		Level:        entry.LogLevel,
		FirstLine:    entry.LineNumber,
		Placeholders: res.Counts(),
	}
}

// observe folds one more entry into the group.
func (g *Group) observe(entry *common.LogEntry, raw string, maxExamples int) {
	g.Count++
	if entry.LogLevel > g.Level {
		g.Level = entry.LogLevel
	}
	if entry.LineNumber > 0 && (g.FirstLine == 0 || entry.LineNumber < g.FirstLine) {
		g.FirstLine = entry.LineNumber
	}
	g.seen(entry.Timestamp)
	g.addExample(raw, maxExamples)
}

func (g *Group) seen(ts time.Time) {
	if ts.IsZero() {
		return
	}
	if g.FirstSeen.IsZero() || ts.Before(g.FirstSeen) {
		g.FirstSeen = ts
	}
	if ts.After(g.LastSeen) {
		g.LastSeen = ts
	}
}

func (g *Group) addExample(raw string, maxExamples int) {
	if len(g.Examples) >= maxExamples {
		return
	}
	for _, ex := range g.Examples {
		if ex == raw {
			return
		}
	}
	g.Examples = append(g.Examples, raw)
}

// absorb merges o, which covers later input than g, into g.
func (g *Group) absorb(o *Group, maxExamples int) {
	g.Count += o.Count
	if o.Level > g.Level {
		g.Level = o.Level
	}
	if o.FirstLine > 0 && (g.FirstLine == 0 || o.FirstLine < g.FirstLine) {
		g.FirstLine = o.FirstLine
	}
	g.seen(o.FirstSeen)
	g.seen(o.LastSeen)
	for _, ex := range o.Examples {
		g.addExample(ex, maxExamples)
	}
}

// Index accumulates groups. It is safe for concurrent use.
type Index struct {
	mu          sync.Mutex
	groups      map[string]*Group
	maxExamples int
}

// NewIndex creates an empty index keeping up to maxExamples distinct raw
// messages per group.
func NewIndex(maxExamples int) *Index {
	if maxExamples < 0 {
		maxExamples = 0
	}
	return &Index{
		groups:      make(map[string]*Group),
		maxExamples: maxExamples,
	}
}

// Observe adds an entry whose message normalized to res. It returns the
// entry's group and whether the group was created by this call.
func (ix *Index) Observe(entry *common.LogEntry, res normalize.Result) (Group, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	fp := Fingerprint(res.Output)
	g, ok := ix.groups[fp]
	if !ok {
		g = newGroup(fp, entry, res)
		ix.groups[fp] = g
	}
	g.observe(entry, res.Input, ix.maxExamples)
	return g.snapshot(), !ok
}

// Len returns the number of groups.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.groups)
}

// Groups returns copies of all groups, largest first.
func (ix *Index) Groups() []*Group {
	ix.mu.Lock()
	out := make([]*Group, 0, len(ix.groups))
	for _, g := range ix.groups {
		c := g.snapshot()
		out = append(out, &c)
	}
	ix.mu.Unlock()

	SortGroups(out)
	return out
}

// merge folds other, covering later input, into ix.
func (ix *Index) merge(other *Index) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	other.mu.Lock()
	defer other.mu.Unlock()

	for fp, og := range other.groups {
		if g, ok := ix.groups[fp]; ok {
			g.absorb(og, ix.maxExamples)
			continue
		}
		ix.groups[fp] = og
	}
}

func (g *Group) snapshot() Group {
	c := *g
	c.Examples = append([]string(nil), g.Examples...)
	if g.Placeholders != nil {
		c.Placeholders = make(map[normalize.Label]int, len(g.Placeholders))
		for k, v := range g.Placeholders {
			c.Placeholders[k] = v
		}
	}
	return c
}

// SortGroups orders groups by count descending, then template.
func SortGroups(groups []*Group) {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Template < groups[j].Template
	})
}
