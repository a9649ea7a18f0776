package normalize

import (
	"sort"
	"strings"
)

// Match is a candidate or accepted span over byte offsets of the input.
type Match struct {
	Start   int       `json:"start"`
	End     int       `json:"end"`
	Pattern PatternID `json:"pattern"`
}

// Label returns the placeholder category of the match.
func (m Match) Label() Label {
	return m.Pattern.Label()
}

// Len returns the span length in bytes.
func (m Match) Len() int {
	return m.End - m.Start
}

func (m Match) overlaps(o Match) bool {
	return m.Start < o.End && o.Start < m.End
}

// collect pools the boundary-valid candidates of every pattern.
func collect(s string, patterns []*Pattern) []Match {
	var candidates []Match
	padded := " " + s
	for _, p := range patterns {
		candidates = p.scanPadded(s, padded, candidates)
	}
	return candidates
}

// resolve orders candidates by start, then priority, then longer span, and
// greedily keeps those that do not overlap an already accepted span. The
// result is sorted by start and pairwise disjoint.
func resolve(candidates []Match) []Match {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Pattern != b.Pattern {
			return a.Pattern.Priority() < b.Pattern.Priority()
		}
		return a.Len() > b.Len()
	})

	accepted := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		// Candidates arrive by start, so only the last accepted span can overlap.
		if n := len(accepted); n > 0 && accepted[n-1].overlaps(c) {
			continue
		}
		accepted = append(accepted, c)
	}
	return accepted
}

// render copies untouched text verbatim and substitutes each accepted span
// with its placeholder.
func render(s string, accepted []Match) string {
	if len(accepted) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range accepted {
		b.WriteString(s[last:m.Start])
		b.WriteString(m.Label().Placeholder())
		last = m.End
	}
	b.WriteString(s[last:])
	return b.String()
}
