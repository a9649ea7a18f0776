// Package rollout decides whether experimental normalization patterns are
// enabled for a given entity, using percentage-based rollouts.
package rollout

import "sync"

// Source supplies the rollout percentage configured for a key.
type Source interface {
	// RolloutPercentage returns a value in [0, 100]. Unknown keys are 0.
	RolloutPercentage(key string) int
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(key string) int

// RolloutPercentage calls f(key).
func (f SourceFunc) RolloutPercentage(key string) int {
	return clamp(f(key))
}

// StaticSource is a fixed key to percentage mapping.
type StaticSource map[string]int

// RolloutPercentage implements Source.
func (s StaticSource) RolloutPercentage(key string) int {
	return clamp(s[key])
}

// Always returns the same percentage for every key. Always(100) and
// Always(0) are the always-on and always-off sources.
type Always int

// RolloutPercentage implements Source.
func (a Always) RolloutPercentage(string) int {
	return clamp(int(a))
}

// MutableSource is a concurrency-safe in-memory source whose values can be
// replaced at runtime.
type MutableSource struct {
	mu     sync.RWMutex
	values map[string]int
}

// NewMutableSource creates a source seeded with values.
func NewMutableSource(values map[string]int) *MutableSource {
	m := &MutableSource{values: make(map[string]int, len(values))}
	m.Replace(values)
	return m
}

// RolloutPercentage implements Source.
func (m *MutableSource) RolloutPercentage(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key]
}

// Set updates a single key.
func (m *MutableSource) Set(key string, percentage int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = clamp(percentage)
}

// Replace swaps in a full set of values.
func (m *MutableSource) Replace(values map[string]int) {
	next := make(map[string]int, len(values))
	for k, v := range values {
		next[k] = clamp(v)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = next
}

// Snapshot returns a copy of the current values.
func (m *MutableSource) Snapshot() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

func clamp(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
