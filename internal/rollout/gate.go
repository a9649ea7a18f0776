package rollout

import (
	"github.com/cespare/xxhash/v2"
)

// Gate maps a stable identifier to a bucket in [0, 100) and enables a key
// when the bucket is below the key's rollout percentage. The same
// identifier always lands in the same bucket.
type Gate struct {
	source Source
}

// NewGate creates a gate backed by source. A nil source disables every key.
func NewGate(source Source) *Gate {
	return &Gate{source: source}
}

// Enabled reports whether key is enabled for id.
func (g *Gate) Enabled(key, id string) bool {
	if g == nil || g.source == nil {
		return false
	}
	pct := clamp(g.source.RolloutPercentage(key))
	switch pct {
	case 0:
		return false
	case 100:
		return true
	}
	return Bucket(id) < pct
}

// Bucket returns the rollout bucket of id.
func Bucket(id string) int {
	return int(xxhash.Sum64String(id) % 100)
}
