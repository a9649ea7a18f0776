package rollout

import (
	"fmt"
	"testing"
)

const testKey = "grouping.experiments.parameterization.uniq_id"

func TestGateBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		source Source
		want   bool
	}{
		{"zero is always off", Always(0), false},
		{"hundred is always on", Always(100), true},
		{"negative clamps to off", Always(-5), false},
		{"over hundred clamps to on", Always(250), true},
		{"unknown key is off", StaticSource{"other": 100}, false},
		{"known key at hundred", StaticSource{testKey: 100}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(tt.source)
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("project-%d", i)
				if got := gate.Enabled(testKey, id); got != tt.want {
					t.Fatalf("Enabled(%q) = %v, want %v", id, got, tt.want)
				}
			}
		})
	}
}

func TestGateNilSafety(t *testing.T) {
	var gate *Gate
	if gate.Enabled(testKey, "1") {
		t.Error("Expected nil gate to be disabled")
	}
	if NewGate(nil).Enabled(testKey, "1") {
		t.Error("Expected gate without source to be disabled")
	}
}

func TestGateDeterministic(t *testing.T) {
	gate := NewGate(Always(50))
	for i := 0; i < 100; i++ {
		id := fmt.Sprintf("%d", i)
		first := gate.Enabled(testKey, id)
		for j := 0; j < 5; j++ {
			if gate.Enabled(testKey, id) != first {
				t.Fatalf("Expected stable decision for id %q", id)
			}
		}
		if first != (Bucket(id) < 50) {
			t.Fatalf("Decision for %q disagrees with bucket %d", id, Bucket(id))
		}
	}
}

func TestGateMonotonic(t *testing.T) {
	// An id enabled at p stays enabled at every higher percentage.
	for i := 0; i < 500; i++ {
		id := fmt.Sprintf("org-%d", i)
		enabled := false
		for pct := 0; pct <= 100; pct += 10 {
			now := NewGate(Always(pct)).Enabled(testKey, id)
			if enabled && !now {
				t.Fatalf("id %q enabled below %d%% but not at %d%%", id, pct, pct)
			}
			enabled = now
		}
	}
}

func TestBucketDistribution(t *testing.T) {
	const n = 10000
	gate := NewGate(Always(30))

	enabled := 0
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("id-%d", i)
		b := Bucket(id)
		if b < 0 || b >= 100 {
			t.Fatalf("Bucket(%q) = %d, out of range", id, b)
		}
		if gate.Enabled(testKey, id) {
			enabled++
		}
	}

	if enabled < 2700 || enabled > 3300 {
		t.Errorf("Expected roughly 30%% enabled, got %d of %d", enabled, n)
	}
}
