package rollout

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSourceClamping(t *testing.T) {
	tests := []struct {
		name   string
		source Source
		want   int
	}{
		{"static in range", StaticSource{testKey: 40}, 40},
		{"static negative", StaticSource{testKey: -1}, 0},
		{"static missing", StaticSource{}, 0},
		{"always over", Always(101), 100},
		{"func", SourceFunc(func(string) int { return 7 }), 7},
		{"func over", SourceFunc(func(string) int { return 1000 }), 100},
		{"mutable", NewMutableSource(map[string]int{testKey: 150}), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.source.RolloutPercentage(testKey); got != tt.want {
				t.Errorf("RolloutPercentage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMutableSource(t *testing.T) {
	src := NewMutableSource(map[string]int{"a": 10})
	src.Set("b", 20)
	src.Set("a", -3)

	want := map[string]int{"a": 0, "b": 20}
	if diff := cmp.Diff(want, src.Snapshot()); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}

	src.Replace(map[string]int{"c": 99})
	if got := src.RolloutPercentage("a"); got != 0 {
		t.Errorf("Expected replaced key to be gone, got %d", got)
	}
	if got := src.RolloutPercentage("c"); got != 99 {
		t.Errorf("Expected c=99, got %d", got)
	}

	snap := src.Snapshot()
	snap["c"] = 1
	if got := src.RolloutPercentage("c"); got != 99 {
		t.Error("Snapshot must not alias internal state")
	}
}

func TestMutableSourceConcurrent(t *testing.T) {
	src := NewMutableSource(nil)
	gate := NewGate(src)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				src.Set(testKey, (i*j)%101)
				gate.Enabled(testKey, "42")
			}
		}(i)
	}
	wg.Wait()
}
