package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAtBoundary(t *testing.T) {
	tests := []struct {
		s          string
		start, end int
		want       bool
	}{
		{"123", 0, 3, true},
		{"a 123 b", 2, 5, true},
		{"abc123", 3, 6, false},
		{"123abc", 0, 3, false},
		{"x_12", 2, 4, false},
		{"(12)", 1, 3, true},
		{"é12", 2, 4, false},
		{"12é", 0, 2, false},
		{"-12-", 1, 3, true},
	}

	for _, tt := range tests {
		if got := atBoundary(tt.s, tt.start, tt.end); got != tt.want {
			t.Errorf("atBoundary(%q, %d, %d) = %v, want %v", tt.s, tt.start, tt.end, got, tt.want)
		}
	}
}

func TestPatternScan(t *testing.T) {
	intPattern, ok := DefaultCatalog().Lookup(PatternInt)
	if !ok {
		t.Fatal("int pattern missing from default catalog")
	}

	tests := []struct {
		name  string
		input string
		want  []Match
	}{
		{"mixed tokens rejected", "abc123 123abc python3", nil},
		{"resumes after rejected token", "abc123 45", []Match{{Start: 7, End: 9, Pattern: PatternInt}}},
		{"minus glued to word falls back to digits", "foo-9", []Match{{Start: 4, End: 5, Pattern: PatternInt}}},
		{"negative number", "x -9 y", []Match{{Start: 2, End: 4, Pattern: PatternInt}}},
		{"rejected span is consumed", "12ab 7", []Match{{Start: 5, End: 6, Pattern: PatternInt}}},
		{"left edge after accepted match", "1-2", []Match{
			{Start: 0, End: 1, Pattern: PatternInt},
			{Start: 2, End: 3, Pattern: PatternInt},
		}},
		{"letter is not a left edge", "é9 ·9", []Match{{Start: 6, End: 7, Pattern: PatternInt}}},
		{"several", "1 2,3", []Match{
			{Start: 0, End: 1, Pattern: PatternInt},
			{Start: 2, End: 3, Pattern: PatternInt},
			{Start: 4, End: 5, Pattern: PatternInt},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := intPattern.scan(tt.input, nil)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("scan() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPatternScanGroup(t *testing.T) {
	boolPattern, _ := DefaultCatalog().Lookup(PatternBool)

	got := boolPattern.scan("a=true b=falsey c=FALSE", nil)
	want := []Match{
		{Start: 2, End: 6, Pattern: PatternBool},
		{Start: 18, End: 23, Pattern: PatternBool},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scan() mismatch (-want +got):\n%s", diff)
	}
}

func TestPatternScanRejectedToken(t *testing.T) {
	token, _ := DefaultCatalog().Lookup(PatternUniqIDToken)

	tests := []struct {
		name  string
		input string
		want  []Match
	}{
		{"opaque token", "key Ab12Cd34Ef56Gh78 end", []Match{{Start: 4, End: 20, Pattern: PatternUniqIDToken}}},
		// The whole run is one candidate; its valid suffix is not retried.
		{"camelCase prefix", "abcdefghijklmnop-Ab12Cd34Ef56Gh78", nil},
		{"after rejected run", "abcdefghijklmnop-Ab12Cd34 Ab12Cd34Ef56Gh78", []Match{{Start: 26, End: 42, Pattern: PatternUniqIDToken}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := token.scan(tt.input, nil)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("scan() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPatternExprUnwrapped(t *testing.T) {
	for _, def := range DefaultDefinitions() {
		p, ok := DefaultCatalog().Lookup(def.ID)
		if !ok {
			t.Fatalf("Pattern %s missing from default catalog", def.ID)
		}
		if p.Expr() != def.Expr {
			t.Errorf("Expected Expr() %q for %s, got %q", def.Expr, def.ID, p.Expr())
		}
	}
}
