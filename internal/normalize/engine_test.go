package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		candidates []Match
		want       []Match
	}{
		{
			name: "empty",
			want: []Match{},
		},
		{
			name: "same start lower priority number wins",
			candidates: []Match{
				{Start: 0, End: 1, Pattern: PatternInt},
				{Start: 0, End: 7, Pattern: PatternIP},
				{Start: 0, End: 3, Pattern: PatternFloat},
			},
			want: []Match{{Start: 0, End: 7, Pattern: PatternIP}},
		},
		{
			name: "same start and priority longer span wins",
			candidates: []Match{
				{Start: 2, End: 4, Pattern: PatternInt},
				{Start: 2, End: 6, Pattern: PatternInt},
			},
			want: []Match{{Start: 2, End: 6, Pattern: PatternInt}},
		},
		{
			name: "earlier start wins over overlapping higher priority",
			candidates: []Match{
				{Start: 3, End: 10, Pattern: PatternEmail},
				{Start: 0, End: 5, Pattern: PatternInt},
			},
			want: []Match{{Start: 0, End: 5, Pattern: PatternInt}},
		},
		{
			name: "adjacent spans are both kept",
			candidates: []Match{
				{Start: 5, End: 9, Pattern: PatternUUID},
				{Start: 0, End: 4, Pattern: PatternUUID},
				{Start: 4, End: 5, Pattern: PatternInt},
			},
			want: []Match{
				{Start: 0, End: 4, Pattern: PatternUUID},
				{Start: 4, End: 5, Pattern: PatternInt},
				{Start: 5, End: 9, Pattern: PatternUUID},
			},
		},
		{
			name: "nested candidates are discarded",
			candidates: []Match{
				{Start: 0, End: 36, Pattern: PatternUUID},
				{Start: 9, End: 13, Pattern: PatternInt},
				{Start: 30, End: 40, Pattern: PatternUniqIDToken},
				{Start: 41, End: 43, Pattern: PatternInt},
			},
			want: []Match{
				{Start: 0, End: 36, Pattern: PatternUUID},
				{Start: 41, End: 43, Pattern: PatternInt},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolve(tt.candidates)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("resolve() mismatch (-want +got):\n%s", diff)
			}
			for i := 1; i < len(got); i++ {
				if got[i-1].End > got[i].Start {
					t.Errorf("accepted spans overlap: %v and %v", got[i-1], got[i])
				}
			}
		})
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		accepted []Match
		expected string
	}{
		{"no matches", "nothing here", nil, "nothing here"},
		{"whole string", "42", []Match{{Start: 0, End: 2, Pattern: PatternInt}}, "<int>"},
		{
			"prefix and suffix preserved",
			"a 42 b 0.5 c",
			[]Match{{Start: 2, End: 4, Pattern: PatternInt}, {Start: 7, End: 10, Pattern: PatternFloat}},
			"a <int> b <float> c",
		},
		{
			"adjacent placeholders",
			"x1.5s2",
			[]Match{{Start: 1, End: 5, Pattern: PatternDuration}, {Start: 5, End: 6, Pattern: PatternInt}},
			"x<duration><int>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(tt.input, tt.accepted); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRenderLengthIndependentOfSpan(t *testing.T) {
	short := render("id 1 end", []Match{{Start: 3, End: 4, Pattern: PatternInt}})
	long := render("id 123456789012 end", []Match{{Start: 3, End: 15, Pattern: PatternInt}})
	if short != long {
		t.Errorf("Expected equal renders, got %q and %q", short, long)
	}
}
