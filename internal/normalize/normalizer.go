// Package normalize turns free-text error and log messages into templates
// that stay stable across instance-specific values such as timestamps,
// identifiers, addresses and numbers.
//
// A Normalizer is safe for concurrent use: the catalog is immutable and all
// per-call state lives on the stack of the call.
package normalize

// Gate decides whether a gated pattern category participates in a call.
type Gate interface {
	Enabled(key, id string) bool
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func(key, id string) bool

// Enabled calls f(key, id).
func (f GateFunc) Enabled(key, id string) bool {
	return f(key, id)
}

// Invocation carries the per-call context of a normalization.
type Invocation struct {
	// ID is the stable identifier rollout decisions are keyed by,
	// e.g. a project or event id.
	ID string
}

// Result is the outcome of a normalization together with the accepted spans.
type Result struct {
	Input   string  `json:"input"`
	Output  string  `json:"output"`
	Matches []Match `json:"matches"`
}

// Counts returns how many spans of each label were replaced.
func (r Result) Counts() map[Label]int {
	counts := make(map[Label]int, len(r.Matches))
	for _, m := range r.Matches {
		counts[m.Label()]++
	}
	return counts
}

// Normalizer applies a catalog to messages.
type Normalizer struct {
	catalog *Catalog
	gate    Gate
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithCatalog replaces the built-in catalog.
func WithCatalog(c *Catalog) Option {
	return func(n *Normalizer) {
		n.catalog = c
	}
}

// New creates a Normalizer. gate may be nil, which disables every gated
// pattern.
func New(gate Gate, opts ...Option) *Normalizer {
	n := &Normalizer{
		catalog: DefaultCatalog(),
		gate:    gate,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Catalog returns the catalog in use.
func (n *Normalizer) Catalog() *Catalog {
	return n.catalog
}

// Normalize returns the canonical form of message.
func (n *Normalizer) Normalize(message string, inv Invocation) string {
	return n.Explain(message, inv).Output
}

// Explain normalizes message and reports the accepted spans.
func (n *Normalizer) Explain(message string, inv Invocation) Result {
	if message == "" {
		return Result{Input: message, Output: message}
	}
	patterns := n.catalog.Enabled(n.gate, inv)
	accepted := resolve(collect(message, patterns))
	return Result{
		Input:   message,
		Output:  render(message, accepted),
		Matches: accepted,
	}
}
