package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"unicode"
)

// GateUniqID is the rollout key of the experimental opaque identifier heuristics.
const GateUniqID = "grouping.experiments.parameterization.uniq_id"

// Definition describes a pattern before compilation.
type Definition struct {
	ID PatternID
	// Expr is an RE2 expression. Matching is leftmost-longest.
	Expr string
	// Group selects the capture group whose span is the match; 0 is the whole match.
	Group            int
	RequiresBoundary bool
	Gate             string
	// Validate, when set, must accept the matched text.
	Validate func(string) bool
}

// Catalog is the ordered, read-only set of compiled patterns.
type Catalog struct {
	patterns []*Pattern
}

// NewCatalog compiles definitions into a catalog ordered by precedence.
func NewCatalog(defs []Definition) (*Catalog, error) {
	seen := make(map[PatternID]bool, len(defs))
	patterns := make([]*Pattern, 0, len(defs))

	for _, def := range defs {
		if !def.ID.Valid() {
			return nil, fmt.Errorf("invalid pattern id %d", int(def.ID))
		}
		if seen[def.ID] {
			return nil, fmt.Errorf("duplicate definition for pattern %s", def.ID)
		}
		seen[def.ID] = true

		if def.Expr == "" {
			return nil, fmt.Errorf("pattern %s: empty expression", def.ID)
		}
		re, err := regexp.Compile(def.Expr)
		if err != nil {
			return nil, fmt.Errorf("pattern %s: invalid regex: %w", def.ID, err)
		}
		if def.Group < 0 || def.Group > re.NumSubexp() {
			return nil, fmt.Errorf("pattern %s: group %d out of range (%d groups)", def.ID, def.Group, re.NumSubexp())
		}
		group := def.Group
		edge := def.RequiresBoundary && def.Group == 0
		if edge {
			if re, err = regexp.Compile(edgeExpr(def.Expr)); err != nil {
				return nil, fmt.Errorf("pattern %s: invalid regex: %w", def.ID, err)
			}
			group = 1
		}
		re.Longest()

		patterns = append(patterns, &Pattern{
			id:       def.ID,
			expr:     def.Expr,
			re:       re,
			group:    group,
			edge:     edge,
			boundary: def.RequiresBoundary,
			gate:     def.Gate,
			validate: def.Validate,
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		return patterns[i].id < patterns[j].id
	})

	return &Catalog{patterns: patterns}, nil
}

// MustCatalog is like NewCatalog but panics on a malformed definition.
func MustCatalog(defs []Definition) *Catalog {
	c, err := NewCatalog(defs)
	if err != nil {
		panic(fmt.Sprintf("normalize: %v", err))
	}
	return c
}

var defaultCatalog = MustCatalog(DefaultDefinitions())

// DefaultCatalog returns the process-wide built-in catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// Patterns returns all patterns in precedence order.
func (c *Catalog) Patterns() []*Pattern {
	out := make([]*Pattern, len(c.patterns))
	copy(out, c.patterns)
	return out
}

// Len returns the number of patterns.
func (c *Catalog) Len() int {
	return len(c.patterns)
}

// Lookup returns the pattern with the given id.
func (c *Catalog) Lookup(id PatternID) (*Pattern, bool) {
	for _, p := range c.patterns {
		if p.id == id {
			return p, true
		}
	}
	return nil, false
}

// Enabled returns the patterns participating in an invocation. Gated
// patterns are included only when gate resolves their key to enabled;
// a nil gate disables every gated pattern.
func (c *Catalog) Enabled(gate Gate, inv Invocation) []*Pattern {
	out := make([]*Pattern, 0, len(c.patterns))
	decided := make(map[string]bool)
	for _, p := range c.patterns {
		if p.gate == "" {
			out = append(out, p)
			continue
		}
		on, ok := decided[p.gate]
		if !ok {
			on = gate != nil && gate.Enabled(p.gate, inv.ID)
			decided[p.gate] = on
		}
		if on {
			out = append(out, p)
		}
	}
	return out
}

const (
	weekdayShort = `(?:Mon|Tue|Wed|Thu|Fri|Sat|Sun)`
	weekdayLong  = `(?:Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)`
	monthShort   = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`
	monthAny     = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|June?|July?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)`
	zoneName     = `(?:UTC|GMT|[A-Z]{2,4}T)`
	zoneAny      = `(?:` + zoneName + `|[+-]\d{4})`
	octet        = `(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)`
	hexRun       = `[0-9a-fA-F]`
)

// DefaultDefinitions returns the built-in pattern definitions.
func DefaultDefinitions() []Definition {
	return []Definition{
		{ID: PatternEmail, Expr: `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)+`, RequiresBoundary: true},
		// Only http(s) is a URL; other schemes are left to lower patterns.
		{ID: PatternURL, Expr: `(?i:https?)://[^\s/$.?#][^\s]*`, RequiresBoundary: true},
		{ID: PatternUUID, Expr: hexRun + `{8}-` + hexRun + `{4}-` + hexRun + `{4}-` + hexRun + `{4}-` + hexRun + `{12}`, RequiresBoundary: true},
		{ID: PatternSHA1, Expr: hexRun + `{40}`, RequiresBoundary: true},
		{ID: PatternMD5, Expr: hexRun + `{32}`, RequiresBoundary: true},
		{
			ID:               PatternDateISO8601,
			Expr:             `\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}(?::\d{2}(?:[.,]\d+)?)?(?:Z(?:\d{2}:?\d{2})?|[+-]\d{2}(?::?\d{2})?)?)?`,
			RequiresBoundary: true,
		},
		{
			ID:               PatternDateRFC1123,
			Expr:             `(?:` + weekdayShort + `, )?\d{1,2} ` + monthShort + ` \d{2}(?:\d{2})? \d{2}:\d{2}(?::\d{2})?(?: ` + zoneAny + `)?`,
			RequiresBoundary: true,
		},
		{
			ID:               PatternDateRFC850,
			Expr:             weekdayLong + `, \d{2}-` + monthShort + `-\d{2}(?:\d{2})? \d{2}:\d{2}:\d{2}(?: ` + zoneAny + `)?`,
			RequiresBoundary: true,
		},
		{
			ID:               PatternDateANSIC,
			Expr:             weekdayShort + ` ` + monthShort + ` +\d{1,2} \d{2}:\d{2}:\d{2}(?: ` + zoneName + `)?(?: \d{4})?`,
			RequiresBoundary: true,
		},
		{
			ID:               PatternDateLong,
			Expr:             `(?:(?:` + weekdayLong + `|` + weekdayShort + `),? )?` + monthAny + ` \d{1,2},? \d{4}`,
			RequiresBoundary: true,
		},
		{ID: PatternDateCompact, Expr: `\d{8}[ T]\d{2}:?\d{2}:?\d{2}(?:\.\d+)?`, RequiresBoundary: true},
		{ID: PatternDateKitchen, Expr: `\d{1,2}:\d{2} ?[AaPp][Mm]`, RequiresBoundary: true},
		{ID: PatternDateTime, Expr: `\d{1,2}:\d{2}:\d{2}(?:[.,]\d+)?`, RequiresBoundary: true},
		{ID: PatternIP, Expr: `(?:` + octet + `\.){3}` + octet, RequiresBoundary: true},
		{
			ID:               PatternDuration,
			Expr:             `(?:\d+(?:\.\d+)?(?:ns|us|µs|ms|s|m|h|secs?|seconds?|mins?|minutes?|hrs?|hours?))+`,
			RequiresBoundary: true,
		},
		{ID: PatternHex, Expr: `0[xX]` + hexRun + `+`, RequiresBoundary: true},
		// The key and '=' stay; the quotes go with the value.
		{ID: PatternQuotedStr, Expr: `=("[^"]*"|'[^']*')`, Group: 1},
		{ID: PatternBool, Expr: `=((?i:true|false))`, Group: 1, RequiresBoundary: true},
		{ID: PatternFloat, Expr: `-?\d+\.\d+`, RequiresBoundary: true},
		{ID: PatternInt, Expr: `-?\d+`, RequiresBoundary: true},
		{
			ID:               PatternUniqIDJWT,
			Expr:             `eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`,
			RequiresBoundary: true,
			Gate:             GateUniqID,
		},
		{
			ID:               PatternUniqIDQuoted,
			Expr:             `"[A-Za-z0-9_.:-]*\d{6,}[A-Za-z0-9_.:-]*"|'[A-Za-z0-9_.:-]*\d{6,}[A-Za-z0-9_.:-]*'`,
			RequiresBoundary: true,
			Gate:             GateUniqID,
		},
		{
			ID:               PatternUniqIDBase64,
			Expr:             `[A-Za-z0-9+/]{8,}={1,2}`,
			RequiresBoundary: true,
			Gate:             GateUniqID,
			Validate:         isMixedToken,
		},
		{
			ID:               PatternUniqIDTrace,
			Expr:             `[a-z0-9]{16}-[A-Z]{3}`,
			RequiresBoundary: true,
			Gate:             GateUniqID,
			Validate:         hasDigit,
		},
		{
			ID:               PatternUniqIDToken,
			Expr:             `[A-Za-z0-9_-]{16,}`,
			RequiresBoundary: true,
			Gate:             GateUniqID,
			Validate:         isOpaqueToken,
		},
	}
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// isMixedToken accepts text carrying upper case, lower case and digits.
func isMixedToken(s string) bool {
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}

// maxLowerRun caps consecutive lower case letters in an opaque token;
// camelCase identifiers exceed it.
const maxLowerRun = 4

// isOpaqueToken accepts mixed-case tokens with at least two digits and no
// long lower case word inside them.
func isOpaqueToken(s string) bool {
	if !isMixedToken(s) {
		return false
	}
	digits, run := 0, 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
		if r >= 'a' && r <= 'z' {
			run++
			if run > maxLowerRun {
				return false
			}
		} else {
			run = 0
		}
	}
	return digits >= 2
}
