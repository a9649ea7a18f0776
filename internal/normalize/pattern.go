package normalize

import (
	"fmt"
	"regexp"
)

// Label is the placeholder category a pattern substitutes.
type Label string

const (
	LabelEmail     Label = "email"
	LabelURL       Label = "url"
	LabelIP        Label = "ip"
	LabelUUID      Label = "uuid"
	LabelSHA1      Label = "sha1"
	LabelMD5       Label = "md5"
	LabelDate      Label = "date"
	LabelDuration  Label = "duration"
	LabelHex       Label = "hex"
	LabelFloat     Label = "float"
	LabelInt       Label = "int"
	LabelQuotedStr Label = "quoted_str"
	LabelBool      Label = "bool"
	LabelUniqID    Label = "uniq_id"
)

// Placeholder returns the token rendered in place of a match.
func (l Label) Placeholder() string {
	return "<" + string(l) + ">"
}

// PatternID identifies a pattern. Declaration order is precedence order:
// a lower ID wins when two candidates start at the same offset.
type PatternID int

const (
	PatternEmail PatternID = iota
	PatternURL
	PatternUUID
	PatternSHA1
	PatternMD5
	PatternDateISO8601
	PatternDateRFC1123
	PatternDateRFC850
	PatternDateANSIC
	PatternDateLong
	PatternDateCompact
	PatternDateKitchen
	PatternDateTime
	PatternIP
	PatternDuration
	PatternHex
	PatternQuotedStr
	PatternBool
	PatternFloat
	PatternInt
	PatternUniqIDJWT
	PatternUniqIDQuoted
	PatternUniqIDBase64
	PatternUniqIDTrace
	PatternUniqIDToken

	numPatterns
)

var patternNames = [numPatterns]string{
	PatternEmail:        "email",
	PatternURL:          "url",
	PatternUUID:         "uuid",
	PatternSHA1:         "sha1",
	PatternMD5:          "md5",
	PatternDateISO8601:  "date_iso8601",
	PatternDateRFC1123:  "date_rfc1123",
	PatternDateRFC850:   "date_rfc850",
	PatternDateANSIC:    "date_ansic",
	PatternDateLong:     "date_long",
	PatternDateCompact:  "date_compact",
	PatternDateKitchen:  "date_kitchen",
	PatternDateTime:     "date_time",
	PatternIP:           "ip",
	PatternDuration:     "duration",
	PatternHex:          "hex",
	PatternQuotedStr:    "quoted_str",
	PatternBool:         "bool",
	PatternFloat:        "float",
	PatternInt:          "int",
	PatternUniqIDJWT:    "uniq_id_jwt",
	PatternUniqIDQuoted: "uniq_id_quoted",
	PatternUniqIDBase64: "uniq_id_base64",
	PatternUniqIDTrace:  "uniq_id_trace",
	PatternUniqIDToken:  "uniq_id_token",
}

var patternLabels = [numPatterns]Label{
	PatternEmail:        LabelEmail,
	PatternURL:          LabelURL,
	PatternUUID:         LabelUUID,
	PatternSHA1:         LabelSHA1,
	PatternMD5:          LabelMD5,
	PatternDateISO8601:  LabelDate,
	PatternDateRFC1123:  LabelDate,
	PatternDateRFC850:   LabelDate,
	PatternDateANSIC:    LabelDate,
	PatternDateLong:     LabelDate,
	PatternDateCompact:  LabelDate,
	PatternDateKitchen:  LabelDate,
	PatternDateTime:     LabelDate,
	PatternIP:           LabelIP,
	PatternDuration:     LabelDuration,
	PatternHex:          LabelHex,
	PatternQuotedStr:    LabelQuotedStr,
	PatternBool:         LabelBool,
	PatternFloat:        LabelFloat,
	PatternInt:          LabelInt,
	PatternUniqIDJWT:    LabelUniqID,
	PatternUniqIDQuoted: LabelUniqID,
	PatternUniqIDBase64: LabelUniqID,
	PatternUniqIDTrace:  LabelUniqID,
	PatternUniqIDToken:  LabelUniqID,
}

// Valid reports whether id names a known pattern.
func (id PatternID) Valid() bool {
	return id >= 0 && id < numPatterns
}

func (id PatternID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("pattern(%d)", int(id))
	}
	return patternNames[id]
}

// MarshalText encodes the pattern by name.
func (id PatternID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("invalid pattern id %d", int(id))
	}
	return []byte(id.String()), nil
}

// UnmarshalText decodes a pattern name.
func (id *PatternID) UnmarshalText(text []byte) error {
	parsed, err := ParsePatternID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Label returns the placeholder category of the pattern.
func (id PatternID) Label() Label {
	if !id.Valid() {
		return ""
	}
	return patternLabels[id]
}

// Priority is the precedence rank; lower wins.
func (id PatternID) Priority() int {
	return int(id)
}

// PatternIDs returns every pattern identifier in precedence order.
func PatternIDs() []PatternID {
	ids := make([]PatternID, 0, numPatterns)
	for id := PatternID(0); id < numPatterns; id++ {
		ids = append(ids, id)
	}
	return ids
}

// ParsePatternID resolves a pattern name as printed by String.
func ParsePatternID(name string) (PatternID, error) {
	for id, n := range patternNames {
		if n == name {
			return PatternID(id), nil
		}
	}
	return 0, fmt.Errorf("unknown pattern: %s", name)
}

// Pattern is a compiled, immutable normalization rule.
type Pattern struct {
	id   PatternID
	expr string
	re   *regexp.Regexp
	// group is the capture group holding the span. With edge set, re is
	// expr behind a leftEdge prefix and group is 1.
	group    int
	edge     bool
	boundary bool
	gate     string
	validate func(string) bool
}

// ID returns the pattern identifier.
func (p *Pattern) ID() PatternID { return p.id }

// Label returns the placeholder category.
func (p *Pattern) Label() Label { return p.id.Label() }

// Priority returns the precedence rank.
func (p *Pattern) Priority() int { return p.id.Priority() }

// RequiresBoundary reports whether matches must not touch word runes.
func (p *Pattern) RequiresBoundary() bool { return p.boundary }

// Gate returns the rollout key, or "" when the pattern is always enabled.
func (p *Pattern) Gate() string { return p.gate }

// Expr returns the source expression of the recognizer.
func (p *Pattern) Expr() string { return p.expr }
