package normalize

import (
	"unicode"
	"unicode/utf8"
)

// isWordRune reports whether r belongs to a contiguous alphanumeric token.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// atBoundary reports whether [start, end) is not flanked by word runes.
func atBoundary(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

// nextRune returns the offset of the rune following the one at i.
func nextRune(s string, i int) int {
	if i >= len(s) {
		return len(s) + 1
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return i + size
}

// leftEdge matches the rune before a boundary pattern's body. It accepts
// exactly the runes isWordRune rejects.
const leftEdge = `[^\p{L}\p{Nd}_]`

// edgeExpr wraps expr so that its body is capture group 1 and only starts
// after a non-word rune.
func edgeExpr(expr string) string {
	return leftEdge + `(` + expr + `)`
}

// scan returns every accepted candidate of p in s.
func (p *Pattern) scan(s string, out []Match) []Match {
	return p.scanPadded(s, " "+s, out)
}

// scanPadded is scan with padded = " " + s, which gives the first rune of s
// a non-word rune for leftEdge to match. Each search starts at or after the
// end of the previous raw match, accepted or rejected, so no byte of s is
// matched twice and a scan is linear in len(s). A rejected candidate
// consumes its span.
func (p *Pattern) scanPadded(s, padded string, out []Match) []Match {
	pos := 0
	for pos <= len(s) {
		var loc []int
		base := pos
		if p.edge {
			// Start one rune early so leftEdge sees what precedes pos.
			_, size := utf8.DecodeLastRuneInString(padded[:pos+1])
			q := pos + 1 - size
			loc = p.re.FindStringSubmatchIndex(padded[q:])
			base = q - 1
		} else {
			loc = p.re.FindStringSubmatchIndex(s[pos:])
		}
		if loc == nil {
			break
		}

		fullEnd := base + loc[1]
		if start := loc[2*p.group]; start >= 0 {
			start, end := base+start, base+loc[2*p.group+1]
			if p.accept(s, start, end) {
				out = append(out, Match{
					Start:   start,
					End:     end,
					Pattern: p.id,
				})
			}
		}

		if fullEnd > pos {
			pos = fullEnd
		} else {
			pos = nextRune(s, pos)
		}
	}
	return out
}

func (p *Pattern) accept(s string, start, end int) bool {
	if end <= start {
		return false
	}
	if p.boundary && !atBoundary(s, start, end) {
		return false
	}
	if p.validate != nil && !p.validate(s[start:end]) {
		return false
	}
	return true
}
