package validate

import "strings"

// ValidWKT performs a syntactic check on a Well-Known Text string. It accepts
// both geometry WKT ("POINT (30 10)") and CRS WKT ("PROJCS[\"...\", ...]"):
// a leading keyword followed by a balanced, quote-aware bracket group, or the
// EMPTY geometry. It does not interpret the contents; the schema only
// promises syntactic validity.
func ValidWKT(s string) bool {
	s = strings.TrimSpace(s)

	keyword, rest := splitWKTKeyword(s)
	if keyword == "" {
		return false
	}

	rest = strings.TrimSpace(rest)

	// Geometry keywords may carry a dimension qualifier: "POINT Z (30 10 5)",
	// "LINESTRING ZM EMPTY".
	if dim, tail := splitWKTKeyword(rest); isWKTDimension(dim) {
		rest = strings.TrimSpace(tail)
	}

	if strings.EqualFold(rest, "EMPTY") {
		return true
	}
	if rest == "" {
		return false
	}

	var opener, closer byte
	switch rest[0] {
	case '(':
		opener, closer = '(', ')'
	case '[':
		opener, closer = '[', ']'
	default:
		return false
	}

	depth := 0
	inQuote := false
	for i := 0; i < len(rest); i++ {
		ch := rest[i]
		if inQuote {
			if ch == '"' {
				inQuote = false
			}
			continue
		}
		switch ch {
		case '"':
			inQuote = true
		case opener:
			depth++
		case closer:
			depth--
			if depth < 0 {
				return false
			}
			if depth == 0 {
				// Nothing may trail the outermost group.
				return strings.TrimSpace(rest[i+1:]) == ""
			}
		}
	}

	return false
}

// isWKTDimension reports whether s is one of the coordinate dimension
// qualifiers of the simple-features grammar.
func isWKTDimension(s string) bool {
	return strings.EqualFold(s, "Z") || strings.EqualFold(s, "M") || strings.EqualFold(s, "ZM")
}

// splitWKTKeyword peels the leading identifier (letters and underscores, e.g.
// POINT, GEOGCS, COMPD_CS) off a WKT string.
func splitWKTKeyword(s string) (keyword, rest string) {
	i := 0
	for i < len(s) {
		ch := s[i]
		if (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || ch == '_' {
			i++
			continue
		}
		break
	}
	if i == 0 {
		return "", s
	}
	return s[:i], s[i:]
}
