package query

import "strings"

// The wire search grammar is a comma-separated list of terms, each
// optionally scoped to a field:
//
//	[<field>:]<term>[,[<field>:]<term>...]
//
// Literal commas, colons, and backslashes inside a term are escaped
// with a backslash.

// EscapeSearch escapes the reserved search separator characters in the
// given value so it can be embedded in a wire search string.
func EscapeSearch(value string) string {
	var sb strings.Builder
	sb.Grow(len(value))
	for _, r := range value {
		switch r {
		case '\\', ',', ':':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// UnescapeSearch reverses EscapeSearch. A trailing lone backslash is
// preserved as-is.
func UnescapeSearch(value string) string {
	var sb strings.Builder
	sb.Grow(len(value))
	escaped := false
	for _, r := range value {
		if escaped {
			sb.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		sb.WriteRune(r)
	}
	if escaped {
		sb.WriteByte('\\')
	}
	return sb.String()
}

// EncodeSearch renders filters as a wire search string. Unscoped
// filters render as bare terms.
func EncodeSearch(filters []Filter) string {
	terms := make([]string, 0, len(filters))
	for _, f := range filters {
		term := EscapeSearch(f.Value)
		if f.Field != "" {
			term = f.Field + ":" + term
		}
		terms = append(terms, term)
	}
	return strings.Join(terms, ",")
}

// DecodeSearch parses a wire search string back into filters. It is
// the inverse of EncodeSearch for strings it produced.
func DecodeSearch(s string) []Filter {
	if s == "" {
		return nil
	}

	var filters []Filter
	var term strings.Builder
	escaped := false

	flush := func() {
		raw := term.String()
		term.Reset()
		filter := Filter{Value: raw}
		// Split on the first unescaped colon, if any.
		for i := 0; i < len(raw); i++ {
			if raw[i] == '\\' {
				i++
				continue
			}
			if raw[i] == ':' {
				filter.Field = raw[:i]
				filter.Value = raw[i+1:]
				break
			}
		}
		filter.Value = UnescapeSearch(filter.Value)
		filters = append(filters, filter)
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			term.WriteByte('\\')
			term.WriteByte(c)
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case ',':
			flush()
		default:
			term.WriteByte(c)
		}
	}
	if escaped {
		term.WriteByte('\\')
	}
	flush()

	return filters
}
