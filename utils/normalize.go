package utils

import "strings"

// NormalizeKeyField prepares a hand- or script-populated identity field for
// comparison: trim surrounding whitespace, strip one layer of wrapping
// quotes, case-fold to lower. Forgiving on formatting, strict on content.
func NormalizeKeyField(s string) string {
	s = strings.TrimSpace(s)
	s = stripWrappingQuotes(s)
	return strings.ToLower(s)
}

// stripWrappingQuotes removes a single matching pair of wrapping quote
// characters. Only one layer: `""OC123""` becomes `"OC123"`.
func stripWrappingQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if first != last {
		return s
	}
	if first == '"' || first == '\'' || first == '`' {
		return s[1 : len(s)-1]
	}
	return s
}
