// Package normalize turns raw user-entered values into Lua source tokens.
//
// Every function here is pure and total: it never fails and always returns a
// string, possibly empty.
package normalize

import (
	"strconv"
	"strings"

	"github.com/aretw0/aoflow/pkg/domain"
)

const (
	trueLiteral  = "true"
	falseLiteral = "false"
)

// Normalize converts raw into a token according to kind (domain.KindText,
// KindVariable, KindNumber or KindBoolean). Unknown kinds are treated as text.
func Normalize(raw, kind string) string {
	switch kind {
	case domain.KindVariable:
		return Variable(raw)
	case domain.KindNumber:
		return Number(raw)
	case domain.KindBoolean:
		return Boolean(raw)
	default:
		return Text(raw)
	}
}

// Text wraps raw in double quotes unless it is already quoted.
// Empty input stays empty.
func Text(raw string) string {
	if raw == "" {
		return ""
	}
	if isQuoted(raw) {
		return raw
	}
	return `"` + escape(raw) + `"`
}

// Variable strips surrounding quotes and sanitizes the rest into a bare reference.
func Variable(raw string) string {
	return SanitizeIdentifier(TrimQuotes(raw))
}

// Number keeps only the digits of the unquoted value.
func Number(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, TrimQuotes(raw))
}

// Boolean yields the true literal only when raw normalizes, as a variable,
// to "true".
func Boolean(raw string) string {
	if Variable(raw) == trueLiteral {
		return trueLiteral
	}
	return falseLiteral
}

// TrimQuotes removes leading and trailing quote characters.
func TrimQuotes(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), `"'`)
}

// SanitizeIdentifier drops every character outside [A-Za-z0-9_.] and then the
// leading run of non-letters, so a non-empty result always starts with a letter.
func SanitizeIdentifier(name string) string {
	kept := strings.Map(func(r rune) rune {
		if isLetter(r) || (r >= '0' && r <= '9') || r == '_' || r == '.' {
			return r
		}
		return -1
	}, name)
	return strings.TrimLeftFunc(kept, func(r rune) bool { return !isLetter(r) })
}

// Toggle flips a field between TEXT and VARIABLE interpretation. Switching to
// VARIABLE sanitizes the value so it stays a valid reference.
func Toggle(value, kind string) (string, string) {
	if kind == domain.KindVariable {
		return value, domain.KindText
	}
	return SanitizeIdentifier(value), domain.KindVariable
}

// IsNumeric reports whether s parses as a number literal.
func IsNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

// escape protects embedded double quotes, backslashes and line breaks so the
// wrapped literal stays on one Lua line. A backslash that already escapes a
// quote is kept as is.
func escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && s[i+1] == '"':
			b.WriteString(`\"`)
			i++
		case c == '\\':
			b.WriteString(`\\`)
		case c == '"':
			b.WriteString(`\"`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
