package luafmt

import "strings"

// scanner walks Lua source line by line and reports block open (+1) and
// close (-1) events, skipping strings and comments. Long brackets may span
// lines; long is the level of the bracket currently open, or -1.
type scanner struct {
	long int
}

func (s *scanner) scan(line string) []int {
	var events []int
	n := len(line)
	i := 0
	for i < n {
		if s.long >= 0 {
			closing := "]" + strings.Repeat("=", s.long) + "]"
			idx := strings.Index(line[i:], closing)
			if idx < 0 {
				return events
			}
			i += idx + len(closing)
			s.long = -1
			continue
		}

		c := line[i]
		switch {
		case c == '-' && i+1 < n && line[i+1] == '-':
			i += 2
			if level, width, ok := longBracket(line[i:]); ok {
				s.long = level
				i += width
				continue
			}
			return events
		case c == '[':
			if level, width, ok := longBracket(line[i:]); ok {
				s.long = level
				i += width
				continue
			}
			i++
		case c == '"' || c == '\'':
			i = skipString(line, i)
		case c == '(' || c == '{':
			events = append(events, 1)
			i++
		case c == ')' || c == '}':
			events = append(events, -1)
			i++
		case isIdentStart(c):
			j := i
			for j < n && isIdent(line[j]) {
				j++
			}
			events = append(events, keyword(line[i:j])...)
			i = j
		default:
			i++
		}
	}
	return events
}

func keyword(word string) []int {
	switch word {
	case "function", "do", "then", "repeat":
		return []int{1}
	case "end", "until", "elseif":
		return []int{-1}
	case "else":
		return []int{-1, 1}
	}
	return nil
}

// longBracket matches "[[", "[=[", "[==[" ... at the start of s.
func longBracket(s string) (level, width int, ok bool) {
	if len(s) < 2 || s[0] != '[' {
		return 0, 0, false
	}
	i := 1
	for i < len(s) && s[i] == '=' {
		i++
	}
	if i < len(s) && s[i] == '[' {
		return i - 1, i + 1, true
	}
	return 0, 0, false
}

func skipString(line string, start int) int {
	quote := line[start]
	i := start + 1
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		default:
			i++
		}
	}
	return len(line)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdent(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
