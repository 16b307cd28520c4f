// Package luafmt re-indents generated Lua source.
//
// The formatter is line oriented: it never reflows or rewrites tokens, it only
// recomputes leading indentation from the block structure, trims trailing
// whitespace and collapses runs of blank lines. Source that does not parse is
// returned unchanged.
package luafmt

import (
	"fmt"
	"strings"

	"github.com/yuin/gopher-lua/parse"
)

const defaultIndent = "    "

// Formatter formats Lua chunks.
type Formatter struct {
	indent string
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithIndent sets the string used for one indentation level.
func WithIndent(indent string) Option {
	return func(f *Formatter) {
		f.indent = indent
	}
}

// New creates a formatter. The default indentation is four spaces.
func New(opts ...Option) *Formatter {
	f := &Formatter{indent: defaultIndent}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var std = New()

// Format formats code with the default formatter.
func Format(code string) string {
	return std.Format(code)
}

// Format returns the formatted code, or code itself when it does not parse.
// Formatting is idempotent.
func (f *Formatter) Format(code string) string {
	out, err := f.FormatChecked(code)
	if err != nil {
		return code
	}
	return out
}

// FormatChecked is like Format but reports why the code was left untouched.
func (f *Formatter) FormatChecked(code string) (string, error) {
	if err := Check(code); err != nil {
		return code, err
	}
	return f.reindent(code), nil
}

// Check reports whether code is a syntactically valid Lua chunk.
func Check(code string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua parser panic: %v", r)
		}
	}()
	if _, err := parse.Parse(strings.NewReader(code), "<generated>"); err != nil {
		return fmt.Errorf("invalid lua: %w", err)
	}
	return nil
}

func (f *Formatter) reindent(code string) string {
	lines := strings.Split(strings.ReplaceAll(code, "\r\n", "\n"), "\n")

	var (
		out     []string
		sc      = scanner{long: -1}
		levels  stack
		pending bool
	)

	for _, raw := range lines {
		verbatim := sc.long >= 0
		events := sc.scan(raw)

		if verbatim {
			if pending {
				out = append(out, "")
				pending = false
			}
			out = append(out, raw)
			levels.apply(sum(events))
			continue
		}

		text := strings.TrimSpace(raw)
		if sc.long >= 0 {
			// the rest of the line belongs to a long string or comment
			text = strings.TrimLeft(raw, " \t")
		}
		if text == "" {
			pending = len(out) > 0
			continue
		}
		if pending {
			out = append(out, "")
			pending = false
		}

		leading := 0
		for leading < len(events) && events[leading] < 0 {
			leading++
		}
		partial := levels.pop(leading)
		depth := len(levels)
		if partial {
			// "end, function()" closes part of a merged level: print it with
			// the level's opener and keep whatever it reopens on that level.
			depth--
		}
		out = append(out, strings.Repeat(f.indent, depth)+text)

		rest := sum(events[leading:])
		if partial && rest > 0 {
			levels.grow(rest)
		} else {
			levels.apply(rest)
		}
	}

	return strings.Join(out, "\n")
}

func sum(events []int) int {
	n := 0
	for _, e := range events {
		n += e
	}
	return n
}

// stack holds one entry per indentation level. A line opening several
// constructs (e.g. "f(function()") adds a single level weighted by the number
// of constructs it opened.
type stack []int

func (s *stack) apply(net int) {
	switch {
	case net > 0:
		*s = append(*s, net)
	case net < 0:
		s.pop(-net)
	}
}

// pop closes n constructs. It reports whether the top level was left
// partly open.
func (s *stack) pop(n int) bool {
	for n > 0 && len(*s) > 0 {
		top := len(*s) - 1
		if (*s)[top] <= n {
			n -= (*s)[top]
			*s = (*s)[:top]
			continue
		}
		(*s)[top] -= n
		return true
	}
	return false
}

// grow adds n constructs to the top level.
func (s *stack) grow(n int) {
	if len(*s) == 0 {
		*s = append(*s, n)
		return
	}
	(*s)[len(*s)-1] += n
}
