package domain

import (
	"fmt"
	"strings"
)

// NoGeneratorComment replaces the code of nodes whose type has no generator.
const NoGeneratorComment = "-- there is no code generator for this node"

// StartMarker returns the comment opening the fragment of a node.
func StartMarker(id string) string {
	return "-- [start:" + id + "]"
}

// EndMarker returns the comment closing the fragment of a node.
func EndMarker(id string) string {
	return "-- [end:" + id + "]"
}

// WrapFragment delimits already formatted code with the node markers.
func WrapFragment(id, code string) string {
	return "\n\n" + StartMarker(id) + "\n" + code + "\n" + EndMarker(id) + "\n"
}

// ContainsFragment reports whether text already holds the fragment of id.
func ContainsFragment(text, id string) bool {
	return strings.Contains(text, StartMarker(id))
}

// ErrorComment renders a generation failure as Lua comments so previews stay
// valid and the failing node can be traced.
func ErrorComment(id string, err error) string {
	msg := strings.ReplaceAll(err.Error(), "\n", "\n-- ")
	return fmt.Sprintf("-- [error:%s]\n-- Error generating code: %s", id, msg)
}

// ErrorFragment is the delimited fragment of a node that failed to generate.
func ErrorFragment(id string, err error) string {
	return WrapFragment(id, ErrorComment(id, err))
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

// ExtractFragment returns the fragment of id found in text, from its start
// marker through its end marker.
func ExtractFragment(text, id string) (string, bool) {
	start := strings.Index(text, StartMarker(id))
	if start < 0 {
		return "", false
	}
	end := strings.Index(text[start:], EndMarker(id))
	if end < 0 {
		return "", false
	}
	return text[start : start+end+len(EndMarker(id))], true
}
