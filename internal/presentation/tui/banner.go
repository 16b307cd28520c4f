package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the aoflow banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"   __ _  ___  / _| | _____      __", "#34d399"},
		{"  / _` |/ _ \\| |_| |/ _ \\ \\ /\\ / /", "#2dd4bf"},
		{" | (_| | (_) |  _| | (_) \\ V  V / ", "#22d3ee"},
		{"  \\__,_|\\___/|_| |_|\\___/ \\_/\\_/  ", "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status renders a run outcome label, green for success and red otherwise.
func Status(ok bool, label string) string {
	p := termenv.ColorProfile()
	if ok {
		return termenv.String("✔ " + label).Foreground(p.Color("#22c55e")).String()
	}
	return termenv.String("✘ " + label).Foreground(p.Color("#ef4444")).Bold().String()
}
