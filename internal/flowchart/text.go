package flowchart

import (
	"strings"
	"unicode/utf8"
)

// All width arithmetic is in runes: box-drawing characters are multi-byte
// and byte lengths would misalign every column.

func width(s string) int {
	return utf8.RuneCountInString(s)
}

func maxLineWidth(lines []string) int {
	w := 0
	for _, l := range lines {
		if lw := width(l); lw > w {
			w = lw
		}
	}
	return w
}

// padCenter centers s in a field of w runes, biasing left on odd leftover.
func padCenter(s string, w int) string {
	extra := w - width(s)
	if extra <= 0 {
		return s
	}
	left := extra / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", extra-left)
}

// padRight left-aligns s in a field of w runes.
func padRight(s string, w int) string {
	extra := w - width(s)
	if extra <= 0 {
		return s
	}
	return s + strings.Repeat(" ", extra)
}

// centerBlock centers every line of a block relative to a parent width.
func centerBlock(lines []string, w int) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = padCenter(l, w)
	}
	return out
}

// box draws lines inside a closed border. Content is left-aligned; the
// inner width is the widest line, floored at minWidth.
func box(lines []string, minWidth int) []string {
	inner := maxLineWidth(lines)
	if inner < minWidth {
		inner = minWidth
	}
	bar := strings.Repeat("─", inner+2)
	out := make([]string, 0, len(lines)+2)
	out = append(out, "┌"+bar+"┐")
	for _, l := range lines {
		out = append(out, "│ "+padRight(l, inner)+" │")
	}
	out = append(out, "└"+bar+"┘")
	return out
}

// wrap greedily word-wraps s to at most w runes per line. A single word
// longer than w gets its own overlong line rather than being split.
func wrap(s string, w int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if width(line)+1+width(word) <= w {
			line += " " + word
			continue
		}
		lines = append(lines, line)
		line = word
	}
	return append(lines, line)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if width(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}

// trimTrailing strips trailing spaces from every line of a block.
func trimTrailing(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimRight(l, " ")
	}
	return out
}
