package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// placeOver draws box centred on top of base, which is width by height
// cells. Lines of base outside the box stay visible.
func placeOver(base, box string, width, height int) string {
	lines := splitLines(base)
	for len(lines) < height {
		lines = append(lines, "")
	}
	boxLines := splitLines(box)
	boxWidth := maxLineWidth(boxLines)
	x := max((width-boxWidth)/2, 0)
	y := max((height-len(boxLines))/2, 0)

	for i, line := range boxLines {
		row := y + i
		if len(lines) <= row {
			break
		}
		target := padRight(lines[row], width)
		left := ansi.Truncate(target, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		line = padRight(line, boxWidth)
		right := ansi.TruncateLeft(target, x+ansi.StringWidth(line), "")
		lines[row] = left + line + right
	}
	return strings.Join(lines, "\n")
}

func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

func maxLineWidth(lines []string) int {
	m := 0
	for _, line := range lines {
		m = max(m, ansi.StringWidth(line))
	}
	return m
}

// padRight pads s with spaces to width cells.
func padRight(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
