package main

import (
	"regexp"
	"strings"

	"github.com/fatih/color"
)

// =============================================================================
// Output Prefixes
// =============================================================================

// The prefixes are built per call so tests that flip color.NoColor see
// the change.

func okPrefix() string { return color.GreenString("[OK]") }

func warnPrefix() string { return color.YellowString("[WARN]") }

func errorPrefix() string { return color.RedString("[ERROR]") }

// =============================================================================
// Table Rendering
// =============================================================================

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// stripANSI removes color escape sequences for width calculations.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// visibleWidth is the on-screen rune count of a possibly colored cell.
func visibleWidth(s string) int {
	return len([]rune(stripANSI(s)))
}

// formatTable renders rows as an ASCII grid. Column widths fit the
// longest cell up to maxWidth; an overlong cell keeps its tail behind a
// "..." marker so ports and paths stay recognizable.
func formatTable(headers []string, rows [][]string, maxWidth int) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if w := visibleWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	if maxWidth > 0 {
		for i := range widths {
			if widths[i] > maxWidth {
				widths[i] = maxWidth
			}
		}
	}

	var b strings.Builder
	writeSeparator(&b, widths)
	writeRow(&b, headers, widths)
	writeSeparator(&b, widths)
	for _, row := range rows {
		writeRow(&b, row, widths)
	}
	writeSeparator(&b, widths)
	return b.String()
}

func writeSeparator(b *strings.Builder, widths []int) {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w+2)
	}
	b.WriteString("+" + strings.Join(parts, "+") + "+\n")
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = " " + fitCell(cell, w) + " "
	}
	b.WriteString("|" + strings.Join(parts, "|") + "|\n")
}

// fitCell pads or truncates a cell to width columns, counting visible
// runes only so colored cells line up. Truncation drops the color since
// a partial escape sequence would corrupt the row.
func fitCell(cell string, width int) string {
	w := visibleWidth(cell)
	if w > width {
		plain := []rune(stripANSI(cell))
		if width > 3 {
			cell = "..." + string(plain[len(plain)-(width-3):])
		} else {
			cell = string(plain[len(plain)-width:])
		}
		w = width
	}
	return cell + strings.Repeat(" ", width-w)
}
