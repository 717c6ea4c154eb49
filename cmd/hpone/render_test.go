package main

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// ANSI Helpers
// =============================================================================

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "Up", stripANSI("\x1b[32mUp\x1b[0m"))
	assert.Equal(t, "plain", stripANSI("plain"))
	assert.Equal(t, "ab", stripANSI("\x1b[1;31ma\x1b[0mb"))
}

func TestVisibleWidth_IgnoresColorCodes(t *testing.T) {
	assert.Equal(t, 4, visibleWidth("\x1b[32mDown\x1b[0m"))
	assert.Equal(t, 0, visibleWidth(""))
}

// =============================================================================
// Table Rendering
// =============================================================================

func TestFormatTable_Basic(t *testing.T) {
	out := formatTable([]string{"A", "BB"}, [][]string{{"x", "yyy"}}, 80)

	want := strings.Join([]string{
		"+---+-----+",
		"| A | BB  |",
		"+---+-----+",
		"| x | yyy |",
		"+---+-----+",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestFormatTable_TruncatesKeepingTail(t *testing.T) {
	out := formatTable([]string{"PATH"}, [][]string{{"/very/long/path/to/data"}}, 10)

	assert.Contains(t, out, "| ...to/data |")
	assert.NotContains(t, out, "/very/long")
}

func TestFormatTable_ColoredCellsAlign(t *testing.T) {
	up := "\x1b[32mUp\x1b[0m"
	out := formatTable([]string{"STATUS"}, [][]string{{up}, {"Down"}}, 80)

	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.Len(t, stripANSI(line), len("+--------+"))
	}
	assert.Contains(t, out, up)
}

func TestFormatTable_ShortRowPadsMissingCells(t *testing.T) {
	out := formatTable([]string{"A", "B"}, [][]string{{"only"}}, 80)

	assert.Contains(t, out, "| only |   |")
}

// =============================================================================
// Prefixes
// =============================================================================

func TestPrefixes_PlainWhenColorDisabled(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	assert.Equal(t, "[OK]", okPrefix())
	assert.Equal(t, "[WARN]", warnPrefix())
	assert.Equal(t, "[ERROR]", errorPrefix())
}
