package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// baseKeyWidth is the label width of an unscaled key in cells.
const baseKeyWidth = 5

var keyboardRows = []string{
	"qwertyuiop",
	"asdfghjkl",
	"zxcvbnm",
}

var (
	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B0B0B0")).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	grownKeyStyle = keyStyle.
			Foreground(lipgloss.Color("#F0F0F0")).
			BorderForeground(lipgloss.Color("#FF4D4F"))
	nextKeyStyle = keyStyle.
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			BorderForeground(lipgloss.Color("#C89A3A"))
)

// keyWidth converts a scale factor into a label width in cells.
func keyWidth(scale float64) int {
	return max(baseKeyWidth, int(math.Round(baseKeyWidth*scale)))
}

// keyLabel centres the upper-cased key inside width cells.
func keyLabel(key rune, width int) string {
	label := strings.ToUpper(string(key))
	pad := width - runewidth.StringWidth(label)
	if pad <= 0 {
		return label
	}
	left := pad / 2
	return strings.Repeat(" ", left) + label + strings.Repeat(" ", pad-left)
}

func renderKey(key rune, scale float64, next bool) string {
	style := keyStyle
	switch {
	case next:
		style = nextKeyStyle
	case scale > 1:
		style = grownKeyStyle
	}
	return style.Render(keyLabel(key, keyWidth(scale)))
}

// renderKeyboard draws the QWERTY letter rows. scale reports the current
// size of a key and next is the key expected next, or 0 for none.
func renderKeyboard(scale func(rune) float64, next rune) string {
	rows := make([]string, 0, len(keyboardRows))
	for _, row := range keyboardRows {
		keys := make([]string, 0, len(row))
		for _, key := range row {
			keys = append(keys, renderKey(key, scale(key), key == next))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center, keys...))
	}
	return lipgloss.JoinVertical(lipgloss.Center, rows...)
}
