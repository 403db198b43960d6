package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	doneDot    = "●"
	pendingDot = "○"
	maxDots    = 30
)

type styledRune struct {
	s     string
	width int
}

// buildStyledRunes colours the target word against what has been typed so
// far. The rune at cursorIndex is underlined when it is still pending.
func buildStyledRunes(targetRunes, inputRunes []rune, cursorIndex int) []styledRune {
	out := make([]styledRune, 0, len(targetRunes))
	for i, target := range targetRunes {
		style := currentWordStyle
		if i < len(inputRunes) {
			if inputRunes[i] == target {
				style = correctStyle
			} else {
				style = incorrectStyle
			}
		}
		if i == cursorIndex && i >= len(inputRunes) {
			style = style.Underline(true)
		}
		out = append(out, styledRune{
			s:     style.Render(string(target)),
			width: runewidth.RuneWidth(target),
		})
	}
	return out
}

// buildInputRunes renders the typed input, marking mistyped positions.
func buildInputRunes(targetRunes, inputRunes []rune) []styledRune {
	out := make([]styledRune, 0, len(inputRunes))
	for i, typed := range inputRunes {
		style := correctStyle
		if i >= len(targetRunes) || typed != targetRunes[i] {
			style = incorrectStyle
		}
		out = append(out, styledRune{
			s:     style.Render(string(typed)),
			width: runewidth.RuneWidth(typed),
		})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func styledWidth(runes []styledRune) int {
	total := 0
	for _, item := range runes {
		total += item.width
	}
	return total
}

// progressDots marks finished words and the current one as done. Long lists
// get no dots.
func progressDots(index, count int) string {
	if count <= 0 || count > maxDots {
		return ""
	}
	dots := make([]string, count)
	for i := range dots {
		if i <= index {
			dots[i] = doneDot
		} else {
			dots[i] = pendingDot
		}
	}
	return strings.Join(dots, " ")
}
