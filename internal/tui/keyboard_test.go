package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/adaptype/internal/engine"
)

func TestKeyWidthFollowsScale(t *testing.T) {
	cases := []struct {
		scale float64
		want  int
	}{
		{engine.MinScale, 5},
		{engine.ScaleForErrors(1), 6},
		{engine.ScaleForErrors(2), 6},
		{engine.MaxScale, 7},
		{0.5, 5},
	}
	for _, tc := range cases {
		if got := keyWidth(tc.scale); got != tc.want {
			t.Fatalf("keyWidth(%v) = %d, want %d", tc.scale, got, tc.want)
		}
	}
}

func TestKeyLabelCentres(t *testing.T) {
	if got := keyLabel('a', 5); got != "  A  " {
		t.Fatalf("unexpected label %q", got)
	}
	if got := keyLabel('q', 6); got != "  Q   " {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestRenderKeyGrowsWithScale(t *testing.T) {
	small := lipgloss.Width(renderKey('a', engine.MinScale, false))
	large := lipgloss.Width(renderKey('a', engine.MaxScale, false))
	if large-small != 2 {
		t.Fatalf("expected max scale key to be 2 cells wider, got %d vs %d", large, small)
	}
}

func TestRenderKeyboardScalesMistypedKey(t *testing.T) {
	flat := renderKeyboard(func(rune) float64 { return engine.MinScale }, 0)
	grown := renderKeyboard(func(r rune) float64 {
		if r == 'e' {
			return engine.MaxScale
		}
		return engine.MinScale
	}, 'e')

	for _, label := range []string{"Q", "L", "M"} {
		if !strings.Contains(flat, label) {
			t.Fatalf("keyboard missing %s", label)
		}
	}
	if lipgloss.Width(grown)-lipgloss.Width(flat) != 2 {
		t.Fatalf("expected top row to widen by 2 cells")
	}
	if lipgloss.Height(flat) != 3*lipgloss.Height(renderKey('a', 1, false)) {
		t.Fatalf("expected three key rows")
	}
}
