package tui

import "testing"

func TestBuildStyledRunesCursor(t *testing.T) {
	target := []rune("ab")
	input := []rune("a")

	runes := buildStyledRunes(target, input, len(input))
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[1].s != currentWordStyle.Underline(true).Render("b") {
		t.Fatalf("expected cursor style for second rune")
	}
}

func TestBuildStyledRunesNoCursorWhenComplete(t *testing.T) {
	runes := buildStyledRunes([]rune("a"), []rune("a"), -1)
	if len(runes) != 1 {
		t.Fatalf("expected 1 rune, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for completed rune")
	}
}

func TestBuildStyledRunesKeepsTargetOnMistype(t *testing.T) {
	runes := buildStyledRunes([]rune("ab"), []rune("ax"), -1)
	if runes[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected target rune in incorrect style")
	}
}

func TestBuildInputRunesMarksMistypes(t *testing.T) {
	runes := buildInputRunes([]rune("ab"), []rune("xb"))
	if runes[0].s != incorrectStyle.Render("x") {
		t.Fatalf("expected typed rune in incorrect style")
	}
	if runes[1].s != correctStyle.Render("b") {
		t.Fatalf("expected typed rune in correct style")
	}
	if styledWidth(runes) != 2 {
		t.Fatalf("expected width 2, got %d", styledWidth(runes))
	}
}

func TestProgressDots(t *testing.T) {
	if got := progressDots(1, 3); got != "● ● ○" {
		t.Fatalf("unexpected dots %q", got)
	}
	if got := progressDots(0, 1); got != "●" {
		t.Fatalf("unexpected dots %q", got)
	}
	if got := progressDots(0, maxDots+1); got != "" {
		t.Fatalf("expected no dots for long lists, got %q", got)
	}
}
