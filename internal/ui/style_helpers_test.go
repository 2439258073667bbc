package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestBgStyle_KeepsTextAndSpacing(t *testing.T) {
	bg := NewBgStyle("#000000")
	plain := lipgloss.NewStyle()

	if got := bg.Render("", plain); got != "" {
		t.Fatalf("Render(empty) = %q", got)
	}
	if got := stripANSI(bg.Render("a  b", plain)); got != "a  b" {
		t.Fatalf("Render keeps double spaces: %q", got)
	}
	if got := stripANSI(bg.Join([]string{"x", "y"}, " | ")); got != "x | y" {
		t.Fatalf("Join = %q", got)
	}
	if got := lipgloss.Width(bg.FillLine("hi", 10)); got != 10 {
		t.Fatalf("FillLine width = %d, want 10", got)
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
