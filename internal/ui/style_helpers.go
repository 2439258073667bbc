package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle paints every cell of a status line, including the spaces between
// separately styled segments, with one background color. Without it the
// ANSI resets between segments leave gaps in the header and tab bar.
type BgStyle struct {
	fill  lipgloss.Style
	space string
}

// NewBgStyle returns a painter for the given background color.
func NewBgStyle(bgColor string) BgStyle {
	fill := lipgloss.NewStyle().Background(lipgloss.Color(bgColor))
	return BgStyle{fill: fill, space: fill.Render(" ")}
}

// Render applies style on the painter's background. Words are styled one by
// one and joined with painted spaces, so runs of spaces keep their width.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	styled := style.Background(b.fill.GetBackground())
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = styled.Render(w)
		}
	}
	return strings.Join(words, b.space)
}

// Space returns one painted space.
func (b BgStyle) Space() string {
	return b.space
}

// Join joins segments with a painted separator.
func (b BgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, b.sep(sep))
}

// FillLine pads content to width on the painter's background.
func (b BgStyle) FillLine(content string, width int) string {
	return b.fill.Width(width).Render(content)
}

func (b BgStyle) sep(sep string) string {
	return b.fill.Render(sep)
}
