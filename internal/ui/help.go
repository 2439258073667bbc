package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var helpSectionTitles = []string{"Views", "Dashboard", "History", "General"}

// renderHelp renders the help overlay.
func (m *Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder

	// Title
	title := styles.Text.Bold(true).Render("Keyboard Shortcuts")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	groups := m.keys.FullHelp()
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	for i, group := range groups {
		b.WriteString(styles.AccentText.Bold(true).Render(helpSectionTitles[i]))
		b.WriteString("\n")

		for _, binding := range group {
			b.WriteString(keyStyle.Render(helpKey(binding)))
			b.WriteString(styles.Text.Render(binding.Help().Desc))
			b.WriteString("\n")
		}

		if i < len(groups)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(44)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

func helpKey(b key.Binding) string {
	if h := b.Help().Key; h != "" {
		return h
	}
	return strings.Join(b.Keys(), "/")
}
