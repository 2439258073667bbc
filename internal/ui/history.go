package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderPaged renders a paged history view: the table, the page bar and the
// row range. Rows from the last good page stay visible while a fetch is in
// flight or after it failed.
func renderPaged[T any](m *Model, s *pagedState[T], empty string) string {
	styles := m.theme.Styles()
	snap := s.snap

	var b strings.Builder
	switch {
	case len(snap.Items) == 0 && snap.Loading:
		b.WriteString(styles.MutedText.Render(m.spinner.View() + " Loading..."))
		return b.String()
	case snap.Empty():
		b.WriteString(styles.MutedText.Render(empty))
		return b.String()
	}

	b.WriteString(s.table.View())
	b.WriteString("\n")
	b.WriteString(m.renderPageBar(snap.Page.Page, pageBarLabels(snap.Page)))

	footer := rangeLabel(snap.Page)
	if snap.Loading {
		footer += "  " + m.spinner.View()
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(footer))
	return b.String()
}

// renderPageBar styles the page labels; the bracketed label is the
// current page.
func (m *Model) renderPageBar(current int, labels []string) string {
	styles := m.theme.Styles()
	currentLabel := "[" + itoa(current) + "]"

	parts := []string{styles.MutedText.Render("‹")}
	for _, label := range labels {
		switch label {
		case currentLabel:
			parts = append(parts, styles.AccentText.Bold(true).Render(label))
		case "…":
			parts = append(parts, styles.FaintText.Render(label))
		default:
			parts = append(parts, styles.Text.Render(label))
		}
	}
	parts = append(parts, styles.MutedText.Render("›"))
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(parts, " "))
}
