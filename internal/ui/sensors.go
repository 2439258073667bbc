package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sson6926/iotdash/internal/sensor"
)

// renderSensors renders the wide sensor view: one card per metric with a
// long sparkline, and the most recent readings below.
func (m *Model) renderSensors() string {
	s := m.sensors
	styles := m.theme.Styles()

	compact := m.width < LayoutCompactWidth
	cardWidth := maxInt(cardMinWidth, m.width/2-3)
	if compact {
		cardWidth = maxInt(cardMinWidth, m.width-2)
	}

	var cards []string
	for _, metric := range sensor.Metrics {
		cards = append(cards, m.renderSensorCard(s.window, metric, cardWidth, cardWidth-4))
	}

	var top string
	if compact {
		top = lipgloss.JoinVertical(lipgloss.Left, cards...)
	} else {
		top = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	var b strings.Builder
	b.WriteString(top)
	b.WriteString("\n")

	title := "Latest readings"
	if n := len(s.window.Samples); n > 0 {
		title += " (" + itoa(minInt(n, readingRows)) + " of " + itoa(n) + " in window)"
	}
	b.WriteString(styles.AccentText.Bold(true).Render(title))
	b.WriteString("\n")

	if s.window.Empty() {
		b.WriteString(styles.MutedText.Render("No sensor data yet."))
		return b.String()
	}
	b.WriteString(s.table.View())
	return b.String()
}
