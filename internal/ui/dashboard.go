package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sson6926/iotdash/internal/devices"
	"github.com/sson6926/iotdash/internal/sensor"
)

// sensorCardHeight is the rendered height of one sensor card including its border.
const sensorCardHeight = 8

// renderDashboard renders the device list next to the sensor cards; narrow
// terminals stack them.
func (m *Model) renderDashboard() string {
	d := m.dash
	compact := m.width < LayoutCompactWidth

	devicesWidth := m.width - 2
	cardWidth := m.width - 2
	if !compact {
		devicesWidth = maxInt(cardMinWidth, m.width/3)
		cardWidth = maxInt(cardMinWidth, (m.width-devicesWidth)/2-3)
	}

	devicePanel := m.renderDevicePanel(d.devices, d.selected, devicesWidth)

	var cards []string
	for _, metric := range sensor.Metrics {
		cards = append(cards, m.renderSensorCard(d.window, metric, cardWidth, cardWidth-4))
	}

	if compact {
		return lipgloss.JoinVertical(lipgloss.Left, append([]string{devicePanel}, cards...)...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, append([]string{devicePanel}, cards...)...)
}

func (m *Model) panelStyle(width int, focused bool) lipgloss.Style {
	border := m.theme.Border
	if focused {
		border = m.theme.BorderFocus
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(0, 1).
		Width(maxInt(cardMinWidth, width))
}

// renderDevicePanel lists devices with their status and pending marker.
func (m *Model) renderDevicePanel(snap devices.Snapshot, selected, width int) string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.AccentText.Bold(true).Render("Devices"))
	b.WriteString("\n")

	switch {
	case !snap.Loaded && snap.Loading:
		b.WriteString(styles.MutedText.Render(m.spinner.View() + " Loading devices..."))
	case snap.Empty():
		b.WriteString(styles.MutedText.Render("No devices registered."))
	case len(snap.Devices) == 0:
		b.WriteString(styles.FaintText.Render(placeholder))
	}

	nameWidth := maxInt(8, width-16)
	for i, dev := range snap.Devices {
		cursor := "  "
		nameStyle := styles.Text
		if i == selected {
			cursor = styles.AccentText.Render("› ")
			nameStyle = styles.Selected.Bold(true)
		}

		statusKey := "off"
		label := "OFF"
		if dev.Status.IsOn() {
			statusKey, label = "on", "ON"
		}
		badge := styles.StatusText(statusKey).Render("● " + label)
		if dev.Pending {
			badge += " " + styles.StatusText("pending").Render(m.spinner.View())
		}

		name := lipgloss.NewStyle().Width(nameWidth).Render(nameStyle.Render(truncate(orPlaceholder(dev.Name), nameWidth)))
		b.WriteString("\n" + cursor + name + badge)
	}

	if len(snap.Devices) > 0 {
		b.WriteString("\n\n")
		b.WriteString(styles.FaintText.Render("enter switch on/off"))
	}

	return m.panelStyle(width, true).Render(b.String())
}

// renderSensorCard renders the newest reading of one metric with its trend,
// a fill gauge and a sparkline of the window.
func (m *Model) renderSensorCard(snap sensor.Snapshot, metric sensor.Metric, width, sparkWidth int) string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.AccentText.Bold(true).Render(metricLabel(metric)))
	b.WriteString("\n")

	latest, ok := snap.Latest()
	if !ok {
		switch {
		case snap.State == sensor.StateLoading:
			b.WriteString(styles.MutedText.Render(m.spinner.View() + " Loading sensor data..."))
		case snap.Empty():
			b.WriteString(styles.MutedText.Render("No sensor data yet."))
		default:
			b.WriteString(styles.FaintText.Render(placeholder))
		}
		return m.panelStyle(width, false).Height(sensorCardHeight - 2).Render(b.String())
	}

	unit := metric.Unit()
	value := metric.Value(latest)
	trend := snap.Trend(metric)

	b.WriteString(styles.Text.Bold(true).Render(formatReading(value, unit)))
	b.WriteString("  ")
	b.WriteString(styles.StatusText(string(trend.Direction)).Render(trendGlyph(trend.Direction) + " " + formatDelta(trend.Value, unit)))
	b.WriteString("\n")

	since := "since " + formatClock(trend.Reference)
	b.WriteString(styles.FaintText.Render(since + "  at " + formatClock(latest.CreatedAt.Time)))
	if snap.IsOffline() {
		b.WriteString(" " + styles.DangerText.Render("stale"))
	}
	b.WriteString("\n")

	barWidth := maxInt(4, sparkWidth)
	b.WriteString(styles.InfoText.Render(fillBar(value, metricScale(metric), barWidth)))
	b.WriteString("\n")

	series := snap.Series(metric)
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Value
	}
	b.WriteString(styles.AccentText.Render(sparkline(values, minInt(sparkWidth, sparklineMaxWidth))))

	return m.panelStyle(width, false).Height(sensorCardHeight - 2).Render(b.String())
}
