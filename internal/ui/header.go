package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sson6926/iotdash/internal/api"
	"github.com/sson6926/iotdash/internal/sensor"
)

// renderMain renders the full UI.
func (m *Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + connection status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: view tabs
	b.WriteString(m.renderTabBar())
	b.WriteString("\n")

	// Error banner, only when something failed
	if banner := m.renderBanner(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}

	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderFooter renders the short key help.
func (m *Model) renderFooter() string {
	styles := m.theme.Styles()
	bindings := m.keys.ShortHelp()
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		parts = append(parts, helpKey(binding)+" "+binding.Help().Desc)
	}
	return styles.Footer.Width(m.width).Render(truncate(strings.Join(parts, " • "), maxInt(10, m.width-2)))
}

// renderContent renders the main content area based on current view.
func (m *Model) renderContent() string {
	switch {
	case m.dash != nil:
		return m.renderDashboard()
	case m.sensors != nil:
		return m.renderSensors()
	case m.history != nil:
		return renderPaged(m, m.history, "No device actions recorded yet.")
	case m.voice != nil:
		return renderPaged(m, m.voice, "No voice commands recorded yet.")
	default:
		return ""
	}
}

// connection summarizes the mounted view's sync health for the header.
type connection struct {
	loading bool
	offline bool
	updated time.Time
}

func (m *Model) connection() connection {
	switch {
	case m.dash != nil:
		w := m.dash.window
		return connection{
			loading: w.State == sensor.StateLoading || m.dash.devices.Loading,
			offline: w.IsOffline(),
			updated: w.LastUpdated,
		}
	case m.sensors != nil:
		w := m.sensors.window
		return connection{loading: w.State == sensor.StateLoading, offline: w.IsOffline(), updated: w.LastUpdated}
	case m.history != nil:
		return connection{loading: m.history.snap.Loading}
	case m.voice != nil:
		return connection{loading: m.voice.snap.Loading}
	}
	return connection{}
}

// renderHeader renders the status bar.
func (m *Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	conn := m.connection()
	parts := []string{bg.Render("iotdash", styles.Logo)}

	switch {
	case conn.offline:
		parts = append(parts, styles.StatusStyle("offline").Render("OFFLINE"))
	case conn.loading:
		parts = append(parts, bg.Render(m.spinner.View()+" syncing", styles.WarningText))
	default:
		parts = append(parts, bg.Render("● LIVE", styles.SuccessText))
	}

	if m.apiBase != "" && !compact {
		parts = append(parts,
			bg.Render("API", styles.MutedText)+bg.Space()+
				bg.Render(truncate(m.apiBase, 40), styles.Text),
		)
	}

	if !conn.updated.IsZero() {
		age := humanizeDuration(time.Since(conn.updated))
		parts = append(parts,
			bg.Render("Updated", styles.MutedText)+bg.Space()+
				bg.Render(formatClock(conn.updated), styles.Text)+bg.Space()+
				bg.Render("("+age+")", styles.FaintText),
		)
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderTabBar renders the view selector line.
func (m *Model) renderTabBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	var parts []string
	for i, v := range viewOrder {
		label := itoa(i+1) + " " + v.Title()
		if v == m.current {
			parts = append(parts, bg.Render(label, styles.AccentText.Bold(true).Underline(true)))
			continue
		}
		parts = append(parts, bg.Render(label, styles.MutedText))
	}
	parts = append(parts, bg.Render("? help", styles.FaintText))
	return bg.FillLine(" "+bg.Join(parts, "   "), m.width)
}

// renderBanner shows the newest error of the mounted view. Data below it
// stays visible.
func (m *Model) renderBanner() string {
	msg := m.notice
	if msg == "" {
		msg = m.viewError()
	}
	if msg == "" {
		return ""
	}
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Background)).
		Background(lipgloss.Color(m.theme.Danger)).
		Bold(true).
		Padding(0, 1).
		Width(m.width)
	return style.Render(truncate(msg, maxInt(10, m.width-2)))
}

func (m *Model) viewError() string {
	var err error
	switch {
	case m.dash != nil:
		if m.dash.devices.LastError != nil {
			return "Device list unavailable: " + api.Message(m.dash.devices.LastError)
		}
		err = m.dash.window.LastError
	case m.sensors != nil:
		err = m.sensors.window.LastError
	case m.history != nil:
		err = m.history.snap.LastError
	case m.voice != nil:
		err = m.voice.snap.LastError
	}
	if err == nil {
		return ""
	}
	return "Sync failed: " + api.Message(err)
}
