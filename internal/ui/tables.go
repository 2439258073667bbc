package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/sson6926/iotdash/internal/api"
	"github.com/sson6926/iotdash/internal/history"
	"github.com/sson6926/iotdash/internal/sensor"
)

func (m *Model) newTable(cols []table.Column) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)
	t.SetStyles(m.tableStyles())
	return t
}

func (m *Model) tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		BorderBottom(true).
		Foreground(lipgloss.Color(m.theme.Accent)).
		Bold(true)
	s.Cell = s.Cell.Foreground(lipgloss.Color(m.theme.Text))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(m.theme.SelectionText)).
		Background(lipgloss.Color(m.theme.SelectionBg)).
		Bold(false)
	return s
}

// tableHeight is the number of table rows that fit below the header, the
// tab bar, the pager and the footer.
func (m *Model) tableHeight() int {
	reserved := 8
	if m.current == ViewSensors {
		cards := 1
		if m.width < LayoutCompactWidth {
			cards = len(sensor.Metrics)
		}
		reserved += cards*sensorCardHeight + 1
	}
	return maxInt(3, m.height-reserved)
}

// resizeTables re-applies geometry and theme to the mounted view's table.
func (m *Model) resizeTables() {
	apply := func(t *table.Model, cols []table.Column) {
		t.SetColumns(cols)
		t.SetHeight(m.tableHeight())
		t.SetWidth(maxInt(0, m.width-2))
		t.SetStyles(m.tableStyles())
	}
	switch {
	case m.sensors != nil:
		apply(&m.sensors.table, sensorColumns(m.width))
	case m.history != nil:
		apply(&m.history.table, historyColumns(m.width))
	case m.voice != nil:
		apply(&m.voice.table, voiceColumns(m.width))
	}
}

func sensorColumns(width int) []table.Column {
	idW := 8
	if width >= LayoutCompactWidth {
		idW = 12
	}
	return []table.Column{
		{Title: "ID", Width: idW},
		{Title: "Time", Width: 19},
		{Title: "Temperature", Width: 12},
		{Title: "Humidity", Width: 10},
	}
}

// sensorRows lists up to limit readings, newest first.
func sensorRows(s sensor.Snapshot, limit int) []table.Row {
	n := minInt(limit, len(s.Samples))
	rows := make([]table.Row, 0, n)
	for i := len(s.Samples) - 1; i >= len(s.Samples)-n; i-- {
		sample := s.Samples[i]
		rows = append(rows, table.Row{
			orPlaceholder(sample.ID.String()),
			formatStamp(sample.CreatedAt.Time),
			formatReading(sample.Temperature, sensor.Temperature.Unit()),
			formatReading(sample.Humidity, sensor.Humidity.Unit()),
		})
	}
	return rows
}

func historyColumns(width int) []table.Column {
	actionW, valueW, byW := 10, 10, 12
	if width >= LayoutWideWidth {
		actionW, valueW, byW = 16, 16, 18
	}
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Device", Width: 8},
		{Title: "Action", Width: actionW},
		{Title: "Value", Width: valueW},
		{Title: "Triggered by", Width: byW},
		{Title: "Time", Width: 19},
	}
}

func historyRows(items []api.HistoryEntry) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, e := range items {
		rows = append(rows, table.Row{
			orPlaceholder(e.ID.String()),
			orPlaceholder(e.DeviceID.String()),
			orPlaceholder(e.ActionType),
			optString(e.ActionValue),
			orPlaceholder(e.TriggeredBy),
			formatStamp(e.CreatedAt.Time),
		})
	}
	return rows
}

func voiceColumns(width int) []table.Column {
	commandW := 24
	if width >= LayoutWideWidth {
		commandW = 48
	} else if width >= LayoutCompactWidth {
		commandW = 34
	}
	return []table.Column{
		{Title: "No.", Width: 5},
		{Title: "Command", Width: commandW},
		{Title: "Action", Width: 12},
		{Title: "Device", Width: 16},
		{Title: "Time", Width: 19},
	}
}

// voiceRows numbers rows across pages, so page 2 of size 10 starts at 11.
func voiceRows(s history.Snapshot[api.VoiceCommand]) []table.Row {
	rows := make([]table.Row, 0, len(s.Items))
	for i, v := range s.Items {
		rows = append(rows, table.Row{
			itoa(s.Page.RowNumber(i)),
			optString(v.Raw),
			orPlaceholder(v.ActionName),
			orPlaceholder(v.DeviceLabel()),
			formatStamp(v.CreatedAt.Time),
		})
	}
	return rows
}
