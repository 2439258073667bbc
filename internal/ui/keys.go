package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Reload     key.Binding

	// View switching
	ViewDashboard key.Binding
	ViewSensors   key.Binding
	ViewHistory   key.Binding
	ViewVoice     key.Binding

	// Navigation
	Up   key.Binding
	Down key.Binding

	// Dashboard actions
	Toggle key.Binding

	// Paging
	NextPage  key.Binding
	PrevPage  key.Binding
	FirstPage key.Binding
	LastPage  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),

		// View switching
		ViewDashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Dashboard"),
		),
		ViewSensors: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Sensors"),
		),
		ViewHistory: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Device history"),
		),
		ViewVoice: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Voice history"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),

		// Dashboard actions
		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "Switch device on/off"),
		),

		// Paging
		NextPage: key.NewBinding(
			key.WithKeys("]", "right", "n"),
			key.WithHelp("]/n", "Next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "left", "p"),
			key.WithHelp("[/p", "Previous page"),
		),
		FirstPage: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "First page"),
		),
		LastPage: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Last page"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Reload, k.CycleTheme, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewDashboard, k.ViewSensors, k.ViewHistory, k.ViewVoice},
		{k.Up, k.Down, k.Toggle},
		{k.PrevPage, k.NextPage, k.FirstPage, k.LastPage},
		{k.Reload, k.CycleTheme, k.Help, k.Quit},
	}
}
