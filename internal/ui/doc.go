// Package ui provides the terminal dashboard for iotdash.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. The root Model owns exactly one mounted
// view at a time, and each view owns the state behind it:
//
//   - Dashboard: a devices.Board for optimistic on/off switching and a
//     poller.Poller feeding a short sensor window
//   - Sensors: a poller.Poller feeding a long sensor window, shown as cards
//     with sparklines and a table of the newest readings
//   - Device history and Voice history: a history.List each, paged through
//     the API with a numbered page bar
//
// Switching views unmounts the previous one: its poller stops and its list
// closes, so responses that arrive later are discarded by their owner
// instead of reaching the screen.
//
// # Event Flow
//
//  1. Run builds the Model and starts the program on the caller's context
//  2. Init mounts the initial view and starts the spinner and refresh tick
//  3. Each tick copies fresh snapshots out of the mounted view's state
//  4. Keys switch views, page history, or switch a device on or off; the
//     blocking API calls run as tea.Cmd functions
//  5. Quitting or cancelling the context unmounts the view
//
// # Rendering
//
// Colors come from Theme, cycled with T and persisted through prefs along
// with the last view. BgStyle keeps background colors continuous across
// separately styled segments in the header and tab bar.
//
// # Key Bindings
//
//   - 1-4, Tab: switch views
//   - j/k, Enter: select and switch a device on the dashboard
//   - [ ], g, G: page history tables
//   - r: reload, T: cycle theme, ?: help, q: quit
package ui
