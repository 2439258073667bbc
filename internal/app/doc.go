// Package app provides the orchestration layer for iotdash.
//
// # Overview
//
// This package wires together configuration, logging, the API client,
// metrics and the UI. It is the composition root where all dependencies
// are initialized and connected.
//
// # Startup
//
//  1. Load ~/.config/iotdash/config.toml and layer command-line overrides
//  2. Open the log file; the TUI owns the terminal so nothing logs to stderr
//  3. Create the session credential from the configured token
//  4. Build the rate-limited API client bound to that credential
//  5. Start the optional /metrics endpoint
//  6. Load preferences and start the TUI (blocks)
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()       Read config, apply overrides
//	       ├─────> logging.New()       File logger
//	       ├─────> api.NewCredential() Session token
//	       ├─────> api.NewClient()     HTTP client
//	       ├─────> metrics.Serve()     Optional Prometheus endpoint
//	       └─────> ui.Run()            Start TUI (blocks)
//
// Polling is owned by the UI: each view starts its own poller when mounted
// and stops it when the user leaves. Nothing polls in the background while
// a history table is shown.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Invalid config file
//   - Log file cannot be opened
//   - API client options rejected (bad base URL, negative rate limit)
//   - Metrics address cannot be bound
//
// Recoverable errors (logged and shown in the UI banner):
//   - Failed polls, page fetches and device commands
//   - An expired session token
//   - Unreadable preferences
//
// # Usage Example
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	if err := app.Run(ctx, app.Options{PollEvery: 5}); err != nil {
//		log.Fatal(err)
//	}
package app
