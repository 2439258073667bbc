// Package config loads the iotdash TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/iotdash/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. IOTDASH_TOKEN, when set, replaces the token in every case
//
// # Default Values
//
//   - API base: http://127.0.0.1:8000
//   - Request timeout: 10s
//   - Poll interval: 5s
//   - Dashboard window: 10 samples; sensor view window: 100 samples
//   - History page size: 10
//   - Requests per second: 10 (0 disables client-side throttling)
//   - Log file: ~/.local/state/iotdash/iotdash.log at level info
//   - Metrics endpoint: disabled
//
// # TOML Format
//
//	api_base = "http://127.0.0.1:8000"
//	token = "eyJhbGciOi..."
//	request_timeout = "10s"
//	poll_interval = "5s"
//	dashboard_window = 10
//	sensor_window = 100
//	page_size = 10
//	requests_per_second = 10
//	log_file = "~/.local/state/iotdash/iotdash.log"
//	log_level = "info"
//	metrics_addr = "127.0.0.1:9101"
//
// Durations use Go syntax. Non-positive windows and page sizes fall back to
// their defaults; malformed durations and negative rates are errors.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, and invalid values. Missing config files are NOT an
// error, so iotdash works against a local backend without any setup.
package config
