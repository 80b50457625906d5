// Package config loads the lookout configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/lookout/config.toml (default)
//  3. If the file doesn't exist, start from an empty config
//  4. Apply LOOKOUT_* environment variables on top (caarlos0/env)
//  5. Fill blank or zero fields with defaults, then Validate
//
// # Default Values
//
//   - device_url: 127.0.0.1:8000
//   - poll_interval_ms: 800
//   - events_limit: 30
//   - request_timeout_ms: 4000
//   - log_file: ~/.local/state/lookout/lookout.log
//   - log_level: info
//   - [ptz] port 80, protocol http, auth digest, channel 1, timeout 4.0, speed 3
//   - [relay] topic lookout/alerts, client_id lookout-<hostname>; no broker (disabled)
//
// # Environment
//
// Nested tables use a table prefix: LOOKOUT_PTZ_HOST, LOOKOUT_RELAY_BROKER.
//
// # Example
//
//	device_url = "jetson.local:8000"
//	log_level = "debug"
//
//	[ptz]
//	host = "192.168.1.64"
//	user = "admin"
//	password = "secret"
//
//	[relay]
//	broker = "10.0.0.9:1883"
//
// # Validation
//
// Validate rejects a PTZ speed outside 1-8, an events limit outside 1-200,
// protocols other than http/https, auth modes other than digest/basic/none,
// and ports outside 1-65535. All problems are reported in one joined error.
package config
