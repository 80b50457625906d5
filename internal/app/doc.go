// Package app provides the orchestration layer for the lookout application.
//
// # Overview
//
// This package wires together configuration, the diagnostics log, the device
// client, the engine and the UI. It is the composition root where all
// dependencies are initialized and connected.
//
// # Startup
//
//  1. Load ~/.config/lookout/config.toml (plus LOOKOUT_* env and flag overrides)
//  2. Open the zerolog diagnostics file; the terminal belongs to the TUI
//  3. Load UI preferences (theme, PTZ speed)
//  4. Build the device client and the runtime (store, suspension, signaler,
//     controller, poller, PTZ hold tracker, optional MQTT relay)
//  5. Read /status once so the run pill is correct before the first frame
//  6. Launch the poller, hold dispatcher and relay goroutines
//  7. Run the TUI and block until the user quits or the context is cancelled
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        file, env, defaults, Validate
//	       ├─────> newLogger()          diagnostics log
//	       ├─────> device.NewClient()   HTTP transport
//	       ├─────> newRuntime()         engine wiring
//	       ├─────> runtime.start()      status read + goroutines
//	       └─────> ui.Run()             TUI (blocks)
//
//	Goroutines (all end with ctx):
//	  poller.Run       /logs then /events, rescheduled after each cycle
//	  holder.Run       PTZ start/stop in press/release order
//	  relay.Run        alert pulses to MQTT
//
// # Error Handling
//
// Only configuration, log file and client setup errors are returned from
// Run. Once running, device and broker failures are logged to the
// diagnostics file and surfaced in the UI; nothing is fatal.
package app
