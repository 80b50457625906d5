// Package ui provides the Bubble Tea terminal interface for lookout.
//
// # Architecture
//
// The UI follows the Elm architecture: Model holds display state, Update
// reacts to messages and View renders a string. It never talks to the device
// directly. It reads state.Store snapshots on a 100 ms tick and turns user
// input into engine.Command values handed to a Dispatcher (the engine's
// Controller) off the update loop.
//
// # Layout
//
//	┌ header: logo, run pill, ALERT strobe, bell, device, speed ┐
//	│ command bar: key hints, spinner on busy controls           │
//	├──────────────────────────────────┬─────────────────────────┤
//	│ log panel (device or diagnostics)│ detections              │
//	│                                  ├─────────────────────────┤
//	│                                  │ PTZ pad                 │
//	└──────────────────────────────────┴─────────────────────────┘
//
// The right column is hidden on narrow terminals; PTZ keys still work.
//
// # Log panel
//
// Device lines are followed by the [UI]/[PTZ] overlay lines. The panel is
// only re-rendered when the snapshot LogVersion changes. If the viewport is
// at the bottom when new content arrives it stays pinned there; a reader who
// scrolled up keeps their position until G. D switches to a tail of the
// zerolog diagnostics file, rendered with logtail.Humanize.
//
// # PTZ input
//
// Mouse press on a pad button starts a move, release (or dragging off the
// button) stops it. Keyboards only deliver auto-repeat, so direction keys go
// through engine.Holder.Repeat, which stops the move once repeats cease.
// Pad geometry comes from padLayout, shared by rendering and hit-testing.
//
// # Themes
//
// Dracula (default), Nightfox and Slate. T cycles themes; the choice and
// the PTZ speed are persisted through the prefs package.
package ui
