// Package engine is the UI-agnostic state synchronization and control core.
//
// # Components
//
//   - suspension.go: the pause flag shared by poller, signaler and controller
//   - signaler.go: transient flash/beep pulses plus external cues
//   - poller.go: self-rescheduling /logs + /events loop
//   - commands.go: Command values and the Controller that runs them
//   - hold.go: press-and-hold translation for PTZ directions
//
// # Poll Cycle
//
//	┌──────────────┐ paused? ──yes──┐
//	│ cycle start  │                │
//	└──────┬───────┘                │
//	       ├─> GET /logs            │
//	       ├─> GET /events?limit=N  │
//	       │    └─> one Pulse if items
//	       └─> arm timer (800ms) <──┘
//
// The flag is sampled once per cycle. A cycle never overlaps the next one
// because the timer is armed only after both fetches return.
//
// # Commands
//
// Every command follows the same shape: take the control's busy lock, write a
// pending line, call the device, write one outcome line, release the lock and
// (for start/stop) read /status again after StatusRefreshDelay. Stop always
// leaves the engine suspended; Refresh suspends, clears the store and resumes
// after RefreshGrace. Simulate fires a pulse through Signaler.Force, which
// ignores suspension.
//
// # Ordering Gap
//
// In-flight requests are not cancelled when the suspension flag changes, and
// responses carry no sequence number. A /logs reply issued before a Refresh
// may land after it and repopulate the panel until the next cycle.
//
// # Time
//
// All delays go through github.com/benbjohnson/clock so tests drive them
// with clock.Mock.
package engine
