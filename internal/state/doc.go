// Package state holds the display state shared by the control engine and the UI.
//
// # Overview
//
// The Store is the render sink of the application: the poller, the command
// controller and the alert signaler write into it, and the UI reads immutable
// snapshots on its own tick. Nothing in here talks to the network.
//
// # Snapshot Semantics
//
// Data coming from the device is never merged. Each successful poll replaces
// the whole collection:
//
//	store.ReplaceLogs(lines)        -> Logs = lines, Overlay = nil
//	store.ReplaceDetections(items)  -> Detections = items
//	store.SetRunning(running)       -> Running = running, HasStatus = true
//
// Lines written by the UI itself ("[UI] start ok") live in Overlay and are
// rendered after the device lines until the next ReplaceLogs.
//
// Failed polls keep the previous data and only touch the failure bookkeeping
// (LastError, ConsecutiveFailures), so a dropped request never blanks a panel.
//
// # Concurrency Model
//
// Writers take the write lock for the duration of a copy; Snapshot takes the
// read lock and returns deep copies of slices and the busy map. The zero
// Store is ready to use.
//
// # Busy Controls
//
// TryAcquire/SetBusy implement the per-control busy lock: a control that is
// busy cannot be triggered again until its own command sequence finishes.
// Locks are independent per Control.
package state
