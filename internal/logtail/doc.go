// Package logtail reads and classifies log lines for display.
//
// # Overview
//
// Two kinds of lines reach the log panel: device lines fetched from /logs
// (plus the UI's own [UI]/[PTZ] overlay lines), and the local diagnostics
// log written by zerolog. This package tails the diagnostics file, renders
// its JSON lines for humans, and classifies any line so the UI can colour it.
//
// # Reading Log Files
//
// Read uses a ring buffer of size maxLines, so a large diagnostics file is
// scanned once and only the tail is kept in memory:
//
//	lines, err := logtail.Read(cfg.LogFile, 400)
//	if err != nil {
//		return err
//	}
//	lines = logtail.Humanize(lines)
//
// Read returns nil, nil for a missing file. Other errors are wrapped.
//
// # Classification
//
// Classify maps a line to a Kind:
//
//   - [UI]/[PTZ] lines: KindUI, or KindError when they report a failure
//   - error/exception/traceback words: KindError
//   - warn/debug/info level words (including zerolog's WRN/DBG/INF): the matching Kind
//   - [DSE]/[APP] pipeline lines: KindInfo
//   - anything else: KindPlain
//
// Words are matched whole, so "Interrupt" is not an error.
package logtail
