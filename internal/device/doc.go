// Package device provides an HTTP client for the video-analytics device API.
//
// # Overview
//
// The device runs the detection pipeline and exposes a small JSON contract
// for run state, logs, detection events, pipeline lifecycle and PTZ relay.
// This package mirrors that contract in Go types and implements it on top
// of net/http.
//
// # Endpoints
//
//	GET  /status            -> {running}
//	GET  /logs              -> {lines}
//	GET  /events?limit=N    -> {items: [{label, confidence, source, track}]}
//	POST /start, /stop      -> {ok}
//	POST /clear, /simulate  -> {}
//	POST /ptz/start         {code, speed}
//	POST /ptz/stop          {code}
//	POST /ptz/config        {host, port, protocol, auth, user, password, channel, timeout}
//
// # Failure Model
//
// Only transport failures are returned as errors (connection refused,
// timeouts, truncated bodies). Bodies that are empty or not JSON decode to the
// zero value of the response type, and HTTP error statuses still have their
// body decoded because the device reports problems as {"ok": false, "error": ...}.
// Callers therefore treat "no data" and "explicit failure" the same way.
//
// Optional fields are modelled so that absence is observable: LogsResponse.Lines
// and EventsResponse.Items stay nil when missing, and StatusResponse.Running is
// a pointer.
//
// # Usage
//
//	client, err := device.NewClient("jetson.local:8000", device.WithTimeout(4*time.Second))
//	if err != nil {
//		return err
//	}
//	logs, err := client.FetchLogs(ctx)
package device
