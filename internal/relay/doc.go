// Package relay forwards alert pulses to an MQTT broker.
//
// A Relay is registered with engine.Signaler as a Cue. Every pulse becomes a
// JSON message on the configured topic (QoS 0, not retained):
//
//	{"ts":"2024-05-01T12:00:00Z","reason":"detections","client":"lookout-host"}
//
// Alert only enqueues; Run publishes. When the broker is unreachable or the
// queue is full the pulse is dropped and counted, the signaler never waits.
package relay
