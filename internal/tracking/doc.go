// Package tracking turns per-frame object detections into semantic events.
//
// The Detector ingests bounding-box detections from an external model
// runtime, matches them frame-to-frame without persistent detector IDs, and
// raises events for the situations a surveillance system cares about: a
// person dwelling near the property, a vehicle stopping, parking, or
// leaving, a package appearing. Detector flicker, PTZ camera motion, and
// duplicate detections are absorbed by layered rate limiting, location
// dedup, and tolerant staleness timeouts rather than surfacing as event
// spam.
//
// The Detector is single-threaded by design: it holds no locks, performs no
// I/O, and must be driven from one goroutine via Update with explicit
// timestamps. Event subscribers run synchronously on that same goroutine in
// registration order; a panicking subscriber is logged and isolated.
package tracking
