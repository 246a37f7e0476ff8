package tracking

import (
	"image"
	"time"
)

// EventType names a semantic event raised by the Detector.
type EventType string

const (
	EventPersonDetected  EventType = "person_detected"
	EventPersonDwelling  EventType = "person_dwelling"
	EventPersonLeft      EventType = "person_left"
	EventVehicleDetected EventType = "vehicle_detected"
	EventVehicleStopped  EventType = "vehicle_stopped"
	EventVehicleParked   EventType = "vehicle_parked"
	EventVehicleLeft     EventType = "vehicle_left"
	EventPackageDetected EventType = "package_detected"
	EventPackageRemoved  EventType = "package_removed"
)

// Confidence attached to events synthesised from stationary records rather
// than a live detection (parked/left), which carry no detector score.
const stationaryEventConfidence = 0.9

// Event is one fired semantic event. Meta carries event-specific numeric
// details ("dwell", "stop_time", "parked_duration", all in seconds).
type Event struct {
	Type        EventType
	Timestamp   time.Time
	Class       string
	Confidence  float64
	Box         image.Rectangle
	Meta        map[string]float64
	Color       string
	Description string
}

// Map flattens the event into a plain JSON-ready structure for downstream
// consumers (database rows, WebSocket broadcast, notification embeds). Meta
// keys are inlined at the top level as float64 values; timestamp becomes
// fractional unix seconds; color/description appear only when set.
func (e Event) Map() map[string]any {
	m := map[string]any{
		"type":       string(e.Type),
		"timestamp":  float64(e.Timestamp.UnixNano()) / 1e9,
		"class":      e.Class,
		"confidence": e.Confidence,
		"bbox":       []int{e.Box.Min.X, e.Box.Min.Y, e.Box.Max.X, e.Box.Max.Y},
	}
	for k, v := range e.Meta {
		m[k] = v
	}
	if e.Color != "" {
		m["color"] = e.Color
	}
	if e.Description != "" {
		m["description"] = e.Description
	}
	return m
}

// display returns the human-readable subject for log lines: the description
// when classification supplied one, the bare class otherwise.
func (e Event) display() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Class
}
