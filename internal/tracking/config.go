package tracking

import (
	"fmt"
	"time"
)

// Config holds the Detector's tuning parameters. Zero values are invalid;
// start from DefaultConfig and override fields as needed.
type Config struct {
	// Detection-to-track matching
	MatchIoU       float64 // minimum IoU for a detection to match a track
	SignatureBonus float64 // additive score bonus for equal signatures

	// Track staleness. Vehicles tolerate longer gaps because detectors
	// flicker more on large, occluded or distant vehicles.
	VehicleStaleAfter time.Duration
	PersonStaleAfter  time.Duration

	// Loitering detection (persons)
	LoiterTime         time.Duration // time within the radius to count as dwelling
	LoiterRadius       float64       // pixels of movement still considered "one area"
	PositionHistoryMax int           // position ring capacity per person

	// Stationary-vehicle promotion
	VehicleStopAfter   time.Duration // track dwell before a vehicle counts as stopped
	ParkAfter          time.Duration // stopped duration before promotion to parked
	StoppedGoneAfter   time.Duration // unseen stopped record silently dropped
	ParkedGoneAfter    time.Duration // unseen parked record fires vehicle_left
	GridCellPx         int           // grid quantisation for stationary identity
	StationaryIoU      float64       // lenient overlap to absorb into a record
	StationaryColorIoU float64       // even-more-lenient overlap when colors match
	StartupScanDelay   time.Duration // grace before registering pre-existing vehicles
	RepeatedDetections int           // unmatched sightings at one cell to auto-park
	RepeatedWindow     time.Duration // window for those sightings

	// Event gating
	EventCooldown           time.Duration // per event type
	PersonDetectedCooldown  time.Duration // between person_detected events
	VehicleDetectedCooldown time.Duration // between vehicle_detected events
	LocationCooldown        time.Duration // location-dedup window per category
	LocationIoU             float64       // overlap that counts as "same spot"
	MaxEventsPerMinute      int           // global cap across all event types
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MatchIoU:       0.3,
		SignatureBonus: 0.3,

		VehicleStaleAfter: 15 * time.Second,
		PersonStaleAfter:  5 * time.Second,

		LoiterTime:         10 * time.Second,
		LoiterRadius:       100,
		PositionHistoryMax: 120,

		VehicleStopAfter:   5 * time.Second,
		ParkAfter:          180 * time.Second,
		StoppedGoneAfter:   20 * time.Second,
		ParkedGoneAfter:    60 * time.Second,
		GridCellPx:         40,
		StationaryIoU:      0.15,
		StationaryColorIoU: 0.05,
		StartupScanDelay:   10 * time.Second,
		RepeatedDetections: 2,
		RepeatedWindow:     120 * time.Second,

		EventCooldown:           30 * time.Second,
		PersonDetectedCooldown:  30 * time.Second,
		VehicleDetectedCooldown: 10 * time.Second,
		LocationCooldown:        30 * time.Second,
		LocationIoU:             0.5,
		MaxEventsPerMinute:      3,
	}
}

// Validate checks the configuration for values that would break the state
// machine (rather than merely tune it badly).
func (c Config) Validate() error {
	if c.MatchIoU <= 0 || c.MatchIoU > 1 {
		return fmt.Errorf("match IoU %v outside (0,1]", c.MatchIoU)
	}
	if c.LocationIoU <= 0 || c.LocationIoU > 1 {
		return fmt.Errorf("location IoU %v outside (0,1]", c.LocationIoU)
	}
	if c.StationaryIoU <= 0 || c.StationaryIoU > 1 {
		return fmt.Errorf("stationary IoU %v outside (0,1]", c.StationaryIoU)
	}
	if c.GridCellPx <= 0 {
		return fmt.Errorf("grid cell size %d must be positive", c.GridCellPx)
	}
	if c.PositionHistoryMax <= 0 {
		return fmt.Errorf("position history max %d must be positive", c.PositionHistoryMax)
	}
	if c.MaxEventsPerMinute <= 0 {
		return fmt.Errorf("max events per minute %d must be positive", c.MaxEventsPerMinute)
	}
	if c.LoiterRadius <= 0 {
		return fmt.Errorf("loiter radius %v must be positive", c.LoiterRadius)
	}
	for name, d := range map[string]time.Duration{
		"vehicle stale":     c.VehicleStaleAfter,
		"person stale":      c.PersonStaleAfter,
		"loiter time":       c.LoiterTime,
		"vehicle stop":      c.VehicleStopAfter,
		"park after":        c.ParkAfter,
		"stopped gone":      c.StoppedGoneAfter,
		"parked gone":       c.ParkedGoneAfter,
		"event cooldown":    c.EventCooldown,
		"location cooldown": c.LocationCooldown,
	} {
		if d <= 0 {
			return fmt.Errorf("%s duration must be positive, got %v", name, d)
		}
	}
	return nil
}
