package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Bentlybro/camai/internal/tracking"
)

// ErrNoTuningFile reports that the tuning path does not exist. Callers
// that treat the tuning file as optional branch on it with errors.Is.
var ErrNoTuningFile = errors.New("tuning config file not found")

// TuningConfig overrides tracking thresholds from a JSON file. Every field
// is a pointer so a partial config only touches what it names; durations
// are strings like "30s" or "500ms". The schema matches the tuning payload
// accepted by the camera daemon's params endpoint, so one file serves both
// startup configuration and runtime updates.
type TuningConfig struct {
	// Detection-to-track matching
	MatchIoU       *float64 `json:"match_iou,omitempty"`
	SignatureBonus *float64 `json:"signature_bonus,omitempty"`

	// Track staleness
	VehicleStale *string `json:"vehicle_stale,omitempty"` // duration string like "15s"
	PersonStale  *string `json:"person_stale,omitempty"`  // duration string like "5s"

	// Loitering
	LoiterTime         *string  `json:"loiter_time,omitempty"`
	LoiterRadius       *float64 `json:"loiter_radius,omitempty"`
	PositionHistoryMax *int     `json:"position_history_max,omitempty"`

	// Stationary vehicles
	VehicleStopAfter   *string  `json:"vehicle_stop_after,omitempty"`
	ParkAfter          *string  `json:"park_after,omitempty"`
	StoppedGoneAfter   *string  `json:"stopped_gone_after,omitempty"`
	ParkedGoneAfter    *string  `json:"parked_gone_after,omitempty"`
	GridCellPx         *int     `json:"grid_cell_px,omitempty"`
	StationaryIoU      *float64 `json:"stationary_iou,omitempty"`
	StationaryColorIoU *float64 `json:"stationary_color_iou,omitempty"`
	StartupScanDelay   *string  `json:"startup_scan_delay,omitempty"`
	RepeatedDetections *int     `json:"repeated_detections,omitempty"`
	RepeatedWindow     *string  `json:"repeated_window,omitempty"`

	// Event gating
	EventCooldown           *string  `json:"event_cooldown,omitempty"`
	PersonDetectedCooldown  *string  `json:"person_detected_cooldown,omitempty"`
	VehicleDetectedCooldown *string  `json:"vehicle_detected_cooldown,omitempty"`
	LocationCooldown        *string  `json:"location_cooldown,omitempty"`
	LocationIoU             *float64 `json:"location_iou,omitempty"`
	MaxEventsPerMinute      *int     `json:"max_events_per_minute,omitempty"`

	// Debug logging
	Debug *bool `json:"debug,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil,
// meaning "use the built-in defaults everywhere".
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must
// have a .json extension and stay under the max file size. Fields omitted
// from the JSON keep their built-in defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoTuningFile, cleanPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that every set field parses and sits in a sane range.
// Range errors the tracking layer would also reject are caught here so the
// failure names the JSON field rather than an internal parameter.
func (c *TuningConfig) Validate() error {
	for name, v := range map[string]*float64{
		"match_iou":            c.MatchIoU,
		"stationary_iou":       c.StationaryIoU,
		"stationary_color_iou": c.StationaryColorIoU,
		"location_iou":         c.LocationIoU,
	} {
		if v != nil && (*v <= 0 || *v > 1) {
			return fmt.Errorf("%s must be in (0,1], got %f", name, *v)
		}
	}

	for name, v := range map[string]*string{
		"vehicle_stale":             c.VehicleStale,
		"person_stale":              c.PersonStale,
		"loiter_time":               c.LoiterTime,
		"vehicle_stop_after":        c.VehicleStopAfter,
		"park_after":                c.ParkAfter,
		"stopped_gone_after":        c.StoppedGoneAfter,
		"parked_gone_after":         c.ParkedGoneAfter,
		"startup_scan_delay":        c.StartupScanDelay,
		"repeated_window":           c.RepeatedWindow,
		"event_cooldown":            c.EventCooldown,
		"person_detected_cooldown":  c.PersonDetectedCooldown,
		"vehicle_detected_cooldown": c.VehicleDetectedCooldown,
		"location_cooldown":         c.LocationCooldown,
	} {
		if v == nil || *v == "" {
			continue
		}
		d, err := time.ParseDuration(*v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, *v, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %q", name, *v)
		}
	}

	for name, v := range map[string]*int{
		"position_history_max":  c.PositionHistoryMax,
		"grid_cell_px":          c.GridCellPx,
		"repeated_detections":   c.RepeatedDetections,
		"max_events_per_minute": c.MaxEventsPerMinute,
	} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, *v)
		}
	}

	if c.LoiterRadius != nil && *c.LoiterRadius <= 0 {
		return fmt.Errorf("loiter_radius must be positive, got %f", *c.LoiterRadius)
	}

	return nil
}

// Apply overlays the set fields onto base and returns the result. Call
// Validate first; Apply silently skips unparseable durations.
func (c *TuningConfig) Apply(base tracking.Config) tracking.Config {
	applyFloat(&base.MatchIoU, c.MatchIoU)
	applyFloat(&base.SignatureBonus, c.SignatureBonus)
	applyDuration(&base.VehicleStaleAfter, c.VehicleStale)
	applyDuration(&base.PersonStaleAfter, c.PersonStale)
	applyDuration(&base.LoiterTime, c.LoiterTime)
	applyFloat(&base.LoiterRadius, c.LoiterRadius)
	applyInt(&base.PositionHistoryMax, c.PositionHistoryMax)
	applyDuration(&base.VehicleStopAfter, c.VehicleStopAfter)
	applyDuration(&base.ParkAfter, c.ParkAfter)
	applyDuration(&base.StoppedGoneAfter, c.StoppedGoneAfter)
	applyDuration(&base.ParkedGoneAfter, c.ParkedGoneAfter)
	applyInt(&base.GridCellPx, c.GridCellPx)
	applyFloat(&base.StationaryIoU, c.StationaryIoU)
	applyFloat(&base.StationaryColorIoU, c.StationaryColorIoU)
	applyDuration(&base.StartupScanDelay, c.StartupScanDelay)
	applyInt(&base.RepeatedDetections, c.RepeatedDetections)
	applyDuration(&base.RepeatedWindow, c.RepeatedWindow)
	applyDuration(&base.EventCooldown, c.EventCooldown)
	applyDuration(&base.PersonDetectedCooldown, c.PersonDetectedCooldown)
	applyDuration(&base.VehicleDetectedCooldown, c.VehicleDetectedCooldown)
	applyDuration(&base.LocationCooldown, c.LocationCooldown)
	applyFloat(&base.LocationIoU, c.LocationIoU)
	applyInt(&base.MaxEventsPerMinute, c.MaxEventsPerMinute)
	return base
}

// GetDebug returns the debug flag or the default.
func (c *TuningConfig) GetDebug() bool {
	if c.Debug == nil {
		return false
	}
	return *c.Debug
}

func applyFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func applyInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func applyDuration(dst *time.Duration, src *string) {
	if src == nil || *src == "" {
		return
	}
	if d, err := time.ParseDuration(*src); err == nil {
		*dst = d
	}
}
