package tracking

import (
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/golang/geo/r2"
)

// Object class labels produced by the detection runtime.
const (
	ClassPerson  = "person"
	ClassCar     = "car"
	ClassTruck   = "truck"
	ClassPackage = "package"
)

// Location-dedup categories. Car and truck share one bucket so a truck
// re-detected as a car at the same spot is still suppressed.
const (
	categoryPerson  = "person"
	categoryVehicle = "vehicle"
	categoryPackage = "package"
)

// IsVehicleClass reports whether class is a vehicle label.
func IsVehicleClass(class string) bool {
	return class == ClassCar || class == ClassTruck
}

func categoryFor(class string) string {
	switch {
	case class == ClassPerson:
		return categoryPerson
	case IsVehicleClass(class):
		return categoryVehicle
	default:
		return categoryPackage
	}
}

// Detection is one detector output box for a single frame. Signature, Color
// and Description are classification enrichments that arrive only on some
// frames (classification is expensive and runs on newly-matched objects);
// an empty string means "not classified yet", and consumers must branch on
// emptiness rather than assume presence.
type Detection struct {
	Class      string
	Confidence float64
	Box        image.Rectangle

	Signature   string // e.g. "black_truck"; disambiguates same-class objects
	Color       string
	Description string
}

// PositionSample is one entry in a person's position history.
type PositionSample struct {
	Time time.Time
	Pos  r2.Point
}

// TrackedObject is an object currently matched frame-to-frame. Owned
// exclusively by the Detector; snapshots handed out by accessors are
// copies.
type TrackedObject struct {
	ID         int64 // monotonically assigned, never reused
	Class      string
	FirstSeen  time.Time
	LastSeen   time.Time
	Box        image.Rectangle
	Confidence float64

	// Reported latches once the dwell/stop event for this continuous track
	// has fired; it is never cleared except by track removal.
	Reported bool

	// Cached classification, may be empty.
	Signature   string
	Color       string
	Description string

	// Position history ring, maintained for persons only.
	history *posRing
}

// CellKey identifies a coarse grid cell derived from a bbox center divided
// by the configured cell size. Slight position drift lands in the same cell
// so a stationary vehicle keeps one identity across jittering boxes.
type CellKey struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (k CellKey) String() string {
	return fmt.Sprintf("%d,%d", k.X, k.Y)
}

// displayName builds the human-readable label for a snapshot row: the
// classifier description when present, "color class" when only a color is
// known, the bare class otherwise.
func displayName(class, color, description string) string {
	if description != "" {
		return description
	}
	if name := strings.TrimSpace(color + " " + class); name != "" {
		return name
	}
	return class
}

// ObjectStatus is a display-oriented snapshot row returned by
// CurrentObjects.
type ObjectStatus struct {
	ID          string  `json:"id"`
	Class       string  `json:"class"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Status      string  `json:"status"` // active, stopped or parked
}

// ParkingStats summarises the stationary-vehicle maps.
type ParkingStats struct {
	Parked  int       `json:"parked_count"`
	Stopped int       `json:"stopped_count"`
	Cells   []CellKey `json:"parked_positions"`
}
