package tracking

import (
	"image"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestEventMapFlattensMeta(t *testing.T) {
	t.Parallel()

	ts := time.Unix(1700000000, 500_000_000).UTC()
	ev := Event{
		Type:        EventVehicleParked,
		Timestamp:   ts,
		Class:       ClassCar,
		Confidence:  0.9,
		Box:         image.Rect(200, 200, 360, 290),
		Meta:        map[string]float64{"parked_duration": 187.5},
		Color:       "red",
		Description: "red car parked",
	}

	want := map[string]any{
		"type":            "vehicle_parked",
		"timestamp":       1700000000.5,
		"class":           "car",
		"confidence":      0.9,
		"bbox":            []int{200, 200, 360, 290},
		"parked_duration": 187.5,
		"color":           "red",
		"description":     "red car parked",
	}
	if diff := cmp.Diff(want, ev.Map()); diff != "" {
		t.Errorf("Map() mismatch (-want +got):\n%s", diff)
	}
}

func TestEventMapOmitsEmptyClassification(t *testing.T) {
	t.Parallel()

	ev := Event{
		Type:       EventPersonDetected,
		Timestamp:  time.Unix(1700000000, 0),
		Class:      ClassPerson,
		Confidence: 0.82,
		Box:        image.Rect(100, 100, 140, 180),
	}

	got := ev.Map()
	assert.NotContains(t, got, "color")
	assert.NotContains(t, got, "description")
	assert.Equal(t, 1700000000.0, got["timestamp"])
	assert.Equal(t, []int{100, 100, 140, 180}, got["bbox"])
}

func TestEventDisplayFallsBackToClass(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "white van", Event{Class: ClassCar, Description: "white van"}.display())
	assert.Equal(t, ClassCar, Event{Class: ClassCar}.display())
}
