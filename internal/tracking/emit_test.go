package tracking

import (
	"strings"
	"testing"

	"github.com/Bentlybro/camai/internal/monitoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitterDispatchOrder(t *testing.T) {
	t.Parallel()

	var e emitter
	var order []string
	e.subscribe(func(Event) { order = append(order, "first") })
	e.subscribe(func(Event) { order = append(order, "second") })
	e.subscribe(func(Event) { order = append(order, "third") })

	e.dispatch(Event{Type: EventPersonDetected, Class: ClassPerson})
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestEmitterUnsubscribe(t *testing.T) {
	t.Parallel()

	var e emitter
	var got []string
	e.subscribe(func(Event) { got = append(got, "a") })
	id := e.subscribe(func(Event) { got = append(got, "b") })
	e.subscribe(func(Event) { got = append(got, "c") })

	e.unsubscribe(id)
	e.dispatch(Event{Type: EventPersonDetected, Class: ClassPerson})
	assert.Equal(t, []string{"a", "c"}, got)

	// Unknown ids are ignored.
	e.unsubscribe("nope")
	e.dispatch(Event{Type: EventPersonDetected, Class: ClassPerson})
	assert.Equal(t, []string{"a", "c", "a", "c"}, got)
}

func TestEmitterIDsAreUnique(t *testing.T) {
	t.Parallel()

	var e emitter
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id := e.subscribe(func(Event) {})
		require.False(t, seen[id], "duplicate subscriber id %q", id)
		seen[id] = true
	}
}

func TestEmitterRecoversSubscriberPanic(t *testing.T) {
	// Swaps the package logger; must not run in parallel with other tests.
	original := monitoring.Logf
	defer func() { monitoring.Logf = original }()

	var logs []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		logs = append(logs, format)
	})

	var e emitter
	e.subscribe(func(Event) { panic("boom") })
	reached := false
	e.subscribe(func(Event) { reached = true })

	require.NotPanics(t, func() {
		e.dispatch(Event{Type: EventVehicleParked, Class: ClassCar})
	})
	assert.True(t, reached, "subscriber after the panicking one still runs")

	found := false
	for _, l := range logs {
		if strings.Contains(l, "panicked") {
			found = true
		}
	}
	assert.True(t, found, "panic is logged, got %v", logs)
}

func TestEmitterDispatchWithNoSubscribers(t *testing.T) {
	t.Parallel()

	var e emitter
	assert.NotPanics(t, func() {
		e.dispatch(Event{Type: EventPersonDetected, Class: ClassPerson})
	})
}
