package tracking

import (
	"image"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loiterObj builds a person track whose current box is centered on pos.
func loiterObj(pos r2.Point) *TrackedObject {
	half := 20
	return &TrackedObject{
		Class: ClassPerson,
		Box: image.Rect(
			int(pos.X)-half, int(pos.Y)-2*half,
			int(pos.X)+half, int(pos.Y)+2*half,
		),
	}
}

func TestIsLoiteringNeedsHistory(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, DefaultConfig())
	obj := loiterObj(r2.Point{X: 200, Y: 200})
	obj.SetPositionHistory([]PositionSample{
		{Time: baseTime.Add(-2 * time.Second), Pos: r2.Point{X: 200, Y: 200}},
		{Time: baseTime, Pos: r2.Point{X: 200, Y: 200}},
	}, 120)

	ok, _ := d.isLoitering(obj, baseTime)
	assert.False(t, ok)
}

func TestIsLoiteringTightCluster(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, DefaultConfig())
	obj := loiterObj(r2.Point{X: 320, Y: 240})

	// Thirteen samples over twelve seconds, all within a few pixels.
	jitter := []float64{0, 4, -4, 2}
	var samples []PositionSample
	for i := 0; i <= 12; i++ {
		samples = append(samples, PositionSample{
			Time: baseTime.Add(time.Duration(i-12) * time.Second),
			Pos:  r2.Point{X: 320 + jitter[i%4], Y: 240},
		})
	}
	obj.SetPositionHistory(samples, 120)

	ok, dwell := d.isLoitering(obj, baseTime)
	require.True(t, ok)
	assert.Equal(t, 12*time.Second, dwell)
}

func TestIsLoiteringRejectsWideSpread(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, DefaultConfig())
	obj := loiterObj(r2.Point{X: 400, Y: 200})

	// A walk covering 300 px in the lookback window.
	var samples []PositionSample
	for i := 0; i <= 10; i++ {
		samples = append(samples, PositionSample{
			Time: baseTime.Add(time.Duration(i-10) * time.Second),
			Pos:  r2.Point{X: 100 + 30*float64(i), Y: 200},
		})
	}
	obj.SetPositionHistory(samples, 120)

	ok, _ := d.isLoitering(obj, baseTime)
	assert.False(t, ok)
}

func TestIsLoiteringSpreadBoundary(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, DefaultConfig())
	obj := loiterObj(r2.Point{X: 200, Y: 200})

	// Spread of exactly the radius still counts as one area.
	obj.SetPositionHistory([]PositionSample{
		{Time: baseTime.Add(-11 * time.Second), Pos: r2.Point{X: 150, Y: 200}},
		{Time: baseTime.Add(-6 * time.Second), Pos: r2.Point{X: 250, Y: 200}},
		{Time: baseTime, Pos: r2.Point{X: 200, Y: 200}},
	}, 120)

	ok, dwell := d.isLoitering(obj, baseTime)
	require.True(t, ok)
	assert.Equal(t, 11*time.Second, dwell)
}

func TestIsLoiteringIgnoresEarlierVisit(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, DefaultConfig())
	spot := r2.Point{X: 200, Y: 200}
	obj := loiterObj(spot)

	// The person stood at this spot half a minute ago, wandered off, and
	// came back 11 seconds ago. Only the current visit counts as dwell.
	samples := []PositionSample{
		{Time: baseTime.Add(-30 * time.Second), Pos: spot},
		{Time: baseTime.Add(-28 * time.Second), Pos: spot},
		{Time: baseTime.Add(-26 * time.Second), Pos: spot},
		{Time: baseTime.Add(-24 * time.Second), Pos: r2.Point{X: 600, Y: 200}},
		{Time: baseTime.Add(-20 * time.Second), Pos: r2.Point{X: 900, Y: 200}},
	}
	for _, off := range []time.Duration{-11, -8, -5, -2, 0} {
		samples = append(samples, PositionSample{
			Time: baseTime.Add(off * time.Second),
			Pos:  spot,
		})
	}
	obj.SetPositionHistory(samples, 120)

	ok, dwell := d.isLoitering(obj, baseTime)
	require.True(t, ok)
	assert.Equal(t, 11*time.Second, dwell, "dwell starts at the return, not the first visit")
}

func TestIsLoiteringShortReturnVisit(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, DefaultConfig())
	spot := r2.Point{X: 200, Y: 200}
	obj := loiterObj(spot)

	// Back at the spot for only five seconds.
	samples := []PositionSample{
		{Time: baseTime.Add(-14 * time.Second), Pos: r2.Point{X: 600, Y: 200}},
	}
	for _, off := range []time.Duration{-5, -4, -3, -2, -1, 0} {
		samples = append(samples, PositionSample{
			Time: baseTime.Add(off * time.Second),
			Pos:  spot,
		})
	}
	obj.SetPositionHistory(samples, 120)

	ok, _ := d.isLoitering(obj, baseTime)
	assert.False(t, ok)
}
