package replay

import (
	"fmt"
	"time"

	"github.com/Bentlybro/camai/internal/timeutil"
	"github.com/Bentlybro/camai/internal/tracking"
)

// Runner drives a Detector with fixture frames. Frame offsets define
// the detector's timeline; pacing against wall time only controls how
// fast the replay runs, never the timestamps the detector sees.
type Runner struct {
	Detector *tracking.Detector

	// Clock paces playback. Defaults to RealClock when nil.
	Clock timeutil.Clock

	// Speed is the playback rate. 1 replays in real time, 2 at double
	// speed. Zero or negative disables pacing entirely and the fixture
	// is consumed as fast as the detector can take it.
	Speed float64

	// Plotter, when set, samples tracker state after every frame.
	Plotter *Plotter
}

// Result summarizes a completed replay.
type Result struct {
	Frames     int
	Detections int
	Events     []tracking.Event

	// Elapsed is wall time spent replaying, including pacing sleeps.
	Elapsed time.Duration
}

// EventCounts returns the number of emitted events per type.
func (r *Result) EventCounts() map[tracking.EventType]int {
	counts := make(map[tracking.EventType]int)
	for _, ev := range r.Events {
		counts[ev.Type]++
	}
	return counts
}

// Run replays the frames in order and collects every event the
// detector emits. The fixture's first frame plays immediately.
func (r *Runner) Run(frames []Frame) (*Result, error) {
	if r.Detector == nil {
		return nil, fmt.Errorf("replay: no detector configured")
	}
	clock := r.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	start := clock.Now()
	result := &Result{}
	for _, frame := range frames {
		if r.Speed > 0 {
			// Scale the recording offset into playback time and sleep
			// off whatever hasn't already passed.
			target := start.Add(time.Duration(float64(frame.Offset) / r.Speed))
			if wait := target.Sub(clock.Now()); wait > 0 {
				clock.Sleep(wait)
			}
		}

		events := r.Detector.Update(frame.Dets, frame.Width, frame.Height, start.Add(frame.Offset))
		result.Frames++
		result.Detections += len(frame.Dets)
		result.Events = append(result.Events, events...)

		if r.Plotter != nil {
			r.Plotter.Sample(frame, r.Detector, events)
		}
	}
	result.Elapsed = clock.Since(start)
	return result, nil
}
