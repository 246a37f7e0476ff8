package tracking

import (
	"time"

	"github.com/Bentlybro/camai/internal/geom"
)

// posRing is a fixed-capacity ring buffer of position samples. Memory stays
// bounded for the lifetime of a track; pushing onto a full ring evicts the
// oldest sample.
type posRing struct {
	buf   []PositionSample
	start int
	count int
}

func newPosRing(capacity int) *posRing {
	if capacity < 1 {
		capacity = 1
	}
	return &posRing{buf: make([]PositionSample, capacity)}
}

func (r *posRing) push(s PositionSample) {
	if r.count < len(r.buf) {
		r.buf[(r.start+r.count)%len(r.buf)] = s
		r.count++
		return
	}
	r.buf[r.start] = s
	r.start = (r.start + 1) % len(r.buf)
}

func (r *posRing) len() int {
	return r.count
}

// at returns the i-th sample, 0 being the oldest.
func (r *posRing) at(i int) PositionSample {
	return r.buf[(r.start+i)%len(r.buf)]
}

// pushPosition appends the current box center to the track's history,
// allocating the ring on first use.
func (o *TrackedObject) pushPosition(now time.Time, capacity int) {
	if o.history == nil {
		o.history = newPosRing(capacity)
	}
	o.history.push(PositionSample{Time: now, Pos: geom.Center(o.Box)})
}

// historyLen returns the number of stored position samples.
func (o *TrackedObject) historyLen() int {
	if o.history == nil {
		return 0
	}
	return o.history.len()
}
