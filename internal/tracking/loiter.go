package tracking

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/Bentlybro/camai/internal/geom"
)

// loiterLookbackSlack widens the sample window slightly past LoiterTime so
// a dwell of exactly the threshold still has samples spanning it.
const loiterLookbackSlack = 2 * time.Second

// isLoitering reports whether a person has stayed within one small area,
// and for how long. Loitering is spatial spread, not mere continuous
// presence: someone walking through frame accumulates a wide spread and is
// never flagged, while someone standing near a door stays within
// LoiterRadius.
func (d *Detector) isLoitering(obj *TrackedObject, now time.Time) (bool, time.Duration) {
	if obj.historyLen() < 3 {
		return false, 0
	}

	lookback := d.cfg.LoiterTime + loiterLookbackSlack
	n := obj.history.len()
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		s := obj.history.at(i)
		if now.Sub(s.Time) <= lookback {
			xs = append(xs, s.Pos.X)
			ys = append(ys, s.Pos.Y)
		}
	}
	if len(xs) < 2 {
		return false, 0
	}

	spread := math.Hypot(floats.Max(xs)-floats.Min(xs), floats.Max(ys)-floats.Min(ys))
	if spread > d.cfg.LoiterRadius {
		return false, 0
	}

	// Walk history backward from the newest sample while each remains
	// within the radius of the current position. The earliest sample of
	// that contiguous run is when the person entered the area; samples from
	// an earlier visit beyond a gap do not inflate the dwell.
	cur := geom.Center(obj.Box)
	entered := now
	for i := n - 1; i >= 0; i-- {
		s := obj.history.at(i)
		if geom.Dist(s.Pos, cur) > d.cfg.LoiterRadius {
			break
		}
		entered = s.Time
	}

	dwell := now.Sub(entered)
	if dwell >= d.cfg.LoiterTime {
		return true, dwell
	}
	return false, 0
}
