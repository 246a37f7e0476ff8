package tracking

import (
	"image"
	"time"

	"github.com/Bentlybro/camai/internal/geom"
	"github.com/Bentlybro/camai/internal/monitoring"
)

// globalRateWindow is the span of the sliding window behind
// Config.MaxEventsPerMinute.
const globalRateWindow = time.Minute

// eventGate enforces the two conditions every fired event must pass: a
// per-event-type cooldown and a global sliding-window cap. State is
// per-Detector so multiple camera sessions never share cooldowns.
type eventGate struct {
	cooldown    time.Duration
	maxInWindow int

	lastFired map[EventType]time.Time
	fired     []time.Time
}

func newEventGate(cooldown time.Duration, maxPerMinute int) *eventGate {
	return &eventGate{
		cooldown:    cooldown,
		maxInWindow: maxPerMinute,
		lastFired:   make(map[EventType]time.Time),
	}
}

// allow reports whether an event of type t may fire at now, committing the
// fire into the cooldown and window state only when it passes. Firing
// exactly at the cooldown boundary (now-last == cooldown) is accepted.
func (g *eventGate) allow(t EventType, now time.Time) bool {
	if last, ok := g.lastFired[t]; ok && now.Sub(last) < g.cooldown {
		return false
	}

	// Prune the window, then test the global cap.
	fresh := g.fired[:0]
	for _, ts := range g.fired {
		if now.Sub(ts) < globalRateWindow {
			fresh = append(fresh, ts)
		}
	}
	g.fired = fresh
	if len(g.fired) >= g.maxInWindow {
		monitoring.Debugf("tracking: rate limited, %d events in the last minute", len(g.fired))
		return false
	}

	g.lastFired[t] = now
	g.fired = append(g.fired, now)
	return true
}

// locationHit records one spot that recently produced a "detected" event
// candidate for a category.
type locationHit struct {
	box  image.Rectangle
	seen time.Time
}

// locationCache suppresses duplicate "object detected" events for the same
// spot, independent of object identity. One bucket per category so a person
// flickering at a doorway cannot mute a package there.
type locationCache struct {
	cooldown time.Duration
	minIoU   float64
	recent   map[string][]locationHit
}

func newLocationCache(cooldown time.Duration, minIoU float64) *locationCache {
	return &locationCache{
		cooldown: cooldown,
		minIoU:   minIoU,
		recent:   make(map[string][]locationHit),
	}
}

// note reports whether box is a new location for the category. The box is
// recorded either way: a rejected duplicate still refreshes the spot's
// suppression window, so an object sitting in place keeps absorbing its own
// re-detections instead of re-firing once the window lapses.
func (c *locationCache) note(category string, box image.Rectangle, now time.Time) bool {
	fresh := c.recent[category][:0]
	for _, h := range c.recent[category] {
		if now.Sub(h.seen) < c.cooldown {
			fresh = append(fresh, h)
		}
	}

	isNew := true
	for _, h := range fresh {
		if geom.IoU(box, h.box) >= c.minIoU {
			isNew = false
			break
		}
	}

	c.recent[category] = append(fresh, locationHit{box: box, seen: now})
	return isNew
}
