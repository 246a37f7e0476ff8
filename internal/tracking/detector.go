package tracking

import (
	"fmt"
	"image"
	"sort"
	"strconv"
	"time"

	"github.com/Bentlybro/camai/internal/monitoring"
)

// CameraMotion reports camera movement state. A nil CameraMotion means a
// fixed camera: never moving, always settled.
type CameraMotion interface {
	// RecentlyMoved reports whether the camera moved within its debounce
	// window. Tracking suppresses new-object events while true.
	RecentlyMoved() bool
	// Settled reports whether the view is stable enough to trust positions
	// again after a move.
	Settled() bool
}

// Detector turns per-frame object detections into semantic events. It is
// single-threaded: all methods must be called from one goroutine, with
// time supplied explicitly by the caller.
type Detector struct {
	cfg Config

	tracks map[int64]*TrackedObject
	nextID int64

	// Stationary-vehicle records, keyed by grid cell. A cell is never in
	// both maps at once.
	stopped map[CellKey]*stationaryVehicle
	parked  map[CellKey]*stationaryVehicle

	// Repeated fresh-sighting timestamps per cell, for flicker promotion.
	sightings map[CellKey][]time.Time

	gate      *eventGate
	locations *locationCache
	emitter   emitter

	camera CameraMotion

	lastPersonDetected  time.Time
	lastVehicleDetected time.Time

	firstUpdate     time.Time
	startupScanDone bool

	cameraMoved bool
	rescanDone  bool
	moveLogged  bool

	// Events collected during the current Update call.
	cycle []Event
}

// New returns a Detector with the given thresholds. Pass DefaultConfig()
// for the standard tuning.
func New(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("tracking: %w", err)
	}
	return &Detector{
		cfg:       cfg,
		tracks:    make(map[int64]*TrackedObject),
		nextID:    1,
		stopped:   make(map[CellKey]*stationaryVehicle),
		parked:    make(map[CellKey]*stationaryVehicle),
		sightings: make(map[CellKey][]time.Time),
		gate:      newEventGate(cfg.EventCooldown, cfg.MaxEventsPerMinute),
		locations: newLocationCache(cfg.LocationCooldown, cfg.LocationIoU),
		// A rescan is only owed after an observed move.
		rescanDone: true,
	}, nil
}

// SetCameraMotion attaches a camera movement source. May be nil for a
// fixed camera.
func (d *Detector) SetCameraMotion(cm CameraMotion) { d.camera = cm }

// Subscribe registers fn to be called synchronously, in subscription
// order, for every fired event. The returned id is passed to Unsubscribe.
func (d *Detector) Subscribe(fn func(Event)) string { return d.emitter.subscribe(fn) }

// Unsubscribe removes a subscriber. Unknown ids are ignored.
func (d *Detector) Unsubscribe(id string) { d.emitter.unsubscribe(id) }

// Update processes one frame's detections taken at the given time and
// returns the events the frame produced, in emission order. Detections
// with degenerate boxes are clamped to the frame and dropped if empty.
// now must not move backwards between calls.
func (d *Detector) Update(dets []Detection, frameW, frameH int, now time.Time) []Event {
	if d.firstUpdate.IsZero() {
		d.firstUpdate = now
	}
	d.cycle = d.cycle[:0]

	dets = sanitizeDetections(dets, frameW, frameH)

	// Camera state is sampled once and used for the whole cycle.
	moving, settled := d.cameraState()

	var vehicleDets []Detection
	for _, det := range dets {
		if IsVehicleClass(det.Class) {
			vehicleDets = append(vehicleDets, det)
		}
	}
	d.updateParking(vehicleDets, moving, settled, now)

	for i := range dets {
		det := &dets[i]
		if obj := d.bestMatch(*det); obj != nil {
			d.updateTrack(obj, det, now)
			switch categoryFor(obj.Class) {
			case categoryPerson:
				obj.pushPosition(now, d.cfg.PositionHistoryMax)
				d.checkLoitering(obj, *det, now)
			case categoryVehicle:
				d.absorbStationary(*det, now)
				d.checkVehicleStopped(obj, *det, now)
			}
			continue
		}

		// Fresh detection coinciding with a known stationary vehicle:
		// refresh the record instead of opening a duplicate track.
		if d.absorbStationary(*det, now) {
			continue
		}

		obj := d.newTrack(*det, now)
		switch categoryFor(obj.Class) {
		case categoryPerson:
			obj.pushPosition(now, d.cfg.PositionHistoryMax)
			d.handleNewPerson(obj, *det, moving, settled, now)
		case categoryVehicle:
			d.handleNewVehicle(*det, now)
		default:
			d.handleNewPackage(*det, now)
		}
	}

	d.purgeStale(now)

	out := make([]Event, len(d.cycle))
	copy(out, d.cycle)
	return out
}

func (d *Detector) cameraState() (moving, settled bool) {
	if d.camera == nil {
		return false, true
	}
	return d.camera.RecentlyMoved(), d.camera.Settled()
}

// updateTrack merges a matched detection into its track. Classification
// flows both ways: a classified detection overwrites the track, and an
// unclassified detection inherits the track's fields so downstream
// consumers of det see them.
func (d *Detector) updateTrack(obj *TrackedObject, det *Detection, now time.Time) {
	obj.LastSeen = now
	obj.Box = det.Box
	obj.Confidence = det.Confidence
	if det.Signature != "" {
		obj.Signature = det.Signature
		obj.Color = det.Color
		obj.Description = det.Description
	} else if obj.Signature != "" {
		det.Signature = obj.Signature
		det.Color = obj.Color
		det.Description = obj.Description
	}
}

func (d *Detector) newTrack(det Detection, now time.Time) *TrackedObject {
	id := d.nextID
	d.nextID++
	obj := &TrackedObject{
		ID:          id,
		Class:       det.Class,
		FirstSeen:   now,
		LastSeen:    now,
		Box:         det.Box,
		Confidence:  det.Confidence,
		Signature:   det.Signature,
		Color:       det.Color,
		Description: det.Description,
	}
	d.tracks[id] = obj
	return obj
}

// checkLoitering fires person_dwelling once per track. The reported flag
// latches only when the event actually fires, so a rate-limited loiterer
// is retried on later frames.
func (d *Detector) checkLoitering(obj *TrackedObject, det Detection, now time.Time) {
	if obj.Reported {
		return
	}
	loitering, dwell := d.isLoitering(obj, now)
	if !loitering {
		return
	}
	if !d.gate.allow(EventPersonDwelling, now) {
		return
	}
	obj.Reported = true
	desc := "person loitering"
	if obj.Description != "" {
		desc = obj.Description + " loitering"
	}
	d.fire(Event{
		Type:        EventPersonDwelling,
		Timestamp:   now,
		Class:       obj.Class,
		Confidence:  det.Confidence,
		Box:         det.Box,
		Meta:        map[string]float64{"dwell": dwell.Seconds()},
		Color:       obj.Color,
		Description: desc,
	})
}

// checkVehicleStopped promotes a track past the stop threshold into the
// stopped map. Unlike loitering, the reported flag latches before the
// event gate: the stop is a state transition first, an event second.
func (d *Detector) checkVehicleStopped(obj *TrackedObject, det Detection, now time.Time) {
	if obj.Reported {
		return
	}
	dwell := now.Sub(obj.FirstSeen)
	if dwell < d.cfg.VehicleStopAfter {
		return
	}
	obj.Reported = true
	d.registerStopped(det, now)
	if !d.startupScanDone {
		// Startup grace: the transition happens, the announcement doesn't.
		return
	}
	if !d.gate.allow(EventVehicleStopped, now) {
		return
	}
	d.fire(Event{
		Type:        EventVehicleStopped,
		Timestamp:   now,
		Class:       obj.Class,
		Confidence:  det.Confidence,
		Box:         det.Box,
		Meta:        map[string]float64{"stop_time": dwell.Seconds()},
		Color:       obj.Color,
		Description: obj.Description,
	})
}

func (d *Detector) handleNewPerson(obj *TrackedObject, det Detection, moving, settled bool, now time.Time) {
	if moving || !settled {
		monitoring.Debugf("tracking: suppressing person_detected during camera movement")
		return
	}
	if !d.locations.note(categoryPerson, det.Box, now) {
		return
	}
	if now.Sub(d.lastPersonDetected) < d.cfg.PersonDetectedCooldown {
		return
	}
	if !d.gate.allow(EventPersonDetected, now) {
		return
	}
	d.lastPersonDetected = now
	d.fire(Event{
		Type:        EventPersonDetected,
		Timestamp:   now,
		Class:       obj.Class,
		Confidence:  det.Confidence,
		Box:         det.Box,
		Color:       det.Color,
		Description: det.Description,
	})
}

func (d *Detector) handleNewVehicle(det Detection, now time.Time) {
	if d.noteSighting(det, now) {
		return
	}
	if !d.startupScanDone {
		// Startup grace: vehicles present at boot are not arrivals.
		return
	}
	if !d.locations.note(categoryVehicle, det.Box, now) {
		return
	}
	if now.Sub(d.lastVehicleDetected) < d.cfg.VehicleDetectedCooldown {
		return
	}
	if !d.gate.allow(EventVehicleDetected, now) {
		return
	}
	d.lastVehicleDetected = now
	d.fire(Event{
		Type:        EventVehicleDetected,
		Timestamp:   now,
		Class:       det.Class,
		Confidence:  det.Confidence,
		Box:         det.Box,
		Color:       det.Color,
		Description: det.Description,
	})
}

func (d *Detector) handleNewPackage(det Detection, now time.Time) {
	if !d.locations.note(categoryPackage, det.Box, now) {
		return
	}
	if !d.gate.allow(EventPackageDetected, now) {
		return
	}
	d.fire(Event{
		Type:        EventPackageDetected,
		Timestamp:   now,
		Class:       det.Class,
		Confidence:  det.Confidence,
		Box:         det.Box,
		Color:       det.Color,
		Description: det.Description,
	})
}

// purgeStale drops tracks unseen past their class timeout. Vehicles get a
// longer leash because detectors drop them more often between frames.
func (d *Detector) purgeStale(now time.Time) {
	for id, obj := range d.tracks {
		timeout := d.cfg.PersonStaleAfter
		if IsVehicleClass(obj.Class) {
			timeout = d.cfg.VehicleStaleAfter
		}
		if now.Sub(obj.LastSeen) > timeout {
			delete(d.tracks, id)
		}
	}
}

func (d *Detector) fire(ev Event) {
	d.cycle = append(d.cycle, ev)
	d.emitter.dispatch(ev)
}

// ApplyClassifications merges late-arriving classifier output (signature,
// color, description) onto the tracks the detections match. Classifier
// results typically trail detections by a frame or two.
func (d *Detector) ApplyClassifications(dets []Detection) {
	for _, det := range dets {
		if det.Signature == "" {
			continue
		}
		obj := d.bestMatch(det)
		if obj == nil || obj.Signature != "" {
			continue
		}
		obj.Signature = det.Signature
		obj.Color = det.Color
		obj.Description = det.Description
	}
}

// TrackedCount returns live tracks plus stationary vehicle records.
func (d *Detector) TrackedCount() int {
	return len(d.tracks) + len(d.parked) + len(d.stopped)
}

// ActiveCount returns live tracks only.
func (d *Detector) ActiveCount() int { return len(d.tracks) }

// CountsByClass returns how many objects of each class are tracked,
// including stationary vehicle records.
func (d *Detector) CountsByClass() map[string]int {
	counts := make(map[string]int)
	for _, obj := range d.tracks {
		counts[obj.Class]++
	}
	for _, v := range d.parked {
		counts[v.Class]++
	}
	for _, v := range d.stopped {
		counts[v.Class]++
	}
	return counts
}

// ParkingStats summarises the stationary-vehicle maps. Cells are sorted
// for stable output.
func (d *Detector) ParkingStats() ParkingStats {
	return ParkingStats{
		Parked:  len(d.parked),
		Stopped: len(d.stopped),
		Cells:   sortedCells(d.parked),
	}
}

// CurrentObjects returns a display-ready snapshot of everything tracked:
// active tracks first (by id), then parked, then stopped records.
func (d *Detector) CurrentObjects() []ObjectStatus {
	out := make([]ObjectStatus, 0, d.TrackedCount())

	ids := make([]int64, 0, len(d.tracks))
	for id := range d.tracks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		obj := d.tracks[id]
		out = append(out, ObjectStatus{
			ID:          strconv.FormatInt(id, 10),
			Class:       obj.Class,
			Color:       obj.Color,
			Description: displayName(obj.Class, obj.Color, obj.Description),
			Confidence:  obj.Confidence,
			Status:      "active",
		})
	}

	for _, status := range []string{"parked", "stopped"} {
		m := d.parked
		if status == "stopped" {
			m = d.stopped
		}
		for _, cell := range sortedCells(m) {
			v := m[cell]
			out = append(out, ObjectStatus{
				ID:          status + ":" + cell.String(),
				Class:       v.Class,
				Color:       v.Color,
				Description: displayName(v.Class, v.Color, v.Description),
				Confidence:  stationaryEventConfidence,
				Status:      status,
			})
		}
	}
	return out
}

// sanitizeDetections clamps boxes to the frame and drops any that end up
// empty. Detector output occasionally wanders outside the frame or
// collapses to zero area on partial occlusion.
func sanitizeDetections(dets []Detection, frameW, frameH int) []Detection {
	out := make([]Detection, 0, len(dets))
	for _, det := range dets {
		det.Box = det.Box.Canon()
		if frameW > 0 && frameH > 0 {
			det.Box = det.Box.Intersect(image.Rect(0, 0, frameW, frameH))
		}
		if det.Box.Empty() {
			continue
		}
		out = append(out, det)
	}
	return out
}
