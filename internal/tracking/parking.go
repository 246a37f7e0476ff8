package tracking

import (
	"image"
	"sort"
	"strings"
	"time"

	"github.com/Bentlybro/camai/internal/geom"
	"github.com/Bentlybro/camai/internal/monitoring"
)

// stationaryVehicle is one stopped or parked record, keyed in the Detector
// maps by its grid cell.
type stationaryVehicle struct {
	Box         image.Rectangle
	FirstSeen   time.Time
	LastSeen    time.Time
	Class       string
	Signature   string
	Color       string
	Description string
}

func stationaryFrom(det Detection, firstSeen, now time.Time) *stationaryVehicle {
	return &stationaryVehicle{
		Box:         det.Box,
		FirstSeen:   firstSeen,
		LastSeen:    now,
		Class:       det.Class,
		Signature:   det.Signature,
		Color:       det.Color,
		Description: det.Description,
	}
}

// mergeClassification copies newly-available classification onto the
// record. Signature and color stick once set; the description refreshes
// whenever the detection carries one.
func (v *stationaryVehicle) mergeClassification(det Detection) {
	if det.Signature != "" && v.Signature == "" {
		v.Signature = det.Signature
	}
	if det.Color != "" && v.Color == "" {
		v.Color = det.Color
	}
	if det.Description != "" {
		v.Description = det.Description
	}
}

// label composes "color class suffix" for synthesised event descriptions,
// e.g. "black truck parked" or just "car left" when no color is known.
func (v *stationaryVehicle) label(suffix string) string {
	return strings.TrimSpace(v.Color + " " + v.Class + " " + suffix)
}

// cellFor quantises a box center onto the stationary-vehicle grid.
func (d *Detector) cellFor(box image.Rectangle) CellKey {
	c := geom.Center(box)
	return CellKey{
		X: int(c.X) / d.cfg.GridCellPx,
		Y: int(c.Y) / d.cfg.GridCellPx,
	}
}

// sortedCells returns the map's keys in (X, Y) order so record scans are
// reproducible across runs.
func sortedCells(m map[CellKey]*stationaryVehicle) []CellKey {
	cells := make([]CellKey, 0, len(m))
	for k := range m {
		cells = append(cells, k)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].X != cells[j].X {
			return cells[i].X < cells[j].X
		}
		return cells[i].Y < cells[j].Y
	})
	return cells
}

func (d *Detector) stationaryMatches(v *stationaryVehicle, det Detection) bool {
	overlap := geom.IoU(det.Box, v.Box)
	sigMatch := det.Signature != "" && v.Signature != "" && det.Signature == v.Signature
	colorMatch := det.Color != "" && v.Color != "" && det.Color == v.Color

	// Deliberately lenient: a missed refresh here causes duplicate
	// parked/left spam, which is worse than occasionally merging two
	// adjacent vehicles.
	return overlap >= d.cfg.StationaryIoU || sigMatch ||
		(colorMatch && overlap >= d.cfg.StationaryColorIoU)
}

// absorbStationary refreshes the first stationary record coinciding with
// det (parked checked before stopped) and reports whether one was found.
// Refreshing moves the record's box along with detector drift and merges
// any new classification.
func (d *Detector) absorbStationary(det Detection, now time.Time) bool {
	if !IsVehicleClass(det.Class) {
		return false
	}
	for _, m := range []map[CellKey]*stationaryVehicle{d.parked, d.stopped} {
		for _, cell := range sortedCells(m) {
			v := m[cell]
			if !d.stationaryMatches(v, det) {
				continue
			}
			v.LastSeen = now
			v.Box = det.Box
			v.mergeClassification(det)
			return true
		}
	}
	return false
}

// registerStopped creates a stopped record for det's cell unless the cell
// already holds a stopped or parked vehicle. A cell never appears in both
// maps.
func (d *Detector) registerStopped(det Detection, now time.Time) {
	if !IsVehicleClass(det.Class) {
		return
	}
	cell := d.cellFor(det.Box)
	if _, ok := d.stopped[cell]; ok {
		return
	}
	if _, ok := d.parked[cell]; ok {
		return
	}
	d.stopped[cell] = stationaryFrom(det, now, now)
	monitoring.Debugf("tracking: registered stopped vehicle at cell %s", cell)
}

// promoteToParked moves a stopped record into the parked map under its
// current box's cell (the box may have drifted since registration). Any
// other stopped record already at the destination cell is folded away to
// keep the two maps exclusive.
func (d *Detector) promoteToParked(cell CellKey, v *stationaryVehicle) *stationaryVehicle {
	dest := d.cellFor(v.Box)
	delete(d.stopped, cell)
	delete(d.stopped, dest)
	d.parked[dest] = v
	monitoring.Logf("tracking: vehicle promoted to parked at cell %s", dest)
	return v
}

// updateParking advances the stationary-vehicle state machine: camera
// motion handling, the one-time startup scan, stopped→parked promotion and
// gone-timeout expiry. Runs before the per-detection loop each cycle.
func (d *Detector) updateParking(vehicleDets []Detection, moving, settled bool, now time.Time) {
	// While the camera moves, every record's last-seen is extended so the
	// view change can't fire false "left" events, and promotion/expiry are
	// skipped entirely. Records keep following vehicles whose signature
	// still identifies them.
	if moving {
		d.handleCameraMovement(now)
		for _, det := range vehicleDets {
			for _, cell := range sortedCells(d.parked) {
				v := d.parked[cell]
				if det.Signature != "" && v.Signature == det.Signature {
					v.LastSeen = now
					v.Box = det.Box
					break
				}
			}
		}
		return
	}

	d.rescanAfterSettle(vehicleDets, settled, now)

	// One-time startup scan: vehicles already in view when the system comes
	// up were parked long before we could observe a dwell, so register them
	// directly without events. Stopped records accumulated during the grace
	// window fold into the parked registration.
	if !d.startupScanDone && now.Sub(d.firstUpdate) > d.cfg.StartupScanDelay {
		d.startupScanDone = true
		for _, det := range vehicleDets {
			cell := d.cellFor(det.Box)
			if _, ok := d.parked[cell]; ok {
				continue
			}
			delete(d.stopped, cell)
			d.parked[cell] = stationaryFrom(det, now, now)
			monitoring.Logf("tracking: startup scan registered existing vehicle as parked at cell %s", cell)
		}
	}

	// Stopped → parked once stationary long enough. Promotion can fold a
	// drifted record away, so cells from the snapshot may be gone by the
	// time the scan reaches them.
	for _, cell := range sortedCells(d.stopped) {
		v, ok := d.stopped[cell]
		if !ok {
			continue
		}
		stationaryFor := now.Sub(v.FirstSeen)
		if stationaryFor < d.cfg.ParkAfter {
			continue
		}
		parked := d.promoteToParked(cell, v)
		if !d.gate.allow(EventVehicleParked, now) {
			continue
		}
		d.fire(Event{
			Type:        EventVehicleParked,
			Timestamp:   now,
			Class:       parked.Class,
			Confidence:  stationaryEventConfidence,
			Box:         parked.Box,
			Meta:        map[string]float64{"parked_duration": stationaryFor.Seconds()},
			Color:       parked.Color,
			Description: parked.label("parked"),
		})
	}

	// Stopped vehicles that moved on expire silently.
	for _, cell := range sortedCells(d.stopped) {
		v := d.stopped[cell]
		if now.Sub(v.LastSeen) > d.cfg.StoppedGoneAfter {
			monitoring.Debugf("tracking: stopped vehicle at cell %s moved on", cell)
			delete(d.stopped, cell)
		}
	}

	// Parked vehicles unseen past the tolerant timeout have left.
	for _, cell := range sortedCells(d.parked) {
		v := d.parked[cell]
		if now.Sub(v.LastSeen) <= d.cfg.ParkedGoneAfter {
			continue
		}
		if d.gate.allow(EventVehicleLeft, now) {
			d.fire(Event{
				Type:        EventVehicleLeft,
				Timestamp:   now,
				Class:       v.Class,
				Confidence:  stationaryEventConfidence,
				Box:         v.Box,
				Meta:        map[string]float64{"parked_duration": now.Sub(v.FirstSeen).Seconds()},
				Color:       v.Color,
				Description: v.label("left"),
			})
		}
		monitoring.Logf("tracking: parked vehicle at cell %s has left", cell)
		delete(d.parked, cell)
	}
}

func (d *Detector) handleCameraMovement(now time.Time) {
	d.rescanDone = false
	d.cameraMoved = true

	for _, v := range d.parked {
		v.LastSeen = now
	}
	for _, v := range d.stopped {
		v.LastSeen = now
	}

	if !d.moveLogged {
		monitoring.Logf("tracking: camera moving, extending stationary vehicle timeouts")
		d.moveLogged = true
	}
}

// rescanAfterSettle rebuilds the stationary maps once the camera settles
// after a move: the old grid cells are meaningless in the shifted view, so
// every visible vehicle is re-registered as freshly parked. Runs at most
// once per movement and never at cold startup.
func (d *Detector) rescanAfterSettle(vehicleDets []Detection, settled bool, now time.Time) {
	if !d.cameraMoved || d.rescanDone {
		return
	}
	if !settled {
		return
	}
	d.rescanDone = true
	d.moveLogged = false

	oldParked, oldStopped := len(d.parked), len(d.stopped)
	d.parked = make(map[CellKey]*stationaryVehicle)
	d.stopped = make(map[CellKey]*stationaryVehicle)
	for _, det := range vehicleDets {
		d.parked[d.cellFor(det.Box)] = stationaryFrom(det, now, now)
	}

	monitoring.Logf("tracking: camera settled, re-registered %d vehicles (was %d parked, %d stopped)",
		len(d.parked), oldParked, oldStopped)
}

// noteSighting records an unmatched fresh vehicle sighting at det's cell
// and reports whether repeated sightings promoted the cell straight to
// parked. A tracker that keeps losing and re-acquiring a vehicle at one
// spot is itself evidence of a stationary object flickering in and out of
// detection, so the normal dwell timer is bypassed and no event fires.
func (d *Detector) noteSighting(det Detection, now time.Time) bool {
	cell := d.cellFor(det.Box)

	fresh := d.sightings[cell][:0]
	for _, ts := range d.sightings[cell] {
		if now.Sub(ts) < d.cfg.RepeatedWindow {
			fresh = append(fresh, ts)
		}
	}
	fresh = append(fresh, now)
	d.sightings[cell] = fresh

	if len(fresh) < d.cfg.RepeatedDetections {
		return false
	}
	if _, ok := d.parked[cell]; !ok {
		delete(d.stopped, cell)
		d.parked[cell] = stationaryFrom(det, fresh[0], now)
		d.sightings[cell] = nil
		monitoring.Logf("tracking: auto-registered flickering vehicle as parked at cell %s", cell)
	}
	return true
}
