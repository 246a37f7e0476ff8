package tracking

import (
	"sort"

	"github.com/Bentlybro/camai/internal/geom"
)

// bestMatch returns the live track that best matches det, or nil. Greedy
// single-pass scoring: candidates share the class and overlap at least
// MatchIoU; the score is that overlap plus SignatureBonus when both sides
// carry the same non-empty signature, which rescues matches whose boxes
// drifted under fast motion or skipped frames.
//
// Candidates are scanned in ascending track ID order and only a strictly
// higher score displaces the current best, so ties always resolve to the
// first-registered track regardless of map iteration order.
func (d *Detector) bestMatch(det Detection) *TrackedObject {
	ids := make([]int64, 0, len(d.tracks))
	for id := range d.tracks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var best *TrackedObject
	var bestScore float64
	for _, id := range ids {
		obj := d.tracks[id]
		if obj.Class != det.Class {
			continue
		}
		overlap := geom.IoU(det.Box, obj.Box)
		if overlap < d.cfg.MatchIoU {
			continue
		}
		score := overlap
		if det.Signature != "" && obj.Signature != "" && det.Signature == obj.Signature {
			score += d.cfg.SignatureBonus
		}
		if score > bestScore {
			best, bestScore = obj, score
		}
	}
	return best
}
