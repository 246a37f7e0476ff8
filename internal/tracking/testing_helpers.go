package tracking

// SetPositionHistory replaces a track's position history with the given
// samples, stored in a ring of the given capacity.
//
// NOTE: This function is intended for testing purposes only and should
// not be used in production code. The history ring is intentionally
// unexported; production code feeds positions through Update.
func (o *TrackedObject) SetPositionHistory(samples []PositionSample, capacity int) {
	o.history = newPosRing(capacity)
	for _, s := range samples {
		o.history.push(s)
	}
}
