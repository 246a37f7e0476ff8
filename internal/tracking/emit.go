package tracking

import (
	"github.com/google/uuid"

	"github.com/Bentlybro/camai/internal/monitoring"
)

type subscriber struct {
	id string
	fn func(Event)
}

// emitter fans fired events out to registered callbacks, synchronously and
// in registration order. A panicking callback is recovered and logged so
// one broken subscriber cannot abort the frame for the rest.
type emitter struct {
	subs []subscriber
}

func (e *emitter) subscribe(fn func(Event)) string {
	id := uuid.NewString()
	e.subs = append(e.subs, subscriber{id: id, fn: fn})
	return id
}

func (e *emitter) unsubscribe(id string) {
	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			return
		}
	}
}

func (e *emitter) dispatch(ev Event) {
	monitoring.Logf("tracking: event %s - %s", ev.Type, ev.display())
	for _, s := range e.subs {
		e.call(s, ev)
	}
}

func (e *emitter) call(s subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			monitoring.Logf("tracking: subscriber %s panicked on %s: %v", s.id, ev.Type, r)
		}
	}()
	s.fn(ev)
}
