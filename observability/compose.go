package observability

import "context"

// NoOpObserver discards all events.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}

// MultiObserver forwards every event to each of its observers in order.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver creates a MultiObserver. Nil and no-op observers are
// dropped and nested MultiObservers are flattened.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	m := &MultiObserver{}
	for _, obs := range observers {
		switch o := obs.(type) {
		case nil, NoOpObserver:
		case *MultiObserver:
			m.observers = append(m.observers, o.observers...)
		default:
			m.observers = append(m.observers, o)
		}
	}
	return m
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}

// Combine returns a single Observer for observers: NoOpObserver when none
// remain after filtering, the observer itself when exactly one remains, and
// a MultiObserver otherwise.
func Combine(observers ...Observer) Observer {
	m := NewMultiObserver(observers...)
	switch len(m.observers) {
	case 0:
		return NoOpObserver{}
	case 1:
		return m.observers[0]
	default:
		return m
	}
}
