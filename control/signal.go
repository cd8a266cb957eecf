package control

// Connection identifies a slot connected to a Signal.
type Connection uint64

type slot[T any] struct {
	id Connection
	fn func(T)
}

// Signal is a list of callbacks invoked in connection order. Slots may
// connect or disconnect while the signal is being emitted; the change
// applies from the next emission.
type Signal[T any] struct {
	next  Connection
	slots []slot[T]
}

// Connect adds fn and returns its connection.
func (s *Signal[T]) Connect(fn func(T)) Connection {
	s.next++
	s.slots = append(s.slots, slot[T]{id: s.next, fn: fn})
	return s.next
}

// Disconnect removes the slot c. Returns false when c is not connected.
func (s *Signal[T]) Disconnect(c Connection) bool {
	for i, sl := range s.slots {
		if sl.id == c {
			s.slots = append(s.slots[:i:i], s.slots[i+1:]...)
			return true
		}
	}
	return false
}

// Empty reports whether no slot is connected.
func (s *Signal[T]) Empty() bool {
	return len(s.slots) == 0
}

// Emit calls every connected slot with v.
func (s *Signal[T]) Emit(v T) {
	for _, sl := range s.slots {
		sl.fn(v)
	}
}
