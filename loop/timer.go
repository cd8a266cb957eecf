package loop

import (
	"sync"
	"sync/atomic"
	"time"
)

// TimerID uniquely identifies a timer.
type TimerID uint64

var nextTimerID atomic.Uint64

func newTimerID() TimerID {
	return TimerID(nextTimerID.Add(1))
}

// Timer calls its tick function every interval until the function returns
// false or Stop is called.
type Timer struct {
	id       TimerID
	interval time.Duration
	next     time.Time
	tick     func() bool
	stopped  atomic.Bool
}

// ID returns the timer's unique identifier.
func (t *Timer) ID() TimerID {
	return t.id
}

// Interval returns the tick interval.
func (t *Timer) Interval() time.Duration {
	return t.interval
}

// Stop prevents further ticks. Safe to call from inside the tick function.
func (t *Timer) Stop() {
	if t == nil {
		return
	}
	t.stopped.Store(true)
}

// IsRunning reports whether the timer will tick again.
func (t *Timer) IsRunning() bool {
	return t != nil && !t.stopped.Load()
}

// TimerRegistry holds active timers and fires the due ones on Tick.
type TimerRegistry struct {
	mu     sync.RWMutex
	timers map[TimerID]*Timer

	// Called when the registry goes from empty to non-empty and back
	onActiveChange func(hasActive bool)
}

// NewTimerRegistry creates an empty registry.
func NewTimerRegistry() *TimerRegistry {
	return &TimerRegistry{
		timers: make(map[TimerID]*Timer),
	}
}

// OnActiveChange sets the callback for when timers become active/inactive.
func (r *TimerRegistry) OnActiveChange(fn func(hasActive bool)) {
	r.mu.Lock()
	r.onActiveChange = fn
	r.mu.Unlock()
}

// Add registers a timer whose first tick is due at now+interval.
func (r *TimerRegistry) Add(now time.Time, interval time.Duration, tick func() bool) *Timer {
	t := &Timer{
		id:       newTimerID(),
		interval: interval,
		next:     now.Add(interval),
		tick:     tick,
	}

	r.mu.Lock()
	wasEmpty := len(r.timers) == 0
	r.timers[t.id] = t
	callback := r.onActiveChange
	r.mu.Unlock()

	if wasEmpty && callback != nil {
		callback(true)
	}
	return t
}

// Remove unregisters a timer.
func (r *TimerRegistry) Remove(id TimerID) {
	r.mu.Lock()
	_, existed := r.timers[id]
	delete(r.timers, id)
	isEmpty := len(r.timers) == 0
	callback := r.onActiveChange
	r.mu.Unlock()

	if existed && isEmpty && callback != nil {
		callback(false)
	}
}

// HasActive returns true if any timer is registered.
func (r *TimerRegistry) HasActive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.timers) > 0
}

// Count returns the number of registered timers.
func (r *TimerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.timers)
}

// NextDue returns the earliest due time, or false when no timer is registered.
func (r *TimerRegistry) NextDue() (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var due time.Time
	found := false
	for _, t := range r.timers {
		if t.stopped.Load() {
			continue
		}
		if !found || t.next.Before(due) {
			due = t.next
			found = true
		}
	}
	return due, found
}

// Tick fires every timer due at now and drops the finished ones.
// Tick functions run outside the lock so they may add or stop timers.
// Returns true if any timers are still active.
func (r *TimerRegistry) Tick(now time.Time) bool {
	r.mu.Lock()
	var due []*Timer
	var toRemove []TimerID
	for id, t := range r.timers {
		if t.stopped.Load() {
			toRemove = append(toRemove, id)
			continue
		}
		if !now.Before(t.next) {
			due = append(due, t)
		}
	}
	for _, id := range toRemove {
		delete(r.timers, id)
	}
	r.mu.Unlock()

	// Fire in due order so equal intervals keep registration order.
	sortTimers(due)

	for _, t := range due {
		if t.stopped.Load() {
			continue
		}
		if t.tick == nil || !t.tick() {
			t.stopped.Store(true)
			continue
		}
		t.next = now.Add(t.interval)
	}

	r.mu.Lock()
	removed := len(toRemove) > 0
	for id, t := range r.timers {
		if t.stopped.Load() {
			delete(r.timers, id)
			removed = true
		}
	}
	hasActive := len(r.timers) > 0
	callback := r.onActiveChange
	r.mu.Unlock()

	if removed && !hasActive && callback != nil {
		callback(false)
	}
	return hasActive
}

func sortTimers(ts []*Timer) {
	for i := 1; i < len(ts); i++ {
		for j := i; j > 0 && timerLess(ts[j], ts[j-1]); j-- {
			ts[j], ts[j-1] = ts[j-1], ts[j]
		}
	}
}

func timerLess(a, b *Timer) bool {
	if a.next.Equal(b.next) {
		return a.id < b.id
	}
	return a.next.Before(b.next)
}
