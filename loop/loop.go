// Package loop provides the single-threaded host event loop that drives
// deferred work: posted functions, one-shot idle callbacks and timers.
//
// Everything scheduled on a Loop runs on the goroutine calling RunOnce or Run,
// so callers never need to lock state that is only touched from loop work.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/internal/logger"
)

// Config configures the loop behavior.
type Config struct {
	// TickInterval is the idle poll interval of Run (default: 16ms).
	TickInterval time.Duration

	// Logger receives panics recovered from scheduled work.
	Logger *zap.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval: 16 * time.Millisecond,
	}
}

// Loop runs posted functions, idle callbacks and timers.
type Loop struct {
	config Config
	log    *zap.Logger
	timers *TimerRegistry

	mu     sync.Mutex
	posted []func()
	idles  []func()
	now    time.Time

	wake chan struct{}

	running    atomic.Bool
	frameCount atomic.Uint64
}

// New creates a loop with the given configuration.
func New(config Config) *Loop {
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultConfig().TickInterval
	}
	return &Loop{
		config: config,
		log:    logger.Or(config.Logger),
		timers: NewTimerRegistry(),
		now:    time.Now(),
		wake:   make(chan struct{}, 1),
	}
}

// Timers returns the timer registry.
func (l *Loop) Timers() *TimerRegistry {
	return l.timers
}

// Now returns the time of the last iteration.
func (l *Loop) Now() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now
}

// FrameCount returns the number of completed iterations.
func (l *Loop) FrameCount() uint64 {
	return l.frameCount.Load()
}

// Post schedules fn to run on the loop. Safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
	l.signal()
}

// AddIdle schedules a one-shot callback for the end of the next iteration,
// after posted work and timers. Returns false for a nil callback.
func (l *Loop) AddIdle(fn func()) bool {
	if fn == nil {
		return false
	}
	l.mu.Lock()
	l.idles = append(l.idles, fn)
	l.mu.Unlock()
	l.signal()
	return true
}

// AddTimer schedules tick every interval, starting one interval from the
// loop's current time. The timer stops when tick returns false.
func (l *Loop) AddTimer(interval time.Duration, tick func() bool) *Timer {
	t := l.timers.Add(l.Now(), interval, tick)
	l.signal()
	return t
}

// HasPending reports whether any posted work or idle callback is queued.
func (l *Loop) HasPending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.posted) > 0 || len(l.idles) > 0
}

// RunOnce performs one iteration at time now: posted work in FIFO order,
// due timers, then idle callbacks queued before the idle phase began.
// Returns true if more work is queued or timers are active.
func (l *Loop) RunOnce(now time.Time) bool {
	l.mu.Lock()
	l.now = now
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()

	for _, fn := range posted {
		l.call(fn)
	}

	hasTimers := l.timers.Tick(now)

	l.mu.Lock()
	idles := l.idles
	l.idles = nil
	l.mu.Unlock()

	for _, fn := range idles {
		l.call(fn)
	}

	l.frameCount.Add(1)
	return hasTimers || l.HasPending()
}

// Drain iterates at now until no posted work or idle callback remains,
// bounded by maxIterations. Timers are fired but not waited for.
func (l *Loop) Drain(now time.Time, maxIterations int) {
	for i := 0; i < maxIterations; i++ {
		l.RunOnce(now)
		if !l.HasPending() {
			return
		}
	}
}

// Run iterates until ctx is cancelled, sleeping between iterations when
// nothing is due.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return nil
	}
	defer l.running.Store(false)

	l.log.Debug("loop started", zap.Duration("tick", l.config.TickInterval))
	ticker := time.NewTicker(l.config.TickInterval)
	defer ticker.Stop()

	for {
		l.RunOnce(time.Now())

		select {
		case <-ctx.Done():
			l.log.Debug("loop stopped", zap.Uint64("frames", l.frameCount.Load()))
			return ctx.Err()
		case <-l.wake:
		case <-ticker.C:
		}
	}
}

// IsRunning reports whether Run is active.
func (l *Loop) IsRunning() bool {
	return l.running.Load()
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("recovered panic in loop callback", zap.Any("panic", r))
		}
	}()
	fn()
}
