// Package scheduler provides the cooperative frame loop that drives
// per-tick work, delayed callbacks and transport notifications.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Handle is a cancellable registration returned by Scheduler.
type Handle interface {
	Cancel()
}

// Scheduler runs callbacks on a single cooperative queue.
type Scheduler interface {
	// RunEveryTick calls fn once per frame until the handle is cancelled.
	RunEveryTick(fn func()) Handle
	// RunAfter calls fn once after d has elapsed.
	RunAfter(d time.Duration, fn func()) Handle
	// Post enqueues fn to run at the start of the next frame.
	// Safe for use from other goroutines.
	Post(fn func())
}

// Clock reports elapsed time since an arbitrary epoch.
type Clock interface {
	Now() time.Duration
}

type task struct {
	fn        func()
	due       time.Duration
	seq       uint64
	cancelled bool
}

func (t *task) Cancel() {
	t.cancelled = true
}

// Loop is a frame-driven Scheduler. Every call to Tick drains posted
// callbacks, fires due timers and then runs per-tick callbacks.
type Loop struct {
	clock Clock

	mu     sync.Mutex
	posted []func()

	tickers []*task
	timers  []*task
	seq     uint64
}

var _ Scheduler = (*Loop)(nil)

// NewLoop creates a loop that reads time from clock.
func NewLoop(clock Clock) *Loop {
	return &Loop{clock: clock}
}

// Now returns the loop clock reading.
func (l *Loop) Now() time.Duration {
	return l.clock.Now()
}

// RunEveryTick registers a per-frame callback.
func (l *Loop) RunEveryTick(fn func()) Handle {
	l.seq++
	t := &task{fn: fn, seq: l.seq}
	l.tickers = append(l.tickers, t)
	return t
}

// RunAfter registers a one-shot timer.
func (l *Loop) RunAfter(d time.Duration, fn func()) Handle {
	l.seq++
	t := &task{fn: fn, due: l.clock.Now() + d, seq: l.seq}
	l.timers = append(l.timers, t)
	return t
}

// Post enqueues fn for the next frame.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
}

// Pending reports the number of posted callbacks that have not run yet.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.posted)
}

// Tick runs one frame.
func (l *Loop) Tick() {
	l.drain()
	l.fireTimers()
	l.runTickers()
}

// Run ticks the loop every interval until ctx is done.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Tick()
		}
	}
}

// drain выполняет колбэки, в том числе добавленные во время выполнения
func (l *Loop) drain() {
	for {
		l.mu.Lock()
		batch := l.posted
		l.posted = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			fn()
		}
	}
}

func (l *Loop) fireTimers() {
	now := l.clock.Now()

	var due, rest []*task
	for _, t := range l.timers {
		switch {
		case t.cancelled:
		case t.due <= now:
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	l.timers = rest

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})

	for _, t := range due {
		// таймер мог быть отменен предыдущим колбэком
		if t.cancelled {
			continue
		}
		t.fn()
	}
}

func (l *Loop) runTickers() {
	active := l.tickers[:0:0]
	for _, t := range l.tickers {
		if !t.cancelled {
			active = append(active, t)
		}
	}
	l.tickers = active

	for _, t := range active {
		if t.cancelled {
			continue
		}
		t.fn()
	}
}
