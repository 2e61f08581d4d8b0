// Package debounce groups rapid successive calls into one call after a
// quiet period.
package debounce

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer a Debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithAfterFunc replaces the timer source. Tests use it with a Manual clock.
func WithAfterFunc(fn AfterFunc) Option {
	return func(d *Debouncer) {
		if fn != nil {
			d.after = fn
		}
	}
}

// Debouncer runs a callback once no new Call has been made for the delay.
//
// All methods are safe for concurrent use. The callback is never invoked
// with the debouncer's lock held, and a stale timer never fires it.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	after    AfterFunc
	timer    Timer
	pending  bool
	seq      uint64 // detects stale timer callbacks
	callback func()
}

// New creates a debouncer with the given delay.
func New(delay time.Duration, callback func(), opts ...Option) *Debouncer {
	d := &Debouncer{
		delay:    delay,
		after:    realAfterFunc,
		callback: callback,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Call schedules the callback, restarting the quiet period.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.seq++
	current := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.after(d.delay, func() {
		d.mu.Lock()
		if !d.pending || d.seq != current || d.callback == nil {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.timer = nil
		d.mu.Unlock()
		d.callback()
	})
}

// Flush runs the callback now if a call is pending and cancels the timer.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	if !d.pending || d.callback == nil {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()
	d.callback()
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// IsPending reports whether a call is waiting for its quiet period.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
