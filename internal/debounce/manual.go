package debounce

import (
	"sync"
	"time"
)

// Manual is a hand-driven timer source. Timers it creates fire only when
// Advance moves the clock past their deadline.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	m        *Manual
	deadline time.Duration
	f        func()
	stopped  bool
	fired    bool
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// NewManual creates a manual clock at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc implements the AfterFunc signature.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{m: m, deadline: m.now + d, f: f}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward and runs every timer that came due, in
// deadline order. Callbacks run without the clock's lock held.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	m.now += d
	var due []*manualTimer
	keep := m.timers[:0]
	for _, t := range m.timers {
		switch {
		case t.stopped || t.fired:
		case t.deadline <= m.now:
			t.fired = true
			due = append(due, t)
		default:
			keep = append(keep, t)
		}
	}
	m.timers = keep
	m.mu.Unlock()

	for i := 1; i < len(due); i++ {
		for j := i; j > 0 && due[j].deadline < due[j-1].deadline; j-- {
			due[j], due[j-1] = due[j-1], due[j]
		}
	}
	for _, t := range due {
		t.f()
	}
	return len(due)
}

// Pending returns the number of timers that have neither fired nor stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
