package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_Basic(t *testing.T) {
	clock := NewManual()
	var calls int
	d := New(50*time.Millisecond, func() { calls++ }, WithAfterFunc(clock.AfterFunc))

	for i := 0; i < 10; i++ {
		d.Call()
		clock.Advance(10 * time.Millisecond)
	}
	if calls != 0 {
		t.Fatalf("calls = %d before quiet period, want 0", calls)
	}
	clock.Advance(50 * time.Millisecond)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if d.IsPending() {
		t.Error("IsPending() after fire")
	}
}

func TestDebouncer_SpacedCalls(t *testing.T) {
	clock := NewManual()
	var calls int
	d := New(50*time.Millisecond, func() { calls++ }, WithAfterFunc(clock.AfterFunc))

	for i := 0; i < 3; i++ {
		d.Call()
		clock.Advance(60 * time.Millisecond)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := NewManual()
	var calls int
	d := New(50*time.Millisecond, func() { calls++ }, WithAfterFunc(clock.AfterFunc))

	d.Call()
	d.Cancel()
	clock.Advance(time.Second)
	if calls != 0 {
		t.Errorf("calls = %d, want 0 (canceled)", calls)
	}
	if clock.Pending() != 0 {
		t.Errorf("Pending() = %d after cancel", clock.Pending())
	}
}

func TestDebouncer_Flush(t *testing.T) {
	clock := NewManual()
	var calls int
	d := New(50*time.Millisecond, func() { calls++ }, WithAfterFunc(clock.AfterFunc))

	d.Flush()
	if calls != 0 {
		t.Fatalf("Flush without pending call ran the callback")
	}
	d.Call()
	d.Flush()
	if calls != 1 {
		t.Fatalf("calls = %d after Flush, want 1", calls)
	}
	clock.Advance(time.Second)
	if calls != 1 {
		t.Errorf("stale timer fired: calls = %d", calls)
	}
}

func TestDebouncer_RealTimer(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{}, 1)
	d := New(5*time.Millisecond, func() {
		calls.Add(1)
		done <- struct{}{}
	})
	d.Call()
	d.Call()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback did not run")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestManual_Order(t *testing.T) {
	clock := NewManual()
	var order []int
	clock.AfterFunc(30*time.Millisecond, func() { order = append(order, 3) })
	clock.AfterFunc(10*time.Millisecond, func() { order = append(order, 1) })
	stopped := clock.AfterFunc(20*time.Millisecond, func() { order = append(order, 2) })
	if !stopped.Stop() {
		t.Fatal("Stop on an active timer returned false")
	}

	if n := clock.Advance(30 * time.Millisecond); n != 2 {
		t.Errorf("Advance fired %d timers, want 2", n)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Errorf("order = %v, want [1 3]", order)
	}
}
