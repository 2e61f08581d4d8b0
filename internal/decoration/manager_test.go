package decoration

import (
	"testing"
	"time"

	"github.com/dshills/marginalia/internal/debounce"
)

func TestManagerPolicy(t *testing.T) {
	m := NewManager(NewBuilder())
	in := input("# A")

	if _, rebuilt := m.Update(Update{Input: in}); !rebuilt {
		t.Fatal("first update must build")
	}
	if _, rebuilt := m.Update(Update{Input: in}); rebuilt {
		t.Error("nothing changed, no rebuild expected")
	}
	for _, u := range []Update{
		{DocChanged: true},
		{ViewportChanged: true},
		{FocusChanged: true},
		{Forced: true},
		{SelectionChanged: true},
	} {
		u.Input = in
		if _, rebuilt := m.Update(u); !rebuilt {
			t.Errorf("update %+v did not rebuild", u)
		}
	}
}

func TestManagerSelectionDelay(t *testing.T) {
	clock := debounce.NewManual()
	settled := 0
	m := NewManager(NewBuilder(), WithSelectionDelay(30*time.Millisecond, func() { settled++ }, debounce.WithAfterFunc(clock.AfterFunc)))
	defer m.Close()
	in := input("# A")
	m.Update(Update{Input: in})

	for i := 0; i < 3; i++ {
		if _, rebuilt := m.Update(Update{SelectionChanged: true, Input: in}); rebuilt {
			t.Fatal("selection move rebuilt despite the delay")
		}
	}
	if !m.Pending() {
		t.Fatal("settle rebuild not scheduled")
	}
	clock.Advance(30 * time.Millisecond)
	if settled != 1 {
		t.Errorf("settled = %d, want 1", settled)
	}

	m.Update(Update{SelectionChanged: true, Input: in})
	m.Update(Update{DocChanged: true, Input: in})
	if m.Pending() {
		t.Error("a full rebuild should cancel the pending settle")
	}
	clock.Advance(time.Second)
	if settled != 1 {
		t.Errorf("settled = %d after cancel, want 1", settled)
	}
}
