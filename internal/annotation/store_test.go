package annotation

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/dshills/marginalia/internal/anchor"
	"github.com/dshills/marginalia/internal/debounce"
	"github.com/dshills/marginalia/internal/text"
	"github.com/dshills/marginalia/internal/txn"
)

// fixture runs the same per-transaction pipeline the engine runs.
type fixture struct {
	t       *testing.T
	doc     text.Doc
	sel     txn.Selection
	tracker *anchor.Tracker
	remap   *anchor.Remapper
	store   *Store
	rec     *Recovery
	deleted []string
}

func newFixture(t *testing.T, s string, opts ...Option) *fixture {
	t.Helper()
	n := 0
	f := &fixture{t: t, doc: text.NewDoc(s)}
	f.tracker = anchor.NewTracker(anchor.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("anchor-%d", n)
	}))
	f.remap = anchor.NewRemapper(f.tracker, nil)
	opts = append([]Option{WithOnDelete(func(id string) { f.deleted = append(f.deleted, id) })}, opts...)
	f.store = NewStore(f.remap, opts...)
	f.rec = NewRecovery(f.remap, nil)
	return f
}

func (f *fixture) anchor(from, to int) anchor.Anchor {
	return f.tracker.Create(text.Range{From: from, To: to}, f.doc)
}

func (f *fixture) set(entries ...Entry) {
	f.dispatch(txn.Spec{Effects: []txn.Effect{SetAnnotations.Of(entries)}})
}

func (f *fixture) dispatch(spec txn.Spec) (txn.Transaction, []DeleteMarker) {
	f.t.Helper()
	tr, err := txn.New(f.doc, f.sel, spec)
	if err != nil {
		f.t.Fatalf("txn.New: %v", err)
	}
	prev := f.store.State()
	f.rec.Capture(prev, tr)
	markers := f.rec.Markers(prev, tr)
	f.remap.Map(tr.Changes)
	for _, e := range f.rec.Restorations(prev, tr) {
		tr.Effects = append(tr.Effects, Restore.Of(e))
	}
	f.store.Apply(tr)
	f.doc, f.sel = tr.Doc, tr.Selection
	return tr, markers
}

func (f *fixture) rangeOf(id string) text.Range {
	f.t.Helper()
	a, ok := f.store.Annotation(id)
	if !ok || !a.Active() {
		f.t.Fatalf("annotation %q not active: %+v", id, a)
	}
	return a.Range
}

func sel(a, h int) *txn.Selection {
	return &txn.Selection{Anchor: a, Head: h}
}

func TestSetAnnotationsSkipsUnresolvable(t *testing.T) {
	f := newFixture(t, "hello world")
	f.set(
		Entry{ID: "ok", Anchor: f.anchor(6, 11)},
		Entry{ID: "gone", Anchor: anchor.Anchor{ID: "missing"}},
	)
	st := f.store.State()
	if len(st.Annotations) != 1 || st.Annotations[0].ID != "ok" {
		t.Fatalf("annotations = %+v", st.Annotations)
	}
	if got := f.rangeOf("ok"); got != (text.Range{From: 6, To: 11}) {
		t.Errorf("range = %v", got)
	}
}

func TestLocality(t *testing.T) {
	f := newFixture(t, "alpha beta gamma")
	f.set(Entry{ID: "a", Anchor: f.anchor(0, 5)}, Entry{ID: "b", Anchor: f.anchor(6, 10)})

	f.dispatch(txn.Spec{Changes: []text.Edit{text.NewInsert(12, "XYZ")}})
	f.dispatch(txn.Spec{Changes: []text.Edit{text.NewDelete(11, 13)}})

	if got := f.rangeOf("a"); got != (text.Range{From: 0, To: 5}) {
		t.Errorf("a = %v, want [0,5]", got)
	}
	if got := f.rangeOf("b"); got != (text.Range{From: 6, To: 10}) {
		t.Errorf("b = %v, want [6,10]", got)
	}

	// An edit before shifts, but does not resize.
	f.dispatch(txn.Spec{Changes: []text.Edit{text.NewInsert(0, ">>")}})
	if got := f.rangeOf("b"); got != (text.Range{From: 8, To: 12}) {
		t.Errorf("b after prefix insert = %v, want [8,12]", got)
	}
}

func TestEdgeInsertNotAbsorbed(t *testing.T) {
	f := newFixture(t, "abcdef")
	f.set(Entry{ID: "x", Anchor: f.anchor(2, 4)})
	f.dispatch(txn.Spec{Changes: []text.Edit{text.NewInsert(4, "!!")}})
	f.dispatch(txn.Spec{Changes: []text.Edit{text.NewInsert(2, "??")}})
	if got := f.rangeOf("x"); got != (text.Range{From: 4, To: 6}) {
		t.Errorf("x = %v, want [4,6]", got)
	}
}

func TestExactlyOnceDelete(t *testing.T) {
	f := newFixture(t, "hello world foo")
	f.set(Entry{ID: "w", Anchor: f.anchor(6, 11)})

	f.dispatch(txn.Spec{Changes: []text.Edit{text.NewDelete(5, 11)}, Event: txn.EventDelete})
	f.dispatch(txn.Spec{Changes: []text.Edit{text.NewInsert(0, "X")}})
	f.dispatch(txn.Spec{Changes: []text.Edit{text.NewInsert(3, "world")}})

	if !slices.Equal(f.deleted, []string{"w"}) {
		t.Errorf("deleted = %v, want [w]", f.deleted)
	}
	a, ok := f.store.Annotation("w")
	if !ok {
		t.Fatal("deleted annotation was removed from the store")
	}
	if a.Active() {
		t.Errorf("deleted annotation is active: %+v", a)
	}
}

func TestProximity(t *testing.T) {
	f := newFixture(t, "aaa bbb ccc ddd")
	f.set(
		Entry{ID: "A", Anchor: f.anchor(0, 3)},
		Entry{ID: "B", Anchor: f.anchor(4, 7)},
		Entry{ID: "C", Anchor: f.anchor(8, 11)},
	)

	f.dispatch(txn.Spec{Selection: sel(5, 5)})
	if got := f.store.Selection(); got != (SelectionState{Current: "B"}) {
		t.Errorf("cursor in B: %+v", got)
	}

	f.dispatch(txn.Spec{Selection: sel(14, 14)})
	if got := f.store.Selection(); got != (SelectionState{Closest: "C"}) {
		t.Errorf("cursor after C: %+v", got)
	}
}

func TestProximityTieBreak(t *testing.T) {
	tests := []struct {
		name string
		b    text.Range
		head int
		want SelectionState
	}{
		{"equidistant picks lower from", text.Range{From: 5, To: 8}, 4, SelectionState{Closest: "A"}},
		{"shared edge picks lower from", text.Range{From: 3, To: 8}, 3, SelectionState{Current: "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "aaa bbbb")
			// B is listed first so list order alone would pick it.
			f.set(Entry{ID: "B", Anchor: f.anchor(tt.b.From, tt.b.To)}, Entry{ID: "A", Anchor: f.anchor(0, 3)})
			f.dispatch(txn.Spec{Selection: sel(tt.head, tt.head)})
			if got := f.store.Selection(); got != tt.want {
				t.Errorf("Selection() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSetSelectionOverridesScan(t *testing.T) {
	f := newFixture(t, "aaa bbb")
	f.set(Entry{ID: "A", Anchor: f.anchor(0, 3)})
	want := SelectionState{Closest: "elsewhere"}
	f.dispatch(txn.Spec{Selection: sel(1, 1), Effects: []txn.Effect{SetSelection.Of(want)}})
	if got := f.store.Selection(); got != want {
		t.Errorf("Selection() = %+v, want %+v", got, want)
	}
}

func TestProximityDebounced(t *testing.T) {
	clock := debounce.NewManual()
	var got []SelectionState
	f := newFixture(t, "aaa bbb ccc",
		WithOnProximity(func(s SelectionState) { got = append(got, s) }),
		WithProximityDebounce(50*time.Millisecond, debounce.WithAfterFunc(clock.AfterFunc)),
	)
	defer f.store.Close()

	f.set(Entry{ID: "A", Anchor: f.anchor(0, 3)}, Entry{ID: "B", Anchor: f.anchor(4, 7)})
	f.dispatch(txn.Spec{Selection: sel(5, 5)})
	f.dispatch(txn.Spec{Selection: sel(1, 1)})
	if len(got) != 0 {
		t.Fatalf("notified before quiet period: %v", got)
	}

	clock.Advance(50 * time.Millisecond)
	if len(got) != 1 || got[0] != (SelectionState{Current: "A"}) {
		t.Errorf("notifications = %+v, want one for A", got)
	}
}

func TestCloseCancelsProximity(t *testing.T) {
	clock := debounce.NewManual()
	calls := 0
	f := newFixture(t, "aaa",
		WithOnProximity(func(SelectionState) { calls++ }),
		WithProximityDebounce(time.Second, debounce.WithAfterFunc(clock.AfterFunc)),
	)
	f.set(Entry{ID: "A", Anchor: f.anchor(0, 3)})
	f.store.Close()
	clock.Advance(time.Minute)
	if calls != 0 {
		t.Errorf("calls = %d after Close", calls)
	}
}

func TestRestoreSkipsLiveID(t *testing.T) {
	f := newFixture(t, "aaa bbb")
	f.set(Entry{ID: "A", Anchor: f.anchor(0, 3)})
	f.dispatch(txn.Spec{Effects: []txn.Effect{Restore.Of(Entry{ID: "A", Anchor: f.anchor(4, 7)})}})
	if got := f.rangeOf("A"); got != (text.Range{From: 0, To: 3}) {
		t.Errorf("live annotation moved to %v", got)
	}
	if n := len(f.store.State().Annotations); n != 1 {
		t.Errorf("annotations = %d, want 1", n)
	}
}
