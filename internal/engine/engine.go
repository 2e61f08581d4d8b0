package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dshills/marginalia/internal/anchor"
	"github.com/dshills/marginalia/internal/annotation"
	"github.com/dshills/marginalia/internal/decoration"
	"github.com/dshills/marginalia/internal/history"
	"github.com/dshills/marginalia/internal/logging"
	"github.com/dshills/marginalia/internal/plugin/lua"
	"github.com/dshills/marginalia/internal/text"
	"github.com/dshills/marginalia/internal/tree"
	"github.com/dshills/marginalia/internal/tree/markdown"
	"github.com/dshills/marginalia/internal/txn"
	"github.com/dshills/marginalia/internal/widget"
)

// ViewState is what the host view reports about itself.
type ViewState struct {
	// Windows are the visible ranges. Empty means the whole document.
	Windows  []text.Range
	Focused  bool
	ReadOnly bool
}

// Output is everything the host view needs after a change.
type Output struct {
	Atomic   decoration.Set
	Ordinary decoration.Set
	Widgets  decoration.Set

	// WidgetEvents are the lifecycle events of this change only.
	WidgetEvents []widget.Event
	// InverseEffects are attached to the change's undo entry.
	InverseEffects []txn.Effect
	Selection      annotation.SelectionState
}

// Engine is the per-editor facade. Its methods are safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	doc  text.Doc
	sel  txn.Selection
	view ViewState
	tree *tree.Tree
	last Output

	provider    tree.Provider
	tracker     *anchor.Tracker
	remap       *anchor.Remapper
	store       *annotation.Store
	recovery    *annotation.Recovery
	decorations *decoration.Manager
	images      *decoration.ImageCache
	widgets     *widget.Builder
	history     *history.History
	scripts     []*lua.State

	navTags []string
	host    Host
	logger  *slog.Logger
	closed  bool
}

// New creates an engine over an initial document and builds its first
// output.
func New(doc text.Doc, opts ...Option) (*Engine, error) {
	s := settings{
		logger:     slog.New(slog.DiscardHandler),
		decoration: decoration.DefaultOptions(),
		maxUndo:    DefaultMaxUndoEntries,
		imageTTL:   DefaultImageTTL,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.provider == nil {
		s.provider = markdown.NewProvider()
	}
	if s.registry == nil {
		s.registry = widget.NewRegistry()
	}

	e := &Engine{
		doc:      doc,
		provider: s.provider,
		navTags:  s.navTags,
		host:     s.host,
		logger:   s.logger,
	}

	scripts, err := loadDefinitions(s.registry, s.widgetDefs, s.scriptTimeout, logging.Component(s.logger, "lua"))
	if err != nil {
		return nil, err
	}
	e.scripts = scripts

	var trackerOpts []anchor.TrackerOption
	if s.anchorIDs != nil {
		trackerOpts = append(trackerOpts, anchor.WithIDGenerator(s.anchorIDs))
	}
	e.tracker = anchor.NewTracker(trackerOpts...)
	e.remap = anchor.NewRemapper(e.tracker, logging.Component(s.logger, "anchor"))

	storeOpts := []annotation.Option{
		annotation.WithLogger(logging.Component(s.logger, "annotation")),
		annotation.WithProximityDebounce(s.proximityDelay, s.debounceOpts...),
	}
	if s.onDelete != nil {
		storeOpts = append(storeOpts, annotation.WithOnDelete(s.onDelete))
	}
	if s.onProximity != nil {
		storeOpts = append(storeOpts, annotation.WithOnProximity(s.onProximity))
	}
	e.store = annotation.NewStore(e.remap, storeOpts...)
	e.recovery = annotation.NewRecovery(e.remap, logging.Component(s.logger, "recovery"))

	e.images = decoration.NewImageCache(s.imageTTL)
	builder := decoration.NewBuilder(
		decoration.WithOptions(s.decoration),
		decoration.WithHooks(s.hooks),
		decoration.WithImageCache(e.images),
		decoration.WithLogger(logging.Component(s.logger, "decoration")),
	)
	var managerOpts []decoration.ManagerOption
	if s.selectionDelay > 0 {
		managerOpts = append(managerOpts, decoration.WithSelectionDelay(s.selectionDelay, e.settled, s.debounceOpts...))
	}
	e.decorations = decoration.NewManager(builder, managerOpts...)

	widgetOpts := []widget.Option{widget.WithLogger(logging.Component(s.logger, "widget"))}
	if s.widgetIDs != nil {
		widgetOpts = append(widgetOpts, widget.WithIDGenerator(s.widgetIDs))
	}
	e.widgets = widget.NewBuilder(s.registry, widgetOpts...)
	e.history = history.New(s.maxUndo)

	e.tree = e.provider.Tree(doc)
	ws := e.widgets.Rebuild(doc, e.tree)
	deco, _ := e.decorations.Update(decoration.Update{Input: e.input()})
	e.last = Output{
		Atomic:       deco.Atomic,
		Ordinary:     deco.Ordinary,
		Widgets:      ws.Set,
		WidgetEvents: ws.Events,
	}
	return e, nil
}

// Dispatch applies a transaction spec and returns the transaction and the
// resulting output.
func (e *Engine) Dispatch(spec txn.Spec) (txn.Transaction, Output, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return txn.Transaction{}, Output{}, ErrClosed
	}
	tr, out, err := e.dispatchLocked(spec)
	if err == nil {
		e.history.Record(tr, out.InverseEffects)
	}
	return tr, out, err
}

func (e *Engine) dispatchLocked(spec txn.Spec) (txn.Transaction, Output, error) {
	tr, err := txn.New(e.doc, e.sel, spec)
	if err != nil {
		return txn.Transaction{}, Output{}, fmt.Errorf("dispatch: %w", err)
	}

	prev := e.store.State()
	e.recovery.Capture(prev, tr)
	markers := e.recovery.Markers(prev, tr)
	if tr.DocChanged() {
		e.remap.Map(tr.Changes)
	}
	for _, entry := range e.recovery.Restorations(prev, tr) {
		tr.Effects = append(tr.Effects, annotation.Restore.Of(entry))
	}
	state := e.store.Apply(tr)
	if len(markers) > 0 {
		if n := e.tracker.Prune(); n > 0 {
			e.logger.Debug("pruned dead anchors", "count", n)
		}
	}

	e.doc, e.sel = tr.Doc, tr.Selection
	if tr.DocChanged() {
		e.tree = e.provider.Tree(tr.Doc)
	}

	out := Output{Selection: state.Selection}
	if len(markers) > 0 {
		out.InverseEffects = []txn.Effect{annotation.RestoreMarkers.Of(markers)}
	}

	annotationsChanged := annotation.SetAnnotations.Has(tr.Effects) || annotation.Restore.Has(tr.Effects)
	deco, _ := e.decorations.Update(decoration.Update{
		DocChanged:       tr.DocChanged(),
		SelectionChanged: tr.SelectionChanged(),
		Forced:           decoration.ForceUpdate.Has(tr.Effects) || annotationsChanged,
		Input:            e.input(),
	})
	ws := e.widgets.Update(tr, e.tree)

	out.Atomic, out.Ordinary = deco.Atomic, deco.Ordinary
	out.Widgets, out.WidgetEvents = ws.Set, ws.Events
	e.last = out
	return tr, out, nil
}

func (e *Engine) input() decoration.Input {
	return decoration.Input{
		Doc:         e.doc,
		Tree:        e.tree,
		Windows:     e.view.Windows,
		Focused:     e.view.Focused,
		Head:        e.sel.Head,
		ReadOnly:    e.view.ReadOnly,
		Annotations: e.store.Spans(),
	}
}

// settled runs when the cursor has stopped moving.
func (e *Engine) settled() {
	spec := txn.Spec{Effects: []txn.Effect{decoration.ForceUpdate.Of(struct{}{})}}
	if e.host != nil {
		e.host.Dispatch(spec)
		return
	}
	if _, _, err := e.Dispatch(spec); err != nil && !errors.Is(err, ErrClosed) {
		e.logger.Warn("settle rebuild failed", "error", err)
	}
}

// SetView reports a change of viewport, focus or read-only state.
func (e *Engine) SetView(v ViewState) (Output, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Output{}, ErrClosed
	}

	prev := e.view
	e.view = ViewState{Windows: slices.Clone(v.Windows), Focused: v.Focused, ReadOnly: v.ReadOnly}
	deco, _ := e.decorations.Update(decoration.Update{
		ViewportChanged: !slices.Equal(prev.Windows, v.Windows),
		FocusChanged:    prev.Focused != v.Focused,
		Forced:          prev.ReadOnly != v.ReadOnly,
		Input:           e.input(),
	})
	e.last = Output{
		Atomic:    deco.Atomic,
		Ordinary:  deco.Ordinary,
		Widgets:   e.widgets.Set(),
		Selection: e.store.Selection(),
	}
	return e.last, nil
}

// ClickCheckbox toggles the task checkbox at pos by rewriting its marker.
func (e *Engine) ClickCheckbox(pos int) (Output, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Output{}, ErrClosed
	}
	edit, ok := decoration.ToggleCheckbox(e.doc, e.tree, pos, e.view.ReadOnly)
	if !ok {
		return e.last, fmt.Errorf("%w: %d", ErrNoCheckbox, pos)
	}
	tr, out, err := e.dispatchLocked(txn.Spec{Changes: []text.Edit{edit}, Event: txn.EventInput})
	if err == nil {
		e.history.Record(tr, out.InverseEffects)
	}
	return out, err
}

// Navigate moves the cursor to the nearest tagged element in dir.
func (e *Engine) Navigate(dir widget.Direction) (int, Output, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, Output{}, ErrClosed
	}
	pos := widget.Navigate(e.doc, e.tree, e.sel.Head, dir, e.navTags)
	cursor := txn.Cursor(pos)
	_, out, err := e.dispatchLocked(txn.Spec{Selection: &cursor, Event: txn.EventSelect})
	return pos, out, err
}

// SetWidgetState buffers state for a widget and re-renders it if shown.
func (e *Engine) SetWidgetState(id string, state widget.Props) (Output, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Output{}, ErrClosed
	}
	res := e.widgets.SetState(id, state)
	e.last.Widgets = res.Set
	out := e.last
	out.WidgetEvents = res.Events
	out.InverseEffects = nil
	return out, nil
}

// Undo reverts the last recorded change.
func (e *Engine) Undo() (Output, error) {
	return e.step(e.history.Undo)
}

// Redo reapplies the last undone change.
func (e *Engine) Redo() (Output, error) {
	return e.step(e.history.Redo)
}

func (e *Engine) step(run func(history.ApplyFunc) error) (Output, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Output{}, ErrClosed
	}
	var last Output
	err := run(func(spec txn.Spec) ([]txn.Effect, error) {
		_, out, err := e.dispatchLocked(spec)
		last = out
		return out.InverseEffects, err
	})
	return last, err
}

// Doc returns the current document.
func (e *Engine) Doc() text.Doc {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc
}

// Selection returns the current selection.
func (e *Engine) Selection() txn.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel
}

// Output returns the most recent output.
func (e *Engine) Output() Output {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Annotations returns the annotation store state. Like the other read
// accessors it keeps answering after Close with the final state.
func (e *Engine) Annotations() annotation.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.State()
}

// Anchor creates an anchor for r in the current document.
func (e *Engine) Anchor(r text.Range) (anchor.Anchor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return anchor.Anchor{}, ErrClosed
	}
	return e.remap.Create(r, e.doc)
}

// Widgets returns the rendered widgets in document order. It is empty
// after Close.
func (e *Engine) Widgets() []widget.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.widgets.Records()
}

// CanUndo reports whether there is a change to undo. It is false after
// Close.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.closed && e.history.CanUndo()
}

// Close cancels pending timers, unmounts every component and releases
// scripts. It returns the final unmount events.
func (e *Engine) Close() []widget.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.store.Close()
	e.decorations.Close()
	events := e.widgets.Teardown()
	for _, s := range e.scripts {
		s.Close()
	}
	e.images.Clear()
	return events
}
