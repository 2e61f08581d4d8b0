package engine

import (
	"log/slog"
	"time"

	"github.com/dshills/marginalia/internal/annotation"
	"github.com/dshills/marginalia/internal/config"
	"github.com/dshills/marginalia/internal/debounce"
	"github.com/dshills/marginalia/internal/decoration"
	"github.com/dshills/marginalia/internal/history"
	"github.com/dshills/marginalia/internal/tree"
	"github.com/dshills/marginalia/internal/txn"
	"github.com/dshills/marginalia/internal/widget"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = history.DefaultMaxEntries
	DefaultImageTTL       = 10 * time.Minute
)

// Host receives transaction specs the engine schedules for itself, such as
// the forced rebuild after the cursor settles.
type Host interface {
	Dispatch(spec txn.Spec)
}

type settings struct {
	logger         *slog.Logger
	provider       tree.Provider
	decoration     decoration.Options
	hooks          decoration.Hooks
	registry       *widget.Registry
	widgetDefs     []config.WidgetDefinition
	scriptTimeout  time.Duration
	navTags        []string
	host           Host
	selectionDelay time.Duration
	proximityDelay time.Duration
	debounceOpts   []debounce.Option
	onDelete       func(id string)
	onProximity    func(annotation.SelectionState)
	maxUndo        int
	imageTTL       time.Duration
	anchorIDs      func() string
	widgetIDs      func() string
}

// Option configures an Engine during creation.
type Option func(*settings)

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProvider sets the syntax tree provider. The default parses markdown.
func WithProvider(p tree.Provider) Option {
	return func(s *settings) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithDecorationOptions sets numbering and indentation.
func WithDecorationOptions(o decoration.Options) Option {
	return func(s *settings) {
		s.decoration = o
	}
}

// WithHooks sets the link-button and tooltip render hooks.
func WithHooks(h decoration.Hooks) Option {
	return func(s *settings) {
		s.hooks = h
	}
}

// WithRegistry sets the widget registry. Definitions loaded from
// configuration are added to it.
func WithRegistry(r *widget.Registry) Option {
	return func(s *settings) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithHost sets the receiver of self-scheduled transactions. Without a
// host the engine dispatches them itself.
func WithHost(h Host) Option {
	return func(s *settings) {
		s.host = h
	}
}

// WithSelectionDelay coalesces selection-only decoration rebuilds.
func WithSelectionDelay(d time.Duration) Option {
	return func(s *settings) {
		s.selectionDelay = d
	}
}

// WithProximityDelay debounces proximity notifications.
func WithProximityDelay(d time.Duration) Option {
	return func(s *settings) {
		s.proximityDelay = d
	}
}

// WithDebounceOptions passes options, typically a manual timer, to every
// debouncer the engine creates.
func WithDebounceOptions(opts ...debounce.Option) Option {
	return func(s *settings) {
		s.debounceOpts = opts
	}
}

// WithOnDelete registers the exactly-once delete callback.
func WithOnDelete(fn func(id string)) Option {
	return func(s *settings) {
		s.onDelete = fn
	}
}

// WithOnProximity registers the proximity callback.
func WithOnProximity(fn func(annotation.SelectionState)) Option {
	return func(s *settings) {
		s.onProximity = fn
	}
}

// WithNavigationTags limits Navigate to the given tags.
func WithNavigationTags(tags ...string) Option {
	return func(s *settings) {
		s.navTags = tags
	}
}

// WithMaxUndoEntries bounds the undo history.
func WithMaxUndoEntries(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxUndo = n
		}
	}
}

// WithIDGenerators replaces uuid generation for anchors and widgets.
func WithIDGenerators(anchors, widgets func() string) Option {
	return func(s *settings) {
		s.anchorIDs = anchors
		s.widgetIDs = widgets
	}
}

// WithConfig applies a loaded configuration.
func WithConfig(cfg config.Config) Option {
	return func(s *settings) {
		d := cfg.Decoration
		s.decoration = decoration.Options{
			Numbering:     d.Numbering,
			HeadingStart:  d.HeadingStart,
			BulletIndent:  d.BulletIndent,
			OrderedIndent: d.OrderedIndent,
		}
		s.selectionDelay = d.SelectionDelay.Duration
		s.proximityDelay = cfg.Annotation.ProximityDelay.Duration
		s.navTags = cfg.Widgets.NavigationTags
		s.widgetDefs = cfg.Widgets.Definitions
		s.scriptTimeout = cfg.Widgets.ScriptTimeout.Duration
	}
}
